// Package canon produces canonical JSON and content fingerprints.
//
// Canonical JSON follows RFC 8785: object keys sorted by UTF-16 code
// units, no insignificant whitespace, no HTML escaping, NFC-normalised
// strings. Floats and null are rejected so the same value always encodes
// to the same bytes; durations are encoded as integer nanoseconds or as
// strings by the caller.
//
// Canonical bytes are used for golden trace snapshots and for the
// fingerprint that ties journal sessions to the timeline they played.
package canon
