// Package testutil holds deterministic helpers shared by tests: a
// hand-driven wall clock and a fixed session id generator.
package testutil
