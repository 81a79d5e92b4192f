// Package timeline holds the authored description of a phase timeline.
//
// A Table is pure data: an ordered list of phases, each with three ordered
// cue lists (enter, stop, clear), plus an ordered list of jump aliases that
// redirect a play request to a phase with a start offset. Tables are loaded
// once and treated as read-only while a player is using them.
//
// # Lookup Rules
//
// Lookups are linear scans in author order and the first match wins:
//
//   - ResolvePlayTarget consults jumps before phases and is not transitive.
//     A jump whose target is another jump's source resolves to that name as
//     a phase name, which normally fails phase lookup.
//   - FindPhase returns the first phase with the requested name. Duplicate
//     names are tolerated; Validate reports them.
//
// # Documents
//
// Tables are read from YAML or CUE documents (see Load). Times in documents
// are float seconds and become time.Duration values on load.
package timeline
