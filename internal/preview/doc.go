// Package preview is the terminal preview of a timeline.
//
// A bubbletea program drives a player.Player from wall-clock frame ticks
// and renders the current phase, elapsed time and every emitter's status
// with lipgloss. The operator picks a name to play, stops playback, and
// toggles between the running frame loop and editing-mode preview ticks.
package preview
