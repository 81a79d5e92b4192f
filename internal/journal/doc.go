// Package journal provides SQLite-backed storage for playback sessions.
//
// A session is one run of a player over one timeline table. Every command
// the player issues during the session is appended with a per-session
// sequence number from a logical clock, so a trace reads back in exactly
// the order it was issued regardless of wall time.
//
// # Schema
//
//   - sessions: id (UUIDv7), table fingerprint, first phase, ordinal
//   - commands: (session_id, seq) primary key, command fields, times in ns
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Table fingerprints are computed by canon.TableHash.
package journal
