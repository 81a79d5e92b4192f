package journal

import "github.com/google/uuid"

// SessionIDGenerator produces session ids.
type SessionIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids, so sessions
// listed by id also list in creation order.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a hyphenated UUIDv7 string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
