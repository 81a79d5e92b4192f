package testutil

import (
	"fmt"
	"sync"
)

// SequentialSessionIDs generates "<prefix>-0001", "<prefix>-0002", ...
//
// It satisfies journal.SessionIDGenerator so journal tests and golden
// traces get stable ids.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialSessionIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialSessionIDs creates a generator. An empty prefix becomes
// "test-session".
func NewSequentialSessionIDs(prefix string) *SequentialSessionIDs {
	if prefix == "" {
		prefix = "test-session"
	}
	return &SequentialSessionIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialSessionIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
