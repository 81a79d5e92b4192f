package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialSessionIDs(t *testing.T) {
	g := NewSequentialSessionIDs("run")
	assert.Equal(t, "run-0001", g.Generate())
	assert.Equal(t, "run-0002", g.Generate())
}

func TestSequentialSessionIDs_DefaultPrefix(t *testing.T) {
	g := NewSequentialSessionIDs("")
	assert.Equal(t, "test-session-0001", g.Generate())
}
