package player

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/phaseplay/internal/timeline"
)

func TestTracker_AddRemove(t *testing.T) {
	tr := NewTracker()
	tr.Add("a")
	tr.Add("b")
	tr.Add("a")

	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, []timeline.EmitterID{"a", "b"}, tr.Members())

	tr.Remove("a")
	tr.Remove("missing")
	assert.False(t, tr.Contains("a"))
	assert.Equal(t, []timeline.EmitterID{"b"}, tr.Members())
}

func TestTracker_NullHandle(t *testing.T) {
	tr := NewTracker()
	tr.Add("")
	assert.Equal(t, 0, tr.Len())
	assert.False(t, tr.Contains(""))
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker()
	tr.Add("a")
	tr.Add("b")
	tr.Reset()

	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Members())

	tr.Add("b")
	assert.Equal(t, []timeline.EmitterID{"b"}, tr.Members())
}

func TestTracker_MembersIsSnapshot(t *testing.T) {
	tr := NewTracker()
	tr.Add("a")
	m := tr.Members()
	m[0] = "changed"
	assert.True(t, tr.Contains("a"))
}
