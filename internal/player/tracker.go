package player

import "github.com/roach88/phaseplay/internal/timeline"

// Tracker is the set of emitters the player considers playing. It exists
// only to gate cue actions; it owns nothing. Membership order is insertion
// order so snapshots are deterministic.
//
// The null handle is never a member and is never added.
type Tracker struct {
	members map[timeline.EmitterID]struct{}
	order   []timeline.EmitterID
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{members: make(map[timeline.EmitterID]struct{})}
}

// Contains reports membership. Always false for the null handle.
func (t *Tracker) Contains(id timeline.EmitterID) bool {
	if !id.IsSet() {
		return false
	}
	_, ok := t.members[id]
	return ok
}

// Add inserts id. Adding a member again or adding the null handle is a no-op.
func (t *Tracker) Add(id timeline.EmitterID) {
	if !id.IsSet() || t.Contains(id) {
		return
	}
	t.members[id] = struct{}{}
	t.order = append(t.order, id)
}

// Remove deletes id. Removing a non-member is a no-op.
func (t *Tracker) Remove(id timeline.EmitterID) {
	if !t.Contains(id) {
		return
	}
	delete(t.members, id)
	for i, m := range t.order {
		if m == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of members.
func (t *Tracker) Len() int {
	return len(t.order)
}

// Reset removes every member.
func (t *Tracker) Reset() {
	clear(t.members)
	t.order = t.order[:0]
}

// Members returns a snapshot in insertion order.
func (t *Tracker) Members() []timeline.EmitterID {
	out := make([]timeline.EmitterID, len(t.order))
	copy(out, t.order)
	return out
}
