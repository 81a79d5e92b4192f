package timeline

import "time"

// EmitterID names an externally owned emitter. The empty id is the null
// handle: cues carrying it are skipped at every step.
type EmitterID string

// IsSet reports whether the id refers to an emitter.
func (id EmitterID) IsSet() bool {
	return id != ""
}

// Cue schedules one command against an emitter, Delay after the phase began.
type Cue struct {
	Emitter EmitterID
	Delay   time.Duration
}

// Phase is a named step of the timeline.
type Phase struct {
	Name    string
	OnEnter []Cue
	OnStop  []Cue
	OnClear []Cue

	// ClearSiblings clears the enter-cue emitters of every other phase
	// when this phase is played.
	ClearSiblings bool
}

// Jump redirects a play request for From to phase To, starting StartOffset
// into the phase.
type Jump struct {
	From        string
	To          string
	StartOffset time.Duration
}

// Table is the full authored timeline.
type Table struct {
	// StartPhase is played when the host activates an idle player.
	// Empty means nothing plays automatically.
	StartPhase string

	Phases []Phase
	Jumps  []Jump
}

// ResolvePlayTarget maps a requested name through the jump list.
// The first jump whose From equals name wins; otherwise name is returned
// unchanged with a zero offset.
func (t *Table) ResolvePlayTarget(name string) (phase string, offset time.Duration, jumped bool) {
	for _, j := range t.Jumps {
		if j.From == name {
			return j.To, j.StartOffset, true
		}
	}
	return name, 0, false
}

// FindPhase returns the index and definition of the first phase named name,
// or (-1, nil).
func (t *Table) FindPhase(name string) (int, *Phase) {
	for i := range t.Phases {
		if t.Phases[i].Name == name {
			return i, &t.Phases[i]
		}
	}
	return -1, nil
}

// HasName reports whether name is a phase name or a jump source.
func (t *Table) HasName(name string) bool {
	if _, p := t.FindPhase(name); p != nil {
		return true
	}
	for _, j := range t.Jumps {
		if j.From == name {
			return true
		}
	}
	return false
}

// Names returns every phase name and jump source in author order, without
// duplicates or empty names.
func (t *Table) Names() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(n string) {
		if n == "" || seen[n] {
			return
		}
		seen[n] = true
		names = append(names, n)
	}
	for _, p := range t.Phases {
		add(p.Name)
	}
	for _, j := range t.Jumps {
		add(j.From)
	}
	return names
}

// EnterEmitters lists the distinct non-null emitters referenced by any
// phase's enter cues, in first-seen order.
func (t *Table) EnterEmitters() []EmitterID {
	return t.collect(func(p *Phase) [][]Cue { return [][]Cue{p.OnEnter} })
}

// Emitters lists every distinct non-null emitter referenced by the table.
func (t *Table) Emitters() []EmitterID {
	return t.collect(func(p *Phase) [][]Cue { return [][]Cue{p.OnEnter, p.OnStop, p.OnClear} })
}

func (t *Table) collect(lists func(*Phase) [][]Cue) []EmitterID {
	seen := make(map[EmitterID]bool)
	var ids []EmitterID
	for i := range t.Phases {
		for _, cues := range lists(&t.Phases[i]) {
			for _, c := range cues {
				if !c.Emitter.IsSet() || seen[c.Emitter] {
					continue
				}
				seen[c.Emitter] = true
				ids = append(ids, c.Emitter)
			}
		}
	}
	return ids
}
