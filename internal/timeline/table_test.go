package timeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		StartPhase: "intro",
		Phases: []Phase{
			{
				Name:    "intro",
				OnEnter: []Cue{{Emitter: "sparks"}, {Emitter: "", Delay: time.Second}},
				OnStop:  []Cue{{Emitter: "sparks", Delay: 2 * time.Second}},
			},
			{
				Name:    "finale",
				OnEnter: []Cue{{Emitter: "fireworks"}},
				OnClear: []Cue{{Emitter: "smoke"}},
			},
			{Name: "intro", OnEnter: []Cue{{Emitter: "shadowed"}}},
		},
		Jumps: []Jump{
			{From: "skip", To: "finale", StartOffset: 1500 * time.Millisecond},
			{From: "skip", To: "intro"},
			{From: "finale", To: "intro"},
		},
	}
}

func TestEmitterID_IsSet(t *testing.T) {
	assert.False(t, EmitterID("").IsSet())
	assert.True(t, EmitterID("x").IsSet())
}

func TestTable_ResolvePlayTarget(t *testing.T) {
	tbl := sampleTable()

	phase, offset, jumped := tbl.ResolvePlayTarget("skip")
	assert.Equal(t, "finale", phase)
	assert.Equal(t, 1500*time.Millisecond, offset)
	assert.True(t, jumped)

	phase, offset, jumped = tbl.ResolvePlayTarget("intro")
	assert.Equal(t, "intro", phase)
	assert.Zero(t, offset)
	assert.False(t, jumped)

	phase, _, jumped = tbl.ResolvePlayTarget("finale")
	assert.Equal(t, "intro", phase, "a jump source shadows a phase of the same name")
	assert.True(t, jumped)
}

func TestTable_FindPhase(t *testing.T) {
	tbl := sampleTable()

	idx, p := tbl.FindPhase("intro")
	assert.Equal(t, 0, idx)
	assert.Equal(t, EmitterID("sparks"), p.OnEnter[0].Emitter, "first phase with a name wins")

	idx, p = tbl.FindPhase("Intro")
	assert.Equal(t, -1, idx)
	assert.Nil(t, p)
}

func TestTable_Names(t *testing.T) {
	assert.Equal(t, []string{"intro", "finale", "skip"}, sampleTable().Names())
}

func TestTable_HasName(t *testing.T) {
	tbl := sampleTable()
	assert.True(t, tbl.HasName("skip"))
	assert.True(t, tbl.HasName("finale"))
	assert.False(t, tbl.HasName("outro"))
	assert.False(t, tbl.HasName(""))
}

func TestTable_Emitters(t *testing.T) {
	tbl := sampleTable()
	assert.Equal(t, []EmitterID{"sparks", "fireworks", "smoke", "shadowed"}, tbl.Emitters())
	assert.Equal(t, []EmitterID{"sparks", "fireworks", "shadowed"}, tbl.EnterEmitters())
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, Seconds(1.5))
	assert.Equal(t, 100*time.Millisecond, Seconds(0.1))
	assert.Equal(t, time.Duration(0), Seconds(0))
	assert.Equal(t, time.Duration(math.MaxInt64), Seconds(1e12))
	assert.Equal(t, time.Duration(math.MinInt64), Seconds(math.Inf(-1)))
	assert.Equal(t, time.Duration(0), Seconds(math.NaN()))
}

func TestParseSeconds(t *testing.T) {
	d, err := ParseSeconds(9223372036)
	require.NoError(t, err)
	assert.Equal(t, 9223372036*time.Second, d)

	for _, s := range []float64{math.NaN(), math.Inf(1), 1e12, -1e12, 9223372036.9} {
		_, err := ParseSeconds(s)
		assert.Error(t, err, "%v", s)
	}
}
