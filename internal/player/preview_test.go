package player

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/phaseplay/internal/emitter"
	"github.com/roach88/phaseplay/internal/testutil"
)

func previewRig(t *testing.T) (*rig, *testutil.FakeClock) {
	t.Helper()
	clock := testutil.NewFakeClock()
	r := newRig(t, singleCueTable(0), WithWallClock(clock.Now))
	require.NoError(t, r.player.Play("X"))
	r.player.Tick(secs(0.1))
	require.True(t, r.player.IsActive("E"))
	r.reset()
	r.rec("E").Reset()
	return r, clock
}

func TestPreviewTick_RunningModeIsNoop(t *testing.T) {
	r, clock := previewRig(t)
	clock.Advance(time.Second)

	assert.Equal(t, time.Duration(0), r.player.PreviewTick())
	assert.Empty(t, r.rec("E").Calls())
}

func TestPreviewTick_AdvancesActiveEmitters(t *testing.T) {
	r, clock := previewRig(t)
	r.player.SetMode(ModeEditing)

	clock.Advance(250 * time.Millisecond)
	dt := r.player.PreviewTick()

	assert.Equal(t, 250*time.Millisecond, dt)
	assert.Equal(t, []emitter.Call{{Name: emitter.CallSimulate, Time: 250 * time.Millisecond}}, r.rec("E").Calls())
	assert.Equal(t, secs(0.35), r.rec("E").Local())
	assert.Equal(t, secs(0.1), r.player.Elapsed(), "phase time is frozen while editing")

	require.Len(t, r.commands, 1)
	assert.Equal(t, KindAdvance, r.commands[0].Kind)
	assert.Equal(t, CausePreview, r.commands[0].Cause)
}

func TestPreviewTick_SingleAdvancePerTick(t *testing.T) {
	r, clock := previewRig(t)
	r.player.SetMode(ModeEditing)

	require.NoError(t, r.player.Play("X"))
	r.player.SetMode(ModeRunning)
	r.player.Tick(secs(0.1))
	r.player.SetMode(ModeEditing)
	require.True(t, r.player.IsActive("E"))
	r.rec("E").Reset()

	clock.Advance(time.Second)
	r.player.PreviewTick()
	assert.Equal(t, 1, r.rec("E").Count(emitter.CallSimulate), "repeated play must not double register")
}

func TestPreviewTick_BackwardsClockIsZero(t *testing.T) {
	r, clock := previewRig(t)
	r.player.SetMode(ModeEditing)

	clock.Set(testutil.Epoch.Add(-time.Hour))
	assert.Equal(t, time.Duration(0), r.player.PreviewTick())
}

func TestPreviewTick_UnregisteredAfterStop(t *testing.T) {
	r, clock := previewRig(t)
	r.player.Stop()
	r.player.SetMode(ModeEditing)

	clock.Advance(time.Second)
	assert.Equal(t, time.Duration(0), r.player.PreviewTick())
	assert.False(t, r.player.PreviewRegistered())
	assert.Empty(t, r.rec("E").Calls())
}

func TestTick_SuspendedWhileEditing(t *testing.T) {
	r, _ := previewRig(t)
	r.player.SetMode(ModeEditing)
	r.player.Tick(secs(5))
	assert.Equal(t, secs(0.1), r.player.Elapsed())
}

func TestClose_Unregisters(t *testing.T) {
	r, _ := previewRig(t)
	assert.True(t, r.player.PreviewRegistered())

	r.player.Close()
	assert.False(t, r.player.PreviewRegistered())
	assert.False(t, r.player.Running())
}

func TestPreviewTick_SkipsNonSimulators(t *testing.T) {
	tbl := singleCueTable(0)
	reg := emitter.NewRegistry()
	reg.Register("E", plainEmitter{})
	clock := testutil.NewFakeClock()

	var cmds []Command
	p := New(tbl, reg,
		WithLogger(discardLogger()),
		WithWallClock(clock.Now),
		WithMode(ModeEditing),
		WithSink(SinkFunc(func(c Command) { cmds = append(cmds, c) })),
	)
	require.NoError(t, p.Play("X"))
	p.SetMode(ModeRunning)
	p.Tick(secs(0.1))
	p.SetMode(ModeEditing)
	cmds = nil

	clock.Advance(time.Second)
	assert.Equal(t, time.Second, p.PreviewTick())
	assert.Empty(t, cmds)
}

func TestState_JSON(t *testing.T) {
	r, _ := previewRig(t)
	r.player.SetMode(ModeEditing)

	data, err := json.Marshal(r.player.State())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"phase": "X",
		"phase_index": 0,
		"elapsed": 100000000,
		"running": true,
		"active": ["E"],
		"mode": "editing",
		"preview_registered": true
	}`, string(data))
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "running", ModeRunning.String())
	assert.Equal(t, "editing", ModeEditing.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}

func TestMode_UnmarshalText(t *testing.T) {
	var st State
	require.NoError(t, json.Unmarshal([]byte(`{"mode":"editing"}`), &st))
	assert.Equal(t, ModeEditing, st.Mode)

	var m Mode
	assert.Error(t, m.UnmarshalText([]byte("paused")))
}

// plainEmitter supports commands but not simulation.
type plainEmitter struct{}

func (plainEmitter) Start(time.Duration) {}
func (plainEmitter) Stop(bool)           {}
func (plainEmitter) Clear()              {}

var _ emitter.Emitter = plainEmitter{}