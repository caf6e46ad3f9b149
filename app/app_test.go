package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qviz/hal"
	"qviz/proto"
	"qviz/sim"
)

type keyboard chan hal.KeyEvent

func (k keyboard) Events() <-chan hal.KeyEvent { return k }

type pointer chan hal.PointerEvent

func (p pointer) Events() <-chan hal.PointerEvent { return p }

// fakeHAL uses a real host framebuffer with scripted input.
type fakeHAL struct {
	hal.HAL
	keys keyboard
	ptrs pointer
	log  []string
}

func newFakeHAL() *fakeHAL {
	return &fakeHAL{
		HAL:  hal.New(hal.HostConfig{Width: 160, Height: 120, Log: zerolog.Nop()}),
		keys: make(keyboard, 8),
		ptrs: make(pointer, 8),
	}
}

func (f *fakeHAL) Input() hal.Input       { return f }
func (f *fakeHAL) Keyboard() hal.Keyboard { return f.keys }
func (f *fakeHAL) Pointer() hal.Pointer   { return f.ptrs }

func (f *fakeHAL) Logger() hal.Logger       { return f }
func (f *fakeHAL) WriteLineString(s string) { f.log = append(f.log, s) }
func (f *fakeHAL) WriteLineBytes(b []byte)  { f.log = append(f.log, string(b)) }

func (f *fakeHAL) press(r rune) { f.keys <- hal.KeyEvent{Press: true, Rune: r} }

func newTestApp(t *testing.T, h hal.HAL, cfg Config) *App {
	t.Helper()
	cfg.Log = zerolog.Nop()
	a, err := newApp(h, cfg)
	require.NoError(t, err)
	t.Cleanup(a.shutdown)
	return a
}

func stepUntil(t *testing.T, a *App, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		require.NoError(t, a.Step())
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}

func hudText(a *App) string {
	return strings.Join(a.Engine().HUD().Lines(), "\n")
}

func TestLoadsPresetAndAppliesResult(t *testing.T) {
	a := newTestApp(t, newFakeHAL(), Config{Preset: "bell", Shots: 50})
	assert.Equal(t, 1, a.Pending())

	stepUntil(t, a, func() bool { return a.Pending() == 0 })

	snap := a.Engine().Snapshot()
	require.Len(t, snap.Indicators, 2)
	assert.Len(t, snap.Bars, 4)
	assert.Len(t, snap.Gates, 3, "H, CNOT, MEASURE")
	assert.Contains(t, hudText(a), "preset bell  qubits 2")
	assert.Contains(t, hudText(a), "bell: ")
}

func TestPresetKeys(t *testing.T) {
	h := newFakeHAL()
	a := newTestApp(t, h, Config{})
	assert.Equal(t, "bell", a.Preset(), "first preset by default")

	h.press('t')
	stepUntil(t, a, func() bool { return a.Preset() == "teleportation" && a.Pending() == 0 })
	assert.Len(t, a.Engine().Snapshot().Indicators, 3)

	h.press('c')
	stepUntil(t, a, func() bool { return a.Preset() == "custom" && a.Pending() == 0 })
	assert.Len(t, a.Engine().Snapshot().Bars, 8)

	h.press('f')
	stepUntil(t, a, func() bool { return a.Preset() == "qft" && a.Pending() == 0 })
	assert.Len(t, a.Engine().Snapshot().Bars, 8)

	h.press('s')
	stepUntil(t, a, func() bool { return a.Preset() == "shor" && a.Pending() == 0 })
	assert.Len(t, a.Engine().Snapshot().Indicators, 6)
	assert.Len(t, a.Engine().Snapshot().Bars, 64)
}

func TestPresetNames(t *testing.T) {
	assert.Equal(t, []string{"bell", "teleportation", "grover", "qft", "shor", "custom"}, PresetNames())
	for _, name := range PresetNames() {
		p, ok := PresetByName(name)
		require.True(t, ok)
		byKey, ok := presetByKey(p.Key)
		require.True(t, ok)
		assert.Equal(t, name, byKey.Name)
		assert.NotPanics(t, func() { p.Build() }, name)
	}
}

func TestUnknownPreset(t *testing.T) {
	_, err := newApp(newFakeHAL(), Config{Preset: "deutsch", Log: zerolog.Nop()})
	assert.ErrorContains(t, err, "unknown preset")
}

func TestQuitDisposes(t *testing.T) {
	h := newFakeHAL()
	a := newTestApp(t, h, Config{})
	h.press('q')
	assert.ErrorIs(t, a.Step(), hal.ErrStop)
	assert.True(t, a.Engine().Disposed())

	h2 := newFakeHAL()
	b := newTestApp(t, h2, Config{})
	h2.keys <- hal.KeyEvent{Press: true, Code: hal.KeyEscape}
	assert.ErrorIs(t, b.Step(), hal.ErrStop)
}

func TestPlayStepsThroughCircuit(t *testing.T) {
	h := newFakeHAL()
	a := newTestApp(t, h, Config{Preset: "bell", StepMs: 1})
	stepUntil(t, a, func() bool { return a.Pending() == 0 })

	h.press('p')
	require.NoError(t, a.Step())
	assert.Len(t, a.Engine().Snapshot().Gates, 1, "playback restarts from the first gate")

	stepUntil(t, a, func() bool { return !a.playing() && a.Pending() == 0 })
	assert.Len(t, a.Engine().Snapshot().Gates, 3)
	assert.Len(t, a.Engine().Snapshot().Indicators, 2)
}

type failingBackend struct{}

func (failingBackend) Simulate(context.Context, proto.SimulateRequest) (proto.SimulateResponse, error) {
	return proto.SimulateResponse{}, errors.New("backend down")
}

func TestSimulationErrorShowsStatus(t *testing.T) {
	a := newTestApp(t, newFakeHAL(), Config{Backend: failingBackend{}})
	stepUntil(t, a, func() bool { return a.Pending() == 0 })
	assert.Contains(t, hudText(a), "backend down")
	assert.Empty(t, a.Engine().Snapshot().Indicators)
}

// streamBackend simulates locally and, once ready is closed, streams events
// in order.
type streamBackend struct {
	localBackend
	ready  chan struct{}
	events []proto.StreamEvent
}

func (b streamBackend) Follow(ctx context.Context, fn func(proto.StreamEvent)) error {
	select {
	case <-b.ready:
		for _, ev := range b.events {
			fn(ev)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	<-ctx.Done()
	return ctx.Err()
}

func streamEvent(t *testing.T, b *sim.Builder) proto.StreamEvent {
	t.Helper()
	c := proto.Circuit{NumQubits: b.NumQubits(), Gates: b.Gates()}
	res, err := localBackend{sim: sim.New()}.Simulate(context.Background(),
		proto.SimulateRequest{NumQubits: c.NumQubits, Gates: c.Gates, Shots: 10})
	require.NoError(t, err)
	return proto.StreamEvent{ID: "ev", Source: "simulate", Circuit: c, Result: res}
}

func TestFollowAppliesStreamEvents(t *testing.T) {
	backend := streamBackend{
		localBackend: localBackend{sim: sim.New()},
		ready:        make(chan struct{}),
		events:       []proto.StreamEvent{streamEvent(t, sim.Teleportation())},
	}
	a := newTestApp(t, newFakeHAL(), Config{Preset: "bell", Follow: true, Backend: backend})
	stepUntil(t, a, func() bool { return a.Pending() == 0 })
	require.Len(t, a.Engine().Snapshot().Indicators, 2)

	close(backend.ready)
	stepUntil(t, a, func() bool { return len(a.Engine().Snapshot().Indicators) == 3 })
	assert.Len(t, a.Engine().Snapshot().Gates, 4)
}

func TestFollowDropsEchoOfSupersededPreset(t *testing.T) {
	bell, _ := PresetByName("bell")
	backend := streamBackend{
		localBackend: localBackend{sim: sim.New()},
		ready:        make(chan struct{}),
		events: []proto.StreamEvent{
			// Late echo of the preset loaded first.
			streamEvent(t, bell.Build()),
			// A foreign circuit marks the point where the echo was handled.
			streamEvent(t, sim.NewBuilder(1).H(0)),
		},
	}
	var logs syncBuffer
	h := newFakeHAL()
	a, err := newApp(h, Config{Preset: "bell", Follow: true, Backend: backend, Log: zerolog.New(&logs).Level(zerolog.DebugLevel)})
	require.NoError(t, err)
	t.Cleanup(a.shutdown)
	stepUntil(t, a, func() bool { return a.Pending() == 0 })

	h.press('t')
	stepUntil(t, a, func() bool { return a.Preset() == "teleportation" && a.Pending() == 0 })
	require.Len(t, a.Engine().Snapshot().Indicators, 3)

	close(backend.ready)
	stepUntil(t, a, func() bool { return len(a.Engine().Snapshot().Indicators) == 1 })
	assert.Len(t, a.Engine().Snapshot().Gates, 1)
	assert.Contains(t, logs.String(), "Dropping stale stream echo")
}

type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestPointerAndKeysReachCamera(t *testing.T) {
	h := newFakeHAL()
	a := newTestApp(t, h, Config{})
	require.NoError(t, a.Step())
	before := a.Engine().Frame().Eye

	h.ptrs <- hal.PointerEvent{Kind: hal.PointerDrag, DX: 40}
	h.keys <- hal.KeyEvent{Press: true, Code: hal.KeyLeft}
	for i := 0; i < 5; i++ {
		require.NoError(t, a.Step())
	}
	assert.NotEqual(t, before, a.Engine().Frame().Eye)
}

func TestGuardRecoversPanic(t *testing.T) {
	h := newFakeHAL()
	step := guard(h, func() error { panic("boom") })
	err := step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	require.NotEmpty(t, h.log)
	assert.Equal(t, "qviz panic: boom", h.log[0])
}

func TestWrapRunes(t *testing.T) {
	assert.Equal(t, []string{"hé", "ll", "o"}, wrapRunes("héllo", 2))
	assert.Equal(t, []string{"ab"}, wrapRunes("ab", 5))
	assert.Equal(t, []string{"ab", "cd"}, wrapRunes("ab  cd", 2))
}
