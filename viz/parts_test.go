package viz

import (
	"errors"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers"

	"qviz/hal"
	"qviz/quantum"
	"qviz/quarkgl"
)

func TestRegistryPutReplacesAndClears(t *testing.T) {
	s := quarkgl.CreateScene(8)
	r := NewRegistry(s, "qubit")
	assert.Equal(t, "qubit_3", r.Key(3))

	a := s.AddGroup(quarkgl.Root, quarkgl.Identity())
	s.AddGroup(a, quarkgl.Identity())
	r.Put(r.Key(0), a)
	b := s.AddGroup(quarkgl.Root, quarkgl.Identity())
	r.Put(r.Key(0), b)

	assert.Equal(t, 1, r.Len())
	assert.False(t, s.Valid(a), "replaced subtree must be released")
	got, ok := r.Get("qubit_0")
	require.True(t, ok)
	assert.Equal(t, b, got)

	assert.Equal(t, 1, r.Clear())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, r.Keys())
}

func TestManualClockOrder(t *testing.T) {
	c := NewManualClock(epoch)
	var got []int
	c.AfterFunc(20*time.Millisecond, func() { got = append(got, 2) })
	c.AfterFunc(10*time.Millisecond, func() { got = append(got, 1) })
	stopped := c.AfterFunc(10*time.Millisecond, func() { got = append(got, 99) })
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	c.Advance(5 * time.Millisecond)
	assert.Empty(t, got)
	c.Advance(time.Second)
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, epoch.Add(1005*time.Millisecond), c.Now())
	assert.Equal(t, 0, c.Pending())
}

func TestSequencerRealClock(t *testing.T) {
	q := NewSequencer(nil)
	s := q.Play(quantum.NewGate(quantum.GateH, 0), 5)
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("signal did not resolve")
	}
	assert.False(t, s.Canceled())
	assert.Equal(t, 0, q.InFlight())
}

func TestSequencerNegativeDuration(t *testing.T) {
	q := NewSequencer(NewManualClock(epoch))
	s := q.Play(quantum.NewGate(quantum.GateX, 1), -5)
	assert.True(t, s.Resolved())
	assert.Equal(t, time.Duration(0), s.Duration())
	assert.Equal(t, "X", s.Gate().Type)
}

func TestPhaseHue(t *testing.T) {
	assert.InDelta(t, 0, PhaseHue(0), 1e-9)
	assert.InDelta(t, 90, PhaseHue(math.Pi/2), 1e-9)
	assert.InDelta(t, 270, PhaseHue(-math.Pi/2), 1e-9)
	assert.InDelta(t, 0, PhaseHue(2*math.Pi), 1e-9)

	red := PhaseColor(0)
	assert.Greater(t, red.R, red.G)
	assert.Greater(t, red.R, red.B)
}

func TestBarXSymmetric(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8} {
		var sum float64
		for i := 0; i < n; i++ {
			sum += BarX(i, n)
		}
		assert.InDelta(t, 0, sum, 1e-9, "n=%d", n)
	}
}

func TestGateColor(t *testing.T) {
	assert.Equal(t, quarkgl.Hex(0x00ff00), GateColor("H"))
	assert.Equal(t, quarkgl.Hex(0xff0000), GateColor("x"))
	assert.Equal(t, quarkgl.Hex(0x0088ff), GateColor("CNOT"))
	assert.Equal(t, DefaultGateColor, GateColor("RZZ"))
	assert.Equal(t, DefaultGateColor, GateColor(""))
}

func TestBarsPhaseColors(t *testing.T) {
	e, _, _ := newTestEngine(t)
	st := quantum.State{NumQubits: 1, Amplitudes: quantum.AmplitudeVector{quantum.C(0.6, 0), quantum.C(0, 0.8)}}
	require.NoError(t, e.VisualizeQuantumState(st))
	bars := e.Snapshot().Bars
	require.Len(t, bars, 2)
	assert.InDelta(t, 1.8, bars[0].Height, 1e-9)
	assert.InDelta(t, 2.4, bars[1].Height, 1e-9)
	assert.InDelta(t, 90, bars[1].Hue, 1e-9)
	assert.Equal(t, "|1⟩", bars[1].Label)
}

func TestFromPointer(t *testing.T) {
	ev, ok := FromPointer(hal.PointerEvent{Kind: hal.PointerWheel, DY: 1})
	require.True(t, ok)
	assert.Equal(t, InputZoom, ev.Kind)
	assert.Less(t, ev.DY, 0.0)

	ev, ok = FromPointer(hal.PointerEvent{Kind: hal.PointerDrag, DX: 10})
	require.True(t, ok)
	assert.Equal(t, InputRotate, ev.Kind)

	_, ok = FromKey(hal.KeyEvent{Press: false, Code: hal.KeyLeft})
	assert.False(t, ok)
	_, ok = FromKey(hal.KeyEvent{Press: true, Rune: 'b'})
	assert.False(t, ok)

	in, ok := FromKey(hal.KeyEvent{Press: true, Code: hal.KeyPageUp})
	require.True(t, ok)
	out, _ := FromKey(hal.KeyEvent{Press: true, Rune: '-'})
	assert.Equal(t, InputZoom, in.Kind)
	assert.Less(t, in.DY, 0.0)
	assert.Greater(t, out.DY, 0.0)
}

func TestHUDLines(t *testing.T) {
	e, _, fb := newTestEngine(t, WithHUD())
	h := e.HUD()
	require.NotNil(t, h)
	h.SetPreset("bell")
	h.SetMeasurements(map[string]int{"00": 510, "11": 490, "01": 0})
	require.NoError(t, e.VisualizeQuantumState(bellState()))
	h.SetStatus("ok")

	lines := h.Lines()
	require.Len(t, lines, 5)
	assert.Equal(t, "preset bell  qubits 2", lines[0])
	assert.Equal(t, "|00> 510", lines[1])
	assert.Equal(t, "|11> 490", lines[2])
	assert.Equal(t, "ok", lines[4])

	require.NoError(t, e.Tick(epoch))
	require.NoError(t, e.Tick(epoch.Add(50*time.Millisecond)))
	assert.Contains(t, h.Lines()[0], "20fps")
	assert.Equal(t, 2, fb.presents)
}

// brokenPanel accepts drawing but rejects rotation and fills.
type brokenPanel struct {
	quarkgl.TargetDisplay
	err error
}

func (p *brokenPanel) SetRotation(drivers.Rotation) error { return p.err }

func (p *brokenPanel) FillRectangle(int16, int16, int16, int16, color.RGBA) error { return p.err }

func TestHUDReportsDisplayErrors(t *testing.T) {
	boom := errors.New("panel offline")
	tg := &quarkgl.RGB565Target{Buf: make([]byte, 40*20*2), Stride: 80, W: 40, H: 20}
	p := &brokenPanel{TargetDisplay: quarkgl.TargetDisplay{T: tg}, err: boom}

	var h HUD
	assert.ErrorIs(t, h.attach(p), boom)

	p.err = nil
	require.NoError(t, h.attach(p))
	assert.Equal(t, int16(40), h.w)
	p.err = boom
	assert.ErrorIs(t, h.draw(epoch, time.Time{}, quarkgl.RenderSolidFlat), boom)
}
