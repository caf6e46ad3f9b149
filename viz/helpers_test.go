package viz

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"qviz/hal"
	"qviz/quantum"
)

type testFB struct {
	w, h     int
	buf      []byte
	presents int
}

func newTestFB(w, h int) *testFB {
	return &testFB{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *testFB) Width() int              { return f.w }
func (f *testFB) Height() int             { return f.h }
func (f *testFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *testFB) StrideBytes() int        { return f.w * 2 }
func (f *testFB) Buffer() []byte          { return f.buf }
func (f *testFB) ClearRGB(r, g, b uint8)  {}
func (f *testFB) Present() error          { f.presents++; return nil }

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *ManualClock, *testFB) {
	t.Helper()
	clock := NewManualClock(epoch)
	fb := newTestFB(160, 120)
	e, err := New(fb, append([]Option{WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	return e, clock, fb
}

func bellState() quantum.State {
	r := 1 / math.Sqrt2
	return quantum.State{
		NumQubits:  2,
		Amplitudes: quantum.AmplitudeVector{quantum.C(r, 0), {}, {}, quantum.C(r, 0)},
	}
}

func bellCircuit() []quantum.Gate {
	return []quantum.Gate{
		quantum.NewGate(quantum.GateH, 0),
		quantum.NewGate(quantum.GateCNOT, 0, 1),
	}
}
