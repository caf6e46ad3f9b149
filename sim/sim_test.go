package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qviz/quantum"
)

const tol = 1e-9

func run(t *testing.T, b *Builder, shots int) Result {
	t.Helper()
	res, err := New(WithSeed(7)).Run(b.Request(shots))
	require.NoError(t, err)
	return res
}

func TestBellState(t *testing.T) {
	res := run(t, BellState(), 2000)

	require.Len(t, res.StateVector, 4)
	assert.InDelta(t, 1/math.Sqrt2, res.StateVector[0].Real, tol)
	assert.InDelta(t, 0, res.StateVector[1].Magnitude(), tol)
	assert.InDelta(t, 0, res.StateVector[2].Magnitude(), tol)
	assert.InDelta(t, 1/math.Sqrt2, res.StateVector[3].Real, tol)

	assert.Len(t, res.Probabilities, 2)
	assert.InDelta(t, 0.5, res.Probabilities["00"], tol)
	assert.InDelta(t, 0.5, res.Probabilities["11"], tol)

	total := 0
	for label, n := range res.Measurements {
		assert.Contains(t, []string{"00", "11"}, label)
		total += n
	}
	assert.Equal(t, 2000, total)
	assert.InDelta(t, 1000, res.Measurements["00"], 150)
}

func TestSeededSamplingIsReproducible(t *testing.T) {
	a, err := New(WithSeed(42)).Run(BellState().Request(500))
	require.NoError(t, err)
	b, err := New(WithSeed(42)).Run(BellState().Request(500))
	require.NoError(t, err)
	assert.Equal(t, a.Measurements, b.Measurements)
}

func TestTeleportationSupport(t *testing.T) {
	res := run(t, Teleportation(), 0)
	assert.Empty(t, res.Measurements)
	require.Len(t, res.Probabilities, 4)
	for _, label := range []string{"000", "001", "110", "111"} {
		assert.InDelta(t, 0.25, res.Probabilities[label], tol, label)
	}
}

func TestGroverTwoQubitsFindsMark(t *testing.T) {
	b, iterations, err := Grover(2, []int{3})
	require.NoError(t, err)
	assert.Equal(t, 1, iterations)

	res := run(t, b, 100)
	assert.InDelta(t, 1, res.Probabilities["11"], tol)
	assert.Equal(t, map[string]int{"11": 100}, res.Measurements)
}

func TestGroverIterationsAndValidation(t *testing.T) {
	assert.Equal(t, 2, GroverIterations(3))
	assert.Equal(t, 3, GroverIterations(4))

	b, iterations, err := Grover(3, []int{5})
	require.NoError(t, err)
	assert.Equal(t, 2, iterations)
	// Three bits, one mark with two set bits: H×3 then one CZ per iteration.
	gates := b.Gates()
	require.Len(t, gates, 5)
	assert.Equal(t, quantum.GateCZ, gates[3].Type)
	assert.Equal(t, []int{0, 2}, gates[3].Qubits)

	_, _, err = Grover(0, nil)
	assert.ErrorIs(t, err, ErrEmptyRegister)
	_, _, err = Grover(2, []int{4})
	assert.ErrorIs(t, err, quantum.ErrQubitOutOfRange)
}

func TestQFTShape(t *testing.T) {
	b := QFT(NewBuilder(3), []int{0, 1, 2})
	gates := b.Gates()
	require.Len(t, gates, 7)

	var cps []float64
	for _, g := range gates {
		if g.Type == quantum.GateCP {
			theta, ok := g.Theta()
			require.True(t, ok)
			cps = append(cps, theta)
		}
	}
	assert.InDeltaSlice(t, []float64{math.Pi / 2, math.Pi / 4, math.Pi / 2}, cps, tol)
	last := gates[len(gates)-1]
	assert.Equal(t, quantum.GateSWAP, last.Type)
	assert.Equal(t, []int{0, 2}, last.Qubits)

	res := run(t, b, 0)
	for _, p := range res.Probabilities {
		assert.InDelta(t, 0.125, p, tol)
	}
	assert.Len(t, res.Probabilities, 8)
}

func TestQFTOf(t *testing.T) {
	b, err := QFTOf(3, 1)
	require.NoError(t, err)
	assert.Equal(t, quantum.GateX, b.Gates()[0].Type)

	res := run(t, b, 0)
	require.Len(t, res.Probabilities, 8)
	for _, p := range res.Probabilities {
		assert.InDelta(t, 0.125, p, tol)
	}
	// Unlike QFT of |000>, some amplitudes of QFT|001> turn negative.
	negative := 0
	for _, a := range res.StateVector {
		if a.Real < -tol {
			negative++
		}
	}
	assert.Positive(t, negative)

	_, err = QFTOf(0, 0)
	assert.ErrorIs(t, err, ErrEmptyRegister)
	_, err = QFTOf(2, 4)
	assert.ErrorIs(t, err, quantum.ErrQubitOutOfRange)
}

func TestShor(t *testing.T) {
	cases := []struct {
		n, qubits int
	}{{2, 3}, {3, 6}, {4, 6}, {5, 9}, {15, 12}, {16, 12}}
	for _, tc := range cases {
		assert.Equal(t, tc.qubits, ShorQubits(tc.n), "N=%d", tc.n)
	}

	b, err := Shor(3)
	require.NoError(t, err)
	require.Equal(t, 6, b.NumQubits())
	gates := b.Gates()
	for q := 0; q < 4; q++ {
		assert.Equal(t, quantum.GateH, gates[q].Type)
		assert.Equal(t, []int{q}, gates[q].Qubits)
	}
	for _, g := range gates {
		for _, q := range g.Qubits {
			assert.Less(t, q, 4, "work qubits stay untouched")
		}
	}
	// QFT of the uniform counting register collapses back to |0...0>.
	res := run(t, b, 50)
	assert.InDelta(t, 1, res.Probabilities["000000"], tol)
	assert.Equal(t, map[string]int{"000000": 50}, res.Measurements)

	_, err = Shor(1)
	assert.ErrorIs(t, err, ErrBadModulus)
	_, err = Shor(17)
	assert.ErrorIs(t, err, quantum.ErrTooManyQubits)
}

func TestSingleQubitKernels(t *testing.T) {
	cases := []struct {
		name  string
		gates []quantum.Gate
		want  []complex128
	}{
		{"x", []quantum.Gate{quantum.NewGate("X", 0)}, []complex128{0, 1}},
		{"y", []quantum.Gate{quantum.NewGate("Y", 0)}, []complex128{0, 1i}},
		{"hz", []quantum.Gate{quantum.NewGate("H", 0), quantum.NewGate("Z", 0)}, []complex128{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)}},
		{"xs", []quantum.Gate{quantum.NewGate("X", 0), quantum.NewGate("S", 0)}, []complex128{0, 1i}},
		{"xt", []quantum.Gate{quantum.NewGate("x", 0), quantum.NewGate("t", 0)}, []complex128{0, complex(math.Sqrt2/2, math.Sqrt2/2)}},
		{"rx pi", []quantum.Gate{quantum.NewGate("RX", 0).WithAngle(math.Pi)}, []complex128{0, -1i}},
		{"ry pi", []quantum.Gate{quantum.NewGate("RY", 0).WithAngle(math.Pi)}, []complex128{0, 1}},
		{"rz pi", []quantum.Gate{{Type: "RZ", Qubits: []int{0}, Params: map[string]float64{"theta": math.Pi}}}, []complex128{-1i, 0}},
		{"matrix", []quantum.Gate{{Type: "U", Qubits: []int{0}, Matrix: [][]quantum.Complex{
			{quantum.C(0, 0), quantum.C(1, 0)},
			{quantum.C(1, 0), quantum.C(0, 0)},
		}}}, []complex128{0, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := New().Run(Request{NumQubits: 1, Gates: tc.gates})
			require.NoError(t, err)
			got := res.StateVector.Complex128s()
			require.Len(t, got, len(tc.want))
			for i := range got {
				assert.InDelta(t, real(tc.want[i]), real(got[i]), tol, "re[%d]", i)
				assert.InDelta(t, imag(tc.want[i]), imag(got[i]), tol, "im[%d]", i)
			}
		})
	}
}

func TestTwoQubitKernels(t *testing.T) {
	// |01> (qubit 0 set) swapped lands on index 2.
	res, err := New().Run(NewBuilder(2).X(0).Swap(0, 1).Request(0))
	require.NoError(t, err)
	assert.InDelta(t, 1, res.Probabilities["10"], tol)

	// CP(π) on |11> equals CZ.
	res, err = New().Run(NewBuilder(2).X(0).X(1).CP(0, 1, math.Pi).Request(0))
	require.NoError(t, err)
	assert.InDelta(t, -1, res.StateVector[3].Real, tol)

	// A 4x4 CNOT payload with Qubits[0] as the control.
	cnot := [][]quantum.Complex{
		{quantum.C(1, 0), {}, {}, {}},
		{{}, quantum.C(1, 0), {}, {}},
		{{}, {}, {}, quantum.C(1, 0)},
		{{}, {}, quantum.C(1, 0), {}},
	}
	res, err = New().Run(Request{NumQubits: 2, Gates: []quantum.Gate{
		quantum.NewGate("X", 0),
		{Type: "custom", Qubits: []int{0, 1}, Matrix: cnot},
	}})
	require.NoError(t, err)
	assert.InDelta(t, 1, res.Probabilities["11"], tol)
}

func TestMeasureIsNoOp(t *testing.T) {
	res, err := New().Run(BellState().Measure().Request(0))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Probabilities["00"], tol)
}

func TestRunRejectsBadInput(t *testing.T) {
	s := New()
	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"negative", Request{NumQubits: -1}, quantum.ErrNegativeQubits},
		{"empty", Request{NumQubits: 0}, ErrEmptyRegister},
		{"too many", Request{NumQubits: quantum.MaxQubits + 1}, quantum.ErrTooManyQubits},
		{"unknown", Request{NumQubits: 1, Gates: []quantum.Gate{quantum.NewGate("FOO", 0)}}, ErrUnknownGate},
		{"range", Request{NumQubits: 2, Gates: []quantum.Gate{quantum.NewGate("H", 2)}}, quantum.ErrQubitOutOfRange},
		{"arity", Request{NumQubits: 2, Gates: []quantum.Gate{quantum.NewGate("CNOT", 0)}}, ErrGateArity},
		{"duplicate", Request{NumQubits: 2, Gates: []quantum.Gate{quantum.NewGate("CZ", 1, 1)}}, ErrDuplicateQubit},
		{"matrix", Request{NumQubits: 1, Gates: []quantum.Gate{{Type: "U", Qubits: []int{0}, Matrix: [][]quantum.Complex{{quantum.C(1, 0)}}}}}, ErrBadMatrix},
		{"zero", Request{NumQubits: 1, Gates: []quantum.Gate{{Type: "U", Qubits: []int{0}, Matrix: [][]quantum.Complex{{{}, {}}, {{}, {}}}}}}, ErrDegenerate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Run(tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestResultState(t *testing.T) {
	res := run(t, BellState(), 0)
	st := res.State()
	require.NoError(t, st.Validate())
	assert.Equal(t, 2, st.NumQubits)
}
