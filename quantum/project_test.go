package quantum

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bellState() State {
	h := 1 / math.Sqrt2
	return State{NumQubits: 2, Amplitudes: AmplitudeVector{C(h, 0), C(0, 0), C(0, 0), C(h, 0)}}
}

func TestProjectBellState(t *testing.T) {
	s := bellState()
	for q := 0; q < 2; q++ {
		o, err := Project(s, q)
		require.NoError(t, err)
		assert.InDelta(t, math.Pi/2, o.Theta, 1e-9, "qubit %d theta", q)
		assert.InDelta(t, 0, o.Phi, 1e-9, "qubit %d phi", q)
	}
}

func TestProjectBasisStates(t *testing.T) {
	zero := ZeroState(3)
	for q := 0; q < 3; q++ {
		o, err := Project(zero, q)
		require.NoError(t, err)
		assert.InDelta(t, 0, o.Theta, 1e-12)
	}

	// |101>: qubits 0 and 2 set.
	s := State{NumQubits: 3, Amplitudes: make(AmplitudeVector, 8)}
	s.Amplitudes[5] = C(1, 0)
	want := []float64{math.Pi, 0, math.Pi}
	for q, w := range want {
		o, err := Project(s, q)
		require.NoError(t, err)
		assert.InDelta(t, w, o.Theta, 1e-9, "qubit %d", q)
	}
}

func TestProjectPhase(t *testing.T) {
	h := 1 / math.Sqrt2
	// (|0> + i|1>)/√2 on one qubit: phi = π/2.
	s := State{NumQubits: 1, Amplitudes: AmplitudeVector{C(h, 0), C(0, h)}}
	o, err := Project(s, 0)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, o.Theta, 1e-9)
	assert.InDelta(t, math.Pi/2, o.Phi, 1e-9)

	// (|0> - i|1>)/√2 wraps to 3π/2.
	s.Amplitudes[1] = C(0, -h)
	o, err = Project(s, 0)
	require.NoError(t, err)
	assert.InDelta(t, 3*math.Pi/2, o.Phi, 1e-9)
}

func TestProjectZeroVector(t *testing.T) {
	s := State{NumQubits: 2, Amplitudes: make(AmplitudeVector, 4)}
	for q := 0; q < 2; q++ {
		o, err := Project(s, q)
		require.NoError(t, err)
		assert.Equal(t, Orientation{}, o)
	}

	// Cancelling amplitudes also give a zero reduced pair.
	h := 1 / math.Sqrt2
	s.Amplitudes = AmplitudeVector{C(h, 0), C(0, 0), C(-h, 0), C(0, 0)}
	o, err := Project(s, 0)
	require.NoError(t, err)
	assert.Equal(t, Orientation{}, o)
}

func TestProjectRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 1; n <= 5; n++ {
		for trial := 0; trial < 20; trial++ {
			amps := make(AmplitudeVector, 1<<n)
			for i := range amps {
				amps[i] = C(rng.NormFloat64(), rng.NormFloat64())
			}
			s := State{NumQubits: n, Amplitudes: amps.Normalized()}
			for q := 0; q < n; q++ {
				o, err := Project(s, q)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, o.Theta, 0.0)
				assert.LessOrEqual(t, o.Theta, math.Pi)
				assert.GreaterOrEqual(t, o.Phi, 0.0)
				assert.Less(t, o.Phi, 2*math.Pi)
				assert.False(t, math.IsNaN(o.Theta) || math.IsNaN(o.Phi))
			}
		}
	}
}

func TestProjectContractViolations(t *testing.T) {
	s := bellState()

	_, err := Project(s, 2)
	assert.ErrorIs(t, err, ErrQubitOutOfRange)

	_, err = Project(s, -1)
	assert.ErrorIs(t, err, ErrQubitOutOfRange)

	_, err = Project(State{NumQubits: -1}, 0)
	assert.ErrorIs(t, err, ErrNegativeQubits)

	_, err = Project(State{NumQubits: 2, Amplitudes: make(AmplitudeVector, 3)}, 0)
	assert.ErrorIs(t, err, ErrAmplitudeLength)

	_, err = Project(ZeroState(0), 0)
	assert.ErrorIs(t, err, ErrQubitOutOfRange)
}

func TestProjectAll(t *testing.T) {
	all, err := ProjectAll(bellState())
	require.NoError(t, err)
	require.Len(t, all, 2)

	empty, err := ProjectAll(ZeroState(0))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOrientationVector(t *testing.T) {
	x, y, z := Orientation{}.Vector()
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 0, y, 1e-12)
	assert.InDelta(t, 1, z, 1e-12)

	x, y, z = Orientation{Theta: math.Pi / 2, Phi: math.Pi / 2}.Vector()
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 1, y, 1e-12)
	assert.InDelta(t, 0, z, 1e-12)
}
