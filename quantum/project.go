package quantum

import (
	"fmt"
	"math"
)

// Orientation locates a single-qubit state on the Bloch sphere.
// Theta is in [0, π], Phi in [0, 2π).
type Orientation struct {
	Theta float64
	Phi   float64
}

// Vector returns the unit direction (sinθcosφ, sinθsinφ, cosθ).
func (o Orientation) Vector() (x, y, z float64) {
	st, ct := math.Sincos(o.Theta)
	sp, cp := math.Sincos(o.Phi)
	return st * cp, st * sp, ct
}

// Project reduces the joint state to a Bloch orientation for one qubit.
//
// The amplitudes whose index has the qubit's bit clear are summed into α, the
// rest into β. This is a display approximation, not a partial trace: for
// entangled states the result does not match the reduced density matrix.
// A zero (α, β) pair yields the zero orientation.
func Project(s State, qubit int) (Orientation, error) {
	if err := s.Validate(); err != nil {
		return Orientation{}, err
	}
	if qubit < 0 || qubit >= s.NumQubits {
		return Orientation{}, fmt.Errorf("%w: %d not in [0, %d)", ErrQubitOutOfRange, qubit, s.NumQubits)
	}
	return project(s.Amplitudes, qubit), nil
}

// ProjectAll projects every qubit of the state.
func ProjectAll(s State) ([]Orientation, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out := make([]Orientation, s.NumQubits)
	for q := range out {
		out[q] = project(s.Amplitudes, q)
	}
	return out, nil
}

func project(amps AmplitudeVector, qubit int) Orientation {
	bit := 1 << qubit
	var alpha, beta Complex
	for i, a := range amps {
		if i&bit == 0 {
			alpha = alpha.Add(a)
		} else {
			beta = beta.Add(a)
		}
	}

	norm := math.Hypot(alpha.Magnitude(), beta.Magnitude())
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return Orientation{}
	}
	alpha = alpha.Scale(1 / norm)
	beta = beta.Scale(1 / norm)

	a := math.Min(1, math.Max(0, alpha.Magnitude()))
	theta := 2 * math.Acos(a)
	phi := WrapPhase(beta.Phase() - alpha.Phase())
	if theta < 0 {
		theta = 0
	}
	if theta > math.Pi {
		theta = math.Pi
	}
	return Orientation{Theta: theta, Phi: phi}
}
