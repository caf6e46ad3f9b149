package quantum

import (
	"errors"
	"fmt"
)

// MaxQubits bounds the register size the visualizer lays out.
const MaxQubits = 12

var (
	ErrNegativeQubits  = errors.New("negative qubit count")
	ErrTooManyQubits   = errors.New("qubit count exceeds limit")
	ErrAmplitudeLength = errors.New("amplitude vector length does not match qubit count")
	ErrQubitOutOfRange = errors.New("qubit index out of range")
)

// State is a joint N-qubit state handed to the visualizer.
type State struct {
	Amplitudes AmplitudeVector `json:"amplitudes" msgpack:"amplitudes"`
	NumQubits  int             `json:"numQubits" msgpack:"numQubits"`
}

// NewState returns a state and validates it.
func NewState(numQubits int, amps AmplitudeVector) (State, error) {
	s := State{Amplitudes: amps, NumQubits: numQubits}
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	return s, nil
}

// ZeroState returns |0...0>.
func ZeroState(numQubits int) State {
	if numQubits < 0 {
		numQubits = 0
	}
	amps := make(AmplitudeVector, 1<<numQubits)
	amps[0] = C(1, 0)
	return State{Amplitudes: amps, NumQubits: numQubits}
}

// Dim returns 2^NumQubits.
func (s State) Dim() int {
	if s.NumQubits < 0 {
		return 0
	}
	return 1 << s.NumQubits
}

// Validate checks the shape invariants. Normalisation is not checked.
func (s State) Validate() error {
	if s.NumQubits < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeQubits, s.NumQubits)
	}
	if s.NumQubits > MaxQubits {
		return fmt.Errorf("%w: %d > %d", ErrTooManyQubits, s.NumQubits, MaxQubits)
	}
	if len(s.Amplitudes) != s.Dim() {
		return fmt.Errorf("%w: got %d, want %d", ErrAmplitudeLength, len(s.Amplitudes), s.Dim())
	}
	return nil
}

// Clone returns a deep copy.
func (s State) Clone() State {
	return State{Amplitudes: append(AmplitudeVector(nil), s.Amplitudes...), NumQubits: s.NumQubits}
}

// BasisLabel renders index as a fixed-width binary string, most significant qubit first.
func BasisLabel(index, numQubits int) string {
	if numQubits <= 0 {
		return ""
	}
	return fmt.Sprintf("%0*b", numQubits, index)
}
