package sim

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"qviz/quantum"
)

// Builder accumulates a circuit fluently. Index errors surface when the circuit runs.
type Builder struct {
	numQubits int
	gates     []quantum.Gate
}

func NewBuilder(numQubits int) *Builder {
	return &Builder{numQubits: numQubits}
}

func (b *Builder) NumQubits() int { return b.numQubits }

// Gates returns a copy of the circuit so far.
func (b *Builder) Gates() []quantum.Gate { return quantum.CloneGates(b.gates) }

// Request wraps the circuit into a simulation job.
func (b *Builder) Request(shots int) Request {
	return Request{NumQubits: b.numQubits, Gates: b.Gates(), Shots: shots}
}

// Add appends an arbitrary gate.
func (b *Builder) Add(g quantum.Gate) *Builder {
	b.gates = append(b.gates, g.Clone())
	return b
}

func (b *Builder) H(q int) *Builder { return b.Add(quantum.NewGate(quantum.GateH, q)) }
func (b *Builder) X(q int) *Builder { return b.Add(quantum.NewGate(quantum.GateX, q)) }

func (b *Builder) CNOT(control, target int) *Builder {
	return b.Add(quantum.NewGate(quantum.GateCNOT, control, target))
}

func (b *Builder) CZ(a, c int) *Builder { return b.Add(quantum.NewGate(quantum.GateCZ, a, c)) }

func (b *Builder) RX(q int, theta float64) *Builder {
	return b.Add(quantum.NewGate(quantum.GateRX, q).WithAngle(theta))
}

// CP is a controlled phase of theta on |11>.
func (b *Builder) CP(control, target int, theta float64) *Builder {
	return b.Add(quantum.NewGate(quantum.GateCP, control, target).WithAngle(theta))
}

func (b *Builder) Swap(a, c int) *Builder { return b.Add(quantum.NewGate(quantum.GateSWAP, a, c)) }

// Measure marks qubits for readout; with no arguments every qubit is measured.
func (b *Builder) Measure(qubits ...int) *Builder {
	if len(qubits) == 0 {
		qubits = make([]int, b.numQubits)
		for i := range qubits {
			qubits[i] = i
		}
	}
	return b.Add(quantum.NewGate(quantum.GateMeasure, qubits...))
}

// BellState prepares (|00> + |11>)/√2.
func BellState() *Builder {
	return NewBuilder(2).H(0).CNOT(0, 1)
}

// Teleportation is the entangle-and-Bell-measure half of the protocol on three
// qubits. Classical corrections are left to the reader of the measurements.
func Teleportation() *Builder {
	return NewBuilder(3).H(1).CNOT(1, 2).CNOT(0, 1).H(0)
}

// GroverIterations returns ⌊π/4·√(2^n)⌋.
func GroverIterations(n int) int {
	return int(math.Pi / 4 * math.Sqrt(float64(int(1)<<n)))
}

// Grover builds a search over n qubits. The oracle phase-flips marks with exactly
// two set bits via CZ; other marks are not encoded. The diffusion step is only
// emitted for two qubits, where it needs no multi-controlled gate.
func Grover(n int, marked []int) (*Builder, int, error) {
	if n < 1 {
		return nil, 0, ErrEmptyRegister
	}
	if n > quantum.MaxQubits {
		return nil, 0, fmt.Errorf("%w: %d > %d", quantum.ErrTooManyQubits, n, quantum.MaxQubits)
	}
	for _, m := range marked {
		if m < 0 || m >= 1<<n {
			return nil, 0, fmt.Errorf("marked state %d outside %d-qubit register: %w", m, n, quantum.ErrQubitOutOfRange)
		}
	}

	b := NewBuilder(n)
	for q := 0; q < n; q++ {
		b.H(q)
	}
	iterations := GroverIterations(n)
	for it := 0; it < iterations; it++ {
		groverOracle(b, marked)
		if n == 2 {
			b.H(0).H(1).X(0).X(1).CZ(0, 1).X(0).X(1).H(0).H(1)
		}
	}
	return b, iterations, nil
}

func groverOracle(b *Builder, marked []int) {
	for _, state := range marked {
		var controls []int
		for q := 0; q < b.numQubits; q++ {
			if state>>q&1 == 1 {
				controls = append(controls, q)
			}
		}
		if len(controls) == 2 {
			b.CZ(controls[0], controls[1])
		}
	}
}

// ErrBadModulus rejects a Shor modulus below 2.
var ErrBadModulus = errors.New("modulus must be at least 2")

// QFTOf prepares the n-qubit basis state |input> and applies QFT over the
// whole register, spreading it into phases.
func QFTOf(n, input int) (*Builder, error) {
	if n < 1 {
		return nil, ErrEmptyRegister
	}
	if n > quantum.MaxQubits {
		return nil, fmt.Errorf("%w: %d > %d", quantum.ErrTooManyQubits, n, quantum.MaxQubits)
	}
	if input < 0 || input >= 1<<n {
		return nil, fmt.Errorf("input state %d outside %d-qubit register: %w", input, n, quantum.ErrQubitOutOfRange)
	}
	b := NewBuilder(n)
	qubits := make([]int, n)
	for q := range qubits {
		qubits[q] = q
		if input>>q&1 == 1 {
			b.X(q)
		}
	}
	return QFT(b, qubits), nil
}

// ShorQubits returns the register size Shor uses for modulus N: 2n counting
// qubits plus n work qubits, with n = ⌈log₂N⌉.
func ShorQubits(N int) int {
	if N < 2 {
		return 0
	}
	return 3 * bits.Len(uint(N-1))
}

// Shor builds the order-finding skeleton for modulus N: H on the 2n
// counting qubits then QFT over them. Modular exponentiation is not
// encoded, so the counting register returns to |0...0>.
func Shor(N int) (*Builder, error) {
	if N < 2 {
		return nil, fmt.Errorf("%w: %d", ErrBadModulus, N)
	}
	total := ShorQubits(N)
	if total > quantum.MaxQubits {
		return nil, fmt.Errorf("%w: modulus %d needs %d > %d", quantum.ErrTooManyQubits, N, total, quantum.MaxQubits)
	}
	counting := make([]int, 2*total/3)
	b := NewBuilder(total)
	for q := range counting {
		counting[q] = q
		b.H(q)
	}
	return QFT(b, counting), nil
}

// QFT appends the quantum Fourier transform over qubits, including the final
// bit-reversal swaps.
func QFT(b *Builder, qubits []int) *Builder {
	n := len(qubits)
	for j := 0; j < n; j++ {
		b.H(qubits[j])
		for k := j + 1; k < n; k++ {
			b.CP(qubits[k], qubits[j], 2*math.Pi/float64(int(1)<<(k-j+1)))
		}
	}
	for i := 0; i < n/2; i++ {
		b.Swap(qubits[i], qubits[n-1-i])
	}
	return b
}
