// Package sim is the reference state-vector simulator behind the simulation API.
// It applies a gate list to |0...0> and samples measurement shots.
package sim

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"qviz/quantum"
)

var (
	ErrUnknownGate    = errors.New("unknown gate")
	ErrGateArity      = errors.New("wrong number of qubits for gate")
	ErrDuplicateQubit = errors.New("gate uses the same qubit twice")
	ErrBadMatrix      = errors.New("gate matrix has the wrong shape")
	ErrEmptyRegister  = errors.New("register needs at least one qubit")
	ErrDegenerate     = errors.New("state vector has zero norm")
)

// probEpsilon hides basis states that only carry rounding noise.
const probEpsilon = 1e-12

// Request is one simulation job.
type Request struct {
	NumQubits int
	Gates     []quantum.Gate
	Shots     int
}

// Result is the outcome of Run. Map keys are basis labels, most significant qubit first.
type Result struct {
	NumQubits     int
	StateVector   quantum.AmplitudeVector
	Measurements  map[string]int
	Probabilities map[string]float64
}

// State returns the final vector as a visualizer state.
func (r Result) State() quantum.State {
	return quantum.State{Amplitudes: append(quantum.AmplitudeVector(nil), r.StateVector...), NumQubits: r.NumQubits}
}

type Option func(*Simulator)

// WithSeed makes shot sampling reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) { s.src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15) }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

// Simulator is safe for concurrent use.
type Simulator struct {
	log zerolog.Logger

	mu  sync.Mutex
	src rand.Source
}

func New(opts ...Option) *Simulator {
	seed := uint64(time.Now().UnixNano())
	s := &Simulator{
		log: zerolog.Nop(),
		src: rand.NewPCG(seed, seed>>1|1),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run validates the request, evolves the register and samples req.Shots measurements.
func (s *Simulator) Run(req Request) (Result, error) {
	if req.NumQubits < 0 {
		return Result{}, fmt.Errorf("%w: %d", quantum.ErrNegativeQubits, req.NumQubits)
	}
	if req.NumQubits == 0 {
		return Result{}, ErrEmptyRegister
	}
	if req.NumQubits > quantum.MaxQubits {
		return Result{}, fmt.Errorf("%w: %d > %d", quantum.ErrTooManyQubits, req.NumQubits, quantum.MaxQubits)
	}

	reg := newRegister(req.NumQubits)
	for i, g := range req.Gates {
		if err := reg.apply(g); err != nil {
			return Result{}, fmt.Errorf("gate %d (%s): %w", i, g.Type, err)
		}
	}

	probs := reg.probabilities()
	total := floats.Sum(probs)
	if total <= 0 || math.IsNaN(total) {
		return Result{}, ErrDegenerate
	}
	floats.Scale(1/total, probs)

	res := Result{
		NumQubits:     req.NumQubits,
		StateVector:   quantum.FromComplex128s(reg.amps),
		Measurements:  map[string]int{},
		Probabilities: make(map[string]float64),
	}
	for i, p := range probs {
		if p > probEpsilon {
			res.Probabilities[quantum.BasisLabel(i, req.NumQubits)] = p
		}
	}
	if req.Shots > 0 {
		s.sample(probs, req.NumQubits, req.Shots, res.Measurements)
	}

	s.log.Debug().
		Int("qubits", req.NumQubits).
		Int("gates", len(req.Gates)).
		Int("shots", req.Shots).
		Int("outcomes", len(res.Measurements)).
		Msg("simulated")
	return res, nil
}

func (s *Simulator) sample(probs []float64, n, shots int, into map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dist := distuv.NewCategorical(probs, s.src)
	for i := 0; i < shots; i++ {
		into[quantum.BasisLabel(int(dist.Rand()), n)]++
	}
}

// register is a dense state vector. Bit k of an index is qubit k.
type register struct {
	n    int
	amps []complex128
}

func newRegister(n int) *register {
	amps := make([]complex128, 1<<n)
	amps[0] = 1
	return &register{n: n, amps: amps}
}

func (r *register) probabilities() []float64 {
	out := make([]float64, len(r.amps))
	for i, a := range r.amps {
		out[i] = real(a * cmplx.Conj(a))
	}
	return out
}

type matrix2 [2][2]complex128

var (
	invSqrt2 = complex(1/math.Sqrt2, 0)

	matH = matrix2{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}
	matX = matrix2{{0, 1}, {1, 0}}
	matY = matrix2{{0, -1i}, {1i, 0}}
)

func rx(theta float64) matrix2 {
	c, s := complex(math.Cos(theta/2), 0), complex(0, -math.Sin(theta/2))
	return matrix2{{c, s}, {s, c}}
}

func ry(theta float64) matrix2 {
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	return matrix2{{c, -s}, {s, c}}
}

var arity = map[string]int{
	quantum.GateH: 1, quantum.GateX: 1, quantum.GateY: 1, quantum.GateZ: 1,
	quantum.GateS: 1, quantum.GateT: 1,
	quantum.GateRX: 1, quantum.GateRY: 1, quantum.GateRZ: 1,
	quantum.GateCNOT: 2, quantum.GateCX: 2, quantum.GateCZ: 2, quantum.GateCP: 2, quantum.GateSWAP: 2,
	quantum.GateMeasure: -1,
}

// ValidateGate reports whether g can run on a register of numQubits without
// touching any state.
func ValidateGate(numQubits int, g quantum.Gate) error {
	return (&register{n: numQubits}).validate(g)
}

func (r *register) validate(g quantum.Gate) error {
	if want, ok := arity[strings.ToUpper(g.Type)]; ok {
		return r.checkQubits(g.Qubits, want)
	}
	if g.Matrix == nil {
		return fmt.Errorf("%w: %q", ErrUnknownGate, g.Type)
	}
	dim := len(g.Matrix)
	if dim != 2 && dim != 4 {
		return fmt.Errorf("%w: %d rows", ErrBadMatrix, dim)
	}
	for _, row := range g.Matrix {
		if len(row) != dim {
			return fmt.Errorf("%w: row of %d, want %d", ErrBadMatrix, len(row), dim)
		}
	}
	return r.checkQubits(g.Qubits, dim/2)
}

func (r *register) apply(g quantum.Gate) error {
	if err := r.validate(g); err != nil {
		return err
	}
	theta, _ := g.Theta()
	q := g.Anchor()
	switch strings.ToUpper(g.Type) {
	case quantum.GateMeasure:
		// Sampling happens once at the end.
	case quantum.GateH:
		r.single(q, matH)
	case quantum.GateX:
		r.single(q, matX)
	case quantum.GateY:
		r.single(q, matY)
	case quantum.GateZ:
		r.phase(q, -1)
	case quantum.GateS:
		r.phase(q, 1i)
	case quantum.GateT:
		r.phase(q, cmplx.Exp(complex(0, math.Pi/4)))
	case quantum.GateRX:
		r.single(q, rx(theta))
	case quantum.GateRY:
		r.single(q, ry(theta))
	case quantum.GateRZ:
		half := cmplx.Exp(complex(0, theta/2))
		r.diag(q, cmplx.Conj(half), half)
	case quantum.GateCNOT, quantum.GateCX:
		r.cnot(g.Qubits[0], g.Qubits[1])
	case quantum.GateCZ:
		r.controlledPhase(g.Qubits[0], g.Qubits[1], -1)
	case quantum.GateCP:
		r.controlledPhase(g.Qubits[0], g.Qubits[1], cmplx.Exp(complex(0, theta)))
	case quantum.GateSWAP:
		r.swap(g.Qubits[0], g.Qubits[1])
	default:
		r.applyMatrix(g)
	}
	return nil
}

// checkQubits validates indices; want < 0 accepts any count.
func (r *register) checkQubits(qs []int, want int) error {
	if want >= 0 && len(qs) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrGateArity, len(qs), want)
	}
	seen := 0
	for _, q := range qs {
		if q < 0 || q >= r.n {
			return fmt.Errorf("%w: %d not in [0, %d)", quantum.ErrQubitOutOfRange, q, r.n)
		}
		if seen&(1<<q) != 0 {
			return fmt.Errorf("%w: %d", ErrDuplicateQubit, q)
		}
		seen |= 1 << q
	}
	return nil
}

// applyMatrix handles an untagged unitary: 2x2 on one qubit or 4x4 on two.
// For two qubits, Qubits[0] is the high bit of the matrix index.
func (r *register) applyMatrix(g quantum.Gate) {
	if len(g.Matrix) == 2 {
		var m matrix2
		for i := range m {
			for j := range m[i] {
				m[i][j] = g.Matrix[i][j].Complex128()
			}
		}
		r.single(g.Qubits[0], m)
		return
	}

	hi, lo := 1<<g.Qubits[0], 1<<g.Qubits[1]
	var in, out [4]complex128
	for i := range r.amps {
		if i&hi != 0 || i&lo != 0 {
			continue
		}
		idx := [4]int{i, i | lo, i | hi, i | hi | lo}
		for k, j := range idx {
			in[k] = r.amps[j]
		}
		for row := 0; row < 4; row++ {
			var acc complex128
			for col := 0; col < 4; col++ {
				acc += g.Matrix[row][col].Complex128() * in[col]
			}
			out[row] = acc
		}
		for k, j := range idx {
			r.amps[j] = out[k]
		}
	}
}

func (r *register) single(q int, m matrix2) {
	bit := 1 << q
	for i := range r.amps {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := r.amps[i], r.amps[j]
		r.amps[i] = m[0][0]*a0 + m[0][1]*a1
		r.amps[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

func (r *register) diag(q int, d0, d1 complex128) {
	bit := 1 << q
	for i := range r.amps {
		if i&bit == 0 {
			r.amps[i] *= d0
		} else {
			r.amps[i] *= d1
		}
	}
}

func (r *register) phase(q int, p complex128) { r.diag(q, 1, p) }

func (r *register) cnot(control, target int) {
	cBit, tBit := 1<<control, 1<<target
	for i := range r.amps {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			r.amps[i], r.amps[j] = r.amps[j], r.amps[i]
		}
	}
}

func (r *register) controlledPhase(a, b int, p complex128) {
	mask := 1<<a | 1<<b
	for i := range r.amps {
		if i&mask == mask {
			r.amps[i] *= p
		}
	}
}

func (r *register) swap(a, b int) {
	aBit, bBit := 1<<a, 1<<b
	for i := range r.amps {
		if i&aBit != 0 && i&bBit == 0 {
			j := i&^aBit | bBit
			r.amps[i], r.amps[j] = r.amps[j], r.amps[i]
		}
	}
}
