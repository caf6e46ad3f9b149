// Package proto defines the wire types shared by the simulation API and its clients.
// Field names follow the original service: snake_case JSON, the same keys in msgpack.
package proto

import (
	"errors"
	"fmt"

	"qviz/quantum"
)

// Defaults applied when a request leaves a field out.
const (
	DefaultNumQubits    = 2
	DefaultShots        = 1000
	DefaultGroverQubits = 3
	DefaultGroverMark   = 5 // |101>
	DefaultQFTQubits    = 3
	DefaultShorModulus  = 15
)

// ErrMissingStateVector means a response carried no amplitudes to reshape.
var ErrMissingStateVector = errors.New("response has no state_vector")

// SimulateRequest runs a whole circuit in one call.
type SimulateRequest struct {
	NumQubits int            `json:"num_qubits" msgpack:"num_qubits"`
	Gates     []quantum.Gate `json:"gates" msgpack:"gates"`
	Shots     int            `json:"shots" msgpack:"shots"`
}

// SimulateResponse is the simulator's answer.
type SimulateResponse struct {
	StateVector   quantum.AmplitudeVector `json:"state_vector" msgpack:"state_vector"`
	Measurements  map[string]int          `json:"measurements" msgpack:"measurements"`
	Probabilities map[string]float64      `json:"probabilities" msgpack:"probabilities"`
}

// QuantumState reshapes the response into a visualizer state. A numQubits of zero or
// less is inferred from the vector length.
func (r SimulateResponse) QuantumState(numQubits int) (quantum.State, error) {
	if len(r.StateVector) == 0 {
		return quantum.State{}, ErrMissingStateVector
	}
	if numQubits <= 0 {
		for 1<<numQubits < len(r.StateVector) {
			numQubits++
		}
	}
	st, err := quantum.NewState(numQubits, append(quantum.AmplitudeVector(nil), r.StateVector...))
	if err != nil {
		return quantum.State{}, fmt.Errorf("reshape response: %w", err)
	}
	return st, nil
}

// CreateCircuitRequest opens a server-side circuit.
type CreateCircuitRequest struct {
	NumQubits int `json:"num_qubits" msgpack:"num_qubits"`
}

type CreateCircuitResponse struct {
	CircuitID string `json:"circuit_id" msgpack:"circuit_id"`
	NumQubits int    `json:"num_qubits" msgpack:"num_qubits"`
}

// AddGateRequest appends one gate to a stored circuit. Angles travel in Params["theta"].
type AddGateRequest struct {
	Type   string             `json:"type" msgpack:"type"`
	Qubits []int              `json:"qubits" msgpack:"qubits"`
	Params map[string]float64 `json:"params,omitempty" msgpack:"params,omitempty"`
}

// Gate converts the request into a placed gate.
func (r AddGateRequest) Gate() quantum.Gate {
	g := quantum.NewGate(r.Type, r.Qubits...)
	if len(r.Params) > 0 {
		g.Params = make(map[string]float64, len(r.Params))
		for k, v := range r.Params {
			g.Params[k] = v
		}
	}
	return g
}

type AddGateResponse struct {
	Success bool `json:"success" msgpack:"success"`
}

// CircuitSimulateRequest runs a stored circuit. Shots of zero means DefaultShots.
type CircuitSimulateRequest struct {
	Shots int `json:"shots" msgpack:"shots"`
}

// Circuit is a gate list with its register size.
type Circuit struct {
	NumQubits int            `json:"num_qubits" msgpack:"num_qubits"`
	Gates     []quantum.Gate `json:"gates" msgpack:"gates"`
}

type GroverRequest struct {
	NumQubits    int   `json:"num_qubits" msgpack:"num_qubits"`
	MarkedStates []int `json:"marked_states" msgpack:"marked_states"`
}

// QFTRequest asks for QFT applied to the basis state |input>.
type QFTRequest struct {
	NumQubits int `json:"num_qubits" msgpack:"num_qubits"`
	Input     int `json:"input" msgpack:"input"`
}

// ShorRequest names the modulus to factor. The register grows as 3·⌈log₂N⌉.
type ShorRequest struct {
	N int `json:"N" msgpack:"N"`
}

// AlgorithmResponse pairs a prebuilt circuit with its simulation.
type AlgorithmResponse struct {
	Circuit    Circuit          `json:"circuit" msgpack:"circuit"`
	Iterations *int             `json:"iterations,omitempty" msgpack:"iterations,omitempty"`
	Result     SimulateResponse `json:"result" msgpack:"result"`
}

type ErrorResponse struct {
	Error string `json:"error" msgpack:"error"`
}

// StreamEvent is broadcast on /api/stream after every simulation.
type StreamEvent struct {
	ID        string           `json:"id" msgpack:"id"`
	Source    string           `json:"source" msgpack:"source"`
	CircuitID string           `json:"circuit_id,omitempty" msgpack:"circuit_id,omitempty"`
	Circuit   Circuit          `json:"circuit" msgpack:"circuit"`
	Result    SimulateResponse `json:"result" msgpack:"result"`
}
