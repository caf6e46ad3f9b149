package simapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"qviz/proto"
	"qviz/quantum"
	"qviz/sim"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, map[string]any{
		"status":      "ok",
		"circuits":    s.store.len(),
		"subscribers": s.hub.len(),
	})
}

// handleCreateCircuit handles POST /api/circuit/create
func (s *Server) handleCreateCircuit(w http.ResponseWriter, r *http.Request) {
	var req proto.CreateCircuitRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.NumQubits == 0 {
		req.NumQubits = proto.DefaultNumQubits
	}
	if req.NumQubits < 0 || req.NumQubits > quantum.MaxQubits {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("num_qubits must be in [1, %d]", quantum.MaxQubits))
		return
	}

	id := s.store.create(req.NumQubits)
	s.log.Debug().Str("circuit_id", id).Int("qubits", req.NumQubits).Msg("Circuit created")
	s.write(w, r, http.StatusOK, proto.CreateCircuitResponse{CircuitID: id, NumQubits: req.NumQubits})
}

// handleAddGate handles POST /api/circuit/{circuitID}/gate
func (s *Server) handleAddGate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "circuitID")
	var req proto.AddGateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.store.addGate(id, req.Gate()); err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}
	s.write(w, r, http.StatusOK, proto.AddGateResponse{Success: true})
}

// handleSimulateCircuit handles POST /api/circuit/{circuitID}/simulate
func (s *Server) handleSimulateCircuit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "circuitID")
	circuit, ok := s.store.get(id)
	if !ok {
		s.fail(w, r, http.StatusNotFound, errCircuitNotFound)
		return
	}
	var req proto.CircuitSimulateRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.simulate("circuit", id, circuit, req.Shots)
	if err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}
	s.write(w, r, http.StatusOK, res)
}

// handleSimulate handles POST /api/circuit/simulate
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req proto.SimulateRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.simulate("simulate", "", proto.Circuit{NumQubits: req.NumQubits, Gates: req.Gates}, req.Shots)
	if err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}
	s.write(w, r, http.StatusOK, res)
}

// handleBellState handles GET /api/algorithms/bell-state
func (s *Server) handleBellState(w http.ResponseWriter, r *http.Request) {
	s.runAlgorithm(w, r, "bell-state", sim.BellState().Measure(), nil)
}

// handleTeleportation handles GET /api/algorithms/teleportation
func (s *Server) handleTeleportation(w http.ResponseWriter, r *http.Request) {
	s.runAlgorithm(w, r, "teleportation", sim.Teleportation().Measure(), nil)
}

// handleGrover handles POST /api/algorithms/grover
func (s *Server) handleGrover(w http.ResponseWriter, r *http.Request) {
	var req proto.GroverRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.NumQubits == 0 {
		req.NumQubits = proto.DefaultGroverQubits
	}
	if req.MarkedStates == nil {
		req.MarkedStates = []int{proto.DefaultGroverMark}
	}

	b, iterations, err := sim.Grover(req.NumQubits, req.MarkedStates)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	s.runAlgorithm(w, r, "grover", b.Measure(), &iterations)
}

// handleQFT handles POST /api/algorithms/qft
func (s *Server) handleQFT(w http.ResponseWriter, r *http.Request) {
	var req proto.QFTRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.NumQubits == 0 {
		req.NumQubits = proto.DefaultQFTQubits
	}
	b, err := sim.QFTOf(req.NumQubits, req.Input)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	s.runAlgorithm(w, r, "qft", b.Measure(), nil)
}

// handleShor handles POST /api/algorithms/shor
func (s *Server) handleShor(w http.ResponseWriter, r *http.Request) {
	var req proto.ShorRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.N == 0 {
		req.N = proto.DefaultShorModulus
	}
	b, err := sim.Shor(req.N)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	s.runAlgorithm(w, r, "shor", b.Measure(), nil)
}

func (s *Server) runAlgorithm(w http.ResponseWriter, r *http.Request, name string, b *sim.Builder, iterations *int) {
	circuit := proto.Circuit{NumQubits: b.NumQubits(), Gates: b.Gates()}
	res, err := s.simulate(name, "", circuit, 0)
	if err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}
	s.write(w, r, http.StatusOK, proto.AlgorithmResponse{Circuit: circuit, Iterations: iterations, Result: res})
}

// simulate runs a circuit and broadcasts the result. Shots of zero means the default.
func (s *Server) simulate(source, circuitID string, c proto.Circuit, shots int) (proto.SimulateResponse, error) {
	if shots < 0 {
		return proto.SimulateResponse{}, fmt.Errorf("%w: shots %d", errBadRequest, shots)
	}
	if shots == 0 {
		shots = proto.DefaultShots
	}
	out, err := s.sim.Run(sim.Request{NumQubits: c.NumQubits, Gates: c.Gates, Shots: shots})
	if err != nil {
		return proto.SimulateResponse{}, err
	}
	res := proto.SimulateResponse{
		StateVector:   out.StateVector,
		Measurements:  out.Measurements,
		Probabilities: out.Probabilities,
	}
	s.hub.broadcast(proto.StreamEvent{
		ID:        uuid.NewString(),
		Source:    source,
		CircuitID: circuitID,
		Circuit:   c,
		Result:    res,
	})
	return res, nil
}

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, errCircuitNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, sim.ErrUnknownGate),
		errors.Is(err, sim.ErrGateArity),
		errors.Is(err, sim.ErrDuplicateQubit),
		errors.Is(err, sim.ErrBadMatrix),
		errors.Is(err, sim.ErrEmptyRegister),
		errors.Is(err, sim.ErrDegenerate),
		errors.Is(err, quantum.ErrNegativeQubits),
		errors.Is(err, quantum.ErrTooManyQubits),
		errors.Is(err, quantum.ErrQubitOutOfRange):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// decode reads an optional body in JSON or msgpack. An empty body leaves v untouched.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := proto.Unmarshal(r.Header.Get("Content-Type"), body, v); err != nil {
		s.log.Error().Err(err).Msg("Failed to decode request body")
		s.fail(w, r, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	s.write(w, r, status, proto.ErrorResponse{Error: err.Error()})
}

// write encodes v as msgpack when the client asks for it, JSON otherwise.
func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, v any) {
	ct := proto.Negotiate(r.Header.Get("Accept"))
	data, err := proto.Marshal(ct, v)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to write response")
	}
}
