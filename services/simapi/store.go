package simapi

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"qviz/proto"
	"qviz/quantum"
	"qviz/sim"
)

var errCircuitNotFound = errors.New("circuit not found")

// store keeps circuits in memory for the life of the process.
type store struct {
	mu       sync.RWMutex
	circuits map[string]*sim.Builder
}

func newStore() *store {
	return &store{circuits: make(map[string]*sim.Builder)}
}

func (s *store) create(numQubits int) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.circuits[id] = sim.NewBuilder(numQubits)
	s.mu.Unlock()
	return id
}

func (s *store) addGate(id string, g quantum.Gate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.circuits[id]
	if !ok {
		return errCircuitNotFound
	}
	if err := sim.ValidateGate(b.NumQubits(), g); err != nil {
		return err
	}
	b.Add(g)
	return nil
}

func (s *store) get(id string) (proto.Circuit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.circuits[id]
	if !ok {
		return proto.Circuit{}, false
	}
	return proto.Circuit{NumQubits: b.NumQubits(), Gates: b.Gates()}, true
}

func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.circuits)
}
