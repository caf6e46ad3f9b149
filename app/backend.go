package app

import (
	"context"

	"qviz/client/simclient"
	"qviz/proto"
	"qviz/sim"
)

// Backend runs simulations for the viewer.
type Backend interface {
	Simulate(ctx context.Context, req proto.SimulateRequest) (proto.SimulateResponse, error)
}

// Follower is a Backend that can also stream results produced for other clients.
type Follower interface {
	Follow(ctx context.Context, fn func(proto.StreamEvent)) error
}

var (
	_ Backend  = (*simclient.Client)(nil)
	_ Follower = (*simclient.Client)(nil)
	_ Backend  = localBackend{}
)

// localBackend runs the reference simulator in-process.
type localBackend struct {
	sim *sim.Simulator
}

func (b localBackend) Simulate(ctx context.Context, req proto.SimulateRequest) (proto.SimulateResponse, error) {
	if err := ctx.Err(); err != nil {
		return proto.SimulateResponse{}, err
	}
	res, err := b.sim.Run(sim.Request{NumQubits: req.NumQubits, Gates: req.Gates, Shots: req.Shots})
	if err != nil {
		return proto.SimulateResponse{}, err
	}
	return proto.SimulateResponse{
		StateVector:   res.StateVector,
		Measurements:  res.Measurements,
		Probabilities: res.Probabilities,
	}, nil
}
