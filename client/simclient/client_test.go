package simclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qviz/proto"
	"qviz/services/simapi"
	"qviz/sim"
)

func newAPI(t *testing.T) (*simapi.Server, string) {
	t.Helper()
	s := simapi.New(simapi.Config{
		Log:       zerolog.Nop(),
		Simulator: sim.New(sim.WithSeed(3)),
		DevMode:   true,
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts.URL
}

func TestSimulateJSONAndMsgpack(t *testing.T) {
	_, url := newAPI(t)
	req := proto.SimulateRequest{NumQubits: 2, Gates: sim.BellState().Gates(), Shots: 64}

	for name, c := range map[string]*Client{
		"json":    New(url),
		"msgpack": New(url+"/", WithMsgpack()),
	} {
		t.Run(name, func(t *testing.T) {
			res, err := c.Simulate(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, 64, res.Measurements["00"]+res.Measurements["11"])

			st, err := res.QuantumState(2)
			require.NoError(t, err)
			assert.Len(t, st.Amplitudes, 4)
		})
	}
}

func TestStoredCircuitCalls(t *testing.T) {
	_, url := newAPI(t)
	c := New(url)
	ctx := context.Background()

	id, err := c.CreateCircuit(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, c.AddGate(ctx, id, proto.AddGateRequest{Type: "RX", Qubits: []int{0}, Params: map[string]float64{"theta": 3.141592653589793}}))

	res, err := c.SimulateCircuit(ctx, id, 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"1": 10}, res.Measurements)

	err = c.AddGate(ctx, "nope", proto.AddGateRequest{Type: "H", Qubits: []int{0}})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "circuit not found", se.Message)
}

func TestAlgorithms(t *testing.T) {
	_, url := newAPI(t)
	c := New(url)

	bell, err := c.Algorithm(context.Background(), "bell-state")
	require.NoError(t, err)
	assert.Equal(t, 2, bell.Circuit.NumQubits)

	g, err := c.Grover(context.Background(), proto.GroverRequest{NumQubits: 2, MarkedStates: []int{3}})
	require.NoError(t, err)
	assert.InDelta(t, 1, g.Result.Probabilities["11"], 1e-9)

	q, err := c.QFT(context.Background(), proto.QFTRequest{NumQubits: 2, Input: 1})
	require.NoError(t, err)
	assert.Len(t, q.Result.Probabilities, 4)

	sh, err := c.Shor(context.Background(), proto.ShorRequest{N: 3})
	require.NoError(t, err)
	assert.Equal(t, 6, sh.Circuit.NumQubits)
}

func TestFollowReceivesEvents(t *testing.T) {
	api, url := newAPI(t)
	c := New(url)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan proto.StreamEvent, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Follow(ctx, func(ev proto.StreamEvent) {
			events <- ev
			cancel()
		})
	}()
	require.Eventually(t, func() bool { return api.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err := c.Algorithm(context.Background(), "teleportation")
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, "teleportation", ev.Source)
		st, err := ev.Result.QuantumState(ev.Circuit.NumQubits)
		require.NoError(t, err)
		assert.Equal(t, 3, st.NumQubits)
	case <-time.After(5 * time.Second):
		t.Fatal("no stream event")
	}
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestFollowEndsOnShutdown(t *testing.T) {
	api, url := newAPI(t)
	c := New(url)

	done := make(chan error, 1)
	go func() { done <- c.Follow(context.Background(), func(proto.StreamEvent) {}) }()
	require.Eventually(t, func() bool { return api.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = api.Shutdown(ctx)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Follow did not return")
	}
}

func TestStreamURL(t *testing.T) {
	u, err := streamURL("https://sim.example/base/")
	require.NoError(t, err)
	assert.Equal(t, "wss://sim.example/base/api/stream", u)

	_, err = streamURL("ftp://x")
	assert.Error(t, err)
}

type countingTransport struct {
	n int
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.n++
	return http.DefaultTransport.RoundTrip(r)
}

func TestWithHTTPClient(t *testing.T) {
	_, url := newAPI(t)
	rt := &countingTransport{}
	c := New(url, WithHTTPClient(&http.Client{Transport: rt, Timeout: 5 * time.Second}))

	_, err := c.Simulate(context.Background(), proto.SimulateRequest{NumQubits: 1, Gates: sim.NewBuilder(1).H(0).Gates()})
	require.NoError(t, err)
	assert.Equal(t, 1, rt.n)
}
