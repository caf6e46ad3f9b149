// Package simclient talks to the simulation API: request/response calls plus a
// websocket subscription to every result the service produces.
package simclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"qviz/proto"
)

// Response is the simulator's answer; QuantumState reshapes it for the engine.
type Response = proto.SimulateResponse

// StatusError is a non-2xx reply.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("simulation API: %s", http.StatusText(e.Code))
	}
	return fmt.Sprintf("simulation API: %d: %s", e.Code, e.Message)
}

const defaultTimeout = 30 * time.Second

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMsgpack sends and accepts msgpack bodies instead of JSON.
func WithMsgpack() Option {
	return func(c *Client) { c.contentType = proto.ContentTypeMsgpack }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("client", "simapi").Logger() }
}

// Client is safe for concurrent use.
type Client struct {
	base        string
	http        *http.Client
	contentType string
	log         zerolog.Logger
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:        strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: defaultTimeout},
		contentType: proto.ContentTypeJSON,
		log:         zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Simulate runs a whole circuit.
func (c *Client) Simulate(ctx context.Context, req proto.SimulateRequest) (Response, error) {
	var out Response
	err := c.do(ctx, http.MethodPost, "/api/circuit/simulate", req, &out)
	return out, err
}

// CreateCircuit opens a server-side circuit and returns its id.
func (c *Client) CreateCircuit(ctx context.Context, numQubits int) (string, error) {
	var out proto.CreateCircuitResponse
	if err := c.do(ctx, http.MethodPost, "/api/circuit/create", proto.CreateCircuitRequest{NumQubits: numQubits}, &out); err != nil {
		return "", err
	}
	return out.CircuitID, nil
}

func (c *Client) AddGate(ctx context.Context, circuitID string, req proto.AddGateRequest) error {
	var out proto.AddGateResponse
	return c.do(ctx, http.MethodPost, "/api/circuit/"+url.PathEscape(circuitID)+"/gate", req, &out)
}

func (c *Client) SimulateCircuit(ctx context.Context, circuitID string, shots int) (Response, error) {
	var out Response
	err := c.do(ctx, http.MethodPost, "/api/circuit/"+url.PathEscape(circuitID)+"/simulate", proto.CircuitSimulateRequest{Shots: shots}, &out)
	return out, err
}

// Algorithm fetches a prebuilt circuit ("bell-state" or "teleportation") with its result.
func (c *Client) Algorithm(ctx context.Context, name string) (proto.AlgorithmResponse, error) {
	var out proto.AlgorithmResponse
	err := c.do(ctx, http.MethodGet, "/api/algorithms/"+url.PathEscape(name), nil, &out)
	return out, err
}

func (c *Client) Grover(ctx context.Context, req proto.GroverRequest) (proto.AlgorithmResponse, error) {
	var out proto.AlgorithmResponse
	err := c.do(ctx, http.MethodPost, "/api/algorithms/grover", req, &out)
	return out, err
}

func (c *Client) QFT(ctx context.Context, req proto.QFTRequest) (proto.AlgorithmResponse, error) {
	var out proto.AlgorithmResponse
	err := c.do(ctx, http.MethodPost, "/api/algorithms/qft", req, &out)
	return out, err
}

func (c *Client) Shor(ctx context.Context, req proto.ShorRequest) (proto.AlgorithmResponse, error) {
	var out proto.AlgorithmResponse
	err := c.do(ctx, http.MethodPost, "/api/algorithms/shor", req, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := proto.Marshal(c.contentType, in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", c.contentType)
	}
	req.Header.Set("Accept", c.contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode/100 != 2 {
		var e proto.ErrorResponse
		_ = proto.Unmarshal(ct, data, &e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	if err := proto.Unmarshal(ct, data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	c.log.Debug().Str("method", method).Str("path", path).Int("bytes", len(data)).Msg("API call")
	return nil
}

// Follow subscribes to the result stream and calls fn for every event until ctx
// ends or the server closes the stream. fn runs on the reading goroutine.
func (c *Client) Follow(ctx context.Context, fn func(proto.StreamEvent)) error {
	u, err := streamURL(c.base)
	if err != nil {
		return err
	}
	conn, _, err := websocket.Dial(ctx, u, &websocket.DialOptions{HTTPClient: c.http})
	if err != nil {
		return fmt.Errorf("dial stream: %w", err)
	}
	defer conn.CloseNow()
	c.log.Info().Str("url", u).Msg("Following result stream")

	for {
		var ev proto.StreamEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			return fmt.Errorf("read stream: %w", err)
		}
		fn(ev)
	}
}

func streamURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.New("base url must be http(s) or ws(s)")
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/stream"
	return u.String(), nil
}
