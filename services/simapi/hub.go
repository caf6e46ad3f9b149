package simapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"qviz/proto"
)

const (
	streamBuffer = 16
	writeWait    = 5 * time.Second
)

type subscriber struct {
	msgs chan []byte
	done chan struct{}
}

// hub fans simulation results out to websocket clients. Slow clients drop events.
type hub struct {
	log  zerolog.Logger
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func newHub(log zerolog.Logger) *hub {
	return &hub{
		log:  log.With().Str("handler", "stream").Logger(),
		subs: make(map[*subscriber]struct{}),
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *hub) subscribe() *subscriber {
	sub := &subscriber{msgs: make(chan []byte, streamBuffer), done: make(chan struct{})}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

func (h *hub) broadcast(ev proto.StreamEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode stream event")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.msgs <- data:
		default:
			h.log.Warn().Str("event_id", ev.ID).Msg("Subscriber buffer full, dropping event")
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		close(sub.done)
		delete(h.subs, sub)
	}
}

// ServeHTTP handles GET /api/stream.
func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to accept websocket")
		return
	}
	defer conn.CloseNow()

	sub := h.subscribe()
	defer h.unsubscribe(sub)
	h.log.Info().Str("remote", r.RemoteAddr).Msg("Client connected to result stream")

	// Clients never send; CloseRead answers control frames and cancels ctx on close.
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			h.log.Debug().Msg("Stream client went away")
			return
		case <-sub.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case msg := <-sub.msgs:
			if err := write(ctx, conn, msg); err != nil {
				h.log.Warn().Err(err).Msg("Failed to write stream event")
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}
