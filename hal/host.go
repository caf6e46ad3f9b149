package hal

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// HostConfig sizes the host framebuffer and routes host log lines.
type HostConfig struct {
	Width  int
	Height int
	Title  string
	Log    zerolog.Logger
}

func (c HostConfig) withDefaults() HostConfig {
	if c.Width <= 0 {
		c.Width = 480
	}
	if c.Height <= 0 {
		c.Height = 320
	}
	if c.Title == "" {
		c.Title = "qviz"
	}
	return c
}

// hostHAL is every hal interface at once; the runners differ only in how
// they feed kbd and ptr and show fb.
type hostHAL struct {
	log zerolog.Logger
	fb  *hostFramebuffer
	kbd *hostKeyboard
	ptr *hostPointer
}

// New builds a host HAL without a runner, for tests and embedding.
func New(cfg HostConfig) HAL {
	return newHost(cfg)
}

func newHost(cfg HostConfig) *hostHAL {
	cfg = cfg.withDefaults()
	return &hostHAL{
		log: cfg.Log,
		fb:  newHostFramebuffer(cfg.Width, cfg.Height),
		kbd: newHostKeyboard(),
		ptr: newHostPointer(),
	}
}

func (h *hostHAL) Logger() Logger           { return h }
func (h *hostHAL) Display() Display         { return h }
func (h *hostHAL) Input() Input             { return h }
func (h *hostHAL) Framebuffer() Framebuffer { return h.fb }
func (h *hostHAL) Keyboard() Keyboard       { return h.kbd }
func (h *hostHAL) Pointer() Pointer         { return h.ptr }

// WriteLineString forwards app log lines (the panic report) to zerolog.
func (h *hostHAL) WriteLineString(s string) {
	h.log.Info().Msg(strings.TrimRight(s, "\n"))
}

func (h *hostHAL) WriteLineBytes(b []byte) { h.WriteLineString(string(b)) }

// eventQueue is a bounded event channel. emit drops events when the app
// falls behind rather than stalling the host loop.
type eventQueue[T any] struct {
	ch chan T
}

func newEventQueue[T any]() eventQueue[T] {
	return eventQueue[T]{ch: make(chan T, 64)}
}

func (q eventQueue[T]) Events() <-chan T { return q.ch }

func (q eventQueue[T]) emit(ev T) {
	select {
	case q.ch <- ev:
	default:
	}
}

type hostKeyboard struct{ eventQueue[KeyEvent] }

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{newEventQueue[KeyEvent]()}
}

type hostPointer struct{ eventQueue[PointerEvent] }

func newHostPointer() *hostPointer {
	return &hostPointer{newEventQueue[PointerEvent]()}
}

// runStep runs one frame. ErrStop ends the loop without an error.
func runStep(step func() error) (stop bool, err error) {
	if step == nil {
		return false, nil
	}
	switch err := step(); {
	case err == nil:
		return false, nil
	case errors.Is(err, ErrStop):
		return true, nil
	default:
		return true, err
	}
}
