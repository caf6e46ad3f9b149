package viz

import (
	"errors"
	"sync"
	"time"

	"qviz/quantum"
)

// DefaultAnimationMs is the gate animation length used when none is given.
const DefaultAnimationMs = 1000

// ErrCanceled is reported by a Signal that was canceled before its delay
// elapsed.
var ErrCanceled = errors.New("viz: animation canceled")

// Signal is the completion of one timed gate animation. It resolves exactly
// once, either when its delay elapses or when it is canceled. A Signal holds
// no reference to the scene.
type Signal struct {
	gate     quantum.Gate
	duration time.Duration

	once     sync.Once
	done     chan struct{}
	mu       sync.Mutex
	canceled bool
	timer    Timer
	onDone   func(*Signal)
}

func newSignal(g quantum.Gate, d time.Duration, onDone func(*Signal)) *Signal {
	return &Signal{gate: g, duration: d, done: make(chan struct{}), onDone: onDone}
}

// Done is closed when the signal resolves.
func (s *Signal) Done() <-chan struct{} { return s.done }

// Gate returns the gate the signal was issued for.
func (s *Signal) Gate() quantum.Gate { return s.gate }

// Duration returns the scheduled delay.
func (s *Signal) Duration() time.Duration { return s.duration }

// Resolved reports whether Done is closed.
func (s *Signal) Resolved() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Canceled reports whether the signal resolved through Cancel.
func (s *Signal) Canceled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}

// Err returns ErrCanceled for a canceled signal and nil otherwise.
func (s *Signal) Err() error {
	if s.Canceled() {
		return ErrCanceled
	}
	return nil
}

// Cancel resolves the signal as canceled. It reports false if the signal had
// already resolved.
func (s *Signal) Cancel() bool {
	return s.resolve(true)
}

func (s *Signal) resolve(cancel bool) bool {
	won := false
	s.once.Do(func() {
		won = true
		s.mu.Lock()
		s.canceled = cancel
		t := s.timer
		s.mu.Unlock()
		if cancel && t != nil {
			t.Stop()
		}
		close(s.done)
		if s.onDone != nil {
			s.onDone(s)
		}
	})
	return won
}

// Sequencer issues timed completion signals and tracks the ones in flight.
type Sequencer struct {
	clock Clock

	mu       sync.Mutex
	inflight map[*Signal]struct{}
}

// NewSequencer returns a sequencer on clock. A nil clock uses RealClock.
func NewSequencer(clock Clock) *Sequencer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Sequencer{clock: clock, inflight: make(map[*Signal]struct{})}
}

// Play returns a signal that resolves after durationMs. Non-positive
// durations resolve before Play returns.
func (q *Sequencer) Play(g quantum.Gate, durationMs int) *Signal {
	if durationMs < 0 {
		durationMs = 0
	}
	d := time.Duration(durationMs) * time.Millisecond
	s := newSignal(g.Clone(), d, q.forget)
	if d == 0 {
		s.resolve(false)
		return s
	}

	q.mu.Lock()
	q.inflight[s] = struct{}{}
	q.mu.Unlock()

	t := q.clock.AfterFunc(d, func() { s.resolve(false) })
	s.mu.Lock()
	s.timer = t
	s.mu.Unlock()
	return s
}

func (q *Sequencer) forget(s *Signal) {
	q.mu.Lock()
	delete(q.inflight, s)
	q.mu.Unlock()
}

// InFlight returns the number of unresolved signals.
func (q *Sequencer) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inflight)
}

// CancelAll cancels every unresolved signal and returns how many it canceled.
func (q *Sequencer) CancelAll() int {
	q.mu.Lock()
	pending := make([]*Signal, 0, len(q.inflight))
	for s := range q.inflight {
		pending = append(pending, s)
	}
	q.mu.Unlock()

	n := 0
	for _, s := range pending {
		if s.Cancel() {
			n++
		}
	}
	return n
}
