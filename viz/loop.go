package viz

import (
	"context"
	"time"

	"qviz/quantum"
)

// Run is the frame loop for embedders that own no host loop: it ticks the
// engine on every value from frames until ctx is done, frames is closed or
// the engine is disposed, checking the disposed flag before each wait. The
// hal hosts call Tick from their own loops instead (through app.Step) and
// stop on the ErrDisposed it returns.
func (e *Engine) Run(ctx context.Context, frames <-chan time.Time) error {
	for {
		if e.disposed.Load() {
			return ErrDisposed
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now, ok := <-frames:
			if !ok {
				return nil
			}
			if err := e.Tick(now); err != nil {
				return err
			}
		}
	}
}

// Playback steps through a gate list one gate per signal. Each step shows
// the circuit prefix and calls OnStep with it.
type Playback struct {
	gates  []quantum.Gate
	stepMs int
	next   int
	sig    *Signal
	done   chan struct{}
	onStep func(prefix []quantum.Gate)
}

// Done is closed when playback finishes or is stopped.
func (p *Playback) Done() <-chan struct{} { return p.done }

// Step returns the number of gates shown so far.
func (p *Playback) Step() int { return p.next }

// PlayCircuit starts stepping through gates, showing one more gate each
// time a signal of stepMs resolves. It replaces any running playback.
// Progress happens inside Tick.
func (e *Engine) PlayCircuit(gates []quantum.Gate, stepMs int, onStep func(prefix []quantum.Gate)) (*Playback, error) {
	if e.disposed.Load() {
		return nil, ErrDisposed
	}
	e.seq.CancelAll()
	e.stopPlayback()
	p := &Playback{
		gates:  quantum.CloneGates(gates),
		stepMs: stepMs,
		done:   make(chan struct{}),
		onStep: onStep,
	}
	e.playback = p
	e.circuit.build(nil)
	return p, nil
}

func (e *Engine) stopPlayback() {
	if e.playback == nil {
		return
	}
	if e.playback.sig != nil {
		e.playback.sig.Cancel()
	}
	close(e.playback.done)
	e.playback = nil
}

func (e *Engine) stepPlayback() {
	p := e.playback
	if p == nil {
		return
	}
	if p.sig != nil {
		if !p.sig.Resolved() {
			return
		}
		if p.sig.Canceled() {
			e.stopPlayback()
			return
		}
	}
	if p.next >= len(p.gates) {
		close(p.done)
		e.playback = nil
		return
	}
	p.next++
	prefix := p.gates[:p.next]
	e.circuit.build(prefix)
	if p.onStep != nil {
		p.onStep(quantum.CloneGates(prefix))
	}
	p.sig = e.seq.Play(p.gates[p.next-1], p.stepMs)
}
