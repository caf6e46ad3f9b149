// Package app composes the viewer: it owns the engine, turns host input into
// engine calls and feeds simulation results back onto the frame goroutine.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"qviz/client/simclient"
	"qviz/hal"
	"qviz/proto"
	"qviz/quantum"
	"qviz/sim"
	"qviz/viz"
)

const (
	simTimeout    = 10 * time.Second
	updateBacklog = 32
	maxDrain      = 64
	maxSent       = 64
)

// Config selects the start preset and the simulation backend.
type Config struct {
	Preset string
	SimURL string // empty runs the simulator in-process
	Shots  int
	StepMs int
	Follow bool // mirror results streamed by the simulation API
	Log    zerolog.Logger

	// Backend overrides SimURL, mainly for tests.
	Backend Backend
}

// update is a simulation result travelling from a worker goroutine to Step.
type update struct {
	gen     uint64
	source  string
	circuit proto.Circuit
	res     proto.SimulateResponse
	err     error
}

// App is the viewer. All methods except the worker goroutines run on the
// host's frame goroutine.
type App struct {
	log     zerolog.Logger
	cfg     Config
	hal     hal.HAL
	engine  *viz.Engine
	backend Backend

	keys <-chan hal.KeyEvent
	ptrs <-chan hal.PointerEvent

	ctx     context.Context
	cancel  context.CancelFunc
	updates chan update

	preset   Preset
	circuit  proto.Circuit
	playback *viz.Playback
	gen      uint64
	pending  int
	quit     bool

	// sent maps the wire form of each circuit this viewer simulated to the
	// generation that sent it, so stream echoes of superseded requests can
	// be told apart from other clients' circuits.
	sent map[string]uint64
}

// New returns the host factory for the viewer.
func New(cfg Config) hal.AppFactory {
	return func(h hal.HAL) (func() error, error) {
		a, err := newApp(h, cfg)
		if err != nil {
			return nil, err
		}
		return guard(h, a.Step), nil
	}
}

func newApp(h hal.HAL, cfg Config) (*App, error) {
	log := cfg.Log.With().Str("component", "app").Logger()
	if cfg.Shots <= 0 {
		cfg.Shots = proto.DefaultShots
	}
	if cfg.StepMs <= 0 {
		cfg.StepMs = viz.DefaultAnimationMs
	}
	preset, ok := PresetByName(cfg.Preset)
	if !ok {
		if cfg.Preset != "" {
			return nil, fmt.Errorf("unknown preset %q (have %v)", cfg.Preset, PresetNames())
		}
		preset = presets[0]
	}

	disp := h.Display()
	if disp == nil {
		return nil, fmt.Errorf("host has no display")
	}
	engine, err := viz.New(disp.Framebuffer(),
		viz.WithLogger(cfg.Log.With().Str("component", "engine").Logger()),
		viz.WithHUD(),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	backend := cfg.Backend
	if backend == nil {
		if cfg.SimURL != "" {
			backend = simclient.New(cfg.SimURL, simclient.WithLogger(cfg.Log))
		} else {
			backend = localBackend{sim: sim.New(sim.WithLogger(cfg.Log))}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		log:     log,
		cfg:     cfg,
		hal:     h,
		engine:  engine,
		backend: backend,
		ctx:     ctx,
		cancel:  cancel,
		updates: make(chan update, updateBacklog),
		sent:    make(map[string]uint64),
	}
	if in := h.Input(); in != nil {
		if kbd := in.Keyboard(); kbd != nil {
			a.keys = kbd.Events()
		}
		if ptr := in.Pointer(); ptr != nil {
			a.ptrs = ptr.Events()
		}
	}

	if cfg.Follow {
		if f, ok := backend.(Follower); ok {
			go a.follow(f)
		} else {
			log.Warn().Msg("Backend cannot stream; -follow ignored")
		}
	}

	if l := h.Logger(); l != nil {
		l.WriteLineString(fmt.Sprintf("qviz: preset %s, keys b/t/g/f/s/c presets, space simulate, p play, w wireframe, q quit", preset.Name))
	}
	if err := a.load(preset); err != nil {
		cancel()
		engine.Dispose()
		return nil, err
	}
	return a, nil
}

// Engine exposes the engine for inspection.
func (a *App) Engine() *viz.Engine { return a.engine }

// Pending returns the number of simulations not yet applied.
func (a *App) Pending() int { return a.pending }

// Preset returns the loaded preset name.
func (a *App) Preset() string { return a.preset.Name }

func (a *App) playing() bool {
	if a.playback == nil {
		return false
	}
	select {
	case <-a.playback.Done():
		a.playback = nil
		return false
	default:
		return true
	}
}

// Step runs one frame: input, queued results, then the engine tick.
func (a *App) Step() error {
	a.drainInput()
	if a.quit {
		a.shutdown()
		return hal.ErrStop
	}
	a.applyUpdates()
	return a.engine.Tick(time.Now())
}

func (a *App) shutdown() {
	a.cancel()
	a.engine.Dispose()
	a.log.Info().Msg("Viewer stopped")
}

func (a *App) drainInput() {
	for i := 0; i < maxDrain; i++ {
		select {
		case ev, ok := <-a.keys:
			if !ok {
				a.keys = nil
				continue
			}
			a.handleKey(ev)
		case ev, ok := <-a.ptrs:
			if !ok {
				a.ptrs = nil
				continue
			}
			if in, ok := viz.FromPointer(ev); ok {
				a.engine.Input(in)
			}
		default:
			return
		}
	}
}

func (a *App) handleKey(ev hal.KeyEvent) {
	if !ev.Press {
		return
	}
	if ev.Code == hal.KeyEscape {
		a.quit = true
		return
	}
	if ev.Code == hal.KeyUnknown {
		if p, ok := presetByKey(ev.Rune); ok {
			if err := a.load(p); err != nil {
				a.status("load %s: %v", p.Name, err)
			}
			return
		}
		switch ev.Rune {
		case 'q':
			a.quit = true
			return
		case ' ':
			a.simulate("simulate", a.circuit)
			return
		case 'p':
			a.play()
			return
		}
	}
	if in, ok := viz.FromKey(ev); ok {
		a.engine.Input(in)
	}
}

// load shows a preset's circuit and requests its simulation.
func (a *App) load(p Preset) error {
	b := p.Build()
	c := proto.Circuit{NumQubits: b.NumQubits(), Gates: b.Gates()}
	if err := a.engine.VisualizeCircuit(c.Gates); err != nil {
		return err
	}
	a.preset = p
	a.circuit = c
	a.gen++
	if hud := a.engine.HUD(); hud != nil {
		hud.SetPreset(p.Name)
	}
	a.log.Info().Str("preset", p.Name).Int("gates", len(c.Gates)).Msg("Preset loaded")
	a.simulate(p.Name, c)
	return nil
}

// play steps through the current circuit, simulating each prefix as it appears.
func (a *App) play() {
	a.gen++
	n := a.circuit.NumQubits
	pb, err := a.engine.PlayCircuit(a.circuit.Gates, a.cfg.StepMs, func(prefix []quantum.Gate) {
		a.simulate("playback", proto.Circuit{NumQubits: n, Gates: prefix})
	})
	if err != nil {
		a.status("play: %v", err)
		return
	}
	a.playback = pb
	a.status("playing %d gates", len(a.circuit.Gates))
}

// simulate runs c on a worker goroutine; the result is applied by a later Step.
func (a *App) simulate(source string, c proto.Circuit) {
	a.pending++
	gen := a.gen
	req := proto.SimulateRequest{NumQubits: c.NumQubits, Gates: quantum.CloneGates(c.Gates), Shots: a.cfg.Shots}
	a.remember(c, gen)
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, simTimeout)
		defer cancel()
		res, err := a.backend.Simulate(ctx, req)
		a.push(update{gen: gen, source: source, circuit: c, res: res, err: err})
	}()
	a.status("%s: simulating", source)
}

// remember records c as sent by generation gen. Older generations are
// forgotten once the table is full.
func (a *App) remember(c proto.Circuit, gen uint64) {
	key, ok := circuitKey(c)
	if !ok {
		return
	}
	if len(a.sent) >= maxSent {
		for k, g := range a.sent {
			if g != gen {
				delete(a.sent, k)
			}
		}
	}
	a.sent[key] = gen
}

// staleEcho reports whether c is one of our own circuits from a generation
// the user has since moved past.
func (a *App) staleEcho(c proto.Circuit) bool {
	key, ok := circuitKey(c)
	if !ok {
		return false
	}
	gen, mine := a.sent[key]
	return mine && gen != a.gen
}

func circuitKey(c proto.Circuit) (string, bool) {
	b, err := proto.Marshal(proto.ContentTypeJSON, c)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func (a *App) push(u update) {
	select {
	case a.updates <- u:
	case <-a.ctx.Done():
	}
}

func (a *App) follow(f Follower) {
	err := f.Follow(a.ctx, func(ev proto.StreamEvent) {
		a.push(update{source: "stream", circuit: ev.Circuit, res: ev.Result})
	})
	if err != nil && a.ctx.Err() == nil {
		a.log.Warn().Err(err).Msg("Result stream ended")
	}
}

func (a *App) applyUpdates() {
	for {
		select {
		case u := <-a.updates:
			a.apply(u)
		default:
			return
		}
	}
}

func (a *App) apply(u update) {
	if u.source != "stream" {
		a.pending--
		if u.gen != a.gen {
			a.log.Debug().Str("source", u.source).Msg("Dropping stale result")
			return
		}
	}
	if u.err != nil {
		a.log.Warn().Err(u.err).Str("source", u.source).Msg("Simulation failed")
		a.status("%s: %v", u.source, u.err)
		return
	}

	st, err := u.res.QuantumState(u.circuit.NumQubits)
	if err != nil {
		a.status("%s: %v", u.source, err)
		return
	}
	if u.source == "stream" {
		// Our own playback echoes back through the stream; leave it running.
		if a.playing() {
			return
		}
		if a.staleEcho(u.circuit) {
			a.log.Debug().Int("gates", len(u.circuit.Gates)).Msg("Dropping stale stream echo")
			return
		}
		if err := a.engine.VisualizeCircuit(u.circuit.Gates); err != nil {
			a.status("stream: %v", err)
			return
		}
		a.circuit = u.circuit
	}
	if err := a.engine.VisualizeQuantumState(st); err != nil {
		a.status("%s: %v", u.source, err)
		return
	}
	if hud := a.engine.HUD(); hud != nil {
		hud.SetState(st)
		hud.SetMeasurements(u.res.Measurements)
	}
	a.status("%s: %d outcomes", u.source, len(u.res.Measurements))
}

func (a *App) status(format string, args ...any) {
	if hud := a.engine.HUD(); hud != nil {
		hud.SetStatus(fmt.Sprintf(format, args...))
	}
}
