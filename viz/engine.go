package viz

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"qviz/hal"
	"qviz/quantum"
	"qviz/quarkgl"
)

var (
	// ErrZeroSurface is returned by New for a missing or empty framebuffer.
	ErrZeroSurface = errors.New("viz: display surface has zero extent")
	// ErrDisposed is returned by every entry point after Dispose.
	ErrDisposed = errors.New("viz: engine disposed")
)

// Engine renders quantum states and circuits into a framebuffer.
type Engine struct {
	log zerolog.Logger

	fb      hal.Framebuffer
	target  *quarkgl.RGB565Target
	display *quarkgl.TargetDisplay

	scene    *quarkgl.Scene
	renderer *quarkgl.Renderer
	labels   *quarkgl.LabelRenderer
	orbit    quarkgl.OrbitController

	qubits     *Registry
	indicators []*Indicator
	chart      *BarChart
	circuit    *CircuitLayout
	seq        *Sequencer
	hud        *HUD
	playback   *Playback

	idle     float64
	disposed atomic.Bool
	frames   uint64
	lastTick time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock sets the clock used by animation signals.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.seq = NewSequencer(c) }
}

// WithIdleRotation sets the per-frame indicator rotation in radians.
func WithIdleRotation(rad float64) Option {
	return func(e *Engine) { e.idle = rad }
}

// WithHUD enables the status console in the lower-left corner.
func WithHUD() Option {
	return func(e *Engine) { e.hud = &HUD{} }
}

// New binds an engine to fb. It fails with ErrZeroSurface if fb has no
// pixels; no engine is returned in that case.
func New(fb hal.Framebuffer, opts ...Option) (*Engine, error) {
	if fb == nil || fb.Width() <= 0 || fb.Height() <= 0 || len(fb.Buffer()) == 0 {
		return nil, ErrZeroSurface
	}
	if fb.Format() != hal.PixelFormatRGB565 {
		return nil, fmt.Errorf("viz: unsupported pixel format %d", fb.Format())
	}

	w, h := fb.Width(), fb.Height()
	e := &Engine{
		log:  zerolog.Nop(),
		fb:   fb,
		idle: DefaultIdleRadian,
		target: &quarkgl.RGB565Target{
			Buf:    fb.Buffer(),
			Stride: fb.StrideBytes(),
			W:      w,
			H:      h,
		},
		scene:    quarkgl.CreateScene(256),
		renderer: quarkgl.NewRenderer(),
		labels:   quarkgl.NewLabelRenderer(),
		orbit: quarkgl.OrbitController{
			Target:    quarkgl.V3(3, 0, 0),
			Yaw:       0,
			Pitch:     0.25,
			Radius:    14,
			MinRadius: 3,
			MaxRadius: 60,
			Damping:   0.85,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.seq == nil {
		e.seq = NewSequencer(RealClock{})
	}
	e.display = &quarkgl.TargetDisplay{T: e.target}
	e.renderer.ClearColor = quarkgl.RGB(0x05, 0x08, 0x12)
	e.renderer.Mode = quarkgl.RenderSolidFlat
	e.scene.Camera.FOVY = 0.9
	e.scene.Camera.Far = 200
	e.orbit.Apply(&e.scene.Camera)

	e.qubits = NewRegistry(e.scene, "qubit")
	e.chart = newBarChart(e.scene)
	e.circuit = newCircuitLayout(e.scene)
	if e.hud != nil {
		if err := e.hud.init(e.target); err != nil {
			return nil, err
		}
	}
	e.log.Debug().Int("width", w).Int("height", h).Msg("engine ready")
	return e, nil
}

// VisualizeQuantumState rebuilds the Bloch indicators and the bar chart from
// st. The state is validated first; a rejected state leaves the scene as it
// was.
func (e *Engine) VisualizeQuantumState(st quantum.State) error {
	if e.disposed.Load() {
		return ErrDisposed
	}
	orients, err := quantum.ProjectAll(st)
	if err != nil {
		return fmt.Errorf("visualize state: %w", err)
	}

	e.qubits.Clear()
	e.indicators = e.indicators[:0]
	for q, o := range orients {
		ind := newIndicator(e.scene, q, o)
		e.qubits.Put(e.qubits.Key(q), ind.root)
		e.indicators = append(e.indicators, ind)
	}
	e.chart.rebuild(st)
	if e.hud != nil {
		e.hud.SetState(st)
	}
	e.log.Debug().Int("qubits", st.NumQubits).Int("nodes", e.scene.Len()).Msg("state visualized")
	return nil
}

// VisualizeCircuit replaces the gate visuals with gates. It cancels any
// in-flight animation signals and stops circuit playback.
func (e *Engine) VisualizeCircuit(gates []quantum.Gate) error {
	if e.disposed.Load() {
		return ErrDisposed
	}
	if n := e.seq.CancelAll(); n > 0 {
		e.log.Debug().Int("canceled", n).Msg("superseded animations")
	}
	e.stopPlayback()
	e.circuit.build(gates)
	return nil
}

// AnimateGateApplication returns a signal that resolves after durationMs.
// It never touches the scene. After Dispose the signal is returned already
// canceled.
func (e *Engine) AnimateGateApplication(g quantum.Gate, durationMs int) *Signal {
	if e.disposed.Load() {
		s := newSignal(g.Clone(), 0, nil)
		s.Cancel()
		return s
	}
	return e.seq.Play(g, durationMs)
}

// Input applies a camera or display interaction.
func (e *Engine) Input(ev InputEvent) {
	if e.disposed.Load() {
		return
	}
	switch ev.Kind {
	case InputRotate:
		e.orbit.Rotate(quarkgl.Scalar(ev.DX), quarkgl.Scalar(ev.DY))
	case InputZoom:
		e.orbit.Zoom(quarkgl.Scalar(ev.DY))
	case InputToggleWireframe:
		if e.renderer.Mode == quarkgl.RenderWireframe {
			e.renderer.Mode = quarkgl.RenderSolidFlat
		} else {
			e.renderer.Mode = quarkgl.RenderWireframe
		}
	}
}

// Tick renders one display frame: camera damping, idle rotation, the 3D
// pass, then the overlay pass with the same frame snapshot.
func (e *Engine) Tick(now time.Time) error {
	if e.disposed.Load() {
		return ErrDisposed
	}

	if e.orbit.Update() {
		e.orbit.Apply(&e.scene.Camera)
	}
	e.stepPlayback()
	for _, ind := range e.indicators {
		ind.advance(e.scene, e.idle)
	}

	e.frames++
	f := e.scene.Camera.Frame(e.frames, e.target.W, e.target.H)
	e.renderer.RenderFrame(e.target, e.scene, f)
	e.labels.RenderFrame(e.display, e.scene, f)
	if e.hud != nil {
		if err := e.hud.draw(now, e.lastTick, e.renderer.Mode); err != nil {
			e.log.Warn().Err(err).Msg("HUD not drawn")
		}
	}
	e.lastTick = now
	return e.fb.Present()
}

// Dispose stops the engine. Outstanding signals are canceled and every
// registry is cleared. Dispose is idempotent.
func (e *Engine) Dispose() {
	if !e.disposed.CompareAndSwap(false, true) {
		return
	}
	n := e.seq.CancelAll()
	e.stopPlayback()
	e.qubits.Clear()
	e.indicators = nil
	e.chart.reg.Clear()
	e.circuit.reg.Clear()
	e.log.Debug().Int("canceled", n).Msg("engine disposed")
}

// Disposed reports whether Dispose has been called.
func (e *Engine) Disposed() bool { return e.disposed.Load() }

// Frame returns the frame used by the last 3D pass.
func (e *Engine) Frame() quarkgl.Frame { return e.renderer.LastFrame() }

// OverlayFrame returns the frame used by the last overlay pass.
func (e *Engine) OverlayFrame() quarkgl.Frame { return e.labels.LastFrame() }

// Placements returns where labels landed in the last overlay pass.
func (e *Engine) Placements() []quarkgl.Placement { return e.labels.Placements() }

// Scene exposes the scene graph for inspection.
func (e *Engine) Scene() *quarkgl.Scene { return e.scene }

// HUD returns the status console, or nil when disabled.
func (e *Engine) HUD() *HUD { return e.hud }

// InFlight returns the number of unresolved animation signals.
func (e *Engine) InFlight() int { return e.seq.InFlight() }

// IndicatorView is a read-only view of one indicator.
type IndicatorView struct {
	Key         string
	Qubit       int
	Orientation quantum.Orientation
	World       quarkgl.Mat4
	ArrowTip    quarkgl.Vec3
}

// Snapshot is the registry contents at one point in time.
type Snapshot struct {
	Indicators []IndicatorView
	Bars       []Bar
	Gates      []GateVisual
}

// Snapshot returns the current registry contents.
func (e *Engine) Snapshot() Snapshot {
	var s Snapshot
	for _, ind := range e.indicators {
		s.Indicators = append(s.Indicators, IndicatorView{
			Key:         e.qubits.Key(ind.Qubit),
			Qubit:       ind.Qubit,
			Orientation: ind.Orientation,
			World:       e.scene.World(ind.root),
			ArrowTip:    ind.ArrowTip(),
		})
	}
	s.Bars = e.chart.Bars()
	s.Gates = e.circuit.Gates()
	return s
}
