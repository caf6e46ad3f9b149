package viz

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"qviz/quantum"
	"qviz/quarkgl"
)

// Bar chart layout.
const (
	BarSpacing     = 0.6
	BarWidth       = 0.4
	BarMaxHeight   = 3.0
	BarBaseY       = -3.0
	BarLabelOffset = -0.4
	barSaturation  = 0.8
	barValue       = 0.95
)

// Bar is one basis-state bar.
type Bar struct {
	Index  int
	Key    string
	Label  string
	X      float64
	Height float64
	Hue    float64 // degrees in [0, 360)
	Color  quarkgl.Color
}

// BarChart keeps one bar per basis state.
type BarChart struct {
	scene *quarkgl.Scene
	reg   *Registry
	bars  []Bar
}

func newBarChart(s *quarkgl.Scene) *BarChart {
	return &BarChart{scene: s, reg: NewRegistry(s, "bar")}
}

// PhaseHue maps a phase in radians onto the hue circle in degrees.
func PhaseHue(phase float64) float64 {
	h := quantum.WrapPhase(phase) / (2 * math.Pi) * 360
	if h >= 360 {
		h = 0
	}
	return h
}

// PhaseColor returns the bar colour for a phase.
func PhaseColor(phase float64) quarkgl.Color {
	r, g, b := colorful.Hsv(PhaseHue(phase), barSaturation, barValue).RGB255()
	return quarkgl.RGB(r, g, b)
}

// BarX returns the centred x position of bar i out of n.
func BarX(i, n int) float64 {
	return (float64(i) - float64(n-1)/2) * BarSpacing
}

// rebuild removes every bar and adds one per amplitude of st.
func (c *BarChart) rebuild(st quantum.State) {
	c.reg.Clear()
	c.bars = c.bars[:0]

	n := len(st.Amplitudes)
	for i, a := range st.Amplitudes {
		mag := a.Magnitude()
		if mag < 1e-9 || math.IsNaN(mag) {
			mag = 0
		}
		h := math.Min(mag, 1) * BarMaxHeight
		phase := a.Phase()
		bar := Bar{
			Index:  i,
			Key:    c.reg.Key(i),
			Label:  "|" + quantum.BasisLabel(i, st.NumQubits) + "⟩",
			X:      BarX(i, n),
			Height: h,
			Hue:    PhaseHue(phase),
			Color:  PhaseColor(phase),
		}

		g := c.scene.AddGroup(quarkgl.Root, quarkgl.Translate(quarkgl.V3f(bar.X, BarBaseY, 0)))
		c.scene.AddMesh(g, quarkgl.Translate(quarkgl.V3f(0, h/2, 0)),
			quarkgl.NewBox(BarWidth, quarkgl.Scalar(h), BarWidth, bar.Color))
		c.scene.AddLabel(g, quarkgl.Translate(quarkgl.V3f(0, BarLabelOffset, 0)), quarkgl.Label{Text: bar.Label, Color: labelColor})

		c.reg.Put(bar.Key, g)
		c.bars = append(c.bars, bar)
	}
}

// Bars returns a copy of the current bars.
func (c *BarChart) Bars() []Bar {
	return append([]Bar(nil), c.bars...)
}
