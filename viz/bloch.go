package viz

import (
	"fmt"
	"math"

	"qviz/quantum"
	"qviz/quarkgl"
)

// Indicator layout.
const (
	IndicatorSpacing  = 3.0
	IndicatorRadius   = 1.0
	IndicatorLabelY   = 1.4
	DefaultIdleRadian = 0.01
)

var (
	axisColors = [3]quarkgl.Color{
		quarkgl.Hex(0xff0000), // X
		quarkgl.Hex(0x00ff00), // Y
		quarkgl.Hex(0x0000ff), // Z
	}
	sphereColor = quarkgl.Hex(0x4488ff)
	arrowColor  = quarkgl.Hex(0xffff00)
	labelColor  = quarkgl.Hex(0xffffff)
)

// Indicator is one Bloch sphere widget bound to a qubit.
type Indicator struct {
	Qubit       int
	Orientation quantum.Orientation

	root  quarkgl.NodeID // translated to the qubit slot
	spin  quarkgl.NodeID // idle rotation about local Y
	arrow quarkgl.NodeID
	label quarkgl.NodeID
	angle float64
}

// IndicatorOrigin returns the world-space centre of qubit q's indicator.
func IndicatorOrigin(q int) quarkgl.Vec3 {
	return quarkgl.V3f(float64(q)*IndicatorSpacing, 0, 0)
}

func newIndicator(s *quarkgl.Scene, q int, o quantum.Orientation) *Indicator {
	ind := &Indicator{Qubit: q, Orientation: o}
	ind.root = s.AddGroup(quarkgl.Root, quarkgl.Translate(IndicatorOrigin(q)))
	ind.spin = s.AddGroup(ind.root, quarkgl.Identity())

	sphere := quarkgl.NewWireSphere(IndicatorRadius, 6, 16, sphereColor)
	sphere.Material.Opacity = 0x70
	s.AddMesh(ind.spin, quarkgl.Identity(), sphere)

	const axisLen = IndicatorRadius * 1.2
	axes := [3]quarkgl.Vec3{quarkgl.V3(axisLen, 0, 0), quarkgl.V3(0, axisLen, 0), quarkgl.V3(0, 0, axisLen)}
	for i, a := range axes {
		s.AddMesh(ind.spin, quarkgl.Identity(), quarkgl.NewSegment(a.Mul(-1), a, axisColors[i]))
	}

	ind.arrow = s.AddMesh(ind.spin, arrowTransform(o), quarkgl.NewArrow(IndicatorRadius, arrowColor))

	ind.label = s.AddLabel(ind.root, quarkgl.Translate(quarkgl.V3(0, IndicatorLabelY, 0)), quarkgl.Label{
		Text:  fmt.Sprintf("q%d", q),
		Color: labelColor,
	})
	return ind
}

func arrowTransform(o quantum.Orientation) quarkgl.Mat4 {
	x, y, z := o.Vector()
	return quarkgl.AlignY(quarkgl.V3f(x, y, z))
}

// ArrowTip returns the arrow tip in the indicator's local (unspun) frame.
func (ind *Indicator) ArrowTip() quarkgl.Vec3 {
	x, y, z := ind.Orientation.Vector()
	return quarkgl.V3f(x, y, z).Mul(IndicatorRadius)
}

// Angle returns the accumulated idle rotation.
func (ind *Indicator) Angle() float64 { return ind.angle }

func (ind *Indicator) advance(s *quarkgl.Scene, delta float64) {
	if delta == 0 {
		return
	}
	ind.angle = math.Mod(ind.angle+delta, 2*math.Pi)
	s.SetLocal(ind.spin, quarkgl.RotateY(quarkgl.Scalar(ind.angle)))
}
