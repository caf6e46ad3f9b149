package viz

import (
	"strings"

	"qviz/quantum"
	"qviz/quarkgl"
)

// Circuit layout.
const (
	GateColumnSpacing = 2.0
	GateRowSpacing    = 1.5
	GateBlockW        = 1.0
	GateBlockH        = 1.0
	GateBlockD        = 0.2
	GateLabelZ        = 0.2
)

// GateOrigin is the origin of the gate grid.
var GateOrigin = quarkgl.V3(0, 3, 0)

// DefaultGateColor is used for tags without an assigned colour.
var DefaultGateColor = quarkgl.Hex(0x888888)

var gateColors = map[string]quarkgl.Color{
	quantum.GateH:       quarkgl.Hex(0x00ff00),
	quantum.GateX:       quarkgl.Hex(0xff0000),
	quantum.GateCNOT:    quarkgl.Hex(0x0088ff),
	quantum.GateCX:      quarkgl.Hex(0x0088ff),
	quantum.GateY:       quarkgl.Hex(0xffcc00),
	quantum.GateZ:       quarkgl.Hex(0x8844ff),
	quantum.GateSWAP:    quarkgl.Hex(0xff8800),
	quantum.GateRX:      quarkgl.Hex(0xff66aa),
	quantum.GateMeasure: quarkgl.Hex(0xdddddd),
}

// GateColor returns the block colour for a gate tag.
func GateColor(tag string) quarkgl.Color {
	if c, ok := gateColors[strings.ToUpper(tag)]; ok {
		return c
	}
	return DefaultGateColor
}

// GateVisual describes one placed gate block.
type GateVisual struct {
	Index int
	Key   string
	Type  string
	Row   int
	Pos   quarkgl.Vec3 // world position of the block centre
	Color quarkgl.Color
}

// GatePosition returns the block centre for the gate at sequence index i.
func GatePosition(i int, g quantum.Gate) quarkgl.Vec3 {
	return GateOrigin.Add(quarkgl.V3f(float64(i)*GateColumnSpacing, float64(g.Anchor())*GateRowSpacing, 0))
}

// CircuitLayout places a gate list on a column/row grid.
type CircuitLayout struct {
	scene *quarkgl.Scene
	reg   *Registry
	gates []GateVisual
}

func newCircuitLayout(s *quarkgl.Scene) *CircuitLayout {
	return &CircuitLayout{scene: s, reg: NewRegistry(s, "gate")}
}

// build detaches every previous gate subtree, then attaches one per gate.
func (c *CircuitLayout) build(gates []quantum.Gate) {
	c.reg.Clear()
	c.gates = c.gates[:0]

	for i, g := range gates {
		v := GateVisual{
			Index: i,
			Key:   c.reg.Key(i),
			Type:  g.Type,
			Row:   g.Anchor(),
			Pos:   GatePosition(i, g),
			Color: GateColor(g.Type),
		}
		root := c.scene.AddGroup(quarkgl.Root, quarkgl.Translate(v.Pos))
		c.scene.AddMesh(root, quarkgl.Identity(), quarkgl.NewBox(GateBlockW, GateBlockH, GateBlockD, v.Color))

		// Wires to the other qubits of multi-qubit gates.
		for _, q := range g.Qubits[min(1, len(g.Qubits)):] {
			dy := quarkgl.Scalar(float64(q-v.Row) * GateRowSpacing)
			c.scene.AddMesh(root, quarkgl.Identity(), quarkgl.NewSegment(quarkgl.V3(0, 0, 0), quarkgl.V3(0, dy, 0), v.Color))
		}

		c.scene.AddLabel(root, quarkgl.Translate(quarkgl.V3(0, 0, GateLabelZ)), quarkgl.Label{Text: g.Type, Color: labelColor})
		c.reg.Put(v.Key, root)
		c.gates = append(c.gates, v)
	}
}

// Gates returns a copy of the placed gates.
func (c *CircuitLayout) Gates() []GateVisual {
	return append([]GateVisual(nil), c.gates...)
}
