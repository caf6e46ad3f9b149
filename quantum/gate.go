package quantum

import "fmt"

// Gate type tags known to the simulator and the layout colours. The set is open:
// any other tag is a valid Gate.
const (
	GateH       = "H"
	GateX       = "X"
	GateY       = "Y"
	GateZ       = "Z"
	GateS       = "S"
	GateT       = "T"
	GateRX      = "RX"
	GateRY      = "RY"
	GateRZ      = "RZ"
	GateCNOT    = "CNOT"
	GateCX      = "CX"
	GateCZ      = "CZ"
	GateCP      = "CP"
	GateSWAP    = "SWAP"
	GateMeasure = "MEASURE"
)

// Gate is one placed operation. Qubits[0] is the anchor row.
type Gate struct {
	Type   string             `json:"type" msgpack:"type"`
	Qubits []int              `json:"qubits" msgpack:"qubits"`
	Matrix [][]Complex        `json:"matrix,omitempty" msgpack:"matrix,omitempty"`
	Angle  *float64           `json:"angle,omitempty" msgpack:"angle,omitempty"`
	Params map[string]float64 `json:"params,omitempty" msgpack:"params,omitempty"`
}

// NewGate builds a gate on the given qubits.
func NewGate(tag string, qubits ...int) Gate {
	return Gate{Type: tag, Qubits: append([]int(nil), qubits...)}
}

// WithAngle returns a copy carrying a rotation angle.
func (g Gate) WithAngle(theta float64) Gate {
	g = g.Clone()
	g.Angle = &theta
	return g
}

// Anchor returns the row the gate is drawn on. Gates without qubits sit on row 0.
func (g Gate) Anchor() int {
	if len(g.Qubits) == 0 {
		return 0
	}
	return g.Qubits[0]
}

// Theta returns the rotation angle from Angle or Params["theta"].
func (g Gate) Theta() (float64, bool) {
	if g.Angle != nil {
		return *g.Angle, true
	}
	if v, ok := g.Params["theta"]; ok {
		return v, true
	}
	return 0, false
}

// Clone returns a deep copy.
func (g Gate) Clone() Gate {
	out := Gate{Type: g.Type, Qubits: append([]int(nil), g.Qubits...)}
	if g.Matrix != nil {
		out.Matrix = make([][]Complex, len(g.Matrix))
		for i, row := range g.Matrix {
			out.Matrix[i] = append([]Complex(nil), row...)
		}
	}
	if g.Angle != nil {
		a := *g.Angle
		out.Angle = &a
	}
	if g.Params != nil {
		out.Params = make(map[string]float64, len(g.Params))
		for k, v := range g.Params {
			out.Params[k] = v
		}
	}
	return out
}

func (g Gate) String() string {
	if theta, ok := g.Theta(); ok {
		return fmt.Sprintf("%s(%.3f)%v", g.Type, theta, g.Qubits)
	}
	return fmt.Sprintf("%s%v", g.Type, g.Qubits)
}

// CloneGates deep-copies a gate list.
func CloneGates(gates []Gate) []Gate {
	out := make([]Gate, len(gates))
	for i, g := range gates {
		out[i] = g.Clone()
	}
	return out
}
