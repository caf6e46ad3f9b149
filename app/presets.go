package app

import (
	"math"

	"qviz/sim"
)

// Preset is a named circuit the viewer can load with a single key.
type Preset struct {
	Name  string
	Key   rune
	Build func() *sim.Builder
}

var presets = []Preset{
	{Name: "bell", Key: 'b', Build: func() *sim.Builder { return sim.BellState().Measure() }},
	{Name: "teleportation", Key: 't', Build: func() *sim.Builder { return sim.Teleportation().Measure() }},
	{Name: "grover", Key: 'g', Build: func() *sim.Builder {
		b, _, err := sim.Grover(2, []int{3})
		return must(b, err).Measure()
	}},
	{Name: "qft", Key: 'f', Build: func() *sim.Builder { return must(sim.QFTOf(3, 1)).Measure() }},
	// N = 4 keeps the register at six qubits, 64 bars.
	{Name: "shor", Key: 's', Build: func() *sim.Builder { return must(sim.Shor(4)).Measure() }},
	{Name: "custom", Key: 'c', Build: customCircuit},
}

// must unwraps builders whose arguments are constants above.
func must(b *sim.Builder, err error) *sim.Builder {
	if err != nil {
		panic(err)
	}
	return b
}

// customCircuit mixes rotations, entanglement and a QFT tail across three qubits.
func customCircuit() *sim.Builder {
	b := sim.NewBuilder(3).
		H(0).
		RX(1, math.Pi/3).
		CNOT(0, 2).
		CP(1, 2, math.Pi/2)
	return sim.QFT(b, []int{0, 1, 2}).Measure()
}

// PresetByName looks a preset up by name.
func PresetByName(name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

func presetByKey(r rune) (Preset, bool) {
	for _, p := range presets {
		if p.Key == r {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetNames lists the preset names in key order.
func PresetNames() []string {
	out := make([]string, 0, len(presets))
	for _, p := range presets {
		out = append(out, p.Name)
	}
	return out
}
