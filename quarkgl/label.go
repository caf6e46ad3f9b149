package quarkgl

import (
	"image/color"
	"strings"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// asciiFold maps glyphs missing from the bitmap fonts to ASCII stand-ins.
var asciiFold = strings.NewReplacer("⟩", ">", "⟨", "<", "…", "...")

// Placement is where a label landed on screen for one frame.
type Placement struct {
	ID   NodeID
	Text string
	X, Y int // baseline-left
	W    int
}

// LabelRenderer draws scene labels as screen-space text.
//
// It is the overlay pass: it must be given the same Frame as the mesh pass.
type LabelRenderer struct {
	Font       tinyfont.Fonter
	FontHeight int16

	placements []Placement
	last       Frame
}

// NewLabelRenderer returns a renderer using the 8pt proggy font.
func NewLabelRenderer() *LabelRenderer {
	return &LabelRenderer{Font: &proggy.TinySZ8pt7b, FontHeight: 10}
}

// Placements returns the label positions computed by the last RenderFrame.
// The slice is reused by the next call.
func (lr *LabelRenderer) Placements() []Placement {
	return lr.placements
}

// RenderFrame projects every enabled label through f and draws it centered
// on its anchor. Labels behind the camera are skipped.
func (lr *LabelRenderer) RenderFrame(d drivers.Displayer, s *Scene, f Frame) {
	if lr == nil {
		return
	}
	lr.placements = lr.placements[:0]
	lr.last = f
	if s == nil {
		return
	}
	s.walk(func(id NodeID, n *node, world Mat4) {
		if n.kind != NodeLabel || n.label.Text == "" {
			return
		}
		x, y, _, ok := f.Project(world.Origin())
		if !ok {
			return
		}
		text := asciiFold.Replace(n.label.Text)
		w := lr.width(text)
		p := Placement{
			ID:   id,
			Text: n.label.Text,
			X:    x - w/2 + n.label.DX,
			Y:    y + int(lr.FontHeight)/2 + n.label.DY,
			W:    w,
		}
		lr.placements = append(lr.placements, p)
		if d == nil || lr.Font == nil {
			return
		}
		c := n.label.Color
		tinyfont.WriteLine(d, lr.Font, int16(p.X), int16(p.Y), text, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
	})
}

// LastFrame returns the frame used by the most recent RenderFrame call.
func (lr *LabelRenderer) LastFrame() Frame { return lr.last }

func (lr *LabelRenderer) width(s string) int {
	if lr.Font == nil {
		return 0
	}
	_, outbox := tinyfont.LineWidth(lr.Font, s)
	return int(outbox)
}
