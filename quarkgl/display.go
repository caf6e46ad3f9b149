package quarkgl

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// TargetDisplay adapts a Target to the TinyGo display interfaces used by
// tinyfont and tinyterm.
type TargetDisplay struct {
	T Target

	// Present is called by Display. Optional.
	Present func() error
}

var _ drivers.Displayer = (*TargetDisplay)(nil)

func (d *TargetDisplay) Size() (x, y int16) {
	if d == nil || d.T == nil {
		return 0, 0
	}
	w, h := d.T.Size()
	return int16(w), int16(h)
}

func (d *TargetDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d == nil || d.T == nil {
		return
	}
	d.T.SetPixel(int(x), int(y), RGB(c.R, c.G, c.B))
}

func (d *TargetDisplay) Display() error {
	if d == nil || d.Present == nil {
		return nil
	}
	return d.Present()
}

func (d *TargetDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if d == nil || d.T == nil {
		return nil
	}
	w, h := d.T.Size()
	x0, x1 := min(max(int(x), 0), w), min(max(int(x)+int(width), 0), w)
	y0, y1 := min(max(int(y), 0), h), min(max(int(y)+int(height), 0), h)
	col := RGB(c.R, c.G, c.B)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			d.T.SetPixel(px, py, col)
		}
	}
	return nil
}

// Scrolling and rotation are fixed; tinyterm calls these unconditionally.
func (d *TargetDisplay) SetScroll(int16)                    {}
func (d *TargetDisplay) SetRotation(drivers.Rotation) error { return nil }

// Region is a Target window onto a larger Target.
type Region struct {
	T          Target
	X, Y, W, H int
}

func (r *Region) Size() (w, h int) { return r.W, r.H }

func (r *Region) SetPixel(x, y int, c Color) {
	if x < 0 || y < 0 || x >= r.W || y >= r.H {
		return
	}
	r.T.SetPixel(r.X+x, r.Y+y, c)
}

func (r *Region) Clear(c Color) {
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			r.T.SetPixel(r.X+x, r.Y+y, c)
		}
	}
}
