package quarkgl

// Target is anything the rasteriser can draw into. SetPixel ignores
// coordinates outside Size.
type Target interface {
	Size() (w, h int)
	SetPixel(x, y int, c Color)
	Clear(c Color)
}

// RenderMode is how mesh triangles are drawn. Line sets always draw as lines.
type RenderMode uint8

const (
	RenderSolidFlat RenderMode = iota
	RenderWireframe
)

// String is the HUD name of the mode.
func (m RenderMode) String() string {
	if m == RenderWireframe {
		return "wire"
	}
	return "flat"
}
