package quarkgl

import "math"

const (
	// nearW is the smallest clip-space w accepted before a primitive is dropped.
	nearW = 1e-4
	// maxLineSteps bounds segments whose endpoints project far off-screen.
	maxLineSteps = 1 << 14
	// lineBias pulls line depth forward so edges win against coplanar fills.
	lineBias = 1e-4
)

// Renderer is the 3D pass. It rasterises every enabled mesh of a scene into
// a Target with a depth buffer sized to the target on each frame.
type Renderer struct {
	Mode       RenderMode
	ClearColor Color

	depth  []float32
	w, h   int
	pts    []screenPoint
	last   Frame
	frames uint64
}

func NewRenderer() *Renderer {
	return &Renderer{Mode: RenderSolidFlat}
}

// LastFrame returns the frame used by the most recent RenderFrame call.
func (r *Renderer) LastFrame() Frame { return r.last }

// Render snapshots the scene camera and renders one frame with it.
func (r *Renderer) Render(t Target, s *Scene) Frame {
	if t == nil || s == nil {
		return Frame{}
	}
	w, h := t.Size()
	r.frames++
	f := s.Camera.Frame(r.frames, w, h)
	r.RenderFrame(t, s, f)
	return f
}

// RenderFrame renders the scene as seen through f. The overlay pass must be
// given the same f for labels to stay on their anchors.
func (r *Renderer) RenderFrame(t Target, s *Scene, f Frame) {
	if t == nil || s == nil {
		return
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return
	}
	r.last = f
	r.resetDepth(w, h)
	t.Clear(r.ClearColor)

	s.walk(func(_ NodeID, n *node, world Mat4) {
		if n.kind == NodeMesh {
			r.drawMesh(t, f.ViewProj.Mul(world), world, &n.mesh, s.Light)
		}
	})
}

func (r *Renderer) resetDepth(w, h int) {
	r.w, r.h = w, h
	if cap(r.depth) < w*h {
		r.depth = make([]float32, w*h)
	}
	r.depth = r.depth[:w*h]
	for i := range r.depth {
		r.depth[i] = math.MaxFloat32
	}
}

type screenPoint struct {
	x, y int
	z    float32
	ok   bool
}

func (r *Renderer) drawMesh(t Target, mvp, world Mat4, m *Mesh, light Light) {
	r.pts = r.pts[:0]
	for _, p := range m.Points {
		var sp screenPoint
		if ndc, ok := clipToNDC(mvp.Transform(Vec4{p.X, p.Y, p.Z, 1})); ok {
			sp.x, sp.y = ndcToScreen(ndc, r.w, r.h)
			sp.z, sp.ok = ndc.Z, true
		}
		r.pts = append(r.pts, sp)
	}
	at := func(i uint16) (screenPoint, bool) {
		if int(i) >= len(r.pts) {
			return screenPoint{}, false
		}
		return r.pts[i], r.pts[i].ok
	}

	base := m.Material.BaseColor
	if op := m.Material.Opacity; op != 0 && op != 0xFF {
		base = r.ClearColor.Lerp(base, Scalar(op)/255)
	}
	wire := r.Mode == RenderWireframe || m.Material.Wireframe

	for i := 0; i+2 < len(m.Triangles); i += 3 {
		ia, ib, ic := m.Triangles[i], m.Triangles[i+1], m.Triangles[i+2]
		a, okA := at(ia)
		b, okB := at(ib)
		c, okC := at(ic)
		if !okA || !okB || !okC {
			continue
		}
		col := base
		if light.Mode == LightAmbientDirectional {
			n := triangleNormal(world.Point(m.Points[ia]), world.Point(m.Points[ib]), world.Point(m.Points[ic]))
			col = col.MulScalar(light.intensity(n))
		}
		if wire {
			r.line(t, a, b, col)
			r.line(t, b, c, col)
			r.line(t, c, a, col)
			continue
		}
		r.fill(t, a, b, c, col)
	}

	// Line sets are unlit.
	for i := 0; i+1 < len(m.Lines); i += 2 {
		a, okA := at(m.Lines[i])
		b, okB := at(m.Lines[i+1])
		if okA && okB {
			r.line(t, a, b, base)
		}
	}
}

type ndcPoint struct {
	X, Y, Z float32
}

func clipToNDC(p Vec4) (ndcPoint, bool) {
	if p.W <= nearW {
		return ndcPoint{}, false
	}
	inv := 1 / p.W
	return ndcPoint{p.X * inv, p.Y * inv, p.Z * inv}, true
}

func ndcToScreen(p ndcPoint, w, h int) (x, y int) {
	sx := (p.X*0.5 + 0.5) * float32(w-1)
	sy := (0.5 - p.Y*0.5) * float32(h-1)
	return int(sx + 0.5), int(sy + 0.5)
}

func triangleNormal(a, b, c Vec3) Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

// intensity is two-sided: faces are lit the same from either side.
func (l Light) intensity(n Vec3) Scalar {
	amb := Clamp01(l.Ambient)
	ld := l.Dir.Normalize()
	if ld == (Vec3{}) {
		return amb
	}
	d := Scalar(math.Abs(float64(n.Dot(ld))))
	return Clamp01(amb + d*Clamp01(l.DirAmount))
}

// testDepth reports whether z (NDC, [-1, 1]) is nearest so far at (x, y)
// and records it if so.
func (r *Renderer) testDepth(x, y int, z float32) bool {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return false
	}
	i := y*r.w + x
	d := min(max((z+1)/2, 0), 1)
	if d > r.depth[i] {
		return false
	}
	r.depth[i] = d
	return true
}

// line is Bresenham with depth interpolated along the major axis.
func (r *Renderer) line(t Target, a, b screenPoint, c Color) {
	dx, dy := b.x-a.x, b.y-a.y
	sx, sy := 1, 1
	if dx < 0 {
		dx, sx = -dx, -1
	}
	if dy < 0 {
		dy, sy = -dy, -1
	}
	steps := max(dx, dy)
	if steps > maxLineSteps {
		return
	}
	x, y := a.x, a.y
	e := dx - dy
	for i := 0; ; i++ {
		z := a.z
		if steps > 0 {
			z += (b.z - a.z) * float32(i) / float32(steps)
		}
		if r.testDepth(x, y, z-lineBias) {
			t.SetPixel(x, y, c)
		}
		if x == b.x && y == b.y {
			return
		}
		e2 := 2 * e
		if e2 >= -dy {
			e -= dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

// fill rasterises a flat triangle with edge functions. Both windings are
// accepted since node transforms may mirror faces.
func (r *Renderer) fill(t Target, a, b, c screenPoint, col Color) {
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}
	minX, maxX := max(min(a.x, b.x, c.x), 0), min(max(a.x, b.x, c.x), r.w-1)
	minY, maxY := max(min(a.y, b.y, c.y), 0), min(max(a.y, b.y, c.y), r.h-1)
	inv := 1 / float32(area)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			wa, wb, wc := edge(b, c, x, y), edge(c, a, x, y), edge(a, b, x, y)
			if wa|wb|wc < 0 {
				continue
			}
			z := (float32(wa)*a.z + float32(wb)*b.z + float32(wc)*c.z) * inv
			if r.testDepth(x, y, z) {
				t.SetPixel(x, y, col)
			}
		}
	}
}

func edge(a, b screenPoint, x, y int) int {
	return (x-a.x)*(b.y-a.y) - (y-a.y)*(b.x-a.x)
}
