package quarkgl

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3 // zero means +Y

	FOVY      Scalar // vertical field of view in radians
	Near, Far Scalar
}

func (c Camera) view() Mat4 {
	up := c.Up
	if up == (Vec3{}) {
		up = V3(0, 1, 0)
	}
	return LookAt(c.Position, c.Target, up)
}

func (c Camera) projection(aspect Scalar) Mat4 {
	fov := c.FOVY
	if fov <= 0 {
		fov = 1
	}
	return Perspective(fov, aspect, c.Near, c.Far)
}

// Frame is an immutable camera snapshot for one display tick.
type Frame struct {
	Seq  uint64
	W, H int

	Eye      Vec3
	View     Mat4
	Proj     Mat4
	ViewProj Mat4
}

// Frame snapshots the camera for a w×h target.
func (c Camera) Frame(seq uint64, w, h int) Frame {
	aspect := Scalar(1)
	if h > 0 {
		aspect = Scalar(w) / Scalar(h)
	}
	view := c.view()
	proj := c.projection(aspect)
	return Frame{
		Seq:      seq,
		W:        w,
		H:        h,
		Eye:      c.Position,
		View:     view,
		Proj:     proj,
		ViewProj: proj.Mul(view),
	}
}

// Project maps a world-space point to screen pixels.
//
// ok is false for points behind the camera or outside the depth range.
func (f Frame) Project(p Vec3) (x, y int, depth float32, ok bool) {
	clip := f.ViewProj.Transform(Vec4{X: p.X, Y: p.Y, Z: p.Z, W: 1})
	ndc, ok := clipToNDC(clip)
	if !ok || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}
	x, y = ndcToScreen(ndc, f.W, f.H)
	return x, y, ndc.Z, true
}
