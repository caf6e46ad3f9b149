package quarkgl

import "math"

// Scalar is the component type of every vector and matrix.
type Scalar = float32

type Vec3 struct {
	X, Y, Z Scalar
}

// Vec4 is a homogeneous point or clip-space position.
type Vec4 struct {
	X, Y, Z, W Scalar
}

// Mat4 is column-major: m[col*4+row]. Translation lives in m[12:15].
type Mat4 [16]Scalar

func V3(x, y, z Scalar) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// V3f builds a vector from float64 components.
func V3f(x, y, z float64) Vec3 { return Vec3{X: Scalar(x), Y: Scalar(y), Z: Scalar(z)} }

func (v Vec3) Add(o Vec3) Vec3   { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3   { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Mul(s Scalar) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) Scalar { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

func (v Vec3) Len() Scalar { return Scalar(math.Sqrt(float64(v.Dot(v)))) }

// Normalize returns the unit vector along v, or zero for a zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

func Clamp01(v Scalar) Scalar {
	return Scalar(math.Min(1, math.Max(0, float64(v))))
}

func Identity() Mat4 {
	var m Mat4
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// Mul returns m·o, so o is applied first.
func (m Mat4) Mul(o Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		col := m.Transform(Vec4{o[c*4], o[c*4+1], o[c*4+2], o[c*4+3]})
		out[c*4], out[c*4+1], out[c*4+2], out[c*4+3] = col.X, col.Y, col.Z, col.W
	}
	return out
}

func (m Mat4) Transform(v Vec4) Vec4 {
	return Vec4{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		W: m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Point transforms p as a position (w = 1) and drops w.
func (m Mat4) Point(p Vec3) Vec3 {
	v := m.Transform(Vec4{p.X, p.Y, p.Z, 1})
	return Vec3{v.X, v.Y, v.Z}
}

func (m Mat4) Origin() Vec3 { return Vec3{m[12], m[13], m[14]} }

func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

func Scale(v Vec3) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = v.X, v.Y, v.Z
	return m
}

func sincos(rad Scalar) (s, c Scalar) {
	sn, cs := math.Sincos(float64(rad))
	return Scalar(sn), Scalar(cs)
}

func RotateX(rad Scalar) Mat4 {
	s, c := sincos(rad)
	return Basis(V3(1, 0, 0), V3(0, c, s), V3(0, -s, c))
}

func RotateY(rad Scalar) Mat4 {
	s, c := sincos(rad)
	return Basis(V3(c, 0, -s), V3(0, 1, 0), V3(s, 0, c))
}

// Basis builds a rotation whose columns are the given axes.
func Basis(x, y, z Vec3) Mat4 {
	return Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		0, 0, 0, 1,
	}
}

// AlignY returns a rotation taking +Y onto dir. A zero dir yields identity.
func AlignY(dir Vec3) Mat4 {
	y := dir.Normalize()
	if y == (Vec3{}) {
		return Identity()
	}
	helper := V3(0, 0, 1)
	if d := y.Dot(helper); d > 0.99 || d < -0.99 {
		helper = V3(1, 0, 0)
	}
	x := y.Cross(helper).Normalize()
	return Basis(x, y, x.Cross(y))
}

// LookAt is a right-handed view matrix looking from eye toward target.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)
	m := Basis(V3(s.X, u.X, -f.X), V3(s.Y, u.Y, -f.Y), V3(s.Z, u.Z, -f.Z))
	m[12], m[13], m[14] = -s.Dot(eye), -u.Dot(eye), f.Dot(eye)
	return m
}

// Perspective maps view space to clip space with depth in [-1, 1].
func Perspective(fovY, aspect, near, far Scalar) Mat4 {
	if aspect == 0 {
		aspect = 1
	}
	f := 1 / Scalar(math.Tan(float64(fovY)/2))
	nf := 1 / (near - far)
	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) * nf
	m[11] = -1
	m[14] = 2 * far * near * nf
	return m
}
