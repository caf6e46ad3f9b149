package quarkgl

import "math"

// NewBox builds an axis-aligned box centered on the origin.
func NewBox(w, h, d Scalar, c Color) Mesh {
	x, y, z := w/2, h/2, d/2
	m := Mesh{
		Points: []Vec3{
			{-x, -y, -z}, {x, -y, -z}, {x, y, -z}, {-x, y, -z},
			{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z},
		},
		Material: Material{BaseColor: c, Opacity: 0xFF},
	}
	for _, f := range [6][4]uint16{
		{4, 5, 6, 7}, {1, 0, 3, 2}, // ±z
		{5, 1, 2, 6}, {0, 4, 7, 3}, // ±x
		{7, 6, 2, 3}, {0, 1, 5, 4}, // ±y
	} {
		m.Triangles = append(m.Triangles, f[0], f[1], f[2], f[0], f[2], f[3])
	}
	return m
}

// NewWireSphere builds a line-only sphere from rings of latitude and
// meridians. rings and segments are raised to at least 2 and 3.
func NewWireSphere(radius Scalar, rings, segments int, c Color) Mesh {
	rings, segments = max(rings, 2), max(segments, 3)
	m := Mesh{Material: Material{BaseColor: c, Opacity: 0xFF, Wireframe: true}}

	for i := 1; i < rings; i++ {
		lat := math.Pi * float64(i) / float64(rings)
		y, r := Scalar(math.Cos(lat))*radius, Scalar(math.Sin(lat))*radius
		m.ring(segments, func(a float64) Vec3 {
			s, c := sincos(Scalar(a))
			return V3(r*c, y, r*s)
		})
	}
	for j := 0; j < segments/2; j++ {
		st, ct := sincos(Scalar(math.Pi * float64(j) / float64(segments/2)))
		m.ring(segments, func(a float64) Vec3 {
			s, c := sincos(Scalar(a))
			return V3(c*radius*ct, s*radius, c*radius*st)
		})
	}
	return m
}

// ring appends a closed loop of n points.
func (m *Mesh) ring(n int, at func(a float64) Vec3) {
	base := uint16(len(m.Points))
	for k := 0; k < n; k++ {
		m.Points = append(m.Points, at(2*math.Pi*float64(k)/float64(n)))
		m.Lines = append(m.Lines, base+uint16(k), base+uint16((k+1)%n))
	}
}

func NewSegment(a, b Vec3, c Color) Mesh {
	return Mesh{
		Points:   []Vec3{a, b},
		Lines:    []uint16{0, 1},
		Material: Material{BaseColor: c, Opacity: 0xFF},
	}
}

// NewArrow builds an arrow along +Y from the origin to length with a
// pyramid head. Use AlignY to point it elsewhere.
func NewArrow(length Scalar, c Color) Mesh {
	head := length * 0.2
	shaft := length - head
	hw := head * 0.4
	return Mesh{
		Points: []Vec3{
			{0, 0, 0}, {0, length, 0},
			{-hw, shaft, -hw}, {hw, shaft, -hw}, {hw, shaft, hw}, {-hw, shaft, hw},
		},
		Lines: []uint16{0, 1},
		Triangles: []uint16{
			1, 2, 3, 1, 3, 4, 1, 4, 5, 1, 5, 2,
			2, 4, 3, 2, 5, 4,
		},
		Material: Material{BaseColor: c, Opacity: 0xFF},
	}
}
