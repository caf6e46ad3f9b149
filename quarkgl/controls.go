package quarkgl

import "math"

const (
	// maxPitch keeps the orbit off the poles, where LookAt loses its up axis.
	maxPitch = Scalar(math.Pi/2 - 0.05)
	// settle is the velocity below which an axis stops.
	settle = 1e-5
)

// OrbitController circles a camera around Target.
//
// Rotate and Zoom queue velocity that Update spends over the following
// frames, keeping Damping of it each time. With no damping, input lands
// immediately.
type OrbitController struct {
	Target     Vec3
	Yaw, Pitch Scalar
	Radius     Scalar

	// Zero bounds are unbounded.
	MinRadius, MaxRadius Scalar

	// Damping is the share of velocity kept per Update, in [0, 1).
	Damping Scalar

	// vel holds yaw, pitch and radius velocity in X, Y and Z.
	vel Vec3
}

// Apply places cam on the orbit, looking at Target.
func (c *OrbitController) Apply(cam *Camera) {
	if cam == nil {
		return
	}
	r := c.clampRadius(c.Radius)
	if r == 0 {
		r = 3
	}
	cam.Position = c.Target.Add(RotateY(c.Yaw).Mul(RotateX(-c.Pitch)).Point(V3(0, 0, r)))
	cam.Target = c.Target
	if cam.Up == (Vec3{}) {
		cam.Up = V3(0, 1, 0)
	}
}

func (c *OrbitController) Rotate(dYaw, dPitch Scalar) {
	c.push(V3(dYaw, dPitch, 0))
}

// Zoom moves the camera along its radius; positive is away from Target.
func (c *OrbitController) Zoom(d Scalar) {
	c.push(V3(0, 0, d))
}

func (c *OrbitController) push(d Vec3) {
	if c.Damping > 0 {
		c.vel = c.vel.Add(d)
		return
	}
	c.move(d)
}

func (c *OrbitController) move(d Vec3) {
	c.Yaw += d.X
	c.Pitch = min(max(c.Pitch+d.Y, -maxPitch), maxPitch)
	c.Radius = c.clampRadius(c.Radius + d.Z)
}

// Update spends one frame of queued velocity and reports whether the view
// moved.
func (c *OrbitController) Update() bool {
	if c.vel == (Vec3{}) {
		return false
	}
	keep := min(Clamp01(c.Damping), 0.99)
	c.move(c.vel.Mul(1 - keep))
	c.vel = c.vel.Mul(keep)
	for _, v := range []*Scalar{&c.vel.X, &c.vel.Y, &c.vel.Z} {
		if *v < settle && *v > -settle {
			*v = 0
		}
	}
	return true
}

func (c *OrbitController) clampRadius(r Scalar) Scalar {
	if c.MinRadius != 0 {
		r = max(r, c.MinRadius)
	}
	if c.MaxRadius != 0 {
		r = min(r, c.MaxRadius)
	}
	return r
}
