package quarkgl

import "testing"

func TestOrbitImmediateWithoutDamping(t *testing.T) {
	c := OrbitController{Radius: 5}
	c.Rotate(0.5, 0)
	if c.Yaw != 0.5 {
		t.Fatalf("yaw %v", c.Yaw)
	}
	if c.Update() {
		t.Fatalf("no velocity expected")
	}
}

func TestOrbitDampingConverges(t *testing.T) {
	c := OrbitController{Radius: 10, Damping: 0.8, MinRadius: 2, MaxRadius: 20}
	c.Rotate(1, 0)
	for i := 0; i < 200; i++ {
		c.Update()
	}
	if !near(c.Yaw, 1) {
		t.Fatalf("yaw %v, want ~1", c.Yaw)
	}
	if c.Update() {
		t.Fatalf("velocity should have settled")
	}
}

func TestOrbitClamps(t *testing.T) {
	c := OrbitController{Radius: 10, MinRadius: 2, MaxRadius: 20}
	c.Zoom(-100)
	if c.Radius != 2 {
		t.Fatalf("radius %v", c.Radius)
	}
	c.Rotate(0, 10)
	if c.Pitch != maxPitch {
		t.Fatalf("pitch %v", c.Pitch)
	}
	var cam Camera
	c.Apply(&cam)
	if cam.Position.Y <= 0 {
		t.Fatalf("positive pitch should place camera above target, got %+v", cam.Position)
	}
}
