package quarkgl

import "testing"

func newTarget(w, h int) *RGB565Target {
	return &RGB565Target{Buf: make([]byte, w*h*2), Stride: w * 2, W: w, H: h}
}

func countNonClear(t *RGB565Target, clear Color) int {
	bg := RGB565(clear)
	n := 0
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			if t.Pixel(x, y) != bg {
				n++
			}
		}
	}
	return n
}

func TestRenderBoxDrawsPixels(t *testing.T) {
	s := CreateScene(2)
	s.Light.Mode = LightOff
	s.AddMesh(Root, Identity(), NewBox(1, 1, 1, Hex(0xff0000)))
	tg := newTarget(64, 64)
	r := NewRenderer()
	f := r.Render(tg, s)
	if f.Seq != 1 || r.LastFrame().Seq != 1 {
		t.Fatalf("frame seq %d", f.Seq)
	}
	if got := tg.Pixel(32, 32); got != RGB565(Hex(0xff0000)) {
		t.Fatalf("center pixel %04x", got)
	}
}

func TestRenderLinesOnly(t *testing.T) {
	s := CreateScene(2)
	s.AddMesh(Root, Identity(), NewWireSphere(1, 6, 12, Hex(0xffffff)))
	tg := newTarget(64, 64)
	r := NewRenderer()
	r.Render(tg, s)
	if countNonClear(tg, r.ClearColor) == 0 {
		t.Fatalf("wire sphere drew nothing")
	}
}

func TestRenderDisabledSubtreeSkipped(t *testing.T) {
	s := CreateScene(2)
	g := s.AddGroup(Root, Identity())
	s.AddMesh(g, Identity(), NewBox(1, 1, 1, Hex(0x00ff00)))
	s.SetEnabled(g, false)
	tg := newTarget(32, 32)
	r := NewRenderer()
	r.Render(tg, s)
	if n := countNonClear(tg, r.ClearColor); n != 0 {
		t.Fatalf("disabled group drew %d pixels", n)
	}
}

func TestRenderOpacityBlendsTowardClear(t *testing.T) {
	s := CreateScene(2)
	s.Light.Mode = LightOff
	m := NewBox(1, 1, 1, RGB(200, 200, 200))
	m.Material.Opacity = 0x80
	s.AddMesh(Root, Identity(), m)
	tg := newTarget(32, 32)
	r := NewRenderer()
	r.Render(tg, s)
	want := RGB565(RGB(0, 0, 0).Lerp(RGB(200, 200, 200), Scalar(0x80)/255))
	if got := tg.Pixel(16, 16); got != want {
		t.Fatalf("pixel %04x want %04x", got, want)
	}
}

func TestRenderZeroTargetNoop(t *testing.T) {
	s := CreateScene(1)
	r := NewRenderer()
	r.RenderFrame(&RGB565Target{}, s, s.Camera.Frame(7, 0, 0))
	if r.LastFrame().Seq != 0 {
		t.Fatalf("zero-size target should not record a frame")
	}
}

func TestRGB565TargetStride(t *testing.T) {
	// 3 pixels wide with 2 bytes of row padding.
	tg := &RGB565Target{Buf: make([]byte, 8*2), Stride: 8, W: 3, H: 2}
	tg.Clear(RGB(0xff, 0xff, 0xff))
	if tg.Buf[6] != 0 || tg.Buf[7] != 0 {
		t.Fatalf("clear wrote into row padding")
	}
	tg.SetPixel(2, 1, Hex(0xff0000))
	if got := tg.Pixel(2, 1); got != 0xf800 {
		t.Fatalf("pixel %04x", got)
	}
	tg.SetPixel(3, 0, Hex(0x00ff00))
	if tg.Buf[6] != 0 {
		t.Fatalf("out of range SetPixel wrote")
	}
	if tg.Pixel(-1, 0) != 0 {
		t.Fatalf("out of range Pixel")
	}
}

func TestMeshBuilders(t *testing.T) {
	box := NewBox(1, 1, 1, Hex(0xffffff))
	if len(box.Points) != 8 || len(box.Triangles) != 36 {
		t.Fatalf("box %d points %d indices", len(box.Points), len(box.Triangles))
	}
	s := NewWireSphere(1, 1, 2, Hex(0xffffff))
	// clamped to 2 rings, 3 segments: one latitude ring and one meridian.
	if len(s.Points) != 6 || len(s.Lines) != 12 || len(s.Triangles) != 0 {
		t.Fatalf("sphere %d points %d lines", len(s.Points), len(s.Lines))
	}
	for _, p := range s.Points {
		if !near(p.Len(), 1) {
			t.Fatalf("point %+v off the sphere", p)
		}
	}
}
