//go:build cgo

package hal

import (
	"errors"
	"fmt"
	"image"

	"qviz/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow starts a desktop window that displays the framebuffer and
// forwards keyboard and mouse input. It blocks until the window closes or
// the app step returns ErrStop.
func RunWindow(cfg HostConfig, newApp AppFactory) error {
	cfg = cfg.withDefaults()
	h := newHost(cfg)
	step, err := newApp(h)
	if err != nil {
		return err
	}

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle(fmt.Sprintf("%s (%s)", cfg.Title, buildinfo.Short()))
	ebiten.SetWindowSize(h.fb.width*2, h.fb.height*2)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	err = ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type hostGame struct {
	h     *hostHAL
	front *image.RGBA
	img   *ebiten.Image
	step  func() error

	dragging     bool
	lastX, lastY int
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	g.pollPointer()
	stop, err := runStep(g.step)
	if err != nil {
		return err
	}
	if stop {
		return ebiten.Termination
	}
	return nil
}

func (g *hostGame) pollPointer() {
	x, y := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if g.dragging && (x != g.lastX || y != g.lastY) {
			g.h.ptr.emit(PointerEvent{Kind: PointerDrag, DX: float64(x - g.lastX), DY: float64(y - g.lastY)})
		}
		g.dragging = true
	} else {
		g.dragging = false
	}
	g.lastX, g.lastY = x, y

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.h.ptr.emit(PointerEvent{Kind: PointerWheel, DY: wy})
	}
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.front == nil {
		g.front = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.img = ebiten.NewImage(fb.width, fb.height)
	}
	fb.copyFront(g.front)
	g.img.WritePixels(g.front.Pix)
	screen.DrawImage(g.img, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
