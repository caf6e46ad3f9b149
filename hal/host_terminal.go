package hal

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/gdamore/tcell/v2"
)

// TerminalConfig controls the tcell host runner.
type TerminalConfig struct {
	Hz int
}

// RunTerminal renders the framebuffer into the terminal using half-block
// cells (two pixels per cell) and forwards tcell key and mouse events.
func RunTerminal(ctx context.Context, hc HostConfig, newApp AppFactory, cfg TerminalConfig) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()
	return runTerminal(ctx, screen, hc, newApp, cfg)
}

func runTerminal(ctx context.Context, screen tcell.Screen, hc HostConfig, newApp AppFactory, cfg TerminalConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 30
	}
	h := newHost(hc)
	step, err := newApp(h)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	t := time.NewTicker(time.Second / time.Duration(cfg.Hz))
	defer t.Stop()

	tr := &termRenderer{fb: h.fb}
	var drag termDrag
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				h.kbd.emit(translateKey(ev))
			case *tcell.EventMouse:
				drag.handle(h, ev, tr)
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-t.C:
			stop, err := runStep(step)
			if err != nil || stop {
				return err
			}
			tr.draw(screen)
		}
	}
}

func translateKey(ev *tcell.EventKey) KeyEvent {
	switch ev.Key() {
	case tcell.KeyUp:
		return KeyEvent{Code: KeyUp, Press: true}
	case tcell.KeyDown:
		return KeyEvent{Code: KeyDown, Press: true}
	case tcell.KeyLeft:
		return KeyEvent{Code: KeyLeft, Press: true}
	case tcell.KeyRight:
		return KeyEvent{Code: KeyRight, Press: true}
	case tcell.KeyPgUp:
		return KeyEvent{Code: KeyPageUp, Press: true}
	case tcell.KeyPgDn:
		return KeyEvent{Code: KeyPageDown, Press: true}
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return KeyEvent{Code: KeyEscape, Press: true}
	case tcell.KeyRune:
		return KeyEvent{Press: true, Rune: ev.Rune()}
	}
	return KeyEvent{Code: KeyUnknown, Press: true}
}

type termDrag struct {
	active bool
	x, y   int
}

func (d *termDrag) handle(h *hostHAL, ev *tcell.EventMouse, tr *termRenderer) {
	x, y := ev.Position()
	btn := ev.Buttons()
	switch {
	case btn&tcell.WheelUp != 0:
		h.ptr.emit(PointerEvent{Kind: PointerWheel, DY: 1})
	case btn&tcell.WheelDown != 0:
		h.ptr.emit(PointerEvent{Kind: PointerWheel, DY: -1})
	case btn&tcell.Button1 != 0:
		if d.active {
			sx, sy := tr.scale()
			h.ptr.emit(PointerEvent{Kind: PointerDrag, DX: float64(x-d.x) * sx, DY: float64(y-d.y) * sy})
		}
		d.active = true
		d.x, d.y = x, y
	default:
		d.active = false
	}
}

// termRenderer downsamples the presented framebuffer onto the cell grid.
type termRenderer struct {
	fb    *hostFramebuffer
	front *image.RGBA
	cols  int
	rows  int
}

func (tr *termRenderer) scale() (sx, sy float64) {
	if tr.cols <= 0 || tr.rows <= 0 {
		return 1, 1
	}
	return float64(tr.fb.width) / float64(tr.cols), float64(tr.fb.height) / float64(tr.rows)
}

func (tr *termRenderer) draw(screen tcell.Screen) {
	tr.cols, tr.rows = screen.Size()
	if tr.cols <= 0 || tr.rows <= 0 {
		return
	}
	if tr.front == nil {
		tr.front = image.NewRGBA(image.Rect(0, 0, tr.fb.width, tr.fb.height))
	}
	tr.fb.copyFront(tr.front)

	fw, fh := tr.fb.width, tr.fb.height
	subRows := tr.rows * 2
	for cy := 0; cy < tr.rows; cy++ {
		for cx := 0; cx < tr.cols; cx++ {
			px := cx * fw / tr.cols
			top := (cy * 2) * fh / subRows
			bot := (cy*2 + 1) * fh / subRows
			hi, lo := tr.front.RGBAAt(px, top), tr.front.RGBAAt(px, bot)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(hi.R), int32(hi.G), int32(hi.B))).
				Background(tcell.NewRGBColor(int32(lo.R), int32(lo.G), int32(lo.B)))
			screen.SetContent(cx, cy, '▀', nil, style)
		}
	}
	screen.Show()
}
