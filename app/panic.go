package app

import (
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"qviz/hal"
	"qviz/quarkgl"
)

const (
	panicLineH    = 10
	panicBaseline = 7
)

var (
	panicBG = quarkgl.Hex(0x7a1010)
	panicFG = color.RGBA{R: 0xff, G: 0xe0, B: 0xe0, A: 0xff}
)

// guard wraps step so a panic ends the host loop with an error instead of
// taking the process down mid-frame. The panic and its stack go to the host
// logger and, when the framebuffer is RGB565, onto the screen.
func guard(h hal.HAL, step func() error) func() error {
	return func() (err error) {
		defer func() {
			if v := recover(); v != nil {
				lines := panicLines(v, debug.Stack())
				if l := h.Logger(); l != nil {
					for _, s := range lines {
						l.WriteLineString(s)
					}
				}
				paintPanic(h.Display(), lines)
				err = fmt.Errorf("qviz panic: %v", v)
			}
		}()
		return step()
	}
}

func panicLines(v any, stack []byte) []string {
	lines := []string{fmt.Sprintf("qviz panic: %v", v)}
	for _, s := range strings.Split(string(stack), "\n") {
		if s = strings.ReplaceAll(s, "\t", "  "); strings.TrimSpace(s) != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

func paintPanic(disp hal.Display, lines []string) {
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	font := &proggy.TinySZ8pt7b
	_, glyphW := tinyfont.LineWidth(font, "0")
	if glyphW == 0 {
		return
	}

	t := &quarkgl.RGB565Target{Buf: fb.Buffer(), Stride: fb.StrideBytes(), W: fb.Width(), H: fb.Height()}
	t.Clear(panicBG)
	d := &quarkgl.TargetDisplay{T: t}
	cols := max(fb.Width()/int(glyphW), 1)
	y := 0
	for _, line := range lines {
		for _, row := range wrapRunes(line, cols) {
			if y+panicLineH > fb.Height() {
				_ = fb.Present()
				return
			}
			tinyfont.WriteLine(d, font, 0, int16(y+panicBaseline), row, panicFG)
			y += panicLineH
		}
	}
	_ = fb.Present()
}

// wrapRunes splits s into rows of at most n runes. Continuation rows lose
// their leading spaces.
func wrapRunes(s string, n int) []string {
	if n <= 0 {
		return []string{s}
	}
	var rows []string
	r := []rune(s)
	for len(r) > n {
		rows = append(rows, string(r[:n]))
		r = []rune(strings.TrimLeft(string(r[n:]), " "))
	}
	return append(rows, string(r))
}
