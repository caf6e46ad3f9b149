// Package hal is the boundary between the viewer and the machine it runs on:
// a framebuffer to draw into, key and pointer events to orbit the camera, and
// a line logger. Hosts (window, terminal, headless) own the frame cadence and
// call the app's step function once per frame.
package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// ErrStop is returned by an app step to end the host loop cleanly.
var ErrStop = errors.New("hal: stop")

type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp little endian: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is the back buffer the renderer draws into. Nothing drawn is
// visible to the host until Present.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyEscape
)

// KeyEvent is a keyboard event. Printable keys arrive with Code == KeyUnknown
// and a non-zero Rune.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

type Keyboard interface {
	Events() <-chan KeyEvent
}

type PointerKind uint8

const (
	PointerDrag PointerKind = iota + 1
	PointerWheel
)

// PointerEvent is a relative pointer motion. Drag deltas are in
// framebuffer pixels; wheel deltas are in notches, positive away from the user.
type PointerEvent struct {
	Kind   PointerKind
	DX, DY float64
}

type Pointer interface {
	Events() <-chan PointerEvent
}

type Display interface {
	Framebuffer() Framebuffer
}

type Input interface {
	Keyboard() Keyboard
	Pointer() Pointer
}

// HAL is the only contact point between the viewer and its host.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
}

// AppFactory builds the per-frame step function for a host.
type AppFactory func(HAL) (step func() error, err error)
