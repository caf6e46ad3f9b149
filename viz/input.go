package viz

import "qviz/hal"

// InputKind tags an InputEvent.
type InputKind uint8

const (
	InputNone InputKind = iota
	InputRotate
	InputZoom
	InputToggleWireframe
)

// InputEvent is a camera or display interaction.
type InputEvent struct {
	Kind   InputKind
	DX, DY float64
}

// Interaction tuning.
const (
	KeyRotateStep  = 0.06
	DragRotateRate = 0.01
	KeyZoomStep    = 1.0
	WheelZoomStep  = 1.5
)

// FromKey maps camera keys. It reports false for keys the engine does not
// handle.
func FromKey(ev hal.KeyEvent) (InputEvent, bool) {
	if !ev.Press {
		return InputEvent{}, false
	}
	switch ev.Code {
	case hal.KeyLeft:
		return InputEvent{Kind: InputRotate, DX: -KeyRotateStep}, true
	case hal.KeyRight:
		return InputEvent{Kind: InputRotate, DX: KeyRotateStep}, true
	case hal.KeyUp:
		return InputEvent{Kind: InputRotate, DY: KeyRotateStep}, true
	case hal.KeyDown:
		return InputEvent{Kind: InputRotate, DY: -KeyRotateStep}, true
	case hal.KeyPageUp:
		return InputEvent{Kind: InputZoom, DY: -KeyZoomStep}, true
	case hal.KeyPageDown:
		return InputEvent{Kind: InputZoom, DY: KeyZoomStep}, true
	}
	switch ev.Rune {
	case '+', '=':
		return InputEvent{Kind: InputZoom, DY: -KeyZoomStep}, true
	case '-', '_':
		return InputEvent{Kind: InputZoom, DY: KeyZoomStep}, true
	case 'w', 'W':
		return InputEvent{Kind: InputToggleWireframe}, true
	}
	return InputEvent{}, false
}

// FromPointer maps mouse drag to orbit and wheel to zoom.
func FromPointer(ev hal.PointerEvent) (InputEvent, bool) {
	switch ev.Kind {
	case hal.PointerDrag:
		return InputEvent{Kind: InputRotate, DX: -ev.DX * DragRotateRate, DY: ev.DY * DragRotateRate}, true
	case hal.PointerWheel:
		return InputEvent{Kind: InputZoom, DY: -ev.DY * WheelZoomStep}, true
	}
	return InputEvent{}, false
}
