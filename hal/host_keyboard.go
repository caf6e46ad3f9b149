//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var ebitenKeys = [...]struct {
	key    ebiten.Key
	code   KeyCode
	repeat bool
}{
	{ebiten.KeyArrowUp, KeyUp, true},
	{ebiten.KeyArrowDown, KeyDown, true},
	{ebiten.KeyArrowLeft, KeyLeft, true},
	{ebiten.KeyArrowRight, KeyRight, true},
	{ebiten.KeyPageUp, KeyPageUp, true},
	{ebiten.KeyPageDown, KeyPageDown, true},
	{ebiten.KeyEscape, KeyEscape, false},
}

// poll turns this tick's ebiten key state into events. Orbit and zoom keys
// repeat every tick while held.
func (k *hostKeyboard) poll() {
	for _, r := range ebiten.AppendInputChars(nil) {
		k.emit(KeyEvent{Press: true, Rune: r})
	}
	for _, m := range ebitenKeys {
		switch {
		case inpututil.IsKeyJustPressed(m.key):
			k.emit(KeyEvent{Code: m.code, Press: true})
		case inpututil.IsKeyJustReleased(m.key):
			k.emit(KeyEvent{Code: m.code, Press: false})
		case m.repeat && ebiten.IsKeyPressed(m.key):
			k.emit(KeyEvent{Code: m.code, Press: true})
		}
	}
}
