//go:build !cgo

package hal

// poll is a no-op without the window backend; the terminal host pushes
// events through emit.
func (k *hostKeyboard) poll() {}
