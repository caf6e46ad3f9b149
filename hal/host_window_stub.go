//go:build !cgo

package hal

import "errors"

// ErrNoWindow is returned by RunWindow in builds without cgo, where ebiten
// cannot open a window. Use the terminal or headless host instead.
var ErrNoWindow = errors.New("hal: window host needs a cgo build")

func RunWindow(HostConfig, AppFactory) error { return ErrNoWindow }
