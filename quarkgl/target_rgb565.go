package quarkgl

import "encoding/binary"

// RGB565Target draws into a caller-owned little-endian RGB565 buffer, such
// as a hal framebuffer's back buffer.
type RGB565Target struct {
	Buf    []byte
	Stride int // bytes per row
	W, H   int
}

func (t *RGB565Target) Size() (w, h int) { return t.W, t.H }

// offset returns the byte offset of (x, y), or false if it falls outside
// the target or its buffer.
func (t *RGB565Target) offset(x, y int) (int, bool) {
	if t == nil || x < 0 || y < 0 || x >= t.W || y >= t.H {
		return 0, false
	}
	off := y*t.Stride + x*2
	return off, off+2 <= len(t.Buf)
}

func (t *RGB565Target) Clear(c Color) {
	if t == nil || t.W <= 0 || t.H <= 0 {
		return
	}
	first, ok := t.offset(0, 0)
	last, _ := t.offset(t.W-1, 0)
	if !ok || last+2 > len(t.Buf) {
		return
	}
	row := t.Buf[first : last+2]
	p := RGB565(c)
	for i := 0; i < len(row); i += 2 {
		binary.LittleEndian.PutUint16(row[i:], p)
	}
	for y := 1; y < t.H; y++ {
		off := y * t.Stride
		if off+len(row) > len(t.Buf) {
			return
		}
		copy(t.Buf[off:], row)
	}
}

func (t *RGB565Target) SetPixel(x, y int, c Color) {
	if off, ok := t.offset(x, y); ok {
		binary.LittleEndian.PutUint16(t.Buf[off:], RGB565(c))
	}
}

// Pixel returns the packed value at (x, y), or 0 outside the target.
func (t *RGB565Target) Pixel(x, y int) uint16 {
	if off, ok := t.offset(x, y); ok {
		return binary.LittleEndian.Uint16(t.Buf[off:])
	}
	return 0
}

// RGB565 packs c as rrrrrggggggbbbbb, dropping alpha.
func RGB565(c Color) uint16 {
	return uint16(c.R&0xF8)<<8 | uint16(c.G&0xFC)<<3 | uint16(c.B)>>3
}
