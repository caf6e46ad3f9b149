package hal

import (
	"image"
	"image/color"
	"sync"
)

// hostFramebuffer is an RGB565 back buffer. Present decodes it into an RGBA
// front image that the window and terminal hosts read from their own loops.
type hostFramebuffer struct {
	width  int
	height int
	stride int
	buf    []byte

	mu        sync.Mutex
	front     *image.RGBA
	presented uint64
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: width * 2,
		buf:    make([]byte, width*2*height),
		front:  image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

func (f *hostFramebuffer) Width() int          { return f.width }
func (f *hostFramebuffer) Height() int         { return f.height }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *hostFramebuffer) StrideBytes() int    { return f.stride }
func (f *hostFramebuffer) Buffer() []byte      { return f.buf }

func (f *hostFramebuffer) Present() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pix := f.front.Pix
	for i, j := 0, 0; i+1 < len(f.buf); i, j = i+2, j+4 {
		c := decode565(uint16(f.buf[i]) | uint16(f.buf[i+1])<<8)
		pix[j], pix[j+1], pix[j+2], pix[j+3] = c.R, c.G, c.B, 0xFF
	}
	f.presented++
	return nil
}

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	p := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.buf[i] = byte(p)
		f.buf[i+1] = byte(p >> 8)
	}
}

// Presented reports how many frames have been published.
func (f *hostFramebuffer) Presented() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presented
}

// copyFront copies the last presented frame into dst, which must have the
// framebuffer's bounds.
func (f *hostFramebuffer) copyFront(dst *image.RGBA) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst.Pix, f.front.Pix)
}

func decode565(p uint16) color.RGBA {
	r, g, b := p>>11&0x1F, p>>5&0x3F, p&0x1F
	return color.RGBA{R: uint8(r * 255 / 31), G: uint8(g * 255 / 63), B: uint8(b * 255 / 31), A: 0xFF}
}
