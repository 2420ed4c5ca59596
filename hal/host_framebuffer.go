//go:build !tinygo

package hal

import (
	"image/color"
	"strings"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

const consoleLines = 24

// consoleLog keeps the last applet output lines for the window.
type consoleLog struct {
	mu   sync.Mutex
	buf  []string
	next int
	full bool
}

func newConsoleLog(n int) *consoleLog { return &consoleLog{buf: make([]string, n)} }

func (c *consoleLog) append(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range strings.Split(line, "\n") {
		c.buf[c.next] = l
		c.next = (c.next + 1) % len(c.buf)
		if c.next == 0 {
			c.full = true
		}
	}
}

// lines returns the stored lines, oldest first.
func (c *consoleLog) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.full {
		return append([]string(nil), c.buf[:c.next]...)
	}
	out := make([]string, 0, len(c.buf))
	out = append(out, c.buf[c.next:]...)
	return append(out, c.buf[:c.next]...)
}

// hostFramebuffer is an RGB565 frame the window scales onto the screen.
// It implements drivers.Displayer so tinyfont can draw into it.
type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
}

var _ drivers.Displayer = (*hostFramebuffer)(nil)

// pack565 converts c to the framebuffer's little-endian RGB565 pixel.
func pack565(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

// unpack565 expands a pixel to 8-bit channels, replicating the high bits
// into the low ones so full intensity maps back to 0xFF.
func unpack565(p uint16) color.RGBA {
	r, g, b := uint8(p>>11&0x1F), uint8(p>>5&0x3F), uint8(p&0x1F)
	return color.RGBA{R: r<<3 | r>>2, G: g<<2 | g>>4, B: b<<3 | b>>2, A: 0xFF}
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 2
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (f *hostFramebuffer) Size() (x, y int16) { return int16(f.width), int16(f.height) }
func (f *hostFramebuffer) Display() error     { return nil }

func (f *hostFramebuffer) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= f.width || iy < 0 || iy >= f.height {
		return
	}
	pixel := pack565(c)
	off := iy*f.stride + ix*2
	f.buf[off] = byte(pixel)
	f.buf[off+1] = byte(pixel >> 8)
}

func (f *hostFramebuffer) fillRect(x, y, w, h int, c color.RGBA) {
	for py := max(y, 0); py < min(y+h, f.height); py++ {
		for px := max(x, 0); px < min(x+w, f.width); px++ {
			f.SetPixel(int16(px), int16(py), c)
		}
	}
}

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	pixel := pack565(color.RGBA{R: r, G: g, B: b})
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

var (
	colorBG     = color.RGBA{R: 0x08, G: 0x08, B: 0x08, A: 0xff}
	colorFG     = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	colorLEDOn  = color.RGBA{R: 0x4a, G: 0xdf, B: 0x6a, A: 0xff}
	colorLEDOff = color.RGBA{R: 0x24, G: 0x24, B: 0x24, A: 0xff}
)

const (
	ledTile   = 16
	ledMargin = 4
	lineH     = 6
)

// render draws the LED row and the console into the frame.
func (f *hostFramebuffer) render(leds []bool, lines []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ClearRGB(colorBG.R, colorBG.G, colorBG.B)
	for i, on := range leds {
		c := colorLEDOff
		if on {
			c = colorLEDOn
		}
		f.fillRect(ledMargin+i*(ledTile+ledMargin), ledMargin, ledTile, ledTile, c)
	}

	y := 2*ledMargin + ledTile + lineH
	for _, l := range lines {
		if y > f.height {
			break
		}
		tinyfont.WriteLine(f, &tinyfont.TomThumb, ledMargin, int16(y), l, colorFG)
		y += lineH
	}
}

func (f *hostFramebuffer) snapshotRGB565(dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
}
