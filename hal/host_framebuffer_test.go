//go:build !tinygo

package hal

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLogKeepsNewest(t *testing.T) {
	c := newConsoleLog(3)
	c.append("a")
	c.append("b")
	assert.Equal(t, []string{"a", "b"}, c.lines())

	c.append("c\nd")
	assert.Equal(t, []string{"b", "c", "d"}, c.lines())
}

func TestFramebufferRenderLEDs(t *testing.T) {
	fb := newHostFramebuffer(64, 64)
	fb.render([]bool{true, false}, []string{"hi"})

	at := func(x, y int) uint16 {
		off := y*fb.stride + x*2
		return uint16(fb.buf[off]) | uint16(fb.buf[off+1])<<8
	}
	assert.Equal(t, pack565(colorLEDOn), at(ledMargin, ledMargin))
	assert.Equal(t, pack565(colorLEDOff), at(2*ledMargin+ledTile, ledMargin))
	assert.Equal(t, pack565(colorBG), at(63, 0))
}

func TestPixel565(t *testing.T) {
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	assert.Equal(t, uint16(0xFFFF), pack565(white))
	assert.Equal(t, white, unpack565(0xFFFF))
	assert.Equal(t, color.RGBA{A: 0xFF}, unpack565(pack565(color.RGBA{R: 7, G: 3, B: 7})))
	assert.Equal(t, uint16(0xF800), pack565(color.RGBA{R: 0xFF}))
}
