//go:build !tinygo && cgo

package hal

import (
	"context"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"boardlet/internal/buildinfo"
)

// RunWindow opens a desktop window that shows the LEDs and the applet
// console and turns digit keys into button presses. It blocks until the
// window closes or the applet ends.
func RunWindow(h *Host, hz int, run func(context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	g := &hostGame{h: h, fb: newHostFramebuffer(240, 160), done: done}
	ebiten.SetWindowTitle("boardlet (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(g.fb.width*3, g.fb.height*3)
	if hz > 0 {
		ebiten.SetTPS(hz)
	}
	err := ebiten.RunGame(g)
	if g.finished {
		return g.result
	}
	cancel()
	runErr := <-done
	if err != nil {
		return err
	}
	return runErr
}

type hostGame struct {
	h    *Host
	fb   *hostFramebuffer
	keys keyButtons

	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte

	done     <-chan error
	finished bool
	result   error
}

func (g *hostGame) Update() error {
	g.keys.poll(g.h)
	_ = g.h.usb.Flush()
	select {
	case err := <-g.done:
		g.finished = true
		g.result = err
		return ebiten.Termination
	default:
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.fb
	fb.render(g.h.LEDStates(), g.h.Console())

	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}
	fb.snapshotRGB565(g.scratch)

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		c := unpack565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = c.R
		dst[j+1] = c.G
		dst[j+2] = c.B
		dst[j+3] = c.A
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fb.width, g.fb.height
}
