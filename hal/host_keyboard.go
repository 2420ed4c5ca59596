//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var digitKeys = [...]ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// keyButtons maps digit keys 1..9 to buttons 0..8. Each edge is one
// interrupt: a press and a release both reach the board.
type keyButtons struct{}

func (keyButtons) poll(h *Host) {
	for i, k := range digitKeys {
		if inpututil.IsKeyJustPressed(k) {
			h.Press(i, true)
		}
		if inpututil.IsKeyJustReleased(k) {
			h.Press(i, false)
		}
	}
}
