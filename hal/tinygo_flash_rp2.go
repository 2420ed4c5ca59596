//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"fmt"
	"machine"
)

// updateRegionMax caps the update region inside the flash data area.
const updateRegionMax = 256 * 1024

type rp2Flash struct{}

func newTinyGoUpdate() Update {
	f := rp2Flash{}
	if f.EraseBlockBytes() == 0 || f.SizeBytes() == 0 {
		return UnsupportedUpdate{}
	}
	return NewFlashUpdate(f, 256, nil)
}

func (rp2Flash) SizeBytes() uint32 {
	sz := machine.Flash.Size()
	if sz <= 0 {
		return 0
	}
	if sz > updateRegionMax {
		sz = updateRegionMax
	}
	bs := rp2Flash{}.EraseBlockBytes()
	if bs == 0 {
		return 0
	}
	return uint32(sz) / bs * bs
}

func (rp2Flash) EraseBlockBytes() uint32 {
	bs := machine.Flash.EraseBlockSize()
	if bs <= 0 || bs > int64(^uint32(0)) {
		return 0
	}
	return uint32(bs)
}

func (rp2Flash) ReadAt(p []byte, off uint32) (int, error) {
	n, err := machine.Flash.ReadAt(p, int64(off))
	if err != nil {
		return n, fmt.Errorf("flash read at %d: %w", off, err)
	}
	return n, nil
}

func (rp2Flash) WriteAt(p []byte, off uint32) (int, error) {
	n, err := machine.Flash.WriteAt(p, int64(off))
	if err != nil {
		return n, fmt.Errorf("flash write at %d: %w", off, err)
	}
	return n, nil
}

func (rp2Flash) Erase(off, size uint32) error {
	bs := rp2Flash{}.EraseBlockBytes()
	if bs == 0 || off%bs != 0 || size%bs != 0 {
		return fmt.Errorf("flash erase off=%d size=%d: unaligned", off, size)
	}
	return machine.Flash.EraseBlocks(int64(off/bs), int64(size/bs))
}
