//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"boardlet/internal/image"
)

var ErrFlashWriteRequiresErase = errors.New("flash write requires erase")

// hostFlash is a file with NOR flash semantics: erased bytes read 0xFF and
// a write may only clear bits.
type hostFlash struct {
	f         *os.File
	size      uint32
	eraseSize uint32
	blank     []byte
}

func openHostFlash(path string, size, eraseSize uint32) (*hostFlash, error) {
	if eraseSize == 0 || size == 0 || size%eraseSize != 0 {
		return nil, fmt.Errorf("flash: size %d not multiple of erase size %d", size, eraseSize)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open flash file %q: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat flash file %q: %w", path, err)
	}
	hf := &hostFlash{f: f, size: size, eraseSize: eraseSize, blank: make([]byte, eraseSize)}
	for i := range hf.blank {
		hf.blank[i] = 0xFF
	}
	if st.Size() != int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("truncate flash file %q to %d: %w", path, size, err)
		}
		if err := hf.Erase(0, size); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return hf, nil
}

func (f *hostFlash) ReadAt(p []byte, off uint32) (int, error) {
	if off >= f.size {
		return 0, fmt.Errorf("flash read at %d: %w", off, os.ErrInvalid)
	}
	if maxN := int(f.size - off); len(p) > maxN {
		p = p[:maxN]
	}
	return f.f.ReadAt(p, int64(off))
}

func (f *hostFlash) WriteAt(p []byte, off uint32) (int, error) {
	if off >= f.size {
		return 0, fmt.Errorf("flash write at %d: %w", off, os.ErrInvalid)
	}
	if maxN := int(f.size - off); len(p) > maxN {
		p = p[:maxN]
	}
	prev := make([]byte, len(p))
	if _, err := f.f.ReadAt(prev, int64(off)); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("flash read before write at %d: %w", off, err)
	}
	for i := range p {
		if prev[i]&p[i] != p[i] {
			return 0, ErrFlashWriteRequiresErase
		}
	}
	return f.f.WriteAt(p, int64(off))
}

func (f *hostFlash) Erase(off, size uint32) error {
	if off%f.eraseSize != 0 || size%f.eraseSize != 0 || off >= f.size || off+size > f.size {
		return fmt.Errorf("flash erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	for ; size > 0; size -= f.eraseSize {
		if _, err := f.f.WriteAt(f.blank, int64(off)); err != nil {
			return fmt.Errorf("flash erase block at %d: %w", off, err)
		}
		off += f.eraseSize
	}
	return nil
}

func (f *hostFlash) SizeBytes() uint32       { return f.size }
func (f *hostFlash) EraseBlockBytes() uint32 { return f.eraseSize }

func openHostUpdate(path string, size, pageSize, chunk int, logger *slog.Logger) (*FlashUpdate, error) {
	f, err := openHostFlash(path, uint32(size), uint32(pageSize))
	if err != nil {
		return nil, err
	}
	verify := func(data []byte, dryRun bool) error {
		h, _, err := image.Parse(data)
		if err != nil {
			return err
		}
		logger.Info("update image verified", "name", h.Name, "version", h.Version, "size", h.Size, "dry_run", dryRun)
		return nil
	}
	return NewFlashUpdate(f, chunk, verify), nil
}
