package hal

import "sync"

// Flash is an erase-before-write storage device.
type Flash interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// VerifyFunc checks a complete transferred image. It runs on Finish; an
// error rejects the update with User/InvalidArgument.
type VerifyFunc func(image []byte, dryRun bool) error

// FlashUpdate runs the update transfer protocol against a Flash device.
//
// Start returns one page per erase block. Erase must then be called exactly
// once per page, in order, before the first Write. Writes are sequential and
// every chunk but the last is exactly ChunkSize bytes.
type FlashUpdate struct {
	mu     sync.Mutex
	flash  Flash
	chunk  int
	verify VerifyFunc

	started bool
	dryRun  bool
	pages   int
	erased  int
	off     uint32
	short   bool
	// data mirrors the written image for verify; nil when verify is nil.
	data []byte
}

func NewFlashUpdate(f Flash, chunk int, verify VerifyFunc) *FlashUpdate {
	return &FlashUpdate{flash: f, chunk: chunk, verify: verify}
}

func (u *FlashUpdate) Supported() bool { return true }
func (u *FlashUpdate) ChunkSize() int  { return u.chunk }

// Start begins a transfer. Starting again abandons the previous one.
func (u *FlashUpdate) Start(dryRun bool) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	bs := u.flash.EraseBlockBytes()
	if bs == 0 {
		return 0, ErrUnsupported
	}
	u.started = true
	u.dryRun = dryRun
	u.pages = int(u.flash.SizeBytes() / bs)
	u.erased = 0
	u.off = 0
	u.short = false
	u.data = u.data[:0]
	return u.pages, nil
}

func (u *FlashUpdate) Erase() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.started || u.erased >= u.pages {
		return Errorf(SpaceUser, CodeInvalidState, "update erase: %d of %d pages erased", u.erased, u.pages)
	}
	if !u.dryRun {
		bs := u.flash.EraseBlockBytes()
		if err := u.flash.Erase(uint32(u.erased)*bs, bs); err != nil {
			return &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
		}
	}
	u.erased++
	return nil
}

func (u *FlashUpdate) Write(chunk []byte) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	switch {
	case !u.started:
		return Errorf(SpaceUser, CodeInvalidState, "update write before start")
	case u.erased != u.pages:
		return Errorf(SpaceUser, CodeInvalidState, "update write with %d of %d pages erased", u.erased, u.pages)
	case u.short:
		return Errorf(SpaceUser, CodeInvalidState, "update write after final chunk")
	case len(chunk) > u.chunk:
		return Errorf(SpaceUser, CodeInvalidLength, "update chunk of %d bytes, max %d", len(chunk), u.chunk)
	case uint64(u.off)+uint64(len(chunk)) > uint64(u.flash.SizeBytes()):
		return Errorf(SpaceUser, CodeInvalidLength, "update image exceeds %d bytes", u.flash.SizeBytes())
	}
	if !u.dryRun {
		if _, err := u.flash.WriteAt(chunk, u.off); err != nil {
			return &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
		}
	}
	if u.verify != nil {
		u.data = append(u.data, chunk...)
	}
	u.off += uint32(len(chunk))
	u.short = len(chunk) < u.chunk
	return nil
}

func (u *FlashUpdate) Finish() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.started || u.erased != u.pages {
		return Errorf(SpaceUser, CodeInvalidState, "update finish before transfer")
	}
	u.started = false
	if u.verify != nil {
		if err := u.verify(u.data, u.dryRun); err != nil {
			return Errorf(SpaceUser, CodeInvalidArgument, "update image: %v", err)
		}
	}
	return nil
}
