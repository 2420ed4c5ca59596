//go:build !tinygo

package hal

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"sync"
)

type uartPort struct {
	started bool
	baud    uint32
	rx      bytes.Buffer
	tx      bytes.Buffer
	notify  [2]bool
}

// hostUART is a set of in-memory ports. Bytes injected by the simulator
// become readable; bytes the applet writes are kept until drained. Events
// are pushed under mu, which Disable also takes.
type hostUART struct {
	mu    sync.Mutex
	ports []uartPort
	sink  Sink
}

func newHostUART(n int, sink Sink) *hostUART {
	u := &hostUART{ports: make([]uartPort, n), sink: sink}
	for i := range u.ports {
		u.ports[i].baud = 115200
	}
	return u
}

func (u *hostUART) Supported() bool { return true }
func (u *hostUART) Count() int      { return len(u.ports) }

func (u *hostUART) SetBaudrate(id ID[KindUART], baud uint32) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	p := &u.ports[id.Index()]
	if p.started {
		return Errorf(SpaceUser, CodeInvalidState, "uart %d: set baudrate while started", id.Index())
	}
	if baud == 0 {
		return Errorf(SpaceUser, CodeInvalidArgument, "uart %d: zero baudrate", id.Index())
	}
	p.baud = baud
	return nil
}

func (u *hostUART) Start(id ID[KindUART]) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ports[id.Index()].started = true
	return nil
}

func (u *hostUART) Stop(id ID[KindUART]) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	p := &u.ports[id.Index()]
	p.started = false
	p.rx.Reset()
	return nil
}

func (u *hostUART) Read(id ID[KindUART], b []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p := &u.ports[id.Index()]
	if !p.started {
		return 0, Errorf(SpaceUser, CodeInvalidState, "uart %d: not started", id.Index())
	}
	n, _ := p.rx.Read(b)
	return n, nil
}

func (u *hostUART) Write(id ID[KindUART], b []byte) (int, error) {
	u.mu.Lock()
	p := &u.ports[id.Index()]
	if !p.started {
		u.mu.Unlock()
		return 0, Errorf(SpaceUser, CodeInvalidState, "uart %d: not started", id.Index())
	}
	p.tx.Write(b)
	if p.notify[DirWrite] && len(b) > 0 {
		u.sink.Push(UARTEvent{UART: id.Index(), Direction: DirWrite})
	}
	u.mu.Unlock()
	return len(b), nil
}

func (u *hostUART) Enable(id ID[KindUART], dir Direction) error {
	return u.setNotify(id, dir, true)
}

func (u *hostUART) Disable(id ID[KindUART], dir Direction) error {
	return u.setNotify(id, dir, false)
}

func (u *hostUART) setNotify(id ID[KindUART], dir Direction, on bool) error {
	if !dir.Valid() {
		return Errorf(SpaceUser, CodeInvalidArgument, "direction %d", dir)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ports[id.Index()].notify[dir] = on
	return nil
}

func (u *hostUART) inject(i int, data []byte) {
	u.mu.Lock()
	if i < 0 || i >= len(u.ports) || !u.ports[i].started {
		u.mu.Unlock()
		return
	}
	p := &u.ports[i]
	p.rx.Write(data)
	if p.notify[DirRead] && len(data) > 0 {
		u.sink.Push(UARTEvent{UART: uint32(i), Direction: DirRead})
	}
	u.mu.Unlock()
}

func (u *hostUART) output(i int) []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	if i < 0 || i >= len(u.ports) {
		return nil
	}
	out := bytes.Clone(u.ports[i].tx.Bytes())
	u.ports[i].tx.Reset()
	return out
}

// hostUSBSerial bridges the process's stdin and stdout. A reader goroutine
// fills rx and raises a read event per chunk.
type hostUSBSerial struct {
	mu     sync.Mutex
	rx     bytes.Buffer
	w      *bufio.Writer
	notify [2]bool
	sink   Sink
}

func newHostUSBSerial(r io.Reader, w io.Writer, sink Sink, logger *slog.Logger) *hostUSBSerial {
	s := &hostUSBSerial{sink: sink}
	if w != nil {
		s.w = bufio.NewWriter(w)
	}
	if r != nil {
		go s.pump(r, logger)
	}
	return s
}

func (s *hostUSBSerial) pump(r io.Reader, logger *slog.Logger) {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.rx.Write(buf[:n])
			if s.notify[DirRead] {
				s.sink.Push(USBSerialEvent{Direction: DirRead})
			}
			s.mu.Unlock()
		}
		if err != nil {
			if err != io.EOF {
				logger.Warn("usb serial read", "err", err)
			}
			return
		}
	}
}

func (s *hostUSBSerial) Supported() bool { return true }

func (s *hostUSBSerial) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, _ := s.rx.Read(p)
	return n, nil
}

func (s *hostUSBSerial) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, &Error{Space: SpaceWorld, Code: CodeNotEnough, Msg: "usb serial: no host attached"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.w.Write(p)
	if err != nil {
		return n, &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
	}
	if s.notify[DirWrite] {
		s.sink.Push(USBSerialEvent{Direction: DirWrite})
	}
	return n, nil
}

func (s *hostUSBSerial) Flush() error {
	if s.w == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		return &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
	}
	return nil
}

func (s *hostUSBSerial) Enable(dir Direction) error  { return s.setNotify(dir, true) }
func (s *hostUSBSerial) Disable(dir Direction) error { return s.setNotify(dir, false) }

func (s *hostUSBSerial) setNotify(dir Direction, on bool) error {
	if !dir.Valid() {
		return Errorf(SpaceUser, CodeInvalidArgument, "direction %d", dir)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify[dir] = on
	if on && dir == DirRead && s.rx.Len() > 0 {
		s.sink.Push(USBSerialEvent{Direction: DirRead})
	}
	return nil
}
