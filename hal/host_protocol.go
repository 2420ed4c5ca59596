//go:build !tinygo

package hal

import (
	"bytes"
	"sync"
)

const hostRadioBacklog = 16

// hostRadio holds injected packets until the applet reads them. When the
// backlog is full the newest packet is dropped. Like every host producer it
// pushes under the lock its Disable takes.
type hostRadio struct {
	mu      sync.Mutex
	packets [][]byte
	enabled bool
	sink    Sink
}

func (r *hostRadio) Supported() bool { return true }

func (r *hostRadio) Enable() error  { return r.setEnabled(true) }
func (r *hostRadio) Disable() error { return r.setEnabled(false) }

func (r *hostRadio) setEnabled(on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = on
	return nil
}

func (r *hostRadio) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.packets) == 0 {
		return 0, nil
	}
	n := copy(p, r.packets[0])
	r.packets = r.packets[1:]
	return n, nil
}

func (r *hostRadio) inject(packet []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled || len(r.packets) >= hostRadioBacklog {
		return
	}
	r.packets = append(r.packets, bytes.Clone(packet))
	r.sink.Push(RadioEvent{})
}

// hostProtocol stands in for the host side of the platform protocol.
type hostProtocol struct {
	mu      sync.Mutex
	reqs    [][]byte
	resps   [][]byte
	enabled bool
	sink    Sink
}

func (p *hostProtocol) Supported() bool { return true }

func (p *hostProtocol) Read() ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.reqs) == 0 {
		return nil, false, nil
	}
	req := p.reqs[0]
	p.reqs = p.reqs[1:]
	return req, true, nil
}

func (p *hostProtocol) Write(resp []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resps = append(p.resps, bytes.Clone(resp))
	return nil
}

func (p *hostProtocol) Enable() error  { return p.setEnabled(true) }
func (p *hostProtocol) Disable() error { return p.setEnabled(false) }

func (p *hostProtocol) setEnabled(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = on
	return nil
}

func (p *hostProtocol) submit(req []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reqs = append(p.reqs, bytes.Clone(req))
	if p.enabled {
		p.sink.Push(ProtocolEvent{})
	}
}

func (p *hostProtocol) responses() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.resps...)
}
