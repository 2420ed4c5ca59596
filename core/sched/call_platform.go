package sched

import (
	"boardlet/core/abi"
	"boardlet/core/applet"
	"boardlet/hal"
)

func (s *Scheduler) store() (hal.Store, error) {
	st := s.board.Store()
	return st, need(st, "store")
}

func storeKey(raw uint32) (uint16, error) {
	if raw > 0xFFFF {
		return 0, errorf(hal.CodeInvalidArgument, "store key %d", raw)
	}
	return uint16(raw), nil
}

func (s *Scheduler) storeInsert(c *Call) (uint32, error) {
	st, err := s.store()
	if err != nil {
		return 0, err
	}
	key, err := storeKey(c.Params[0])
	if err != nil {
		return 0, err
	}
	value, err := c.Mem.Get(c.Params[1], c.Params[2])
	if err != nil {
		return 0, err
	}
	return 0, st.Insert(key, value)
}

func (s *Scheduler) storeRemove(c *Call) (uint32, error) {
	st, err := s.store()
	if err != nil {
		return 0, err
	}
	key, err := storeKey(c.Params[0])
	if err != nil {
		return 0, err
	}
	return 0, st.Remove(key)
}

// storeFind replies 1 and hands the applet a fresh copy of the value, or
// replies 0 when the key is absent.
func (s *Scheduler) storeFind(c *Call) (uint32, error) {
	st, err := s.store()
	if err != nil {
		return 0, err
	}
	key, err := storeKey(c.Params[0])
	if err != nil {
		return 0, err
	}
	ptrPtr, lenPtr := c.Params[1], c.Params[2]
	if _, err := c.Mem.GetMut(lenPtr, 4); err != nil {
		return 0, err
	}
	value, err := st.Find(key)
	if err != nil || value == nil {
		return 0, err
	}
	return 1, s.handOver(c, ptrPtr, lenPtr, value)
}

// handOver copies data into applet-allocated memory and stores its address
// and length.
func (s *Scheduler) handOver(c *Call, ptrPtr, lenPtr uint32, data []byte) error {
	n, err := c.Mem.AllocCopy(ptrPtr, data)
	if err != nil {
		return err
	}
	return c.Mem.WriteU32(lenPtr, n)
}

func (s *Scheduler) platform() (hal.Platform, error) {
	p := s.board.Platform()
	return p, need(p, "platform")
}

func (s *Scheduler) platformSerial(c *Call) (uint32, error) {
	p, err := s.platform()
	if err != nil {
		return 0, err
	}
	return c.Mem.AllocCopy(c.Params[0], p.Serial())
}

func (s *Scheduler) platformVersion(c *Call) (uint32, error) {
	p, err := s.platform()
	if err != nil {
		return 0, err
	}
	return c.Mem.AllocCopy(c.Params[0], p.Version())
}

// platformReboot only returns when the board refuses to reboot.
func (s *Scheduler) platformReboot(*Call) (uint32, error) {
	p, err := s.platform()
	if err != nil {
		return 0, err
	}
	if err := p.Reboot(); err != nil {
		return 0, err
	}
	return 0, &applet.Termination{Reason: applet.ReasonReboot}
}

func (s *Scheduler) update() (hal.Update, error) {
	u := s.board.Update()
	return u, need(u, "platform_update")
}

func (s *Scheduler) updateChunkSize(*Call) (uint32, error) {
	u, err := s.update()
	if err != nil {
		return 0, err
	}
	return uint32(u.ChunkSize()), nil
}

func (s *Scheduler) updateStart(c *Call) (uint32, error) {
	u, err := s.update()
	if err != nil {
		return 0, err
	}
	dryRun, err := c.Params.Bool(0)
	if err != nil {
		return 0, err
	}
	pages, err := u.Start(dryRun)
	return uint32(pages), err
}

func (s *Scheduler) updateErase(*Call) (uint32, error) {
	u, err := s.update()
	if err != nil {
		return 0, err
	}
	return 0, u.Erase()
}

func (s *Scheduler) updateWrite(c *Call) (uint32, error) {
	u, err := s.update()
	if err != nil {
		return 0, err
	}
	b := c.Params.Buffer()
	chunk, err := c.Mem.Get(b.Ptr, b.Len)
	if err != nil {
		return 0, err
	}
	return 0, u.Write(chunk)
}

func (s *Scheduler) updateFinish(*Call) (uint32, error) {
	u, err := s.update()
	if err != nil {
		return 0, err
	}
	return 0, u.Finish()
}

func (s *Scheduler) protocol() (hal.Protocol, error) {
	p := s.board.Protocol()
	return p, need(p, "protocol")
}

func (s *Scheduler) protocolRead(c *Call) (uint32, error) {
	p, err := s.protocol()
	if err != nil {
		return 0, err
	}
	ptrPtr, lenPtr := c.Params[0], c.Params[1]
	if _, err := c.Mem.GetMut(lenPtr, 4); err != nil {
		return 0, err
	}
	req, ok, err := p.Read()
	if err != nil || !ok {
		return 0, err
	}
	return 1, s.handOver(c, ptrPtr, lenPtr, req)
}

func (s *Scheduler) protocolWrite(c *Call) (uint32, error) {
	p, err := s.protocol()
	if err != nil {
		return 0, err
	}
	b := c.Params.Buffer()
	resp, err := c.Mem.Get(b.Ptr, b.Len)
	if err != nil {
		return 0, err
	}
	return 0, p.Write(resp)
}

func (s *Scheduler) protocolRegister(c *Call) (uint32, error) {
	p, err := s.protocol()
	if err != nil {
		return 0, err
	}
	return 0, s.listen(hal.ProtocolEvent{}.Key(), c.Params.Listener(), p.Enable)
}

func (s *Scheduler) protocolUnregister(*Call) (uint32, error) {
	p, err := s.protocol()
	if err != nil {
		return 0, err
	}
	return 0, s.unlisten(hal.ProtocolEvent{}.Key(), p.Disable)
}

func (s *Scheduler) radio() (hal.Radio, error) {
	r := s.board.Radio()
	return r, need(r, "radio")
}

func (s *Scheduler) radioRegister(c *Call) (uint32, error) {
	r, err := s.radio()
	if err != nil {
		return 0, err
	}
	return 0, s.listen(hal.RadioEvent{}.Key(), c.Params.Listener(), r.Enable)
}

func (s *Scheduler) radioUnregister(*Call) (uint32, error) {
	r, err := s.radio()
	if err != nil {
		return 0, err
	}
	return 0, s.unlisten(hal.RadioEvent{}.Key(), r.Disable)
}

func (s *Scheduler) radioRead(c *Call) (uint32, error) {
	r, err := s.radio()
	if err != nil {
		return 0, err
	}
	b := c.Params.Buffer()
	buf, err := c.Mem.GetMut(b.Ptr, b.Len)
	if err != nil {
		return 0, err
	}
	n, err := r.Read(buf)
	return uint32(n), err
}

func (s *Scheduler) vendor() (hal.Vendor, error) {
	v := s.board.Vendor()
	return v, need(v, "vendor")
}

func (s *Scheduler) vendorSyscall(c *Call) (uint32, error) {
	v, err := s.vendor()
	if err != nil {
		return 0, err
	}
	r, err := v.Syscall(c.Params)
	if err == nil && r > abi.MaxValue {
		return 0, hal.Errorf(hal.SpaceWorld, hal.CodeOutOfBounds, "vendor value %#x", r)
	}
	return r, err
}

func (s *Scheduler) vendorRegister(c *Call) (uint32, error) {
	v, err := s.vendor()
	if err != nil {
		return 0, err
	}
	return 0, s.listen(hal.VendorEvent{}.Key(), c.Params.Listener(), v.Enable)
}

func (s *Scheduler) vendorUnregister(*Call) (uint32, error) {
	v, err := s.vendor()
	if err != nil {
		return 0, err
	}
	return 0, s.unlisten(hal.VendorEvent{}.Key(), v.Disable)
}
