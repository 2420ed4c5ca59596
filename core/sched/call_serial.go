package sched

import (
	"boardlet/core/abi"
	"boardlet/hal"
)

func (s *Scheduler) uart(c *Call) (hal.UART, hal.ID[hal.KindUART], error) {
	u := s.board.UART()
	if err := need(u, "uart"); err != nil {
		return nil, hal.ID[hal.KindUART]{}, err
	}
	id, err := hal.IDOf[hal.KindUART](u, c.Params[0])
	return u, id, err
}

func (s *Scheduler) uartSetBaudrate(c *Call) (uint32, error) {
	u, id, err := s.uart(c)
	if err != nil {
		return 0, err
	}
	return 0, u.SetBaudrate(id, c.Params[1])
}

func (s *Scheduler) uartStart(c *Call) (uint32, error) {
	u, id, err := s.uart(c)
	if err != nil {
		return 0, err
	}
	return 0, u.Start(id)
}

func (s *Scheduler) uartStop(c *Call) (uint32, error) {
	u, id, err := s.uart(c)
	if err != nil {
		return 0, err
	}
	return 0, u.Stop(id)
}

func (s *Scheduler) uartRead(c *Call) (uint32, error) {
	u, id, err := s.uart(c)
	if err != nil {
		return 0, err
	}
	r := c.Params.Indexed()
	buf, err := c.Mem.GetMut(r.Ptr, r.Len)
	if err != nil {
		return 0, err
	}
	n, err := u.Read(id, buf)
	return uint32(n), err
}

func (s *Scheduler) uartWrite(c *Call) (uint32, error) {
	u, id, err := s.uart(c)
	if err != nil {
		return 0, err
	}
	r := c.Params.Indexed()
	buf, err := c.Mem.Get(r.Ptr, r.Len)
	if err != nil {
		return 0, err
	}
	n, err := u.Write(id, buf)
	return uint32(n), err
}

func (s *Scheduler) uartRegister(c *Call) (uint32, error) {
	u, id, err := s.uart(c)
	if err != nil {
		return 0, err
	}
	r, err := c.Params.UARTListener()
	if err != nil {
		return 0, err
	}
	key := hal.UARTEvent{UART: id.Index(), Direction: r.Direction}.Key()
	return 0, s.listen(key, r.Listener, func() error { return u.Enable(id, r.Direction) })
}

func (s *Scheduler) uartUnregister(c *Call) (uint32, error) {
	u, id, err := s.uart(c)
	if err != nil {
		return 0, err
	}
	dir, err := c.Params.Direction(1)
	if err != nil {
		return 0, err
	}
	key := hal.UARTEvent{UART: id.Index(), Direction: dir}.Key()
	return 0, s.unlisten(key, func() error { return u.Disable(id, dir) })
}

func (s *Scheduler) usb() (hal.USBSerial, error) {
	u := s.board.USBSerial()
	return u, need(u, "usb_serial")
}

func (s *Scheduler) usbRead(c *Call) (uint32, error) {
	u, err := s.usb()
	if err != nil {
		return 0, err
	}
	b := c.Params.Buffer()
	buf, err := c.Mem.GetMut(b.Ptr, b.Len)
	if err != nil {
		return 0, err
	}
	n, err := u.Read(buf)
	return uint32(n), err
}

func (s *Scheduler) usbWrite(c *Call) (uint32, error) {
	u, err := s.usb()
	if err != nil {
		return 0, err
	}
	b := c.Params.Buffer()
	buf, err := c.Mem.Get(b.Ptr, b.Len)
	if err != nil {
		return 0, err
	}
	n, err := u.Write(buf)
	return uint32(n), err
}

func (s *Scheduler) usbFlush(*Call) (uint32, error) {
	u, err := s.usb()
	if err != nil {
		return 0, err
	}
	return 0, u.Flush()
}

func (s *Scheduler) usbRegister(c *Call) (uint32, error) {
	u, err := s.usb()
	if err != nil {
		return 0, err
	}
	dir, err := c.Params.Direction(0)
	if err != nil {
		return 0, err
	}
	l := abi.Listener{Fn: c.Params[1], Data: c.Params[2]}
	key := hal.USBSerialEvent{Direction: dir}.Key()
	return 0, s.listen(key, l, func() error { return u.Enable(dir) })
}

func (s *Scheduler) usbUnregister(c *Call) (uint32, error) {
	u, err := s.usb()
	if err != nil {
		return 0, err
	}
	dir, err := c.Params.Direction(0)
	if err != nil {
		return 0, err
	}
	key := hal.USBSerialEvent{Direction: dir}.Key()
	return 0, s.unlisten(key, func() error { return u.Disable(dir) })
}
