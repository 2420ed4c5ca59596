package sched

import (
	"boardlet/hal"
)

func (s *Scheduler) ledGet(c *Call) (uint32, error) {
	led := s.board.LED()
	if err := need(led, "led"); err != nil {
		return 0, err
	}
	id, err := hal.IDOf[hal.KindLED](led, c.Params[0])
	if err != nil {
		return 0, err
	}
	on, err := led.Get(id)
	return boolWord(on), err
}

func (s *Scheduler) ledSet(c *Call) (uint32, error) {
	led := s.board.LED()
	if err := need(led, "led"); err != nil {
		return 0, err
	}
	id, err := hal.IDOf[hal.KindLED](led, c.Params[0])
	if err != nil {
		return 0, err
	}
	on, err := c.Params.Bool(1)
	if err != nil {
		return 0, err
	}
	return 0, led.Set(id, on)
}

func (s *Scheduler) button(c *Call) (hal.Button, hal.ID[hal.KindButton], error) {
	b := s.board.Button()
	if err := need(b, "button"); err != nil {
		return nil, hal.ID[hal.KindButton]{}, err
	}
	id, err := hal.IDOf[hal.KindButton](b, c.Params[0])
	return b, id, err
}

func (s *Scheduler) buttonRegister(c *Call) (uint32, error) {
	b, id, err := s.button(c)
	if err != nil {
		return 0, err
	}
	r := c.Params.IndexedListener()
	key := hal.ButtonEvent{Button: id.Index()}.Key()
	return 0, s.listen(key, r.Listener, func() error { return b.Enable(id) })
}

func (s *Scheduler) buttonUnregister(c *Call) (uint32, error) {
	b, id, err := s.button(c)
	if err != nil {
		return 0, err
	}
	key := hal.ButtonEvent{Button: id.Index()}.Key()
	return 0, s.unlisten(key, func() error { return b.Disable(id) })
}

func (s *Scheduler) gpio(c *Call) (hal.GPIO, hal.ID[hal.KindGPIO], error) {
	g := s.board.GPIO()
	if err := need(g, "gpio"); err != nil {
		return nil, hal.ID[hal.KindGPIO]{}, err
	}
	id, err := hal.IDOf[hal.KindGPIO](g, c.Params[0])
	return g, id, err
}

func (s *Scheduler) gpioConfigure(c *Call) (uint32, error) {
	g, id, err := s.gpio(c)
	if err != nil {
		return 0, err
	}
	r, err := c.Params.GPIOConfigure()
	if err != nil {
		return 0, err
	}
	return 0, g.Configure(id, r.Mode, r.Pull)
}

func (s *Scheduler) gpioRead(c *Call) (uint32, error) {
	g, id, err := s.gpio(c)
	if err != nil {
		return 0, err
	}
	level, err := g.Read(id)
	return boolWord(level), err
}

func (s *Scheduler) gpioWrite(c *Call) (uint32, error) {
	g, id, err := s.gpio(c)
	if err != nil {
		return 0, err
	}
	level, err := c.Params.Bool(1)
	if err != nil {
		return 0, err
	}
	return 0, g.Write(id, level)
}

func (s *Scheduler) gpioLastWrite(c *Call) (uint32, error) {
	g, id, err := s.gpio(c)
	if err != nil {
		return 0, err
	}
	level, err := g.LastWrite(id)
	return boolWord(level), err
}
