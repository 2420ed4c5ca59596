package sched

import (
	"boardlet/core/abi"
	"boardlet/core/applet"
	"boardlet/hal"
	"boardlet/kernel"
)

// listen enables a source and records its listener. The sequence number is
// taken before enabling so every event the source raises from now on is
// newer than the registration. Registering an active key replaces the
// callback and keeps its pending events.
func (s *Scheduler) listen(key hal.Key, l abi.Listener, enable func() error) error {
	since := s.queue.Seq()
	if enable != nil {
		if err := enable(); err != nil {
			return err
		}
	}
	if cur, ok := s.listeners[key]; ok {
		since = cur.since
	}
	s.listeners[key] = listener{fn: l.Fn, data: l.Data, since: since}
	return nil
}

// unlisten stops a source. The board is asked first, even when nothing is
// registered; if it refuses, the registration stays. Events of key still
// in the queue are discarded when drained.
func (s *Scheduler) unlisten(key hal.Key, disable func() error) error {
	if disable != nil {
		if err := disable(); err != nil {
			return err
		}
	}
	delete(s.listeners, key)
	return nil
}

// waitForCallback drains the queue, delivering callbacks in arrival order,
// and returns once at least one was delivered and the queue is empty.
func (s *Scheduler) waitForCallback() error {
	delivered := false
	for {
		e, ok := s.queue.Pop()
		if !ok {
			if delivered {
				return nil
			}
			if err := s.suspend(); err != nil {
				return err
			}
			continue
		}
		ok, err := s.deliver(e)
		if err != nil {
			return err
		}
		delivered = delivered || ok
	}
}

// suspend blocks until a producer pushes or the applet is killed.
func (s *Scheduler) suspend() error {
	if d := s.queue.Drops(); d != s.drops {
		s.log.Warn("events dropped", "count", d-s.drops, "total", d)
		s.drops = d
	}
	s.mark(kernel.PhasePlatform)
	defer s.mark(kernel.PhaseWaiting)
	select {
	case <-s.queue.Ready():
		return nil
	case <-s.ctx.Done():
		return &applet.Termination{Reason: applet.ReasonKill, Cause: s.ctx.Err()}
	}
}

// deliver calls the listener of e. It reports false when e was stale.
func (s *Scheduler) deliver(e kernel.Entry) (bool, error) {
	key := e.Event.Key()
	l, ok := s.listeners[key]
	if !ok || e.Seq <= l.since {
		s.log.Debug("event discarded", "kind", key.Kind.String(), "index", key.Index, "seq", e.Seq)
		return false, nil
	}
	s.mark(kernel.PhasePlatform)
	err := s.mod.Callback(l.fn, l.data, eventArgs(e.Event)...)
	s.mark(kernel.PhaseApplets)
	return true, err
}

// eventArgs are the callback arguments after the registration word.
func eventArgs(ev hal.Event) []uint32 {
	switch e := ev.(type) {
	case hal.ButtonEvent:
		return []uint32{e.Button, boolWord(e.Pressed)}
	case hal.TimerEvent:
		return []uint32{e.Timer}
	case hal.UARTEvent:
		return []uint32{e.UART}
	case hal.VendorEvent:
		return []uint32{e.Data[0], e.Data[1]}
	default:
		return nil
	}
}
