package sched

import (
	"time"

	"boardlet/hal"
)

// timerAllocate claims a free timer and registers its listener. The timer
// stays idle until timer_start.
func (s *Scheduler) timerAllocate(c *Call) (uint32, error) {
	t := s.board.Timer()
	if err := need(t, "timer"); err != nil {
		return 0, err
	}
	if s.timers == nil {
		s.timers = make([]bool, t.Count())
	}
	for i, used := range s.timers {
		if used {
			continue
		}
		key := hal.TimerEvent{Timer: uint32(i)}.Key()
		if err := s.listen(key, c.Params.Listener(), nil); err != nil {
			return 0, err
		}
		s.timers[i] = true
		return uint32(i), nil
	}
	return 0, hal.Errorf(hal.SpaceWorld, hal.CodeNotEnough, "all %d timers allocated", len(s.timers))
}

// allocatedTimer resolves an index that timer_allocate handed out.
func (s *Scheduler) allocatedTimer(raw uint32) (hal.Timer, hal.ID[hal.KindTimer], error) {
	t := s.board.Timer()
	if err := need(t, "timer"); err != nil {
		return nil, hal.ID[hal.KindTimer]{}, err
	}
	id, err := hal.IDOf[hal.KindTimer](t, raw)
	if err != nil {
		return nil, id, err
	}
	if int(raw) >= len(s.timers) || !s.timers[raw] {
		return nil, id, errorf(hal.CodeInvalidArgument, "timer %d is not allocated", raw)
	}
	return t, id, nil
}

func (s *Scheduler) timerStart(c *Call) (uint32, error) {
	r, err := c.Params.TimerStart()
	if err != nil {
		return 0, err
	}
	t, id, err := s.allocatedTimer(r.Timer)
	if err != nil {
		return 0, err
	}
	return 0, t.Arm(id, r.Mode, time.Duration(r.Millis)*time.Millisecond)
}

func (s *Scheduler) timerStop(c *Call) (uint32, error) {
	t, id, err := s.allocatedTimer(c.Params[0])
	if err != nil {
		return 0, err
	}
	return 0, t.Disarm(id)
}

// timerFree disarms the timer and drops its listener; a pending expiry is
// never delivered, even to a later owner of the same timer.
func (s *Scheduler) timerFree(c *Call) (uint32, error) {
	t, id, err := s.allocatedTimer(c.Params[0])
	if err != nil {
		return 0, err
	}
	key := hal.TimerEvent{Timer: id.Index()}.Key()
	if err := s.unlisten(key, func() error { return t.Disarm(id) }); err != nil {
		return 0, err
	}
	s.timers[id.Index()] = false
	return 0, nil
}
