package sched

import (
	"boardlet/core/abi"
	"boardlet/kernel"
)

func (s *Scheduler) debugPrintln(c *Call) (uint32, error) {
	d := s.board.Debug()
	if err := need(d, "debug"); err != nil {
		return 0, err
	}
	b := c.Params.Buffer()
	line, err := c.Mem.Str(b.Ptr, b.Len)
	if err != nil {
		return 0, err
	}
	d.Println(line)
	return 0, nil
}

// debugTime stores the full clock at the optional pointer and replies with
// its low 31 bits. A board without a clock replies 0 and writes nothing.
func (s *Scheduler) debugTime(c *Call) (uint32, error) {
	d := s.board.Debug()
	if err := need(d, "debug"); err != nil {
		return 0, err
	}
	ptr := c.Params[0]
	if ptr != 0 {
		if _, err := c.Mem.GetMut(ptr, 8); err != nil {
			return 0, err
		}
	}
	if d.TimeMax() == 0 {
		return 0, nil
	}
	now := d.Time()
	if ptr != 0 {
		if err := c.Mem.WriteU64(ptr, now); err != nil {
			return 0, err
		}
	}
	return uint32(now & abi.MaxValue), nil
}

// debugPerf writes the platform, applets and waiting counters.
func (s *Scheduler) debugPerf(c *Call) (uint32, error) {
	ptr := c.Params[0]
	if _, err := c.Mem.GetMut(ptr, 24); err != nil {
		return 0, err
	}
	s.mark(kernel.PhasePlatform)
	p := s.Perf()
	for i, v := range []uint64{p.Platform, p.Applets, p.Waiting} {
		if err := c.Mem.WriteU64(ptr+uint32(8*i), v); err != nil {
			return 0, err
		}
	}
	return 0, nil
}
