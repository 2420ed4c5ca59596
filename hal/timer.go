package hal

import (
	"sync"
	"time"
)

// goTimer arms each timer with time.AfterFunc and pushes from the timer
// goroutine. The push happens under mu, so once Disarm returns no expiry of
// the old arming can reach the sink.
type goTimer struct {
	mu    sync.Mutex
	slots []timerSlot
	sink  Sink
}

type timerSlot struct {
	t *time.Timer
	// gen invalidates callbacks of a timer that was disarmed or re-armed
	// after time.AfterFunc already started them.
	gen uint64
}

func newGoTimer(n int, sink Sink) *goTimer {
	return &goTimer{slots: make([]timerSlot, n), sink: sink}
}

func (t *goTimer) Supported() bool { return true }
func (t *goTimer) Count() int      { return len(t.slots) }

func (t *goTimer) Arm(id ID[KindTimer], mode TimerMode, d time.Duration) error {
	if mode != TimerOneshot && mode != TimerPeriodic {
		return Errorf(SpaceUser, CodeInvalidArgument, "timer mode %d", mode)
	}
	if mode == TimerPeriodic && d <= 0 {
		return Errorf(SpaceUser, CodeInvalidArgument, "periodic timer needs a positive period")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	i := id.Index()
	s := &t.slots[i]
	if s.t != nil {
		s.t.Stop()
	}
	s.gen++
	gen := s.gen

	var fire func()
	fire = func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		cur := &t.slots[i]
		if cur.gen != gen {
			return
		}
		if mode == TimerPeriodic {
			cur.t = time.AfterFunc(d, fire)
		} else {
			cur.t = nil
		}
		t.sink.Push(TimerEvent{Timer: i})
	}
	s.t = time.AfterFunc(d, fire)
	return nil
}

func (t *goTimer) Disarm(id ID[KindTimer]) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := &t.slots[id.Index()]
	if s.t != nil {
		s.t.Stop()
		s.t = nil
	}
	s.gen++
	return nil
}
