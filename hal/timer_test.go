package hal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowSink takes delay to accept each event and records when each push
// finished.
type slowSink struct {
	delay   time.Duration
	started chan struct{}

	mu   sync.Mutex
	done []time.Time
}

func newSlowSink(delay time.Duration) *slowSink {
	return &slowSink{delay: delay, started: make(chan struct{}, 16)}
}

func (s *slowSink) Push(Event) bool {
	s.started <- struct{}{}
	time.Sleep(s.delay)
	s.mu.Lock()
	s.done = append(s.done, time.Now())
	s.mu.Unlock()
	return true
}

func (s *slowSink) pushes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.done...)
}

func (s *slowSink) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-s.started:
	case <-time.After(time.Second):
		t.Fatal("no push started")
	}
}

func TestTimerDisarmWaitsForInflightPush(t *testing.T) {
	sink := newSlowSink(50 * time.Millisecond)
	tm := newGoTimer(1, sink)
	id, err := IDOf[KindTimer](tm, 0)
	require.NoError(t, err)

	require.NoError(t, tm.Arm(id, TimerOneshot, time.Millisecond))
	sink.waitStarted(t)
	require.NoError(t, tm.Disarm(id))
	disarmed := time.Now()

	time.Sleep(20 * time.Millisecond)
	pushes := sink.pushes()
	require.Len(t, pushes, 1)
	assert.False(t, pushes[0].After(disarmed), "pushed %v after Disarm returned", pushes[0].Sub(disarmed))
}

func TestTimerPeriodicStopsAtDisarm(t *testing.T) {
	sink := newSlowSink(0)
	tm := newGoTimer(1, sink)
	id, err := IDOf[KindTimer](tm, 0)
	require.NoError(t, err)

	require.NoError(t, tm.Arm(id, TimerPeriodic, time.Millisecond))
	sink.waitStarted(t)
	sink.waitStarted(t)
	require.NoError(t, tm.Disarm(id))
	n := len(sink.pushes())

	time.Sleep(10 * time.Millisecond)
	assert.Len(t, sink.pushes(), n)
}
