package kernel

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardlet/hal"
)

func TestNewQueueCapacity(t *testing.T) {
	for _, n := range []int{0, -1, 3, 12} {
		_, err := NewQueue(n)
		assert.Error(t, err, "capacity %d", n)
	}
	q, err := NewQueue(8)
	require.NoError(t, err)
	assert.Equal(t, 8, q.Cap())
}

func TestQueuePopEmpty(t *testing.T) {
	q, err := NewQueue(4)
	require.NoError(t, err)
	_, ok := q.Pop()
	assert.False(t, ok)
	assert.Zero(t, q.Len())
}

func TestQueueOverflowDropsNewest(t *testing.T) {
	const (
		capacity = 4
		pushed   = 11
	)
	q, err := NewQueue(capacity)
	require.NoError(t, err)

	accepted := 0
	for i := 0; i < pushed; i++ {
		if q.Push(hal.TimerEvent{Timer: uint32(i)}) {
			accepted++
		}
	}
	assert.Equal(t, capacity, accepted)
	assert.Equal(t, uint64(pushed-capacity), q.Drops())
	assert.Equal(t, capacity, q.Len())

	for i := 0; i < capacity; i++ {
		e, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, hal.TimerEvent{Timer: uint32(i)}, e.Event)
		assert.Equal(t, uint64(i+1), e.Seq)
	}
	_, ok := q.Pop()
	assert.False(t, ok)

	// Space frees up again after draining.
	require.True(t, q.Push(hal.RadioEvent{}))
	e, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, uint64(capacity+1), e.Seq, "dropped events consume no sequence numbers")
}

func TestQueueReadyCoalesces(t *testing.T) {
	q, err := NewQueue(4)
	require.NoError(t, err)

	select {
	case <-q.Ready():
		t.Fatal("ready before any push")
	default:
	}
	q.Push(hal.RadioEvent{})
	q.Push(hal.RadioEvent{})
	<-q.Ready()
	select {
	case <-q.Ready():
		t.Fatal("ready should coalesce pushes")
	default:
	}
}

func TestQueueSeqOrdersRegistrations(t *testing.T) {
	q, err := NewQueue(8)
	require.NoError(t, err)
	q.Push(hal.ProtocolEvent{})
	since := q.Seq()
	q.Push(hal.ProtocolEvent{})

	e1, _ := q.Pop()
	e2, _ := q.Pop()
	assert.LessOrEqual(t, e1.Seq, since)
	assert.Greater(t, e2.Seq, since)
}

func TestQueueConcurrentProducers(t *testing.T) {
	oldProcs := runtime.GOMAXPROCS(4)
	defer runtime.GOMAXPROCS(oldProcs)

	const (
		producers = 4
		perProd   = 10_000
		total     = producers * perProd
	)
	q, err := NewQueue(64)
	require.NoError(t, err)

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			<-start
			for i := 0; i < perProd; i++ {
				ev := hal.VendorEvent{Data: [2]uint32{uint32(p), uint32(i)}}
				for !q.Push(ev) {
					runtime.Gosched()
				}
			}
		}(p)
	}
	close(start)

	next := make([]uint32, producers)
	var lastSeq uint64
	for got := 0; got < total; {
		e, ok := q.Pop()
		if !ok {
			runtime.Gosched()
			continue
		}
		got++
		require.Greater(t, e.Seq, lastSeq)
		lastSeq = e.Seq
		v := e.Event.(hal.VendorEvent)
		p, i := v.Data[0], v.Data[1]
		require.Equal(t, next[p], i, "per-producer FIFO")
		next[p]++
	}
	wg.Wait()
	assert.Zero(t, q.Len())
}
