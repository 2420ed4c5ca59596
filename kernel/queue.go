// Package kernel holds the scheduler's interrupt-safe primitives: the
// bounded event queue and the perf accumulator.
package kernel

import (
	"fmt"
	"math/bits"
	"sync/atomic"

	"boardlet/hal"
)

// Entry is a queued event stamped with its push sequence number.
type Entry struct {
	Seq   uint64
	Event hal.Event
}

type cell struct {
	// seq is the cell's turn: pos when free for the producer at pos, pos+1
	// once that producer has published into it.
	seq atomic.Uint64
	ev  hal.Event
}

// Queue is a bounded multi-producer, single-consumer event ring.
//
// Push never blocks and never allocates; when the ring is full the newest
// event is dropped and counted. Pop must only be called from one goroutine.
// Sequence numbers are the 1-based push positions, so they increase in
// FIFO order and dropped events consume none.
type Queue struct {
	_     [0]func() // prevent accidental copying.
	mask  uint64
	cells []cell
	enq   atomic.Uint64
	deq   atomic.Uint64
	drops atomic.Uint64
	ready chan struct{}
}

// NewQueue returns a queue holding up to capacity events. Capacity must be a
// power of two.
func NewQueue(capacity int) (*Queue, error) {
	if capacity <= 0 || bits.OnesCount(uint(capacity)) != 1 {
		return nil, fmt.Errorf("queue: capacity %d is not a power of two", capacity)
	}
	q := &Queue{
		mask:  uint64(capacity - 1),
		cells: make([]cell, capacity),
		ready: make(chan struct{}, 1),
	}
	for i := range q.cells {
		q.cells[i].seq.Store(uint64(i))
	}
	return q, nil
}

// Push enqueues ev. It reports false when the queue was full and ev dropped.
func (q *Queue) Push(ev hal.Event) bool {
	pos := q.enq.Load()
	for {
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()
		switch dif := int64(seq - pos); {
		case dif == 0:
			if q.enq.CompareAndSwap(pos, pos+1) {
				c.ev = ev
				c.seq.Store(pos + 1)
				select {
				case q.ready <- struct{}{}:
				default:
				}
				return true
			}
			pos = q.enq.Load()
		case dif < 0:
			q.drops.Add(1)
			return false
		default:
			pos = q.enq.Load()
		}
	}
}

// Pop dequeues the oldest event. It reports false when nothing is ready,
// which includes a slot whose producer has reserved but not yet published.
func (q *Queue) Pop() (Entry, bool) {
	pos := q.deq.Load()
	c := &q.cells[pos&q.mask]
	if int64(c.seq.Load()-(pos+1)) < 0 {
		return Entry{}, false
	}
	e := Entry{Seq: pos + 1, Event: c.ev}
	c.ev = nil
	c.seq.Store(pos + q.mask + 1)
	q.deq.Store(pos + 1)
	return e, true
}

// Len is the number of reserved entries. Under concurrent pushes it is a
// snapshot.
func (q *Queue) Len() int {
	return int(q.enq.Load() - q.deq.Load())
}

// Cap returns the capacity.
func (q *Queue) Cap() int { return len(q.cells) }

// Drops counts events rejected because the queue was full.
func (q *Queue) Drops() uint64 { return q.drops.Load() }

// Seq returns the sequence number of the latest reserved push. Every event
// pushed after the call returns gets a larger number.
func (q *Queue) Seq() uint64 { return q.enq.Load() }

// Ready fires after a push. It is edge-triggered and coalesced: one
// receive may stand for several pushes, so drain with Pop until empty.
func (q *Queue) Ready() <-chan struct{} { return q.ready }
