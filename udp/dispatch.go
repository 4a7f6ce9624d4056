// File: udp/dispatch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded send dispatch: a fixed pool of worker goroutines draining a
// pool.RingBuffer (spec.md §5 "completions run on a shared pool of worker
// threads provided by the host's async I/O facility"). UDP's SendAsync
// has no per-destination back-pressure to lean on (unlike the stream
// endpoints' SendBuffers), so an unbounded goroutine-per-datagram would
// let a burst of sends spawn unbounded goroutines; this caps concurrent
// outbound writes to dispatchWorkers while still never blocking the
// caller of SendAsync (a full ring drops the job, matching the "no hard
// failure, best-effort" character of UDP itself).

package udp

import (
	"sync"

	"github.com/momentics/netcore/pool"
)

const (
	dispatchWorkers = 4
	dispatchQueueSize = 1024
)

type sendJob struct {
	write func()
}

type dispatcher struct {
	mu   sync.Mutex // serializes ring access: many submitters, several workers
	ring *pool.RingBuffer[sendJob]
	wake chan struct{}
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		ring: pool.NewRingBuffer[sendJob](dispatchQueueSize),
		wake: make(chan struct{}, dispatchWorkers),
	}
	for i := 0; i < dispatchWorkers; i++ {
		go d.worker()
	}
	return d
}

func (d *dispatcher) worker() {
	for range d.wake {
		for {
			d.mu.Lock()
			job, ok := d.ring.Dequeue()
			d.mu.Unlock()
			if !ok {
				break
			}
			job.write()
		}
	}
}

// submit enqueues fn for execution by a worker; returns false if the
// dispatch ring is full.
func (d *dispatcher) submit(fn func()) bool {
	d.mu.Lock()
	ok := d.ring.Enqueue(sendJob{write: fn})
	d.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}
