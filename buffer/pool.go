// File: buffer/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Size-classed Buffer pool. Grounded on the teacher's NUMA-segmented
// BufferPoolManager (pool/bufferpool.go in the source corpus); this port
// drops NUMA node segmentation since no component in this library pins
// work to a NUMA node — sessions are plain per-connection objects — but
// keeps the size-class subpool structure that amortizes allocation under
// heavy connection churn.

package buffer

import (
	"sync"

	"github.com/momentics/netcore/pool"
)

var sizeClasses = [...]int{
	2 * 1024,
	4 * 1024,
	8 * 1024,
	16 * 1024,
	32 * 1024,
	64 * 1024,
	128 * 1024,
	256 * 1024,
}

func classFor(size int) int {
	for _, c := range sizeClasses {
		if size <= c {
			return c
		}
	}
	return size
}

// Pool hands out Buffers from size-classed subpools and accepts them back
// for reuse. Each subpool is a pool.SyncPool[*Buffer] (pool/objpool.go),
// the teacher's generic sync.Pool wrapper, kept in service here instead
// of a bare sync.Pool per class.
type Pool struct {
	mu      sync.Mutex
	classes map[int]*pool.SyncPool[*Buffer]
}

// NewPool creates an empty pool; subpools are created lazily per class.
func NewPool() *Pool {
	return &Pool{classes: make(map[int]*pool.SyncPool[*Buffer])}
}

// Get returns a Buffer with at least size bytes of capacity.
func (p *Pool) Get(size int) *Buffer {
	class := classFor(size)
	buf := p.subpool(class).Get()
	if cap(buf.data) < size {
		buf = NewSize(class)
	}
	buf.Reset()
	return buf
}

// Put returns a Buffer to its size-classed subpool for reuse.
func (p *Pool) Put(b *Buffer) {
	if b == nil {
		return
	}
	class := classFor(cap(b.data))
	p.subpool(class).Put(b)
}

func (p *Pool) subpool(class int) *pool.SyncPool[*Buffer] {
	p.mu.Lock()
	defer p.mu.Unlock()
	sp, ok := p.classes[class]
	if !ok {
		sp = pool.NewSyncPool(func() *Buffer { return NewSize(class) })
		p.classes[class] = sp
	}
	return sp
}

// Default is a process-wide pool. No endpoint in this library draws from
// it, and transport.Options has no Pool field.
var Default = NewPool()
