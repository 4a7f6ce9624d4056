// File: transport/sendbuffers.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The swap-buffer send engine (spec.md §4.3, §9 "must be preserved verbatim
// in contract"): at most one OS write outstanding per session, cheap
// append, bounded memory. Grounded on the teacher's pool.RingBuffer
// (pool/ring.go) lock-free ring discipline, adapted from a lock-free ring
// to the mutex-guarded swap buffer the spec mandates — the critical
// section covers only pointer swaps and cursor updates, never I/O
// (spec.md §5).

package transport

import (
	"sync"

	"github.com/momentics/netcore/buffer"
)

// SendBuffers implements SendBufferMain/SendBufferFlush with the swap
// discipline of spec.md §4.3.
type SendBuffers struct {
	mu      sync.Mutex
	main    *buffer.Buffer
	flush   *buffer.Buffer
	limit   int
	sending bool
}

// NewSendBuffers builds an empty pair of swap buffers. limit <= 0 means
// unbounded (no SendBufferLimit back-pressure).
func NewSendBuffers(limit int) *SendBuffers {
	return &SendBuffers{
		main:  buffer.NewSize(0),
		flush: buffer.NewSize(0),
		limit: limit,
	}
}

// Enqueue appends data to SendBufferMain under the per-session mutex.
// Returns false if this would overflow SendBufferLimit — the back-pressure
// signal of spec.md §5 — without mutating the buffer.
func (s *SendBuffers) Enqueue(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limit > 0 && s.main.Size()+s.flush.Size()+len(data) > s.limit {
		return false
	}
	s.main.Append(data)
	return true
}

// TryBeginFlush swaps SendBufferMain <-> SendBufferFlush and marks a write
// in flight, iff no write is currently outstanding, the flush buffer is
// empty, and there is something to send. Returns the bytes to post and
// whether the caller should post a write.
func (s *SendBuffers) TryBeginFlush() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sending || s.flush.Size() > 0 || s.main.Size() == 0 {
		return nil, false
	}
	s.main, s.flush = s.flush, s.main
	s.sending = true
	return s.flush.Bytes(), true
}

// CompleteWrite records that n bytes of the in-flight write were confirmed
// by the OS. If the flush buffer still holds unwritten bytes, the caller
// must repost the remainder (partial write). Otherwise, if SendBufferMain
// holds pending bytes, it swaps again and the caller reposts; if both
// buffers are empty, fireEmpty signals OnEmpty.
func (s *SendBuffers) CompleteWrite(n int) (next []byte, postWrite bool, fireEmpty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flush.Consume(n)
	if s.flush.Size() > 0 {
		return s.flush.Bytes(), true, false
	}
	s.flush.Reset()
	if s.main.Size() > 0 {
		s.main, s.flush = s.flush, s.main
		return s.flush.Bytes(), true, false
	}
	s.sending = false
	return nil, false, true
}

// Pending returns BytesPending: bytes queued in SendBufferMain, not yet
// handed to the OS.
func (s *SendBuffers) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.main.Size()
}

// Sending returns BytesSending: bytes handed to the OS but not yet
// confirmed written.
func (s *SendBuffers) Sending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush.Size()
}
