// File: buffer/buffer.go
// Package buffer implements the growable byte region exchanged with user
// code: a Buffer with offset/size cursors, backed by a size-classed pool.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

// Buffer is a growable byte region with an offset/size cursor pair.
// It is the basic unit exchanged between a session and user code.
type Buffer struct {
	data   []byte
	offset int
	size   int
}

// New wraps an existing slice as a Buffer with offset 0.
func New(data []byte) *Buffer {
	return &Buffer{data: data, size: len(data)}
}

// NewSize allocates a Buffer with the given initial capacity.
func NewSize(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Bytes returns the readable slice: data[offset : offset+size].
func (b *Buffer) Bytes() []byte {
	return b.data[b.offset : b.offset+b.size]
}

// Data returns the full backing slice, including unused capacity.
func (b *Buffer) Data() []byte { return b.data }

// Offset returns the current read cursor.
func (b *Buffer) Offset() int { return b.offset }

// Size returns the number of readable bytes from Offset.
func (b *Buffer) Size() int { return b.size }

// Capacity returns the total backing capacity.
func (b *Buffer) Capacity() int { return cap(b.data) }

// SetOffsetSize repositions the read cursor; used after partial consumes.
func (b *Buffer) SetOffsetSize(offset, size int) {
	b.offset = offset
	b.size = size
}

// Append grows the buffer, copying p after the current content, and
// extending the backing array (doubling) if capacity is insufficient.
func (b *Buffer) Append(p []byte) {
	need := b.offset + b.size + len(p)
	if need > cap(b.data) {
		grown := make([]byte, need, growTo(cap(b.data), need))
		copy(grown, b.data)
		b.data = grown
	} else if need > len(b.data) {
		b.data = b.data[:need]
	}
	copy(b.data[b.offset+b.size:need], p)
	b.size += len(p)
}

// Consume advances the offset by n bytes, shrinking the readable region.
// It never touches data already read by previous Consume calls.
func (b *Buffer) Consume(n int) {
	if n > b.size {
		n = b.size
	}
	b.offset += n
	b.size -= n
}

// Reset clears the buffer to empty, releasing no backing memory (the
// backing array is reused on the next reconnect within the same session).
func (b *Buffer) Reset() {
	b.offset = 0
	b.size = 0
}

// Grow ensures the unused tail (data[offset+size:]) has at least n bytes,
// doubling the backing array up to limit (0 = unbounded). When doubling
// would exceed a positive limit it grows to exactly the needed size
// instead, and returns false only if that needed size exceeds limit.
func (b *Buffer) Grow(n, limit int) bool {
	need := b.offset + b.size + n
	if need <= cap(b.data) {
		if need > len(b.data) {
			b.data = b.data[:need]
		}
		return true
	}
	target := growTo(cap(b.data), need)
	if limit > 0 && target > limit {
		if need > limit {
			return false
		}
		target = need
	}
	grown := make([]byte, need, target)
	copy(grown, b.data)
	b.data = grown
	return true
}

// Tail returns the writable region after the current content, sized at
// least n bytes (callers must have called Grow first to guarantee this).
func (b *Buffer) Tail(n int) []byte {
	end := b.offset + b.size + n
	if end > len(b.data) {
		end = len(b.data)
	}
	return b.data[b.offset+b.size : end]
}

// Commit marks n freshly written tail bytes as readable content.
func (b *Buffer) Commit(n int) { b.size += n }

func growTo(current, need int) int {
	if current == 0 {
		current = 4096
	}
	for current < need {
		current *= 2
	}
	return current
}
