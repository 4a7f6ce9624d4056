package pool

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingBufferEnqueueDequeueOrder(t *testing.T) {
	r := NewRingBuffer[int](4)
	require.True(t, r.Enqueue(1))
	require.True(t, r.Enqueue(2))
	v, ok := r.Dequeue()
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 1, r.Len())
}

func TestRingBufferRejectsWhenFull(t *testing.T) {
	r := NewRingBuffer[int](2)
	require.True(t, r.Enqueue(1))
	require.True(t, r.Enqueue(2))
	require.False(t, r.Enqueue(3))
	require.Equal(t, 2, r.Cap())
}

func TestRingBufferDequeueEmpty(t *testing.T) {
	r := NewRingBuffer[int](2)
	_, ok := r.Dequeue()
	require.False(t, ok)
}

func TestRingBufferPanicsOnNonPowerOfTwo(t *testing.T) {
	require.Panics(t, func() { NewRingBuffer[int](3) })
}

// Mirrors the teacher's randomized invariant check (kept semantics).
func TestRingBufferLenInvariant(t *testing.T) {
	r := NewRingBuffer[int](64)
	size := 0
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 5000; i++ {
		if rnd.Intn(2) == 0 {
			if r.Enqueue(rnd.Intn(100000)) {
				size++
			}
		} else {
			if _, ok := r.Dequeue(); ok {
				size--
			}
		}
		require.Equal(t, size, r.Len())
	}
}
