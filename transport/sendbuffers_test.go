package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendBuffersEnqueueRespectsLimit(t *testing.T) {
	sb := NewSendBuffers(10)
	require.True(t, sb.Enqueue([]byte("01234")))
	require.False(t, sb.Enqueue([]byte("56789A")), "enqueue exceeding SendBufferLimit must be rejected")
	require.Equal(t, 5, sb.Pending())
}

func TestSendBuffersUnboundedWhenLimitZero(t *testing.T) {
	sb := NewSendBuffers(0)
	require.True(t, sb.Enqueue(make([]byte, 1<<20)))
}

func TestSendBuffersFlushLifecycle(t *testing.T) {
	sb := NewSendBuffers(0)
	require.True(t, sb.Enqueue([]byte("hello")))

	data, ok := sb.TryBeginFlush()
	require.True(t, ok)
	require.Equal(t, "hello", string(data))
	require.Equal(t, 5, sb.Sending())

	// A second flush attempt while one is outstanding must be refused.
	_, ok = sb.TryBeginFlush()
	require.False(t, ok)

	next, postWrite, fireEmpty := sb.CompleteWrite(5)
	require.Nil(t, next)
	require.False(t, postWrite)
	require.True(t, fireEmpty)
	require.Equal(t, 0, sb.Sending())
}

func TestSendBuffersPartialWriteReposts(t *testing.T) {
	sb := NewSendBuffers(0)
	sb.Enqueue([]byte("hello"))
	sb.TryBeginFlush()

	next, postWrite, fireEmpty := sb.CompleteWrite(3)
	require.True(t, postWrite)
	require.False(t, fireEmpty)
	require.Equal(t, "lo", string(next))
}

func TestSendBuffersSwapsInNewlyQueuedDataAfterFlush(t *testing.T) {
	sb := NewSendBuffers(0)
	sb.Enqueue([]byte("first"))
	sb.TryBeginFlush()
	sb.Enqueue([]byte("second"))

	next, postWrite, fireEmpty := sb.CompleteWrite(5)
	require.True(t, postWrite)
	require.False(t, fireEmpty)
	require.Equal(t, "second", string(next))
}
