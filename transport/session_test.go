package transport

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	NopHandler
	mu       sync.Mutex
	received [][]byte
	gotEmpty chan struct{}
	gotDisc  chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{gotEmpty: make(chan struct{}, 8), gotDisc: make(chan struct{}, 1)}
}

func (h *recordingHandler) OnReceived(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, append([]byte(nil), data...))
}

func (h *recordingHandler) OnEmpty() {
	select {
	case h.gotEmpty <- struct{}{}:
	default:
	}
}

func (h *recordingHandler) OnDisconnected() {
	select {
	case h.gotDisc <- struct{}{}:
	default:
	}
}

func TestStreamSessionSendAndReceive(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	h := newRecordingHandler()
	sess := NewStreamSession(server, h, DefaultOptions())
	go sess.ReadLoop()
	defer sess.Disconnect()

	require.NoError(t, sess.Send([]byte("hello")))

	buf := make([]byte, 5)
	client.SetReadDeadline(time.Now().Add(time.Second))
	n, err := client.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))

	select {
	case <-h.gotEmpty:
	case <-time.After(time.Second):
		t.Fatal("OnEmpty never fired after write drained")
	}
}

func TestStreamSessionReceivesFromPeer(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	h := newRecordingHandler()
	sess := NewStreamSession(server, h, DefaultOptions())
	go sess.ReadLoop()
	defer sess.Disconnect()

	client.SetWriteDeadline(time.Now().Add(time.Second))
	_, err := client.Write([]byte("ping"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.received) == 1 && string(h.received[0]) == "ping"
	}, time.Second, 5*time.Millisecond)
}

func TestStreamSessionSendAsyncRejectsOverLimit(t *testing.T) {
	_, server := net.Pipe()
	h := newRecordingHandler()
	opts := Apply(DefaultOptions(), WithSendBufferLimit(4))
	sess := NewStreamSession(server, h, opts)
	defer server.Close()

	require.False(t, sess.SendAsync([]byte("toolong")), "payload exceeding SendBufferLimit must be rejected")
}

func TestStreamSessionDisconnectFiresOnce(t *testing.T) {
	client, server := net.Pipe()
	h := newRecordingHandler()
	sess := NewStreamSession(server, h, DefaultOptions())
	go func() {
		buf := make([]byte, 16)
		for {
			if _, err := client.Read(buf); err != nil {
				return
			}
		}
	}()
	go sess.ReadLoop()

	require.NoError(t, sess.Disconnect())
	require.NoError(t, sess.Disconnect(), "second Disconnect must be a no-op, not a second OnDisconnected")

	select {
	case <-h.gotDisc:
	case <-time.After(time.Second):
		t.Fatal("OnDisconnected never fired")
	}
	client.Close()
}
