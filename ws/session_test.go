package ws

import (
	"bytes"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/momentics/netcore/transport"
	"github.com/stretchr/testify/require"
)

type recordingWSHandler struct {
	NopHandler
	mu       sync.Mutex
	messages [][]byte
	pings    [][]byte
	closed   chan struct{}
}

func newRecordingWSHandler() *recordingWSHandler {
	return &recordingWSHandler{closed: make(chan struct{}, 1)}
}

func (h *recordingWSHandler) OnMessage(_ *Session, _ Opcode, data []byte) {
	h.mu.Lock()
	h.messages = append(h.messages, append([]byte(nil), data...))
	h.mu.Unlock()
}

func (h *recordingWSHandler) OnPing(_ *Session, data []byte) {
	h.mu.Lock()
	h.pings = append(h.pings, append([]byte(nil), data...))
	h.mu.Unlock()
}

func (h *recordingWSHandler) OnClose(*Session, int, string) {
	select {
	case h.closed <- struct{}{}:
	default:
	}
}

func newWiredSession(conn net.Conn, isServer bool, h Handler) *Session {
	stream := transport.NewStreamSession(conn, transport.NopHandler{}, transport.DefaultOptions())
	sess := NewSession(stream, isServer, "", h)
	stream.Handler = sess
	go stream.ReadLoop()
	return sess
}

func TestWSSessionServerReceivesMaskedClientMessage(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	serverH := newRecordingWSHandler()
	server := newWiredSession(serverConn, true, serverH)
	defer server.stream.Disconnect()

	wire, err := EncodeFrame(Frame{Fin: true, Opcode: OpText, Payload: []byte("hi")}, true)
	require.NoError(t, err)
	clientConn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err = clientConn.Write(wire)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		serverH.mu.Lock()
		defer serverH.mu.Unlock()
		return len(serverH.messages) == 1 && string(serverH.messages[0]) == "hi"
	}, time.Second, 5*time.Millisecond)
}

func TestWSSessionServerRejectsUnmaskedClientFrame(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	serverH := newRecordingWSHandler()
	server := newWiredSession(serverConn, true, serverH)
	defer server.stream.Disconnect()

	wire, err := EncodeFrame(Frame{Fin: true, Opcode: OpText, Payload: []byte("hi")}, false)
	require.NoError(t, err)
	clientConn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err = clientConn.Write(wire)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return server.stream.IsConnected() == false
	}, time.Second, 5*time.Millisecond, "an unmasked client frame must abort the connection")
}

func TestWSSessionAutoEchoesPing(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	serverH := newRecordingWSHandler()
	server := newWiredSession(serverConn, true, serverH)
	defer server.stream.Disconnect()

	wire, err := EncodeFrame(Frame{Fin: true, Opcode: OpPing, Payload: []byte("p")}, true)
	require.NoError(t, err)
	clientConn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err = clientConn.Write(wire)
	require.NoError(t, err)

	clientConn.SetReadDeadline(time.Now().Add(time.Second))
	var parser FrameParser
	buf := make([]byte, 64)
	n, err := clientConn.Read(buf)
	require.NoError(t, err)
	frames, err := parser.Feed(buf[:n])
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Equal(t, OpPong, frames[0].Opcode)
	require.Equal(t, "p", string(frames[0].Payload))
}

func TestWSSessionFragmentedMessageReassembles(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	serverH := newRecordingWSHandler()
	server := newWiredSession(serverConn, true, serverH)
	defer server.stream.Disconnect()

	first, _ := EncodeFrame(Frame{Fin: false, Opcode: OpText, Payload: []byte("hel")}, true)
	second, _ := EncodeFrame(Frame{Fin: true, Opcode: OpContinuation, Payload: []byte("lo")}, true)

	clientConn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err := clientConn.Write(append(first, second...))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		serverH.mu.Lock()
		defer serverH.mu.Unlock()
		return len(serverH.messages) == 1 && string(serverH.messages[0]) == "hello"
	}, time.Second, 5*time.Millisecond)
}

func TestWSSessionSendTextIsUnmaskedFromServer(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	server := newWiredSession(serverConn, true, newRecordingWSHandler())
	defer server.stream.Disconnect()

	require.True(t, server.SendText([]byte("from-server")))

	clientConn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 64)
	n, err := clientConn.Read(buf)
	require.NoError(t, err)
	f, err := ReadFrame(bytes.NewReader(buf[:n]))
	require.NoError(t, err)
	require.False(t, f.Masked, "server-to-client frames must not be masked")
	require.Equal(t, "from-server", string(f.Payload))
}
