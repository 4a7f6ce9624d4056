package udp

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/momentics/netcore/transport"
	"github.com/stretchr/testify/require"
)

type udpEchoHandler struct {
	transport.NopPacketHandler
	srv *Server
}

func (h *udpEchoHandler) OnReceived(addr string, data []byte) {
	h.srv.SendAsync(addr, append([]byte(nil), data...))
}

type udpClientHandler struct {
	transport.NopPacketHandler
	mu   sync.Mutex
	got  []byte
	done chan struct{}
}

func (h *udpClientHandler) OnReceived(addr string, data []byte) {
	h.mu.Lock()
	h.got = append(h.got, data...)
	h.mu.Unlock()
	select {
	case h.done <- struct{}{}:
	default:
	}
}

func freeUDPAddr(t *testing.T) string {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	addr := conn.LocalAddr().String()
	conn.Close()
	return addr
}

func TestUDPEchoRoundTrip(t *testing.T) {
	addr := freeUDPAddr(t)

	srv := NewServer(nil)
	srv.handler = &udpEchoHandler{srv: srv}
	require.NoError(t, srv.Start(addr))
	defer srv.Stop()

	ch := &udpClientHandler{done: make(chan struct{}, 1)}
	cli := NewClient(addr, ch)
	require.NoError(t, cli.Connect())
	defer cli.Disconnect()

	require.True(t, cli.SendAsync([]byte("ping")))

	select {
	case <-ch.done:
	case <-time.After(2 * time.Second):
		t.Fatal("udp echo response never arrived")
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	require.Equal(t, "ping", string(ch.got))
	require.Equal(t, int64(4), srv.BytesReceived())
}

func TestUDPServerDoubleStartFails(t *testing.T) {
	addr := freeUDPAddr(t)
	srv := NewServer(nil)
	require.NoError(t, srv.Start(addr))
	defer srv.Stop()
	require.ErrorIs(t, srv.Start(addr), transport.ErrAlreadyStarted)
}

func TestUDPJoinMulticastGroupRequiresStartedServer(t *testing.T) {
	srv := NewServer(nil)
	require.ErrorIs(t, srv.JoinMulticastGroup("239.0.0.1"), transport.ErrNotStarted)
}
