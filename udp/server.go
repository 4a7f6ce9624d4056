// File: udp/server.go
// Package udp implements UdpServer/UdpClient (spec.md §4.4): no session,
// OnReceived/OnSent carry the peer endpoint explicitly. Multicast join is
// wired through golang.org/x/sys/unix IP_ADD_MEMBERSHIP, following the
// same raw-socket-control pattern as tcp/ssl's REUSEADDR/REUSEPORT wiring.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package udp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/eapache/queue"
	"github.com/momentics/netcore/control"
	"github.com/momentics/netcore/id"
	"github.com/momentics/netcore/transport"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Server is a UDP endpoint: no per-peer session, datagrams are delivered
// one-for-one to OnReceived (spec.md §4.4).
type Server struct {
	id      id.Id
	opts    transport.Options
	handler transport.PacketHandler

	mu        sync.Mutex
	conn      *net.UDPConn
	started   bool
	multicast bool

	bytesSent atomic.Int64
	bytesRecv atomic.Int64

	dispatch *dispatcher
}

// NewServer creates a UdpServer with the given handler, not yet started.
func NewServer(handler transport.PacketHandler, opts ...transport.Option) *Server {
	if handler == nil {
		handler = transport.NopPacketHandler{}
	}
	return &Server{
		id:       id.New(),
		opts:     transport.Apply(transport.DefaultOptions(), opts...),
		handler:  handler,
		dispatch: newDispatcher(),
	}
}

// Id returns the server's identity.
func (s *Server) Id() id.Id { return s.id }

// Start binds to addr (host:port) and begins receiving datagrams.
func (s *Server) Start(addr string) error {
	return s.start(addr)
}

// StartMulticast binds to ANY:port with ReuseAddress and joins the given
// IGMP multicast group (spec.md §4.4). This decides the Open Question of
// spec.md §9: the server also receives any unicast traffic arriving on the
// same port, since it genuinely binds ANY:port — callers that need
// multicast-only traffic should filter by destination in OnReceived.
func (s *Server) StartMulticast(group string, port int) error {
	s.mu.Lock()
	s.opts.ReuseAddress = true
	s.mu.Unlock()
	if err := s.start(fmt.Sprintf(":%d", port)); err != nil {
		return err
	}
	return s.JoinMulticastGroup(group)
}

func (s *Server) start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return transport.ErrAlreadyStarted
	}
	s.handler.OnStarting()

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("udp resolve: %w", err)
	}
	lc := net.ListenConfig{Control: s.controlFn()}
	pc, err := lc.ListenPacket(context.Background(), "udp", udpAddr.String())
	if err != nil {
		return fmt.Errorf("udp listen: %w", err)
	}
	s.conn = pc.(*net.UDPConn)
	s.started = true
	s.handler.OnStarted()
	s.opts.Logger.Info("udp server listening", zap.String("addr", addr))
	go s.recvLoop()
	return nil
}

func (s *Server) controlFn() func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		if !s.opts.ReuseAddress {
			return nil
		}
		var ctrlErr error
		err := c.Control(func(fd uintptr) {
			ctrlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		})
		if err != nil {
			return err
		}
		return ctrlErr
	}
}

// JoinMulticastGroup joins the IGMP group at the given multicast address
// (spec.md §4.4).
func (s *Server) JoinMulticastGroup(group string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return transport.ErrNotStarted
	}
	ip := net.ParseIP(group).To4()
	if ip == nil {
		return fmt.Errorf("udp: %q is not an IPv4 multicast address", group)
	}
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var ctrlErr error
	err = raw.Control(func(fd uintptr) {
		mreq := &unix.IPMreq{}
		copy(mreq.Multiaddr[:], ip)
		ctrlErr = unix.SetsockoptIPMreq(int(fd), unix.IPPROTO_IP, unix.IP_ADD_MEMBERSHIP, mreq)
	})
	if err != nil {
		return err
	}
	if ctrlErr == nil {
		s.mu.Lock()
		s.multicast = true
		s.mu.Unlock()
	}
	return ctrlErr
}

// LeaveMulticastGroup leaves a previously joined IGMP group.
func (s *Server) LeaveMulticastGroup(group string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return transport.ErrNotStarted
	}
	ip := net.ParseIP(group).To4()
	if ip == nil {
		return fmt.Errorf("udp: %q is not an IPv4 multicast address", group)
	}
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var ctrlErr error
	err = raw.Control(func(fd uintptr) {
		mreq := &unix.IPMreq{}
		copy(mreq.Multiaddr[:], ip)
		ctrlErr = unix.SetsockoptIPMreq(int(fd), unix.IPPROTO_IP, unix.IP_DROP_MEMBERSHIP, mreq)
	})
	if err != nil {
		return err
	}
	return ctrlErr
}

func (s *Server) recvLoop() {
	buf := make([]byte, s.opts.ReceiveBufferSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			s.mu.Lock()
			stopped := !s.started
			s.mu.Unlock()
			if stopped {
				return
			}
			s.opts.Logger.Warn("udp receive failed", zap.Error(err))
			s.handler.OnError(transport.ErrKindConnectionReset, err)
			return
		}
		if n > 0 {
			s.bytesRecv.Add(int64(n))
			data := make([]byte, n)
			copy(data, buf[:n])
			s.handler.OnReceived(addr.String(), data)
		}
	}
}

// SendAsync sends payload to the given endpoint ("host:port"). UDP has no
// per-peer send-buffer back-pressure (spec.md §4.4): the write is handed
// to the send dispatcher. Returns false if the server is not started, the
// endpoint cannot be resolved, or the dispatch ring is full.
func (s *Server) SendAsync(endpoint string, payload []byte) bool {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return false
	}
	addr, err := net.ResolveUDPAddr("udp", endpoint)
	if err != nil {
		return false
	}
	return s.dispatch.submit(func() {
		n, err := conn.WriteToUDP(payload, addr)
		if err != nil {
			s.handler.OnError(transport.ErrKindConnectionReset, err)
			return
		}
		s.bytesSent.Add(int64(n))
		s.handler.OnSent(endpoint, n)
	})
}

// Multicast fans payload out to every endpoint in peers, using an
// eapache/queue snapshot so the caller's slice can be mutated concurrently
// without affecting in-flight sends (spec.md §4.1 Multicast semantics,
// adapted to UDP's endpoint-addressed send).
func (s *Server) Multicast(peers []string, payload []byte) {
	q := queue.New()
	for _, p := range peers {
		q.Add(p)
	}
	for q.Length() > 0 {
		ep := q.Remove().(string)
		s.SendAsync(ep, payload)
	}
}

// Stop closes the socket.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return transport.ErrNotStarted
	}
	s.started = false
	conn := s.conn
	s.mu.Unlock()

	s.handler.OnStopping()
	_ = conn.Close()
	s.handler.OnStopped()
	s.opts.Logger.Info("udp server stopped")
	return nil
}

// BytesSent returns the cumulative count of bytes confirmed written.
func (s *Server) BytesSent() int64 { return s.bytesSent.Load() }

// BytesReceived returns the cumulative count of bytes delivered to OnReceived.
func (s *Server) BytesReceived() int64 { return s.bytesRecv.Load() }

// RegisterMetrics exposes this server's byte counters under
// "<name>.bytes_sent"/"<name>.bytes_received" in mr.
func (s *Server) RegisterMetrics(mr *control.MetricsRegistry, name string) {
	mr.RegisterSampler(name+".bytes_sent", func() any { return s.BytesSent() })
	mr.RegisterSampler(name+".bytes_received", func() any { return s.BytesReceived() })
}
