// File: tcp/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"syscall"

	"github.com/momentics/netcore/control"
	"github.com/momentics/netcore/id"
	"github.com/momentics/netcore/transport"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// HandlerFactory builds a fresh handler for each accepted connection.
type HandlerFactory func(*Session) transport.StreamHandler

// Server accepts TCP connections and materializes a Session for each
// (spec.md §3, §4.1).
type Server struct {
	id      id.Id
	addr    string
	opts    transport.Options
	factory HandlerFactory
	handler transport.StreamHandler // server-lifecycle callbacks

	mu       sync.Mutex
	ln       *net.TCPListener
	started  bool
	registry *transport.Registry[*Session]
}

// NewServer creates a TcpServer bound to addr (host:port), not yet started.
func NewServer(addr string, factory HandlerFactory, serverHandler transport.StreamHandler, opts ...transport.Option) *Server {
	if serverHandler == nil {
		serverHandler = transport.NopHandler{}
	}
	return &Server{
		id:       id.New(),
		addr:     addr,
		opts:     transport.Apply(transport.DefaultOptions(), opts...),
		factory:  factory,
		handler:  serverHandler,
		registry: transport.NewRegistry[*Session](),
	}
}

// Id returns the server's identity.
func (s *Server) Id() id.Id { return s.id }

// Start begins listening and accepting connections. Fails with
// ErrAlreadyStarted if already started (spec.md §4.1).
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return transport.ErrAlreadyStarted
	}
	s.handler.OnStarting()

	lc := net.ListenConfig{Control: s.controlFn()}
	ln, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("tcp listen: %w", err)
	}
	s.ln = ln.(*net.TCPListener)
	s.started = true
	s.handler.OnStarted()
	s.opts.Logger.Info("tcp server listening", zap.String("addr", s.addr))

	go s.acceptLoop()
	return nil
}

func (s *Server) controlFn() func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var ctrlErr error
		err := c.Control(func(fd uintptr) {
			if s.opts.ReuseAddress {
				ctrlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			}
			if s.opts.ReusePort {
				ctrlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			}
		})
		if err != nil {
			return err
		}
		return ctrlErr
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.AcceptTCP()
		if err != nil {
			s.mu.Lock()
			stopped := !s.started
			s.mu.Unlock()
			if stopped {
				return
			}
			s.opts.Logger.Warn("tcp accept failed", zap.Error(err))
			s.handler.OnError(transport.ErrKindConnectionAborted, err)
			continue
		}
		s.applyConnOptions(conn)
		sess := transport.NewStreamSession(conn, transport.NopHandler{}, s.opts)
		h := s.factory(sess)
		if h == nil {
			h = transport.NopHandler{}
		}
		sess.Handler = h
		sess.SetOnDisconnected(func() { s.registry.Remove(sess.Id()) })
		s.registry.Add(sess.Id(), sess)
		h.OnConnecting()
		h.OnConnected()
		go sess.ReadLoop()
	}
}

func (s *Server) applyConnOptions(conn *net.TCPConn) {
	_ = conn.SetNoDelay(s.opts.NoDelay)
	if s.opts.KeepAlive {
		_ = conn.SetKeepAlive(true)
		if s.opts.KeepAliveTime > 0 {
			_ = conn.SetKeepAlivePeriod(s.opts.KeepAliveTime)
		}
	}
}

// Stop terminates the listener and disconnects every session.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return transport.ErrNotStarted
	}
	s.started = false
	ln := s.ln
	s.mu.Unlock()

	s.handler.OnStopping()
	_ = ln.Close()
	s.DisconnectAll()
	s.handler.OnStopped()
	s.opts.Logger.Info("tcp server stopped", zap.String("addr", s.addr))
	return nil
}

// Restart stops then starts the server again.
func (s *Server) Restart() error {
	if err := s.Stop(); err != nil && err != transport.ErrNotStarted {
		return err
	}
	return s.Start()
}

// Multicast enqueues payload to every connected session (spec.md §4.1).
// Per-session back-pressure may silently reject an individual enqueue
// without failing the overall operation.
func (s *Server) Multicast(payload []byte) {
	s.registry.Each(func(sess *Session) {
		sess.SendAsync(payload)
	})
}

// DisconnectAll requests disconnection of every currently connected
// session.
func (s *Server) DisconnectAll() {
	s.registry.Each(func(sess *Session) {
		_ = sess.Disconnect()
	})
}

// Sessions returns the number of currently attached sessions.
func (s *Server) Sessions() int { return s.registry.Len() }

// RegisterMetrics exposes this server's live session count under
// "<name>.sessions" in mr, sampled fresh on every MetricsRegistry.GetSnapshot.
func (s *Server) RegisterMetrics(mr *control.MetricsRegistry, name string) {
	mr.RegisterSampler(name+".sessions", func() any { return s.Sessions() })
}
