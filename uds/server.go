// File: uds/server.go
// Package uds implements UdsServer/UdsSession/UdsClient (spec.md §4, §6)
// over net.UnixListener/net.UnixConn, sharing transport.StreamSession's
// send/receive discipline with tcp and ssl.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package uds

import (
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/momentics/netcore/control"
	"github.com/momentics/netcore/id"
	"github.com/momentics/netcore/transport"
	"go.uber.org/zap"
)

// Session is a server-side endpoint bound to one accepted UDS connection.
type Session = transport.StreamSession

// HandlerFactory builds a fresh handler for each accepted connection.
type HandlerFactory func(*Session) transport.StreamHandler

// Server accepts Unix Domain Socket connections.
type Server struct {
	id      id.Id
	path    string
	opts    transport.Options
	factory HandlerFactory
	handler transport.StreamHandler

	mu       sync.Mutex
	ln       *net.UnixListener
	started  bool
	registry *transport.Registry[*Session]
}

// NewServer creates a UdsServer bound to a filesystem path, not yet started.
func NewServer(path string, factory HandlerFactory, serverHandler transport.StreamHandler, opts ...transport.Option) *Server {
	if serverHandler == nil {
		serverHandler = transport.NopHandler{}
	}
	return &Server{
		id:       id.New(),
		path:     path,
		opts:     transport.Apply(transport.DefaultOptions(), opts...),
		factory:  factory,
		handler:  serverHandler,
		registry: transport.NewRegistry[*Session](),
	}
}

// Id returns the server's identity.
func (s *Server) Id() id.Id { return s.id }

// Start begins listening on the Unix socket path.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return transport.ErrAlreadyStarted
	}
	s.handler.OnStarting()

	_ = os.Remove(s.path)
	addr, err := net.ResolveUnixAddr("unix", s.path)
	if err != nil {
		return fmt.Errorf("uds resolve: %w", err)
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return fmt.Errorf("uds listen: %w", err)
	}
	s.ln = ln
	s.started = true
	s.handler.OnStarted()
	s.opts.Logger.Info("uds server listening", zap.String("path", s.path))

	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.AcceptUnix()
		if err != nil {
			s.mu.Lock()
			stopped := !s.started
			s.mu.Unlock()
			if stopped {
				return
			}
			s.opts.Logger.Warn("uds accept failed", zap.Error(err))
			s.handler.OnError(transport.ErrKindConnectionAborted, err)
			continue
		}
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

// Stop terminates the listener, disconnects every session, and unlinks
// the socket path (spec.md §6: "server unlinks path on stop").
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
	_ = os.Remove(s.path)
	s.DisconnectAll()
	s.handler.OnStopped()
	s.opts.Logger.Info("uds server stopped", zap.String("path", s.path))
	return nil
}

// Restart stops then starts the server again.
func (s *Server) Restart() error {
	if err := s.Stop(); err != nil && err != transport.ErrNotStarted {
		return err
	}
	return s.Start()
}

// Multicast enqueues payload to every connected session.
func (s *Server) Multicast(payload []byte) {
	s.registry.Each(func(sess *Session) { sess.SendAsync(payload) })
}

// DisconnectAll requests disconnection of every connected session.
func (s *Server) DisconnectAll() {
	s.registry.Each(func(sess *Session) { _ = sess.Disconnect() })
}

// Sessions returns the number of currently attached sessions.
func (s *Server) Sessions() int { return s.registry.Len() }

// RegisterMetrics exposes this server's live session count under
// "<name>.sessions" in mr.
func (s *Server) RegisterMetrics(mr *control.MetricsRegistry, name string) {
	mr.RegisterSampler(name+".sessions", func() any { return s.Sessions() })
}
