// File: transport/session.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// StreamSession is the stream-oriented session shared by tcp, uds and ssl:
// one accepted net.Conn, the swap-buffer send engine, and the armed
// receive loop (spec.md §4.2, §4.3). Each modality package supplies its
// own Server/Client for dialing/accepting and socket-option handling, then
// wraps a StreamSession for everything past "I have a net.Conn" — this is
// the Go idiom for sharing behavior across the three stream socket
// modalities without an inheritance chain (spec.md §9).

package transport

import (
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/momentics/netcore/buffer"
	"github.com/momentics/netcore/id"
	"github.com/momentics/netcore/logging"
	"github.com/momentics/netcore/util"
	"go.uber.org/zap"
)

// StreamSession is a server-side endpoint bound to one accepted stream
// connection, or a client-owned connection in place.
type StreamSession struct {
	sid     id.Id
	conn    net.Conn
	Handler StreamHandler
	opts    Options

	state     StateFlag
	sendBufs  *SendBuffers
	recvBuf   *buffer.Buffer
	bytesSent atomic.Int64
	bytesRecv atomic.Int64

	// onDisconnected, if set, unregisters the session from its owning
	// server's registry before OnDisconnected fires (spec.md §3 invariant).
	onDisconnected func()
	// handshakeDone reports whether the handshake stage (TLS) has completed;
	// nil for modalities with no handshake stage, in which case the
	// session is handshaked as soon as it is connected.
	handshakeDone func() bool
}

// NewStreamSession wraps conn as a connected StreamSession.
func NewStreamSession(conn net.Conn, h StreamHandler, opts Options) *StreamSession {
	if h == nil {
		h = NopHandler{}
	}
	s := &StreamSession{
		sid:      id.New(),
		conn:     conn,
		Handler:  h,
		opts:     opts,
		sendBufs: NewSendBuffers(opts.SendBufferLimit),
		recvBuf:  buffer.NewSize(opts.ReceiveBufferSize),
	}
	s.state.Store(StateConnected)
	opts.Logger.Debug("stream session connected",
		zap.String("session_id", s.sid.String()),
		zap.String("remote_addr", safeRemoteAddr(conn)))
	return s
}

func safeRemoteAddr(conn net.Conn) string {
	if conn == nil {
		return ""
	}
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// Id returns the session's identity.
func (s *StreamSession) Id() id.Id { return s.sid }

// Logger returns the session's structured logger, for modality packages
// that need to log stage transitions (e.g. ssl's handshake driver).
func (s *StreamSession) Logger() logging.Logger { return s.opts.Logger }

// Conn exposes the underlying net.Conn for modality-specific extensions
// (e.g. ssl's handshake driver needs to read/write the raw stream).
func (s *StreamSession) Conn() net.Conn { return s.conn }

// RemoteAddr returns the peer's network address.
func (s *StreamSession) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// SetOnDisconnected registers the registry-removal hook invoked before
// OnDisconnected fires.
func (s *StreamSession) SetOnDisconnected(fn func()) { s.onDisconnected = fn }

// SetHandshakeProbe registers a predicate reporting whether the handshake
// stage has completed. No endpoint in this module registers one.
func (s *StreamSession) SetHandshakeProbe(fn func() bool) { s.handshakeDone = fn }

// SetState exposes the internal state flag to modality packages that need
// to drive the Handshaking stage (ssl) before declaring Connected.
func (s *StreamSession) SetState(st State) { s.state.Store(st) }

// IsConnected reports whether the session is attached (spec.md §4.1).
func (s *StreamSession) IsConnected() bool { return s.state.Load() == StateConnected || s.state.Load() == StateHandshaking }

// IsHandshaked reports the handshake observable.
func (s *StreamSession) IsHandshaked() bool {
	if s.handshakeDone != nil {
		return s.handshakeDone()
	}
	return s.state.Load() == StateConnected
}

// BytesSent is the cumulative count of bytes confirmed written.
func (s *StreamSession) BytesSent() int64 { return s.bytesSent.Load() }

// BytesReceived is the cumulative count of bytes delivered to OnReceived.
func (s *StreamSession) BytesReceived() int64 { return s.bytesRecv.Load() }

// BytesPending returns bytes queued but not yet handed to the OS.
func (s *StreamSession) BytesPending() int { return s.sendBufs.Pending() }

// BytesSending returns bytes handed to the OS but not yet confirmed.
func (s *StreamSession) BytesSending() int { return s.sendBufs.Sending() }

// SendAsync enqueues data for transmission without blocking.
func (s *StreamSession) SendAsync(data []byte) bool {
	if !s.IsConnected() {
		return false
	}
	if !s.sendBufs.Enqueue(data) {
		return false
	}
	s.pump()
	return true
}

// Send blocks until data has been handed to SendBufferMain, waiting for
// drain capacity and honoring SendTimeout (spec.md §4.3).
func (s *StreamSession) Send(data []byte) error {
	deadline := time.Now().Add(s.opts.SendTimeout)
	for {
		if s.SendAsync(data) {
			return nil
		}
		if !s.IsConnected() {
			return ErrNotConnected
		}
		if s.opts.SendTimeout > 0 && time.Now().After(deadline) {
			return NewError(ErrKindTimedOut, nil)
		}
		time.Sleep(time.Millisecond)
	}
}

func (s *StreamSession) pump() {
	data, ok := s.sendBufs.TryBeginFlush()
	if !ok {
		return
	}
	go s.writeLoop(data)
}

func (s *StreamSession) writeLoop(data []byte) {
	for {
		n, err := s.conn.Write(data)
		if n > 0 {
			s.bytesSent.Add(int64(n))
		}
		if err != nil {
			s.opts.Logger.Warn("stream write failed",
				zap.String("session_id", s.sid.String()), zap.Error(err))
			s.Handler.OnError(ClassifyNetError(err), err)
			s.Disconnect()
			return
		}
		next, postWrite, fireEmpty := s.sendBufs.CompleteWrite(n)
		pending := s.sendBufs.Pending()
		s.Handler.OnSent(n, pending)
		if postWrite {
			data = next
			continue
		}
		if fireEmpty {
			s.Handler.OnEmpty()
		}
		return
	}
}

// ReadLoop arms the single in-flight receive and re-arms it in a loop
// (spec.md §4.3, §5): the session's only reader, so OnReceived never
// interleaves with itself. Modality packages spawn this as a goroutine
// once the handshake (if any) has completed.
func (s *StreamSession) ReadLoop() {
	for {
		limit := s.opts.ReceiveBufferLimit
		if !s.recvBuf.Grow(s.opts.ReceiveBufferSize, limit) {
			s.Handler.OnError(ErrKindBufferOverflow, nil)
			s.Disconnect()
			return
		}
		region := s.recvBuf.Tail(s.opts.ReceiveBufferSize)
		n, err := s.conn.Read(region)
		if n > 0 {
			s.recvBuf.Commit(n)
			s.bytesRecv.Add(int64(n))
			data := append([]byte(nil), s.recvBuf.Bytes()...)
			s.recvBuf.Reset()
			s.Handler.OnReceived(data)
		}
		if err != nil {
			if !isEOF(err) {
				s.Handler.OnError(ClassifyNetError(err), err)
			}
			s.Disconnect()
			return
		}
		if n == 0 {
			s.Disconnect()
			return
		}
	}
}

// Disconnect requests a graceful close: pending outbound bytes are
// drained (bounded by a short grace period) before the socket closes and
// OnDisconnected fires exactly once (spec.md §5 cancellation).
func (s *StreamSession) Disconnect() error {
	if !s.state.CompareAndSwap(StateConnected, StateDisconnecting) &&
		!s.state.CompareAndSwap(StateHandshaking, StateDisconnecting) {
		return nil
	}
	s.Handler.OnDisconnecting()
	deadline := time.Now().Add(2 * time.Second)
	for s.sendBufs.Pending() > 0 || s.sendBufs.Sending() > 0 {
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	_ = s.conn.Close()
	s.state.Store(StateDisconnected)
	s.opts.Logger.Debug("stream session disconnected",
		zap.String("session_id", s.sid.String()),
		zap.String("bytes_sent", util.FormatSize(s.bytesSent.Load())),
		zap.String("bytes_received", util.FormatSize(s.bytesRecv.Load())))
	if s.onDisconnected != nil {
		s.onDisconnected()
	}
	s.Handler.OnDisconnected()
	return nil
}

// ClassifyNetError maps a net.Error into the closest ErrorKind of
// spec.md §7.
func ClassifyNetError(err error) ErrorKind {
	if err == nil {
		return ErrKindUnknown
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return ErrKindTimedOut
	}
	return ErrKindConnectionReset
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
