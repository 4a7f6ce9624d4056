// File: httpx/session.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Session layers incremental HTTP parsing over a transport.StreamSession
// (spec.md §4.6): it is itself a transport.StreamHandler, so tcp.Server's
// and ssl.Server's HandlerFactory wire it in exactly the way they wire any
// other StreamHandler — no change needed to the stream layer to add a
// protocol on top (spec.md §9 "HTTP layer ... extending the TCP/SSL
// sessions").

package httpx

import (
	"net"

	"github.com/momentics/netcore/transport"
)

// Session is one HTTP connection, server- or client-role, wrapping the
// underlying stream session and its incremental parser.
type Session struct {
	transport.NopHandler

	stream *transport.StreamSession

	reqParser *RequestParser
	reqH      RequestHandler

	respParser *ResponseParser
	respH      ResponseHandler
}

// NewServerSession builds a request-parsing Session for a freshly accepted
// stream connection. Intended for use as a tcp.HandlerFactory/
// ssl.HandlerFactory callback: `func(s *transport.StreamSession) transport.StreamHandler { return httpx.NewServerSession(s, maxHeader, h) }`.
func NewServerSession(stream *transport.StreamSession, maxHeaderBytes int, h RequestHandler) *Session {
	return &Session{
		stream:    stream,
		reqParser: NewRequestParser(maxHeaderBytes),
		reqH:      h,
	}
}

// NewClientSession builds a response-parsing Session over a connected
// stream session (tcp.Client/ssl.Client).
func NewClientSession(stream *transport.StreamSession, maxHeaderBytes int, h ResponseHandler) *Session {
	return &Session{
		stream:     stream,
		respParser: NewResponseParser(maxHeaderBytes),
		respH:      h,
	}
}

// newPendingClientSession builds a response-parsing Session before the
// underlying stream session exists: transport.NewStreamSession needs a
// StreamHandler up front, but that handler (this Session) needs the
// resulting *StreamSession to implement Send/Disconnect. Client.Connect
// resolves the cycle by calling this, then attach once dialing succeeds.
func newPendingClientSession(maxHeaderBytes int, h ResponseHandler) *Session {
	return &Session{respParser: NewResponseParser(maxHeaderBytes), respH: h}
}

func (s *Session) attach(stream *transport.StreamSession) { s.stream = stream }

// OnReceived feeds the arriving bytes into whichever parser this session
// owns, firing the application callback once per complete message. A
// single read may carry more than one pipelined message.
func (s *Session) OnReceived(data []byte) {
	if s.reqParser != nil {
		s.feedRequests(data)
		return
	}
	s.feedResponses(data)
}

func (s *Session) feedRequests(data []byte) {
	for {
		req, err := s.reqParser.Feed(data)
		data = nil
		if err != nil {
			s.reqH.OnReceivedRequestError(s, req, err)
			_ = s.stream.Disconnect()
			return
		}
		if req == nil {
			return
		}
		s.reqH.OnReceivedRequest(s, req)
	}
}

func (s *Session) feedResponses(data []byte) {
	for {
		resp, err := s.respParser.Feed(data)
		data = nil
		if err != nil {
			s.respH.OnReceivedResponseError(s, resp, err)
			_ = s.stream.Disconnect()
			return
		}
		if resp == nil {
			return
		}
		s.respH.OnReceivedResponse(s, resp)
	}
}

// Send writes data synchronously (e.g. a built response/request).
func (s *Session) Send(data []byte) error { return s.stream.Send(data) }

// SendAsync enqueues data without blocking.
func (s *Session) SendAsync(data []byte) bool { return s.stream.SendAsync(data) }

// RemoteAddr returns the peer's network address.
func (s *Session) RemoteAddr() net.Addr { return s.stream.RemoteAddr() }

// Disconnect closes the underlying stream session.
func (s *Session) Disconnect() error { return s.stream.Disconnect() }

// Stream exposes the underlying transport session for protocol layers
// built atop HTTP (the WebSocket upgrade handshake needs the raw stream).
func (s *Session) Stream() *transport.StreamSession { return s.stream }

// DrainUnparsed returns any bytes the request parser had buffered past
// the message just delivered to OnReceivedRequest — non-empty only when
// the peer pipelined bytes belonging to the next protocol (e.g. a
// WebSocket frame arriving in the same read as the upgrade request).
func (s *Session) DrainUnparsed() []byte {
	if s.reqParser == nil {
		return nil
	}
	return s.reqParser.Drain()
}
