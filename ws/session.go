// File: ws/session.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Session drives frame exchange after a completed upgrade (spec.md §4.7).
// A connection's receive side has exactly one reader: its
// transport.StreamSession.ReadLoop (spec.md §5 "exactly one receive
// operation is in flight"). Session therefore never reads the connection
// itself — like httpx.Session, it implements transport.StreamHandler and
// is swapped onto the live StreamSession's Handler field in place of the
// HTTP upgrade handler once the 101 response is sent, so frame bytes
// arrive through the same ReadLoop goroutine that parsed the upgrade
// request.

package ws

import (
	"github.com/momentics/netcore/transport"
)

// Session is one upgraded WebSocket connection.
type Session struct {
	transport.NopHandler

	stream   *transport.StreamSession
	parser   FrameParser
	handler  Handler
	isServer bool

	subprotocol string

	assembling bool
	assembleOp Opcode
	assembled  []byte

	closeFired bool
}

// NewSession wraps stream (already past the HTTP upgrade handshake) as a
// frame-level WebSocket session. isServer selects masking direction
// (spec.md §3 masking invariant): a server session sends unmasked frames
// and requires every received frame to be masked, and conversely for a
// client session.
func NewSession(stream *transport.StreamSession, isServer bool, subprotocol string, handler Handler) *Session {
	if handler == nil {
		handler = NopHandler{}
	}
	return &Session{
		stream:      stream,
		handler:     handler,
		isServer:    isServer,
		subprotocol: subprotocol,
	}
}

func (s *Session) setHandler(h Handler) {
	if h == nil {
		h = NopHandler{}
	}
	s.handler = h
}

// Subprotocol returns the negotiated subprotocol, if any.
func (s *Session) Subprotocol() string { return s.subprotocol }

// RemoteAddr returns the peer's network address.
func (s *Session) RemoteAddr() string { return s.stream.RemoteAddr().String() }

// OnReceived satisfies transport.StreamHandler: it feeds arriving bytes
// into the frame parser and dispatches every frame completed so far.
func (s *Session) OnReceived(data []byte) {
	frames, err := s.parser.Feed(data)
	for _, f := range frames {
		if !s.validateDirection(f) {
			return
		}
		if !s.dispatch(f) {
			return
		}
	}
	if err != nil {
		s.fail(transport.ErrKindInvalidFrame)
	}
}

// OnDisconnected satisfies transport.StreamHandler, surfacing the close
// to the application if the peer dropped the connection without sending
// a close frame.
func (s *Session) OnDisconnected() {
	if s.closeFired {
		return
	}
	s.closeFired = true
	s.handler.OnClose(s, 1006, "connection closed abnormally")
}

func (s *Session) validateDirection(f Frame) bool {
	if s.isServer && !f.Masked {
		s.fail(transport.ErrKindUnmaskedClientFrame)
		return false
	}
	if !s.isServer && f.Masked {
		s.fail(transport.ErrKindMaskedServerFrame)
		return false
	}
	return true
}

func (s *Session) dispatch(f Frame) bool {
	switch f.Opcode {
	case OpText, OpBinary:
		return s.handleDataFrame(f)
	case OpContinuation:
		return s.handleContinuation(f)
	case OpPing:
		s.handler.OnPing(s, f.Payload)
		_ = s.sendControl(OpPong, f.Payload)
		return true
	case OpPong:
		s.handler.OnPong(s, f.Payload)
		return true
	case OpClose:
		code, reason := parseCloseBody(f.Payload)
		s.closeFired = true
		_ = s.sendControl(OpClose, f.Payload)
		_ = s.stream.Disconnect()
		s.handler.OnClose(s, code, reason)
		return false
	default:
		s.fail(transport.ErrKindUnexpectedOpcode)
		return false
	}
}

func (s *Session) handleDataFrame(f Frame) bool {
	if !f.Fin {
		s.assembling = true
		s.assembleOp = f.Opcode
		s.assembled = append([]byte(nil), f.Payload...)
		return true
	}
	s.handler.OnMessage(s, f.Opcode, f.Payload)
	return true
}

func (s *Session) handleContinuation(f Frame) bool {
	if !s.assembling {
		s.fail(transport.ErrKindUnexpectedOpcode)
		return false
	}
	s.assembled = append(s.assembled, f.Payload...)
	if !f.Fin {
		return true
	}
	op, data := s.assembleOp, s.assembled
	s.assembling = false
	s.assembled = nil
	s.handler.OnMessage(s, op, data)
	return true
}

func (s *Session) fail(kind transport.ErrorKind) {
	s.handler.OnError(s, kind, nil)
	_ = s.stream.Disconnect()
}

func (s *Session) encode(opcode Opcode, payload []byte) ([]byte, error) {
	return EncodeFrame(Frame{Fin: true, Opcode: opcode, Payload: payload}, !s.isServer)
}

func (s *Session) sendControl(opcode Opcode, payload []byte) error {
	wire, err := s.encode(opcode, payload)
	if err != nil {
		return err
	}
	return s.stream.Send(wire)
}

// SendText sends a complete text message.
func (s *Session) SendText(data []byte) bool {
	wire, err := s.encode(OpText, data)
	if err != nil {
		return false
	}
	return s.stream.SendAsync(wire)
}

// SendBinary sends a complete binary message.
func (s *Session) SendBinary(data []byte) bool {
	wire, err := s.encode(OpBinary, data)
	if err != nil {
		return false
	}
	return s.stream.SendAsync(wire)
}

// SendPing sends a ping control frame.
func (s *Session) SendPing(data []byte) bool {
	wire, err := s.encode(OpPing, data)
	if err != nil {
		return false
	}
	return s.stream.SendAsync(wire)
}

// SendPong sends an unsolicited pong control frame.
func (s *Session) SendPong(data []byte) bool {
	wire, err := s.encode(OpPong, data)
	if err != nil {
		return false
	}
	return s.stream.SendAsync(wire)
}

// SendClose sends a close frame carrying code and reason, then closes the
// connection (spec.md §4.7: the peer-initiated counterpart auto-echoes;
// this is the locally-initiated close).
func (s *Session) SendClose(code int, reason string) bool {
	wire, err := s.encode(OpClose, closeBody(code, reason))
	if err != nil {
		return false
	}
	s.closeFired = true
	ok := s.stream.SendAsync(wire)
	_ = s.stream.Disconnect()
	return ok
}

func closeBody(code int, reason string) []byte {
	b := make([]byte, 2, 2+len(reason))
	b[0] = byte(code >> 8)
	b[1] = byte(code)
	return append(b, reason...)
}

func parseCloseBody(payload []byte) (code int, reason string) {
	if len(payload) < 2 {
		return 1005, ""
	}
	code = int(payload[0])<<8 | int(payload[1])
	return code, string(payload[2:])
}
