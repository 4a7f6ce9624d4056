// File: ws/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Server-side upgrade wiring: NewServerFactory builds a HandlerFactory
// compatible with tcp.Server/ssl.Server by composing httpx's HTTP
// request parsing with the upgrade handshake (spec.md §4.7).

package ws

import (
	"github.com/momentics/netcore/httpx"
	"github.com/momentics/netcore/transport"
)

// HandlerFactory builds a fresh application Handler for each upgraded
// connection.
type HandlerFactory func(sess *Session) Handler

type serverUpgrader struct {
	factory HandlerFactory
}

// OnReceivedRequest validates the upgrade request, replies 101, and swaps
// the live stream session's handler from HTTP to WebSocket framing
// (spec.md §4.7, §9).
func (u *serverUpgrader) OnReceivedRequest(sess *httpx.Session, req *httpx.Request) {
	key, subprotocol, err := ValidateUpgradeRequest(req)
	if err != nil {
		_ = sess.Send(httpx.MakeResponse(httpx.StatusBadRequest, "Bad Request", nil, "text/plain"))
		_ = sess.Disconnect()
		return
	}
	if err := sess.Send(MakeUpgradeResponse(key, subprotocol)); err != nil {
		return
	}

	stream := sess.Stream()
	wsSess := NewSession(stream, true, subprotocol, nil)
	h := u.factory(wsSess)
	wsSess.setHandler(h)
	stream.Handler = wsSess
	h.OnUpgraded(wsSess)
	if leftover := sess.DrainUnparsed(); len(leftover) > 0 {
		wsSess.OnReceived(leftover)
	}
}

// OnReceivedRequestError closes the connection on malformed input.
func (u *serverUpgrader) OnReceivedRequestError(sess *httpx.Session, _ *httpx.Request, _ error) {
	_ = sess.Disconnect()
}

// NewServerFactory builds a tcp/ssl-compatible HandlerFactory: every
// accepted connection starts as an HTTP session expecting exactly one
// upgrade request, then becomes a WebSocket Session once upgraded.
func NewServerFactory(maxHeaderBytes int, factory HandlerFactory) func(*transport.StreamSession) transport.StreamHandler {
	return httpx.NewHandlerFactory(maxHeaderBytes, &serverUpgrader{factory: factory})
}
