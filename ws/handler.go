// File: ws/handler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ws

import "github.com/momentics/netcore/transport"

// Handler is the application callback surface for a WebSocket session
// (spec.md §4.7).
type Handler interface {
	OnUpgraded(sess *Session)
	OnMessage(sess *Session, opcode Opcode, data []byte)
	OnClose(sess *Session, code int, reason string)
	OnPing(sess *Session, data []byte)
	OnPong(sess *Session, data []byte)
	OnError(sess *Session, kind transport.ErrorKind, err error)
}

// NopHandler implements Handler with no-ops.
type NopHandler struct{}

func (NopHandler) OnUpgraded(*Session)                              {}
func (NopHandler) OnMessage(*Session, Opcode, []byte)                {}
func (NopHandler) OnClose(*Session, int, string)                     {}
func (NopHandler) OnPing(*Session, []byte)                           {}
func (NopHandler) OnPong(*Session, []byte)                           {}
func (NopHandler) OnError(*Session, transport.ErrorKind, error)       {}

var _ Handler = NopHandler{}
