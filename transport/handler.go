// File: transport/handler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The callback surface implementers override (spec.md §4.1, §9). The
// teacher expresses this as virtual-method overrides on a base class
// (adapters.HandlerFunc / highlevel Conn); the idiomatic Go rendition is a
// capability-set interface, with a NopHandler embedding target so callers
// only implement the callbacks they care about.

package transport

// StreamHandler is the callback surface for TCP/UDS/SSL servers, sessions
// and clients.
type StreamHandler interface {
	OnStarting()
	OnStarted()
	OnStopping()
	OnStopped()

	OnConnecting()
	OnConnected()
	OnHandshaking()
	OnHandshaked()
	OnDisconnecting()
	OnDisconnected()

	// OnReceived delivers a slice valid only for the duration of the call.
	OnReceived(data []byte)
	OnSent(sent, pending int)
	OnEmpty()
	OnError(kind ErrorKind, err error)
}

// NopHandler implements StreamHandler with no-ops; embed it and override
// only the callbacks a particular endpoint needs.
type NopHandler struct{}

func (NopHandler) OnStarting()                       {}
func (NopHandler) OnStarted()                        {}
func (NopHandler) OnStopping()                       {}
func (NopHandler) OnStopped()                        {}
func (NopHandler) OnConnecting()                     {}
func (NopHandler) OnConnected()                      {}
func (NopHandler) OnHandshaking()                    {}
func (NopHandler) OnHandshaked()                     {}
func (NopHandler) OnDisconnecting()                  {}
func (NopHandler) OnDisconnected()                   {}
func (NopHandler) OnReceived(data []byte)             {}
func (NopHandler) OnSent(sent, pending int)          {}
func (NopHandler) OnEmpty()                          {}
func (NopHandler) OnError(kind ErrorKind, err error) {}

var _ StreamHandler = NopHandler{}

// PacketHandler is the callback surface for UDP endpoints (spec.md §4.4):
// no session, so OnReceived/OnSent carry the peer endpoint explicitly.
type PacketHandler interface {
	OnStarting()
	OnStarted()
	OnStopping()
	OnStopped()

	OnReceived(addr string, data []byte)
	OnSent(addr string, sent int)
	OnError(kind ErrorKind, err error)
}

// NopPacketHandler implements PacketHandler with no-ops.
type NopPacketHandler struct{}

func (NopPacketHandler) OnStarting()                      {}
func (NopPacketHandler) OnStarted()                       {}
func (NopPacketHandler) OnStopping()                      {}
func (NopPacketHandler) OnStopped()                       {}
func (NopPacketHandler) OnReceived(addr string, data []byte) {}
func (NopPacketHandler) OnSent(addr string, sent int)      {}
func (NopPacketHandler) OnError(kind ErrorKind, err error) {}

var _ PacketHandler = NopPacketHandler{}
