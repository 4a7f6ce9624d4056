// File: transport/state.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The stream session/client state machine shared by tcp, uds and ssl
// (spec.md §4.2): Idle -> Connecting -> [Handshaking ->] Connected ->
// Disconnecting -> Disconnected.

package transport

import "sync/atomic"

// State is one node of the stream session lifecycle.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateHandshaking
	StateConnected
	StateDisconnecting
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateHandshaking:
		return "handshaking"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// StateFlag is an atomically published State, the Go rendition of the
// teacher's naively shared connected/handshaked/stopping booleans
// (spec.md §9: "demand atomic reads and publication ordering").
type StateFlag struct{ v atomic.Int32 }

// Load reads the current state.
func (f *StateFlag) Load() State { return State(f.v.Load()) }

// Store publishes a new state.
func (f *StateFlag) Store(s State) { f.v.Store(int32(s)) }

// CompareAndSwap transitions from `from` to `to` iff currently `from`.
func (f *StateFlag) CompareAndSwap(from, to State) bool {
	return f.v.CompareAndSwap(int32(from), int32(to))
}

// IsConnected reports the "connected" observable of spec.md §4.1.
func (f *StateFlag) IsConnected() bool { return f.Load() == StateConnected }

// IsHandshaked reports whether the state has progressed past handshaking.
// Endpoints without a handshake stage (plain TCP/UDS) report true once
// connected.
func (f *StateFlag) IsHandshaked() bool {
	s := f.Load()
	return s == StateConnected
}
