// File: tcp/session.go
// Package tcp implements TcpServer/TcpSession/TcpClient (spec.md §4.2,
// §4.3) over net.Listener/net.TCPConn, wrapping transport.StreamSession
// for the shared send/receive discipline.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import "github.com/momentics/netcore/transport"

// Session is a server-side endpoint bound to one accepted TCP connection.
type Session = transport.StreamSession
