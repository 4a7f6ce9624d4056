// File: ssl/session.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ssl

import (
	"context"
	"crypto/tls"

	"github.com/momentics/netcore/transport"
	"go.uber.org/zap"
)

// Session is a TLS-wrapped stream session: transport.StreamSession
// constructed over a *tls.Conn, so once the handshake completes, every
// Read/Write on the session already carries plaintext.
type Session = transport.StreamSession

// runHandshake drives the TLS handshake to completion on a session already
// constructed over a *tls.Conn (spec.md §4.5, §8.3: OnHandshaked occurs
// after OnConnected and before the first plaintext OnReceived). OnConnected
// must already have fired — the handshake stage starts only after the
// plain TCP connect completes (spec.md §4.2). Returns whether the
// handshake succeeded; the caller arms the plaintext read loop only on
// success, typically in its own goroutine.
func runHandshake(sess *Session, h transport.StreamHandler) bool {
	sess.SetState(transport.StateHandshaking)
	h.OnHandshaking()

	tlsConn := sess.Conn().(*tls.Conn)
	if err := tlsConn.HandshakeContext(context.Background()); err != nil {
		sess.Logger().Warn("tls handshake failed", zap.Error(err))
		h.OnError(transport.ErrKindHandshakeFailure, err)
		_ = sess.Disconnect()
		return false
	}

	sess.SetState(transport.StateConnected)
	h.OnHandshaked()
	return true
}
