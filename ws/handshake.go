// File: ws/handshake.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Upgrade handshake (spec.md §4.7, RFC 6455 section 1.3). Grounded on
// httpx's Request/Response builders: the upgrade is an ordinary HTTP
// request/response pair, so it reuses httpx.MakeResponse/httpx's header
// accessors rather than a separate HTTP codec.

package ws

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/momentics/netcore/httpx"
)

const magicGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

var errBadUpgrade = errors.New("ws: invalid upgrade request")

// MakeUpgradeRequest builds the client-side HTTP upgrade request
// (spec.md §4.7): a random 16-byte key, version 13, optional subprotocol.
func MakeUpgradeRequest(url, host string, subprotocol string) (wire []byte, key string) {
	var raw [16]byte
	_, _ = rand.Read(raw[:])
	key = base64.StdEncoding.EncodeToString(raw[:])

	headers := []httpx.Header{
		{Name: "Host", Value: host},
		{Name: "Upgrade", Value: "websocket"},
		{Name: "Connection", Value: "Upgrade"},
		{Name: "Sec-WebSocket-Key", Value: key},
		{Name: "Sec-WebSocket-Version", Value: "13"},
	}
	if subprotocol != "" {
		headers = append(headers, httpx.Header{Name: "Sec-WebSocket-Protocol", Value: subprotocol})
	}

	b := []byte(fmt.Sprintf("GET %s HTTP/1.1\r\n", url))
	for _, h := range headers {
		b = append(b, h.Name+": "+h.Value+"\r\n"...)
	}
	b = append(b, "\r\n"...)
	return b, key
}

// AcceptKey computes Sec-WebSocket-Accept from the client's key
// (spec.md §4.7: base64(SHA1(key ++ magic GUID))).
func AcceptKey(clientKey string) string {
	h := sha1.New()
	h.Write([]byte(clientKey))
	h.Write([]byte(magicGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ValidateUpgradeRequest checks a parsed request is a conformant
// WebSocket upgrade and returns the negotiated subprotocol, if any.
func ValidateUpgradeRequest(req *httpx.Request) (key, subprotocol string, err error) {
	upgrade, _ := req.Header("Upgrade")
	conn, _ := req.Header("Connection")
	version, _ := req.Header("Sec-WebSocket-Version")
	key, hasKey := req.Header("Sec-WebSocket-Key")
	if !hasKey || version != "13" || !containsToken(upgrade, "websocket") || !containsToken(conn, "upgrade") {
		return "", "", errBadUpgrade
	}
	subprotocol, _ = req.Header("Sec-WebSocket-Protocol")
	if i := strings.IndexByte(subprotocol, ','); i >= 0 {
		subprotocol = subprotocol[:i]
	}
	subprotocol = strings.TrimSpace(subprotocol)
	return key, subprotocol, nil
}

// MakeUpgradeResponse builds the server's 101 Switching Protocols
// response, echoing the first accepted subprotocol (spec.md §6).
func MakeUpgradeResponse(clientKey, subprotocol string) []byte {
	headers := []httpx.Header{
		{Name: "Upgrade", Value: "websocket"},
		{Name: "Connection", Value: "Upgrade"},
		{Name: "Sec-WebSocket-Accept", Value: AcceptKey(clientKey)},
	}
	if subprotocol != "" {
		headers = append(headers, httpx.Header{Name: "Sec-WebSocket-Protocol", Value: subprotocol})
	}
	b := []byte("HTTP/1.1 101 Switching Protocols\r\n")
	for _, h := range headers {
		b = append(b, h.Name+": "+h.Value+"\r\n"...)
	}
	return append(b, "\r\n"...)
}

// ValidateUpgradeResponse checks the server's handshake response against
// the client's key.
func ValidateUpgradeResponse(resp *httpx.Response, clientKey string) error {
	if resp.StatusCode != 101 {
		return errBadUpgrade
	}
	accept, ok := resp.Header("Sec-WebSocket-Accept")
	if !ok || accept != AcceptKey(clientKey) {
		return errBadUpgrade
	}
	return nil
}

// containsToken reports whether header is a comma-separated list
// containing token, per RFC 6455 §4.2.1 ("Upgrade" and "Connection" may
// carry multiple comma-separated values).
func containsToken(header, token string) bool {
	for _, part := range strings.Split(header, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
