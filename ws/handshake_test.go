package ws

import (
	"testing"

	"github.com/momentics/netcore/httpx"
	"github.com/stretchr/testify/require"
)

// The canonical RFC 6455 section 1.3 worked example.
func TestAcceptKeyMatchesRFC6455Example(t *testing.T) {
	require.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", AcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestMakeUpgradeRequestIsValidatedByServer(t *testing.T) {
	wire, key := MakeUpgradeRequest("/chat", "example.com", "chat")
	require.Len(t, key, 24, "a base64-encoded 16-byte key is 24 chars")

	p := httpx.NewRequestParser(0)
	req, err := p.Feed(wire)
	require.NoError(t, err)

	gotKey, subproto, err := ValidateUpgradeRequest(req)
	require.NoError(t, err)
	require.Equal(t, key, gotKey)
	require.Equal(t, "chat", subproto)
}

func TestValidateUpgradeRequestRejectsMissingVersion(t *testing.T) {
	wire := []byte("GET /chat HTTP/1.1\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Key: abc\r\n\r\n")
	p := httpx.NewRequestParser(0)
	req, err := p.Feed(wire)
	require.NoError(t, err)
	_, _, err = ValidateUpgradeRequest(req)
	require.Error(t, err)
}

func TestServerResponseRoundTripsThroughClientValidation(t *testing.T) {
	_, key := MakeUpgradeRequest("/chat", "example.com", "")
	respWire := MakeUpgradeResponse(key, "")

	p := httpx.NewResponseParser(0)
	resp, err := p.Feed(respWire)
	require.NoError(t, err)

	require.NoError(t, ValidateUpgradeResponse(resp, key))
}

func TestValidateUpgradeResponseRejectsWrongAcceptKey(t *testing.T) {
	resp := &httpx.Response{StatusCode: 101}
	resp.Headers = []httpx.Header{{Name: "Sec-WebSocket-Accept", Value: "wrong"}}
	require.Error(t, ValidateUpgradeResponse(resp, "dGhlIHNhbXBsZSBub25jZQ=="))
}
