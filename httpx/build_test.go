package httpx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeGetRequest(t *testing.T) {
	wire := MakeGetRequest("/a")
	require.Equal(t, "GET /a HTTP/1.1\r\n\r\n", string(wire))
}

func TestMakePostRequestSetsContentHeaders(t *testing.T) {
	wire := MakePostRequest("/submit", []byte("payload"), "text/plain")
	p := NewRequestParser(0)
	req, err := p.Feed(wire)
	require.NoError(t, err)
	ct, _ := req.Header("Content-Type")
	require.Equal(t, "text/plain", ct)
	require.Equal(t, "payload", string(req.Body))
}

func TestMakeResponseRoundTripsThroughParser(t *testing.T) {
	wire := MakeResponse(StatusOK, "OK", []byte("body"), "text/plain")
	p := NewResponseParser(0)
	resp, err := p.Feed(wire)
	require.NoError(t, err)
	require.Equal(t, StatusOK, resp.StatusCode)
	require.Equal(t, "body", string(resp.Body))
}
