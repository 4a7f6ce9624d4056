package httpx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestParserSimpleGet(t *testing.T) {
	p := NewRequestParser(0)
	req, err := p.Feed([]byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n"))
	require.NoError(t, err)
	require.NotNil(t, req)
	require.Equal(t, "GET", req.Method)
	require.Equal(t, "/index.html", req.Url)
	host, ok := req.Header("host")
	require.True(t, ok, "header lookup must be case-insensitive")
	require.Equal(t, "example.com", host)
}

func TestRequestParserFeedAcrossMultipleCalls(t *testing.T) {
	p := NewRequestParser(0)
	req, err := p.Feed([]byte("POST /submit HTTP/1.1\r\nContent-Length: 5\r\n"))
	require.NoError(t, err)
	require.Nil(t, req, "incomplete message must not complete yet")

	req, err = p.Feed([]byte("\r\nhello"))
	require.NoError(t, err)
	require.NotNil(t, req)
	require.Equal(t, "hello", string(req.Body))
}

func TestRequestParserChunkedBody(t *testing.T) {
	p := NewRequestParser(0)
	wire := "POST /u HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	req, err := p.Feed([]byte(wire))
	require.NoError(t, err)
	require.NotNil(t, req)
	require.Equal(t, "hello world", string(req.Body))
}

func TestRequestParserHeaderTooLarge(t *testing.T) {
	p := NewRequestParser(16)
	_, err := p.Feed([]byte("GET / HTTP/1.1\r\nX-Long-Header-Name: some-very-long-value-indeed"))
	require.Error(t, err)
	require.True(t, p.IsErrorSet())
}

func TestRequestParserMalformedStartLine(t *testing.T) {
	p := NewRequestParser(0)
	_, err := p.Feed([]byte("NOT A REQUEST LINE AT ALL\r\n\r\n"))
	require.Error(t, err)
}

func TestRequestParserDrainReturnsLeftoverBytes(t *testing.T) {
	p := NewRequestParser(0)
	_, err := p.Feed([]byte("GET / HTTP/1.1\r\n\r\nleftover-bytes"))
	require.NoError(t, err)
	require.Equal(t, "leftover-bytes", string(p.Drain()))
	require.Empty(t, p.Drain(), "a second Drain must return nothing")
}

func TestRequestParserResetsBetweenMessages(t *testing.T) {
	p := NewRequestParser(0)
	first, err := p.Feed([]byte("GET /a HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	require.Equal(t, "/a", first.Url)

	second, err := p.Feed([]byte("GET /b HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	require.Equal(t, "/b", second.Url)
}

func TestResponseParserStatusLine(t *testing.T) {
	p := NewResponseParser(0)
	resp, err := p.Feed([]byte("HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"))
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode)
	require.Equal(t, "Not Found", resp.Reason)
}

func TestResponseParserWithBody(t *testing.T) {
	p := NewResponseParser(0)
	resp, err := p.Feed([]byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nhi"))
	require.NoError(t, err)
	require.Equal(t, "hi", string(resp.Body))
}
