// File: httpx/responseparser.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Mirror of RequestParser for the client side (spec.md §4.6).

package httpx

import (
	"bytes"
	"strconv"

	"github.com/momentics/netcore/transport"
)

// ResponseParser incrementally parses HTTP responses off a byte stream.
type ResponseParser struct {
	buf        []byte
	raw        []byte
	stage      int
	errSet     bool
	maxHeader  int
	contentLen int
	chunkLen   int
	current    *Response
}

// NewResponseParser creates a parser enforcing maxHeaderBytes.
func NewResponseParser(maxHeaderBytes int) *ResponseParser {
	return &ResponseParser{maxHeader: maxHeaderBytes}
}

// IsPendingHeader reports whether the status line/headers are incomplete.
func (p *ResponseParser) IsPendingHeader() bool {
	return p.stage == parseStartLine || p.stage == parseHeaders
}

// IsPendingBody reports whether the body is still being accumulated.
func (p *ResponseParser) IsPendingBody() bool {
	return p.stage >= parseBodyFixed && p.stage < parseDone
}

// IsErrorSet reports whether the parser hit malformed input.
func (p *ResponseParser) IsErrorSet() bool { return p.errSet }

// Drain returns and clears any bytes buffered past the last complete
// message (see RequestParser.Drain).
func (p *ResponseParser) Drain() []byte {
	leftover := p.buf
	p.buf = nil
	return leftover
}

// Feed appends data and advances parsing, returning the completed
// Response once a full message has been parsed.
func (p *ResponseParser) Feed(data []byte) (*Response, error) {
	p.buf = append(p.buf, data...)
	if p.current == nil {
		p.current = &Response{}
	}
	for {
		switch p.stage {
		case parseStartLine:
			line, rest, ok := cutLine(p.buf)
			if !ok {
				if p.maxHeader > 0 && len(p.buf) > p.maxHeader {
					return p.fail(transport.ErrKindHeaderTooLarge)
				}
				return nil, nil
			}
			proto, code, reason, err := parseStatusLine(line)
			if err != nil {
				return p.fail(transport.ErrKindProtocolViolation)
			}
			p.current.Protocol = proto
			p.current.StatusCode = code
			p.current.Reason = reason
			p.raw = append(p.raw, p.buf[:len(p.buf)-len(rest)]...)
			p.buf = rest
			p.stage = parseHeaders
		case parseHeaders:
			line, rest, ok := cutLine(p.buf)
			if !ok {
				if p.maxHeader > 0 && len(p.buf) > p.maxHeader {
					return p.fail(transport.ErrKindHeaderTooLarge)
				}
				return nil, nil
			}
			p.raw = append(p.raw, p.buf[:len(p.buf)-len(rest)]...)
			p.buf = rest
			if len(line) == 0 {
				p.enterBody()
				if p.errSet {
					return p.fail(transport.ErrKindProtocolViolation)
				}
				continue
			}
			name, value, err := parseHeaderLine(line)
			if err != nil {
				return p.fail(transport.ErrKindProtocolViolation)
			}
			p.current.addHeader(name, value)
		case parseBodyFixed:
			if len(p.buf) < p.contentLen {
				return nil, nil
			}
			p.current.Body = p.buf[:p.contentLen]
			p.raw = append(p.raw, p.buf[:p.contentLen]...)
			p.buf = p.buf[p.contentLen:]
			p.stage = parseDone
		case parseBodyChunkedSize:
			line, rest, ok := cutLine(p.buf)
			if !ok {
				return nil, nil
			}
			n, err := strconv.ParseInt(string(bytes.TrimSpace(line)), 16, 64)
			if err != nil {
				return p.fail(transport.ErrKindProtocolViolation)
			}
			p.raw = append(p.raw, p.buf[:len(p.buf)-len(rest)]...)
			p.buf = rest
			p.chunkLen = int(n)
			if p.chunkLen == 0 {
				p.stage = parseBodyChunkedTrailer
				continue
			}
			p.stage = parseBodyChunkedData
		case parseBodyChunkedData:
			need := p.chunkLen + 2
			if len(p.buf) < need {
				return nil, nil
			}
			p.current.Body = append(p.current.Body, p.buf[:p.chunkLen]...)
			p.raw = append(p.raw, p.buf[:need]...)
			p.buf = p.buf[need:]
			p.stage = parseBodyChunkedSize
		case parseBodyChunkedTrailer:
			line, rest, ok := cutLine(p.buf)
			if !ok {
				return nil, nil
			}
			p.raw = append(p.raw, p.buf[:len(p.buf)-len(rest)]...)
			p.buf = rest
			if len(line) == 0 {
				p.stage = parseDone
			}
		case parseDone:
			resp := p.current
			resp.Cache = p.raw
			p.reset()
			return resp, nil
		}
	}
}

func (p *ResponseParser) enterBody() {
	if cl, ok := p.current.Header("Content-Length"); ok {
		n, err := strconv.Atoi(cl)
		if err != nil || n < 0 {
			p.errSet = true
			p.stage = parseDone
			return
		}
		p.contentLen = n
		p.stage = parseBodyFixed
		if n == 0 {
			p.stage = parseDone
		}
		return
	}
	if te, ok := p.current.Header("Transfer-Encoding"); ok && equalFold(te, "chunked") {
		p.stage = parseBodyChunkedSize
		return
	}
	p.stage = parseDone
}

func (p *ResponseParser) fail(kind transport.ErrorKind) (*Response, error) {
	p.errSet = true
	p.stage = parseDone
	return nil, transport.NewError(kind, nil)
}

func (p *ResponseParser) reset() {
	p.current = &Response{}
	p.stage = parseStartLine
	p.raw = nil
	p.contentLen = 0
	p.chunkLen = 0
	p.errSet = false
}

func parseStatusLine(line []byte) (proto string, code int, reason string, err error) {
	parts := bytes.SplitN(line, []byte(" "), 3)
	if len(parts) < 2 {
		return "", 0, "", errMalformed
	}
	n, convErr := strconv.Atoi(string(parts[1]))
	if convErr != nil {
		return "", 0, "", errMalformed
	}
	r := ""
	if len(parts) == 3 {
		r = string(parts[2])
	}
	return string(parts[0]), n, r, nil
}
