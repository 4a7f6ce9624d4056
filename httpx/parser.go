// File: httpx/parser.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Incremental HTTP/1.1 request/response parser (spec.md §4.6): accepts
// method/URL/protocol, header lines terminated by CRLF CRLF, then either
// Content-Length bytes of body or chunked transfer-encoding. Never crosses
// message boundaries — state resets after each complete message
// (spec.md §3 invariant).

package httpx

import (
	"bytes"
	"strconv"

	"github.com/momentics/netcore/transport"
)

const (
	parseStartLine = iota
	parseHeaders
	parseBodyFixed
	parseBodyChunkedSize
	parseBodyChunkedData
	parseBodyChunkedTrailer
	parseDone
)

// RequestParser incrementally parses HTTP requests off a byte stream.
type RequestParser struct {
	buf          []byte
	raw          []byte
	stage        int
	errSet       bool
	maxHeader    int
	contentLen   int
	chunkLen     int
	chunked      bool
	current      *Request
}

// NewRequestParser creates a parser that fails with ErrKindHeaderTooLarge
// when more than maxHeaderBytes (0 = unlimited) are buffered without
// completing the start line or the current header line. The header block
// as a whole, and a line that arrives complete in one Feed, are not
// measured.
func NewRequestParser(maxHeaderBytes int) *RequestParser {
	return &RequestParser{maxHeader: maxHeaderBytes}
}

// IsPendingHeader reports whether the start line/headers are incomplete.
func (p *RequestParser) IsPendingHeader() bool {
	return p.stage == parseStartLine || p.stage == parseHeaders
}

// IsPendingBody reports whether the body is still being accumulated.
func (p *RequestParser) IsPendingBody() bool {
	return p.stage >= parseBodyFixed && p.stage < parseDone
}

// IsErrorSet reports whether the parser hit malformed input.
func (p *RequestParser) IsErrorSet() bool { return p.errSet }

// Drain returns and clears any bytes buffered past the last complete
// message — used when a connection is handed off to another protocol
// mid-stream (the WebSocket upgrade: a pipelined first frame may have
// arrived in the same read as the upgrade request).
func (p *RequestParser) Drain() []byte {
	leftover := p.buf
	p.buf = nil
	return leftover
}

// Feed appends data to the parser's accumulator and advances parsing as
// far as possible. Returns the completed Request once a full message has
// been parsed, or nil if more data is needed.
func (p *RequestParser) Feed(data []byte) (*Request, error) {
	p.buf = append(p.buf, data...)
	if p.current == nil {
		p.current = &Request{}
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
			method, url, proto, err := parseRequestLine(line)
			if err != nil {
				return p.fail(transport.ErrKindProtocolViolation)
			}
			p.current.Method = method
			p.current.Url = url
			p.current.Protocol = proto
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
			req := p.current
			req.Cache = p.raw
			p.reset()
			return req, nil
		}
	}
}

func (p *RequestParser) enterBody() {
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
		p.chunked = true
		p.stage = parseBodyChunkedSize
		return
	}
	p.stage = parseDone
}

func (p *RequestParser) fail(kind transport.ErrorKind) (*Request, error) {
	p.errSet = true
	p.stage = parseDone
	return nil, transport.NewError(kind, nil)
}

func (p *RequestParser) reset() {
	p.current = &Request{}
	p.stage = parseStartLine
	p.raw = nil
	p.contentLen = 0
	p.chunkLen = 0
	p.chunked = false
	p.errSet = false
}

func cutLine(buf []byte) (line, rest []byte, ok bool) {
	idx := bytes.Index(buf, []byte("\r\n"))
	if idx < 0 {
		return nil, buf, false
	}
	return buf[:idx], buf[idx+2:], true
}

func parseRequestLine(line []byte) (method, url, proto string, err error) {
	parts := bytes.SplitN(line, []byte(" "), 3)
	if len(parts) != 3 || !bytes.HasPrefix(parts[2], []byte("HTTP/")) {
		return "", "", "", errMalformed
	}
	return string(parts[0]), string(parts[1]), string(parts[2]), nil
}

func parseHeaderLine(line []byte) (name, value string, err error) {
	idx := bytes.IndexByte(line, ':')
	if idx < 0 {
		return "", "", errMalformed
	}
	name = string(bytes.TrimSpace(line[:idx]))
	value = string(bytes.TrimSpace(line[idx+1:]))
	if name == "" {
		return "", "", errMalformed
	}
	return name, value, nil
}
