// File: httpx/message.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Request/Response (spec.md §3 HttpRequest/HttpResponse, §4.6): built
// incrementally by the parser, holding ordered header spans and the raw
// wire bytes. Grounded on transport.StreamSession's append-then-reset
// buffer discipline — the same "accumulate, deliver, reset" shape as
// ReadLoop, specialized for HTTP framing.

package httpx

import "fmt"

// Header is a single (name, value) span, order preserved on emit
// (spec.md §6: "headers case-insensitive by name, preserved verbatim").
type Header struct {
	Name  string
	Value string
}

// Message is the shared shape of Request and Response: protocol version,
// ordered headers, body, and the complete raw bytes it was parsed from.
type Message struct {
	Protocol string
	Headers  []Header
	Body     []byte
	Cache    []byte
}

// Header looks up the first header matching name, case-insensitively.
func (m *Message) Header(name string) (string, bool) {
	for _, h := range m.Headers {
		if equalFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

func (m *Message) addHeader(name, value string) {
	m.Headers = append(m.Headers, Header{Name: name, Value: value})
}

// Request is an HTTP request message (spec.md §3).
type Request struct {
	Message
	Method string
	Url    string
}

// Response is an HTTP response message (spec.md §3).
type Response struct {
	Message
	StatusCode int
	Reason     string
}

func (r *Request) String() string {
	return fmt.Sprintf("%s %s %s", r.Method, r.Url, r.Protocol)
}

func (r *Response) String() string {
	return fmt.Sprintf("%s %d %s", r.Protocol, r.StatusCode, r.Reason)
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
