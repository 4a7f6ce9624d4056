// File: httpx/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// HTTP server wiring atop tcp.Server/ssl.Server: HandlerFactory builds a
// fresh Session per accepted connection (spec.md §4.6). Because
// tcp.HandlerFactory and ssl.HandlerFactory both reduce to
// func(*transport.StreamSession) transport.StreamHandler, the same factory
// value wires into either modality without adapter code.

package httpx

import "github.com/momentics/netcore/transport"

// NewHandlerFactory builds a tcp/ssl-compatible HandlerFactory that hands
// each accepted connection a request-parsing Session.
func NewHandlerFactory(maxHeaderBytes int, h RequestHandler) func(*transport.StreamSession) transport.StreamHandler {
	return func(stream *transport.StreamSession) transport.StreamHandler {
		return NewServerSession(stream, maxHeaderBytes, h)
	}
}

// CacheHandler serves requests directly from a Cache (spec.md §4.6
// "served entries return the cached bytes directly without reparsing"),
// falling through to Next for URLs the cache does not hold.
type CacheHandler struct {
	Cache *Cache
	Next  RequestHandler
}

// OnReceivedRequest looks up req.Url in the cache; on a hit, writes the
// cached bytes directly. On a miss, delegates to Next if set, otherwise
// replies 404.
func (c *CacheHandler) OnReceivedRequest(sess *Session, req *Request) {
	if wire, ok := c.Cache.Get(req.Url); ok {
		_ = sess.Send(wire)
		return
	}
	if c.Next != nil {
		c.Next.OnReceivedRequest(sess, req)
		return
	}
	_ = sess.Send(MakeResponse(StatusNotFound, "Not Found", nil, "text/plain"))
}

// OnReceivedRequestError delegates to Next if set.
func (c *CacheHandler) OnReceivedRequestError(sess *Session, req *Request, reason error) {
	if c.Next != nil {
		c.Next.OnReceivedRequestError(sess, req, reason)
	}
}
