// File: httpx/handler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package httpx

// RequestHandler is the application callback surface for an HTTP server
// session (spec.md §4.6): OnReceivedRequest fires once per parsed message;
// OnReceivedRequestError fires on malformed input, after which the
// connection is closed.
type RequestHandler interface {
	OnReceivedRequest(sess *Session, req *Request)
	OnReceivedRequestError(sess *Session, req *Request, reason error)
}

// ResponseHandler is the application callback surface for an HTTP client
// session.
type ResponseHandler interface {
	OnReceivedResponse(sess *Session, resp *Response)
	OnReceivedResponseError(sess *Session, resp *Response, reason error)
}
