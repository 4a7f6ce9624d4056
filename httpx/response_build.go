// File: httpx/response_build.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package httpx

import (
	"fmt"
	"strconv"
)

// MakeResponse builds a wire-ready HTTP/1.1 response.
func MakeResponse(statusCode int, reason string, body []byte, contentType string, extra ...Header) []byte {
	var b []byte
	b = append(b, fmt.Sprintf("HTTP/1.1 %d %s\r\n", statusCode, reason)...)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	b = append(b, "Content-Type: "+contentType+"\r\n"...)
	b = append(b, "Content-Length: "+strconv.Itoa(len(body))+"\r\n"...)
	for _, h := range extra {
		b = append(b, h.Name+": "+h.Value+"\r\n"...)
	}
	b = append(b, "\r\n"...)
	b = append(b, body...)
	return b
}

// Status codes for the handful of responses this package emits itself.
const (
	StatusOK                  = 200
	StatusSwitchingProtocols  = 101
	StatusNotFound            = 404
	StatusBadRequest          = 400
	StatusRequestEntityTooLarge = 413
)
