// File: httpx/build.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// HttpRequest.Make*Request builders (spec.md §4.6): canonical
// HEAD/GET/POST/PUT/DELETE/OPTIONS/TRACE requests with standard headers.

package httpx

import (
	"fmt"
	"strconv"
)

func makeRequest(method, url string, body []byte, contentType string) []byte {
	var b []byte
	b = append(b, fmt.Sprintf("%s %s HTTP/1.1\r\n", method, url)...)
	if len(body) > 0 {
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		b = append(b, "Content-Type: "+contentType+"\r\n"...)
		b = append(b, "Content-Length: "+strconv.Itoa(len(body))+"\r\n"...)
	}
	b = append(b, "\r\n"...)
	b = append(b, body...)
	return b
}

// MakeHeadRequest builds a HEAD request.
func MakeHeadRequest(url string) []byte { return makeRequest("HEAD", url, nil, "") }

// MakeGetRequest builds a GET request.
func MakeGetRequest(url string) []byte { return makeRequest("GET", url, nil, "") }

// MakePostRequest builds a POST request carrying body.
func MakePostRequest(url string, body []byte, contentType string) []byte {
	return makeRequest("POST", url, body, contentType)
}

// MakePutRequest builds a PUT request carrying body.
func MakePutRequest(url string, body []byte, contentType string) []byte {
	return makeRequest("PUT", url, body, contentType)
}

// MakeDeleteRequest builds a DELETE request.
func MakeDeleteRequest(url string) []byte { return makeRequest("DELETE", url, nil, "") }

// MakeOptionsRequest builds an OPTIONS request.
func MakeOptionsRequest(url string) []byte { return makeRequest("OPTIONS", url, nil, "") }

// MakeTraceRequest builds a TRACE request.
func MakeTraceRequest(url string) []byte { return makeRequest("TRACE", url, nil, "") }
