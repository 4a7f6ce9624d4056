// File: httpx/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package httpx

import "errors"

var errMalformed = errors.New("httpx: malformed message")
