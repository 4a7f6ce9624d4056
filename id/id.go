// File: id/id.go
// Package id provides the 128-bit random identifier shared by every
// transport endpoint and session.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package id

import "github.com/google/uuid"

// Id is a 128-bit random identifier, string-formatted (spec: Id).
type Id string

// New generates a fresh random Id.
func New() Id {
	return Id(uuid.NewString())
}

// String returns the canonical string form.
func (i Id) String() string { return string(i) }

// Empty reports whether the id is the zero value.
func (i Id) Empty() bool { return i == "" }
