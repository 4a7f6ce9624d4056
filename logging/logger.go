// File: logging/logger.go
// Package logging provides the structured logger shared by every transport
// endpoint. Grounded on the teacher's control package (config/metrics/debug
// introspection trio): where the teacher logs ad hoc with fmt.Printf, this
// port routes the same events through zap so production deployments get
// leveled, structured output.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package logging

import "go.uber.org/zap"

// Logger is the logger type every endpoint holds, an alias for *zap.Logger;
// Nop() returns one for tests and for callers who opt out of logging
// entirely.
type Logger = *zap.Logger

// Nop returns a logger that discards everything.
func Nop() Logger { return zap.NewNop() }

// Default builds a development-mode logger; callers typically inject a
// production logger via options instead.
func Default() Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
