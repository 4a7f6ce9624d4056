// File: transport/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared endpoint tunables (spec.md §4.1, §6). Grounded on the teacher's
// server.Config/ServerOption functional-options shape (lowlevel/server).

package transport

import (
	"time"

	"github.com/momentics/netcore/logging"
)

// Options carries every socket tunable honored by the transport endpoints.
type Options struct {
	KeepAlive          bool
	KeepAliveTime      time.Duration
	KeepAliveInterval  time.Duration
	KeepAliveRetries   int
	NoDelay            bool
	ReuseAddress       bool
	ReusePort          bool
	DualMode           bool
	AcceptorBacklog    int
	ReceiveBufferSize  int
	SendBufferSize     int
	ReceiveBufferLimit int // 0 = unbounded
	SendBufferLimit    int // 0 = unbounded
	SendTimeout        time.Duration
	ReceiveTimeout     time.Duration
	MaxHeaderBytes     int // HTTP cap on bytes buffered for one unterminated start/header line
	Logger             logging.Logger
}

// DefaultOptions mirrors spec.md §4.3's stated default: 8 KiB receive slot,
// unbounded growth, no hard send cap unless the caller sets one.
func DefaultOptions() Options {
	return Options{
		NoDelay:           true,
		AcceptorBacklog:   1024,
		ReceiveBufferSize: 8 * 1024,
		SendBufferSize:    8 * 1024,
		SendTimeout:       30 * time.Second,
		MaxHeaderBytes:    8 * 1024,
		Logger:            logging.Nop(),
	}
}

// Option mutates an Options value; used by every endpoint constructor.
type Option func(*Options)

func WithKeepAlive(enabled bool) Option { return func(o *Options) { o.KeepAlive = enabled } }

func WithKeepAliveParams(t, interval time.Duration, retries int) Option {
	return func(o *Options) {
		o.KeepAliveTime = t
		o.KeepAliveInterval = interval
		o.KeepAliveRetries = retries
	}
}

func WithNoDelay(enabled bool) Option { return func(o *Options) { o.NoDelay = enabled } }

func WithReuseAddress(enabled bool) Option { return func(o *Options) { o.ReuseAddress = enabled } }

func WithReusePort(enabled bool) Option { return func(o *Options) { o.ReusePort = enabled } }

func WithDualMode(enabled bool) Option { return func(o *Options) { o.DualMode = enabled } }

func WithAcceptorBacklog(n int) Option { return func(o *Options) { o.AcceptorBacklog = n } }

func WithReceiveBufferSize(n int) Option { return func(o *Options) { o.ReceiveBufferSize = n } }

func WithSendBufferSize(n int) Option { return func(o *Options) { o.SendBufferSize = n } }

func WithReceiveBufferLimit(n int) Option { return func(o *Options) { o.ReceiveBufferLimit = n } }

func WithSendBufferLimit(n int) Option { return func(o *Options) { o.SendBufferLimit = n } }

func WithSendTimeout(d time.Duration) Option { return func(o *Options) { o.SendTimeout = d } }

func WithReceiveTimeout(d time.Duration) Option { return func(o *Options) { o.ReceiveTimeout = d } }

func WithMaxHeaderBytes(n int) Option { return func(o *Options) { o.MaxHeaderBytes = n } }

// WithLogger injects a structured logger; defaults to logging.Nop().
func WithLogger(l logging.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// Apply folds a list of Option into a base Options value.
func Apply(base Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&base)
	}
	return base
}
