// File: tcp/client.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/momentics/netcore/id"
	"github.com/momentics/netcore/transport"
	"go.uber.org/zap"
)

// Client is a user-owned TCP endpoint that may reconnect in place
// (spec.md §3, §4.2).
type Client struct {
	id      id.Id
	addr    string
	opts    transport.Options
	handler transport.StreamHandler

	mu   sync.Mutex
	sess *Session
}

// NewClient creates a Client targeting addr, not yet connected.
func NewClient(addr string, handler transport.StreamHandler, opts ...transport.Option) *Client {
	if handler == nil {
		handler = transport.NopHandler{}
	}
	return &Client{
		id:      id.New(),
		addr:    addr,
		opts:    transport.Apply(transport.DefaultOptions(), opts...),
		handler: handler,
	}
}

// Id returns the client's identity.
func (c *Client) Id() id.Id { return c.id }

// Connect dials the configured address synchronously.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != nil && c.sess.IsConnected() {
		return transport.ErrAlreadyConnected
	}
	c.handler.OnConnecting()
	conn, err := net.DialTimeout("tcp", c.addr, 10*time.Second)
	if err != nil {
		c.opts.Logger.Warn("tcp dial failed", zap.String("addr", c.addr), zap.Error(err))
		c.handler.OnError(transport.ErrKindConnectionRefused, err)
		return fmt.Errorf("tcp dial: %w", err)
	}
	tc := conn.(*net.TCPConn)
	_ = tc.SetNoDelay(c.opts.NoDelay)
	if c.opts.KeepAlive {
		_ = tc.SetKeepAlive(true)
	}
	c.sess = transport.NewStreamSession(tc, c.handler, c.opts)
	c.handler.OnConnected()
	go c.sess.ReadLoop()
	return nil
}

// ConnectAsync connects without blocking the caller.
func (c *Client) ConnectAsync() { go func() { _ = c.Connect() }() }

// Disconnect closes the current connection, if any.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return transport.ErrNotConnected
	}
	return sess.Disconnect()
}

// DisconnectAsync disconnects without blocking the caller.
func (c *Client) DisconnectAsync() { go func() { _ = c.Disconnect() }() }

// Reconnect disconnects (if connected) then connects again.
func (c *Client) Reconnect() error {
	_ = c.Disconnect()
	return c.Connect()
}

// ReconnectAsync reconnects without blocking the caller.
func (c *Client) ReconnectAsync() { go func() { _ = c.Reconnect() }() }

// SendAsync enqueues data on the active session.
func (c *Client) SendAsync(data []byte) bool {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return false
	}
	return sess.SendAsync(data)
}

// Send blocks until data is queued, honoring SendTimeout.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return transport.ErrNotConnected
	}
	return sess.Send(data)
}

// IsConnected reports whether the underlying session is attached.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess != nil && c.sess.IsConnected()
}

// Session returns the client's active session, or nil.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}
