// File: uds/client.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package uds

import (
	"fmt"
	"net"
	"sync"

	"github.com/momentics/netcore/id"
	"github.com/momentics/netcore/transport"
	"go.uber.org/zap"
)

// Client is a user-owned Unix Domain Socket endpoint.
type Client struct {
	id      id.Id
	path    string
	opts    transport.Options
	handler transport.StreamHandler

	mu   sync.Mutex
	sess *Session
}

// NewClient creates a Client targeting a filesystem path, not yet connected.
func NewClient(path string, handler transport.StreamHandler, opts ...transport.Option) *Client {
	if handler == nil {
		handler = transport.NopHandler{}
	}
	return &Client{
		id:      id.New(),
		path:    path,
		opts:    transport.Apply(transport.DefaultOptions(), opts...),
		handler: handler,
	}
}

// Id returns the client's identity.
func (c *Client) Id() id.Id { return c.id }

// Connect dials the configured path synchronously.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != nil && c.sess.IsConnected() {
		return transport.ErrAlreadyConnected
	}
	c.handler.OnConnecting()
	addr, err := net.ResolveUnixAddr("unix", c.path)
	if err != nil {
		return fmt.Errorf("uds resolve: %w", err)
	}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		c.opts.Logger.Warn("uds dial failed", zap.String("path", c.path), zap.Error(err))
		c.handler.OnError(transport.ErrKindConnectionRefused, err)
		return fmt.Errorf("uds dial: %w", err)
	}
	c.sess = transport.NewStreamSession(conn, c.handler, c.opts)
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
