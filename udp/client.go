// File: udp/client.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package udp

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/momentics/netcore/id"
	"github.com/momentics/netcore/transport"
	"go.uber.org/zap"
)

// Client is a user-owned UDP endpoint bound to a fixed remote address.
type Client struct {
	id      id.Id
	addr    string
	opts    transport.Options
	handler transport.PacketHandler

	mu      sync.Mutex
	conn    *net.UDPConn
	started bool

	bytesSent atomic.Int64
	bytesRecv atomic.Int64

	dispatch *dispatcher
}

// NewClient creates a Client targeting addr ("host:port"), not yet connected.
func NewClient(addr string, handler transport.PacketHandler, opts ...transport.Option) *Client {
	if handler == nil {
		handler = transport.NopPacketHandler{}
	}
	return &Client{
		id:       id.New(),
		addr:     addr,
		opts:     transport.Apply(transport.DefaultOptions(), opts...),
		handler:  handler,
		dispatch: newDispatcher(),
	}
}

// Id returns the client's identity.
func (c *Client) Id() id.Id { return c.id }

// Connect resolves the remote address and opens the local UDP socket.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return transport.ErrAlreadyConnected
	}
	remote, err := net.ResolveUDPAddr("udp", c.addr)
	if err != nil {
		return fmt.Errorf("udp resolve: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, remote)
	if err != nil {
		c.opts.Logger.Warn("udp dial failed", zap.String("addr", c.addr), zap.Error(err))
		c.handler.OnError(transport.ErrKindConnectionRefused, err)
		return fmt.Errorf("udp dial: %w", err)
	}
	c.conn = conn
	c.started = true
	c.handler.OnStarted()
	go c.recvLoop()
	return nil
}

// ConnectAsync connects without blocking the caller.
func (c *Client) ConnectAsync() { go func() { _ = c.Connect() }() }

func (c *Client) recvLoop() {
	buf := make([]byte, c.opts.ReceiveBufferSize)
	for {
		n, addr, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			c.mu.Lock()
			stopped := !c.started
			c.mu.Unlock()
			if stopped {
				return
			}
			c.handler.OnError(transport.ErrKindConnectionReset, err)
			return
		}
		if n > 0 {
			c.bytesRecv.Add(int64(n))
			data := make([]byte, n)
			copy(data, buf[:n])
			c.handler.OnReceived(addr.String(), data)
		}
	}
}

// SendAsync sends payload to the configured remote address.
func (c *Client) SendAsync(payload []byte) bool {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return false
	}
	return c.dispatch.submit(func() {
		n, err := conn.Write(payload)
		if err != nil {
			c.handler.OnError(transport.ErrKindConnectionReset, err)
			return
		}
		c.bytesSent.Add(int64(n))
		c.handler.OnSent(c.addr, n)
	})
}

// Disconnect closes the socket.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return transport.ErrNotConnected
	}
	c.started = false
	conn := c.conn
	c.mu.Unlock()
	_ = conn.Close()
	return nil
}
