// File: ws/client.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Client dials a plain-TCP WebSocket endpoint, performs the HTTP upgrade
// handshake, then hands control to a Session (spec.md §4.7). The upgrade
// response is parsed through the same OnReceived push path the eventual
// frame traffic uses, swapping handlers the instant the handshake
// resolves rather than racing a second reader against ReadLoop.

package ws

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/momentics/netcore/httpx"
	"github.com/momentics/netcore/id"
	"github.com/momentics/netcore/transport"
	"go.uber.org/zap"
)

// Client is a user-owned WebSocket client connection.
type Client struct {
	id          id.Id
	addr        string
	path        string
	host        string
	subprotocol string
	opts        transport.Options
	handler     Handler

	mu   sync.Mutex
	sess *Session
}

// NewClient creates a Client that will dial addr and request path once
// Connect is called.
func NewClient(addr, path, host, subprotocol string, handler Handler, opts ...transport.Option) *Client {
	if handler == nil {
		handler = NopHandler{}
	}
	return &Client{
		id:          id.New(),
		addr:        addr,
		path:        path,
		host:        host,
		subprotocol: subprotocol,
		opts:        transport.Apply(transport.DefaultOptions(), opts...),
		handler:     handler,
	}
}

// Id returns the client's identity.
func (c *Client) Id() id.Id { return c.id }

type upgradeResult struct {
	subprotocol string
	leftover    []byte
	err         error
}

type clientUpgradeHandler struct {
	transport.NopHandler
	parser *httpx.ResponseParser
	key    string
	done   chan upgradeResult
}

func (h *clientUpgradeHandler) OnReceived(data []byte) {
	resp, err := h.parser.Feed(data)
	if err != nil {
		h.done <- upgradeResult{err: err}
		return
	}
	if resp == nil {
		return
	}
	if verr := ValidateUpgradeResponse(resp, h.key); verr != nil {
		h.done <- upgradeResult{err: verr}
		return
	}
	subprotocol, _ := resp.Header("Sec-WebSocket-Protocol")
	h.done <- upgradeResult{subprotocol: subprotocol, leftover: h.parser.Drain()}
}

func (h *clientUpgradeHandler) OnDisconnected() {
	select {
	case h.done <- upgradeResult{err: transport.ErrNotConnected}:
	default:
	}
}

// Connect dials, sends the upgrade request, and blocks until the
// handshake resolves.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != nil {
		return transport.ErrAlreadyConnected
	}

	conn, err := net.DialTimeout("tcp", c.addr, 10*time.Second)
	if err != nil {
		c.opts.Logger.Warn("ws dial failed", zap.String("addr", c.addr), zap.Error(err))
		return fmt.Errorf("ws dial: %w", err)
	}

	wire, key := MakeUpgradeRequest(c.path, c.host, c.subprotocol)
	upgradeH := &clientUpgradeHandler{
		parser: httpx.NewResponseParser(c.opts.MaxHeaderBytes),
		key:    key,
		done:   make(chan upgradeResult, 1),
	}
	stream := transport.NewStreamSession(conn, upgradeH, c.opts)
	if err := stream.Send(wire); err != nil {
		_ = stream.Disconnect()
		return err
	}
	go stream.ReadLoop()

	res := <-upgradeH.done
	if res.err != nil {
		_ = stream.Disconnect()
		return res.err
	}

	wsSess := NewSession(stream, false, res.subprotocol, c.handler)
	stream.Handler = wsSess
	c.sess = wsSess
	c.handler.OnUpgraded(wsSess)
	if len(res.leftover) > 0 {
		wsSess.OnReceived(res.leftover)
	}
	return nil
}

// Session returns the client's active session, or nil.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// Disconnect closes the current connection.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return transport.ErrNotConnected
	}
	return sess.stream.Disconnect()
}
