// File: httpx/client.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Client dials a plain-TCP HTTP endpoint. Grounded on tcp.Client's
// Connect/Send surface, adapted to resolve the handler/session
// construction cycle Session.attach documents, and extended with the
// Ex future-returning request API described in spec.md §4.6.

package httpx

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/momentics/netcore/id"
	"github.com/momentics/netcore/transport"
	"go.uber.org/zap"
)

// Client is a user-owned HTTP client connection. Requests may be
// pipelined; responses are matched to them in the order they were sent.
type Client struct {
	id   id.Id
	addr string
	opts transport.Options

	mu      sync.Mutex
	sess    *Session
	pending []*pendingRequest
}

type pendingRequest struct {
	done chan struct{}
	resp *Response
	err  error
}

// NewClient creates a Client targeting addr, not yet connected.
func NewClient(addr string, opts ...transport.Option) *Client {
	return &Client{
		id:   id.New(),
		addr: addr,
		opts: transport.Apply(transport.DefaultOptions(), opts...),
	}
}

// Id returns the client's identity.
func (c *Client) Id() id.Id { return c.id }

// Connect dials the configured address.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != nil && c.sess.stream.IsConnected() {
		return transport.ErrAlreadyConnected
	}
	conn, err := net.DialTimeout("tcp", c.addr, 10*time.Second)
	if err != nil {
		c.opts.Logger.Warn("httpx dial failed", zap.String("addr", c.addr), zap.Error(err))
		return fmt.Errorf("httpx dial: %w", err)
	}
	sess := newPendingClientSession(c.opts.MaxHeaderBytes, c)
	stream := transport.NewStreamSession(conn, sess, c.opts)
	sess.attach(stream)
	c.sess = sess
	go stream.ReadLoop()
	return nil
}

// Disconnect closes the current connection.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return transport.ErrNotConnected
	}
	return sess.Disconnect()
}

// IsConnected reports whether the client is attached to a live connection.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess != nil && c.sess.stream.IsConnected()
}

func (c *Client) send(wire []byte) (*pendingRequest, error) {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return nil, transport.ErrNotConnected
	}
	pr := &pendingRequest{done: make(chan struct{})}
	c.mu.Lock()
	c.pending = append(c.pending, pr)
	c.mu.Unlock()
	if err := sess.Send(wire); err != nil {
		c.mu.Lock()
		for i, p := range c.pending {
			if p == pr {
				c.pending = append(c.pending[:i], c.pending[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		return nil, err
	}
	return pr, nil
}

// OnReceivedResponse satisfies ResponseHandler, resolving the oldest
// in-flight request (responses arrive in request order on one connection).
func (c *Client) OnReceivedResponse(_ *Session, resp *Response) {
	c.resolve(resp, nil)
}

// OnReceivedResponseError satisfies ResponseHandler.
func (c *Client) OnReceivedResponseError(_ *Session, _ *Response, reason error) {
	c.resolve(nil, reason)
}

func (c *Client) resolve(resp *Response, err error) {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return
	}
	pr := c.pending[0]
	c.pending = c.pending[1:]
	c.mu.Unlock()
	pr.resp, pr.err = resp, err
	close(pr.done)
}

// SendGetRequest blocks until the matching response arrives.
func (c *Client) SendGetRequest(url string) (*Response, error) {
	return c.roundTrip(MakeGetRequest(url))
}

// SendPostRequest blocks until the matching response arrives.
func (c *Client) SendPostRequest(url string, body []byte, contentType string) (*Response, error) {
	return c.roundTrip(MakePostRequest(url, body, contentType))
}

func (c *Client) roundTrip(wire []byte) (*Response, error) {
	pr, err := c.send(wire)
	if err != nil {
		return nil, err
	}
	<-pr.done
	return pr.resp, pr.err
}

// Future resolves to a Response on completion, or to an error on
// timeout/protocol failure (spec.md §4.6 "Ex client variants expose a
// future-returning API").
type Future struct {
	pr      *pendingRequest
	timeout time.Duration
}

// Wait blocks until the response arrives or the future's timeout elapses.
func (f *Future) Wait() (*Response, error) {
	if f.timeout <= 0 {
		<-f.pr.done
		return f.pr.resp, f.pr.err
	}
	select {
	case <-f.pr.done:
		return f.pr.resp, f.pr.err
	case <-time.After(f.timeout):
		return nil, errors.New("httpx: request timed out")
	}
}

// SendGetRequestEx sends a GET without blocking, returning a Future.
func (c *Client) SendGetRequestEx(url string, timeout time.Duration) (*Future, error) {
	pr, err := c.send(MakeGetRequest(url))
	if err != nil {
		return nil, err
	}
	return &Future{pr: pr, timeout: timeout}, nil
}

// SendPostRequestEx sends a POST without blocking, returning a Future.
func (c *Client) SendPostRequestEx(url string, body []byte, contentType string, timeout time.Duration) (*Future, error) {
	pr, err := c.send(MakePostRequest(url, body, contentType))
	if err != nil {
		return nil, err
	}
	return &Future{pr: pr, timeout: timeout}, nil
}
