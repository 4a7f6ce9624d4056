package ssl

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/momentics/netcore/transport"
	"github.com/stretchr/testify/require"
)

func selfSignedCert(t *testing.T) tls.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "127.0.0.1"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: cert}
}

type echoHandler struct {
	transport.NopHandler
	sess *Session
}

func (h *echoHandler) OnReceived(data []byte) { h.sess.SendAsync(append([]byte(nil), data...)) }

type clientHandler struct {
	transport.NopHandler
	mu          sync.Mutex
	got         []byte
	done        chan struct{}
	handshaked  chan struct{}
}

func newClientHandler() *clientHandler {
	return &clientHandler{done: make(chan struct{}, 1), handshaked: make(chan struct{}, 1)}
}

func (h *clientHandler) OnReceived(data []byte) {
	h.mu.Lock()
	h.got = append(h.got, data...)
	h.mu.Unlock()
	select {
	case h.done <- struct{}{}:
	default:
	}
}

func (h *clientHandler) OnHandshaked() {
	select {
	case h.handshaked <- struct{}{}:
	default:
	}
}

func TestSSLEchoRoundTripAfterHandshake(t *testing.T) {
	cert := selfSignedCert(t)
	serverCfg := ServerConfig(cert)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	srv := NewServer(addr, serverCfg, func(s *Session) transport.StreamHandler {
		return &echoHandler{sess: s}
	}, nil)
	require.NoError(t, srv.Start())
	defer srv.Stop()

	clientCfg := ClientConfig("127.0.0.1", nil, func([]*x509.Certificate, []error) bool { return true })
	ch := newClientHandler()
	cli := NewClient(addr, clientCfg, ch)
	require.NoError(t, cli.Connect())
	defer cli.Disconnect()

	select {
	case <-ch.handshaked:
	case <-time.After(2 * time.Second):
		t.Fatal("tls handshake never completed")
	}

	require.NoError(t, cli.Send([]byte("secure-echo")))

	select {
	case <-ch.done:
	case <-time.After(2 * time.Second):
		t.Fatal("echo response never arrived")
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	require.Equal(t, "secure-echo", string(ch.got))
}
