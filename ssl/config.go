// File: ssl/config.go
// Package ssl implements SslServer/SslSession/SslClient (spec.md §4.5),
// wrapping a tcp.Session-shaped stream with a crypto/tls handshake driver.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ssl

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"golang.org/x/crypto/pkcs12"
)

// LoadServerCertificate loads a PKCS#12 (.pfx) bundle with its password
// (spec.md §6 TLS credential formats) into a tls.Certificate suitable for
// tls.Config.Certificates.
func LoadServerCertificate(pfxData []byte, password string) (tls.Certificate, error) {
	privateKey, cert, err := pkcs12.Decode(pfxData, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("ssl: decode pkcs12: %w", err)
	}
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  privateKey,
		Leaf:        cert,
	}, nil
}

// VerifyFunc is the client verification predicate of spec.md §4.5:
// (chain, policyErrors) -> accept/reject.
type VerifyFunc func(chain []*x509.Certificate, policyErrors []error) bool

// ServerConfig builds a tls.Config for an SslServer from a loaded
// certificate.
func ServerConfig(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
}

// ClientConfig builds a tls.Config for an SslClient. clientCert is
// optional (nil to skip mutual TLS); verify, if non-nil, overrides default
// chain verification with the spec's accept/reject predicate.
func ClientConfig(serverName string, clientCert *tls.Certificate, verify VerifyFunc) *tls.Config {
	cfg := &tls.Config{
		ServerName: serverName,
		MinVersion: tls.VersionTLS12,
	}
	if clientCert != nil {
		cfg.Certificates = []tls.Certificate{*clientCert}
	}
	if verify != nil {
		cfg.InsecureSkipVerify = true
		cfg.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			chain := make([]*x509.Certificate, 0, len(rawCerts))
			var policyErrors []error
			for _, raw := range rawCerts {
				c, err := x509.ParseCertificate(raw)
				if err != nil {
					policyErrors = append(policyErrors, err)
					continue
				}
				chain = append(chain, c)
			}
			if !verify(chain, policyErrors) {
				return fmt.Errorf("ssl: certificate rejected by verification predicate")
			}
			return nil
		}
	}
	return cfg
}
