package comm

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
)

// Model blobs can be large, so the plain client gets a generous deadline
// instead of the short one a control-plane call would use.
const transferTimeout = 5 * time.Minute

// NewHttpClient returns the client used against plain HTTP deployments.
func NewHttpClient() *http.Client {
	return &http.Client{Timeout: transferTimeout}
}

// BuildHTTP2Client returns a client that talks mutual TLS 1.3 over HTTP/2,
// for deployments where the FL server sits behind an mTLS ingress.
func BuildHTTP2Client(certPath string, keyPath string, caPath string) (*http.Client, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("loading client key pair: %w", err)
	}

	caCert, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("reading CA certificate: %w", err)
	}
	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("no certificates parsed from %s", caPath)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      caCertPool,
		MinVersion:   tls.VersionTLS13,
	}

	return &http.Client{
		Transport: &http2.Transport{TLSClientConfig: tlsConfig},
		Timeout:   transferTimeout,
	}, nil
}
