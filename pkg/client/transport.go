package client

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// DialTimeout specifies default maximum connection initialization time.
const DialTimeout = 3 * time.Second

// KeepAlive specifies default interval between keep-alive probes.
const KeepAlive = 10 * time.Second

// TLSHandshakeTimeout specifies default timeout of TLS handshake.
const TLSHandshakeTimeout = 5 * time.Second

// ResponseHeaderTimeout specifies default amount of time to wait for a server's response headers.
const ResponseHeaderTimeout = 20 * time.Second

// IdleConnTimeout specifies default maximum amount of time an idle connection will remain idle before closing itself.
const IdleConnTimeout = 90 * time.Second

// MaxConnectionsPerHost specifies default maximum number of open connections to a host.
const MaxConnectionsPerHost = 32

// TransportConfig configures the transport created by NewTransport.
type TransportConfig struct {
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	IdleConnTimeout       time.Duration
	MaxConnectionsPerHost int
	// ForceHTTP2 selects the HTTP2 only transport, see HTTP2Transport.
	ForceHTTP2 bool
}

// DefaultTransportConfig returns the reasonable limits used by DefaultTransport.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		DialTimeout:           DialTimeout,
		KeepAlive:             KeepAlive,
		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ResponseHeaderTimeout: ResponseHeaderTimeout,
		IdleConnTimeout:       IdleConnTimeout,
		MaxConnectionsPerHost: MaxConnectionsPerHost,
	}
}

// DefaultTransport default transport with reasonable limits.
func DefaultTransport() http.RoundTripper {
	return NewTransport(DefaultTransportConfig())
}

// NewTransport creates a transport from the config.
func NewTransport(cfg TransportConfig) http.RoundTripper {
	dialer := &net.Dialer{Timeout: cfg.DialTimeout, KeepAlive: cfg.KeepAlive}
	if cfg.ForceHTTP2 {
		return &http2.Transport{
			DialTLS: func(network, addr string, tlsCfg *tls.Config) (net.Conn, error) {
				return tls.DialWithDialer(dialer, network, addr, tlsCfg)
			},
			ReadIdleTimeout:  3 * time.Second,
			PingTimeout:      3 * time.Second,
			WriteByteTimeout: 3 * time.Second,
		}
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true, // HTTP2 is preferred.
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		MaxConnsPerHost:       cfg.MaxConnectionsPerHost,
		MaxIdleConnsPerHost:   cfg.MaxConnectionsPerHost,
	}
}

// HTTP2Transport forces HTTP2 protocol.
func HTTP2Transport() http.RoundTripper {
	cfg := DefaultTransportConfig()
	cfg.ForceHTTP2 = true
	return NewTransport(cfg)
}
