package client_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"

	"github.com/tossapp/apiclient/pkg/client"
)

func TestDefaultTransport(t *testing.T) {
	t.Parallel()

	transport, ok := client.DefaultTransport().(*http.Transport)
	require.True(t, ok)
	assert.True(t, transport.ForceAttemptHTTP2)
	assert.Equal(t, client.ResponseHeaderTimeout, transport.ResponseHeaderTimeout)
	assert.Equal(t, client.MaxConnectionsPerHost, transport.MaxConnsPerHost)
}

func TestNewTransport_Config(t *testing.T) {
	t.Parallel()

	cfg := client.DefaultTransportConfig()
	cfg.ResponseHeaderTimeout = 7 * time.Second
	cfg.MaxConnectionsPerHost = 2
	transport, ok := client.NewTransport(cfg).(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 7*time.Second, transport.ResponseHeaderTimeout)
	assert.Equal(t, 2, transport.MaxIdleConnsPerHost)
}

func TestHTTP2Transport(t *testing.T) {
	t.Parallel()

	_, ok := client.HTTP2Transport().(*http2.Transport)
	assert.True(t, ok)
}
