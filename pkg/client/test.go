package client

import (
	"os"

	"github.com/jarcoal/httpmock"
	"github.com/rs/zerolog"

	"github.com/tossapp/apiclient/pkg/client/trace"
)

var testTransport = DefaultTransport() //nolint:gochecknoglobals

// NewTestClient creates the Client for tests.
//
// If the TEST_HTTP_CLIENT_VERBOSE environment variable is set to "true",
// then all HTTP requests and responses are dumped to stdout.
// If the TEST_HTTP_CLIENT_LOG environment variable is set to "true",
// then each request stage is logged to stderr.
func NewTestClient() Client {
	c := New().WithTransport(testTransport)
	if os.Getenv("TEST_HTTP_CLIENT_VERBOSE") == "true" { //nolint:forbidigo
		c = c.AndTrace(trace.DumpTracer(os.Stdout))
	}
	if os.Getenv("TEST_HTTP_CLIENT_LOG") == "true" { //nolint:forbidigo
		c = c.AndTrace(trace.LogTracer(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)))
	}
	return c
}

// NewMockedClient creates the Client with mocked HTTP transport.
func NewMockedClient() (Client, *httpmock.MockTransport) {
	mockTransport := httpmock.NewMockTransport()
	return NewTestClient().WithTransport(mockTransport), mockTransport
}
