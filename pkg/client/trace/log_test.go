package trace_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/keboola/go-utils/pkg/wildcards"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/tossapp/apiclient/pkg/client"
	"github.com/tossapp/apiclient/pkg/client/trace"
	"github.com/tossapp/apiclient/pkg/request"
)

func TestLogTracer(t *testing.T) {
	t.Parallel()

	// Mocked response
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", `https://example.com`, httpmock.ResponderFromMultipleResponses([]*http.Response{
		{StatusCode: http.StatusLocked},
		{StatusCode: http.StatusTooManyRequests},
		{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("OK1"))},
		{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("OK2"))},
	}))

	// Logs for trace testing
	var logs strings.Builder
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)

	// Create client
	ctx := context.Background()
	c := client.New().
		WithTransport(transport).
		WithRetry(client.TestingRetry()).
		AndTrace(trace.LogTracer(logger))

	// Expected trace
	expected := `
{"level":"debug","request_id":1,"method":"GET","url":"https://example.com","message":"http request start"}
{"level":"debug","request_id":1,"status":423,"method":"GET","url":"https://example.com","duration":%s,"message":"http request done"}
{"level":"info","request_id":1,"method":"GET","url":"https://example.com","attempt":1,"delay":%s,"message":"http request retry"}
{"level":"debug","request_id":1,"method":"GET","url":"https://example.com","message":"http request start"}
{"level":"debug","request_id":1,"status":429,"method":"GET","url":"https://example.com","duration":%s,"message":"http request done"}
{"level":"info","request_id":1,"method":"GET","url":"https://example.com","attempt":2,"delay":%s,"message":"http request retry"}
{"level":"debug","request_id":1,"method":"GET","url":"https://example.com","message":"http request start"}
{"level":"debug","request_id":1,"status":200,"method":"GET","url":"https://example.com","duration":%s,"message":"http request done"}
{"level":"debug","request_id":1,"method":"GET","url":"https://example.com","body":%s,"message":"http request processed"}
{"level":"debug","request_id":2,"method":"GET","url":"https://example.com","message":"http request start"}
{"level":"debug","request_id":2,"status":200,"method":"GET","url":"https://example.com","duration":%s,"message":"http request done"}
{"level":"debug","request_id":2,"method":"GET","url":"https://example.com","body":%s,"message":"http request processed"}
`

	// Test
	str := ""
	_, result, err := request.NewHTTPRequest(c).WithGet("https://example.com").WithResult(&str).Send(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "OK1", *result.(*string))
	_, result, err = request.NewHTTPRequest(c).WithGet("https://example.com").WithResult(&str).Send(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "OK2", *result.(*string))
	wildcards.Assert(t, strings.TrimLeft(expected, "\n"), logs.String())
}

func TestLogTracer_TransportError(t *testing.T) {
	t.Parallel()

	// Mocked response
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", `https://example.com`, httpmock.NewErrorResponder(errors.New("connection refused")))

	// Logs for trace testing
	var logs strings.Builder
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)

	// Create client
	ctx := context.Background()
	c := client.New().WithTransport(transport).AndTrace(trace.LogTracer(logger))

	// Expected trace
	expected := `
{"level":"debug","request_id":1,"method":"GET","url":"https://example.com","message":"http request start"}
{"level":"warn","request_id":1,"error":"connection refused","method":"GET","url":"https://example.com","duration":%s,"message":"http request done"}
{"level":"warn","request_id":1,"error":"request GET \"https://example.com\" failed: connection refused","method":"GET","url":"https://example.com","body":%s,"message":"http request processed"}
`

	_, _, err := request.NewHTTPRequest(c).WithGet("https://example.com").Send(ctx)
	assert.Error(t, err)
	wildcards.Assert(t, strings.TrimLeft(expected, "\n"), logs.String())
}
