package request_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tossapp/apiclient/pkg/client"
	"github.com/tossapp/apiclient/pkg/request"
)

type result1 struct{}

type result2 struct{}

func TestHttpRequest_Immutability(t *testing.T) {
	t.Parallel()
	var a, b request.HTTPRequest
	c := client.New()
	a = request.NewHTTPRequest(c)

	// WithGet
	a = a.WithGet("/foo1")
	b = a.WithGet("/foo2")
	assert.Equal(t, http.MethodGet, a.Method())
	assert.Equal(t, "/foo1", a.URL())
	assert.Equal(t, http.MethodGet, b.Method())
	assert.Equal(t, "/foo2", b.URL())

	// WithPost
	a = a.WithPost("/foo1")
	b = a.WithPost("/foo2")
	assert.Equal(t, http.MethodPost, a.Method())
	assert.Equal(t, "/foo1", a.URL())
	assert.Equal(t, http.MethodPost, b.Method())
	assert.Equal(t, "/foo2", b.URL())

	// WithMethod
	a = a.WithMethod("get")
	b = a.WithMethod(http.MethodPost)
	assert.Equal(t, http.MethodGet, a.Method())
	assert.Equal(t, http.MethodPost, b.Method())

	// WithURL
	a = a.WithURL("/url1")
	b = a.WithURL("https://example.com/url2")
	assert.Equal(t, "/url1", a.URL())
	assert.Equal(t, "https://example.com/url2", b.URL())

	// AndHeader
	a = a.AndHeader("key1", "value1")
	b = a.AndHeader("key2", "value2")
	assert.Equal(t, http.Header{"Key1": []string{"value1"}}, a.RequestHeader())
	assert.Equal(t, http.Header{"Key1": []string{"value1"}, "Key2": []string{"value2"}}, b.RequestHeader())

	// AndQueryParam
	a = a.AndQueryParam("key1", "value1")
	b = a.AndQueryParam("key2", "value2")
	assert.Equal(t, url.Values{"key1": []string{"value1"}}, a.QueryParams())
	assert.Equal(t, url.Values{"key1": []string{"value1"}, "key2": []string{"value2"}}, b.QueryParams())

	// AndPathParam
	a = a.AndPathParam("key1", "value1")
	b = a.AndPathParam("key2", "value2")
	assert.Equal(t, map[string]string{"key1": "value1"}, a.PathParams())
	assert.Equal(t, map[string]string{"key1": "value1", "key2": "value2"}, b.PathParams())

	// WithFormBody
	a = a.WithFormBody(map[string]string{"foo1": "bar1"})
	b = a.WithFormBody(map[string]string{"foo2": "bar2"})
	assert.Equal(t, "foo1=bar1", a.RequestBody())
	assert.Equal(t, "foo2=bar2", b.RequestBody())

	// WithJSONBody
	a = a.WithJSONBody(123)
	b = a.WithJSONBody(456)
	assert.Equal(t, 123, a.RequestBody())
	assert.Equal(t, 456, b.RequestBody())
	assert.Equal(t, "application/json", a.RequestHeader().Get("Content-Type"))

	// WithResult
	a = a.WithResult(&result1{})
	b = a.WithResult(&result2{})
	assert.Equal(t, &result1{}, a.ResultDef())
	assert.Equal(t, &result2{}, b.ResultDef())
	assert.NoError(t, a.DefinitionError())
}

func TestHttpRequest_InvalidDefinition(t *testing.T) {
	t.Parallel()

	c, transport := client.NewMockedClient()
	r := request.NewHTTPRequest(c).
		WithURL("://invalid").
		AndHeader("", "value").
		WithResult(result1{})

	// Previous valid values are kept
	assert.Equal(t, "", r.URL())
	assert.Empty(t, r.RequestHeader())
	assert.Nil(t, r.ResultDef())

	response, _, err := r.Send(context.Background())
	require.Error(t, err)
	assert.Nil(t, response)
	assert.Contains(t, err.Error(), "invalid request definition: 5 errors occurred:")
	assert.Contains(t, err.Error(), "* request method is not set")
	assert.Contains(t, err.Error(), "* request url is not set")
	assert.Contains(t, err.Error(), `* url "://invalid" is not valid: parse "://invalid": missing protocol scheme`)
	assert.Contains(t, err.Error(), `* header name cannot be empty, value "value"`)
	assert.Contains(t, err.Error(), `* result must be defined by a pointer or io.Writer, found "request_test.result1"`)
	assert.Equal(t, 0, transport.GetTotalCallCount())
}

func TestHttpRequest_Listeners(t *testing.T) {
	t.Parallel()

	c, transport := client.NewMockedClient()
	transport.RegisterResponder(http.MethodGet, "https://example.com/ok", httpmock.NewStringResponder(200, "OK"))
	transport.RegisterResponder(http.MethodGet, "https://example.com/bad", httpmock.NewStringResponder(400, "bad"))

	var calls []string
	base := request.NewHTTPRequest(c).
		WithOnSuccess(func(ctx context.Context, response request.HTTPResponse) error {
			calls = append(calls, "success "+response.URL())
			return nil
		}).
		WithOnError(func(ctx context.Context, response request.HTTPResponse, err error) error {
			calls = append(calls, "error "+response.URL())
			return err
		}).
		WithOnComplete(func(ctx context.Context, response request.HTTPResponse, err error) error {
			calls = append(calls, "complete "+response.URL())
			return err
		})

	ctx := context.Background()
	require.NoError(t, base.WithGet("https://example.com/ok").SendOrErr(ctx))
	response, _, err := base.WithGet("https://example.com/bad").Send(ctx)
	require.Error(t, err)
	assert.Equal(t, 400, response.StatusCode())
	assert.True(t, response.IsError())

	var statusErr *client.StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Equal(t, []string{
		"success https://example.com/ok",
		"complete https://example.com/ok",
		"error https://example.com/bad",
		"complete https://example.com/bad",
	}, calls)
}

func TestHttpRequest_CancelledContext(t *testing.T) {
	t.Parallel()

	c, transport := client.NewMockedClient()
	transport.RegisterResponder(http.MethodGet, "https://example.com", httpmock.NewStringResponder(200, "OK"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := request.NewHTTPRequest(c).WithGet("https://example.com").Send(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, transport.GetTotalCallCount())
}

func TestToFormBody(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"string": "test",
		"number": 100,
		"bool":   true,
		"nil":    nil,
		"slice":  []string{"a", "b", "c"},
		"map":    map[string]string{"k0": "v0", "k1": "v1"},
		"nested": map[string]any{"list": []any{1, "x"}},
	}

	expected := map[string]string{
		"string":            "test",
		"number":            "100",
		"bool":              "true",
		"slice[0]":          "a",
		"slice[1]":          "b",
		"slice[2]":          "c",
		"map[k0]":           "v0",
		"map[k1]":           "v1",
		"nested[list][0]":   "1",
		"nested[list][1]":   "x",
	}
	actual := request.ToFormBody(data)

	assert.Equal(t, expected, actual)
}
