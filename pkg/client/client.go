// Package client provides the default implementation of the request.Sender interface.
//
// Client is based on the standard net/http package and contains
// response decoding, optional retry and tracing support.
// It is easy to implement your custom HTTP client, by implementing the request.Sender interface.
//
// By default, the Client sends each request exactly once, see WithRetry to enable retries.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tossapp/apiclient/pkg/client/decode"
	"github.com/tossapp/apiclient/pkg/client/trace"
	"github.com/tossapp/apiclient/pkg/request"
)

// DefaultUserAgent is sent if no other User-Agent is set.
const DefaultUserAgent = "tossapp-apiclient"

// Client is a default and configurable implementation of the request.Sender interface by Go native http.Client.
// It supports retry and tracing.
type Client struct {
	transport      http.RoundTripper
	baseURL        *url.URL
	header         http.Header
	retry          RetryConfig
	traceFactories []trace.Factory
}

// StatusError is returned by Client.Send together with the response, if the HTTP status code is >= 400.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf(`request %s "%s" failed: %d %s`, e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// New creates new HTTP Client.
func New() Client {
	c := Client{transport: DefaultTransport(), header: make(http.Header), retry: NoRetry()}
	c.header.Set("User-Agent", DefaultUserAgent)
	c.header.Set("Accept-Encoding", decode.AcceptEncoding)
	return c
}

// WithBaseURL returns a clone of the Client with base url set.
func (c Client) WithBaseURL(baseURLStr string) Client {
	baseURL, err := url.Parse(baseURLStr)
	if err != nil {
		panic(fmt.Errorf(`base url "%s" is not valid: %w`, baseURLStr, err))
	}
	// Normalize base URL, so a relative path is appended to the base path
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/"
	c.baseURL = baseURL
	return c
}

// WithUserAgent returns a clone of the Client with user agent set.
func (c Client) WithUserAgent(v string) Client {
	return c.WithHeader("User-Agent", v)
}

// WithHeader returns a clone of the Client with common header set.
func (c Client) WithHeader(key, value string) Client {
	c.header = c.header.Clone()
	c.header.Set(key, value)
	return c
}

// WithHeaders returns a clone of the Client with common headers set.
func (c Client) WithHeaders(headers map[string]string) Client {
	c.header = c.header.Clone()
	for k, v := range headers {
		c.header.Set(k, v)
	}
	return c
}

// WithTransport returns a clone of the Client with a HTTP transport set.
func (c Client) WithTransport(transport http.RoundTripper) Client {
	if transport == nil {
		panic(fmt.Errorf("transport cannot be nil"))
	}
	c.transport = transport
	return c
}

// WithRetry returns a clone of the Client with retry config set.
func (c Client) WithRetry(retry RetryConfig) Client {
	c.retry = retry
	return c
}

// AndTrace returns a clone of the Client with a trace factory added.
// Hooks of multiple factories are composed, the previously added are called first.
func (c Client) AndTrace(fn trace.Factory) Client {
	c.traceFactories = append(c.traceFactories[:len(c.traceFactories):len(c.traceFactories)], fn)
	return c
}

// Send method sends HTTP request and returns HTTP response, it implements the request.Sender interface.
//
// The response is nil, if no HTTP response has been received.
// For a status code >= 400, the response and the *StatusError are returned together,
// the response body is mapped to the ResultDef for each status code.
func (c Client) Send(ctx context.Context, reqDef request.HTTPRequest) (res *http.Response, result any, err error) {
	// Method cannot be called on an empty value
	if c.transport == nil {
		panic(fmt.Errorf("client value is not initialized"))
	}

	// Invalid definition is not sent
	if err := reqDef.DefinitionError(); err != nil {
		return nil, nil, err
	}
	method := reqDef.Method()
	reqURLStr := reqDef.URL()

	// Init trace
	ctx, clientTrace := c.newTrace(ctx, reqDef)
	if clientTrace != nil {
		ctx = httptrace.WithClientTrace(ctx, &clientTrace.ClientTrace)
		if clientTrace.RequestProcessed != nil {
			defer func() {
				clientTrace.RequestProcessed(result, err)
			}()
		}
	}

	// Create request
	req, err := c.newRequest(ctx, method, reqURLStr, reqDef)
	if err != nil {
		return nil, nil, err
	}

	// Setup native client
	nativeClient := http.Client{
		Timeout:   c.retry.TotalRequestTimeout,
		Transport: roundTripper{retry: c.retry, trace: clientTrace, wrapped: c.transport}, // wrapped transport for trace/retry
	}

	// Send request
	startedAt := time.Now()
	res, err = nativeClient.Do(req) //nolint:bodyclose // closed in handleResponseBody

	// Handle send error
	if err != nil {
		return nil, nil, handleSendError(startedAt, c.retry.TotalRequestTimeout, req, err)
	}

	// Process body
	result, err = handleResponseBody(res, reqDef.ResultDef())
	if err != nil {
		// For example the connection has been closed while reading the body
		return nil, nil, fmt.Errorf(`cannot process request %s "%s": %w`, req.Method, req.URL.String(), err)
	}

	// Generic HTTP error
	if res.StatusCode > 399 {
		return res, result, &StatusError{Method: req.Method, URL: req.URL.String(), StatusCode: res.StatusCode}
	}

	return res, result, nil
}

func (c Client) newTrace(ctx context.Context, reqDef request.HTTPRequest) (context.Context, *trace.ClientTrace) {
	var out *trace.ClientTrace
	for _, factory := range c.traceFactories {
		var t *trace.ClientTrace
		ctx, t = factory(ctx, reqDef)
		if t == nil {
			continue
		}
		if out != nil {
			t.Compose(out)
		}
		out = t
	}
	return ctx, out
}

func (c Client) newRequest(ctx context.Context, method, reqURLStr string, reqDef request.HTTPRequest) (*http.Request, error) {
	// Replace path parameters
	for k, v := range reqDef.PathParams() {
		reqURLStr = strings.ReplaceAll(reqURLStr, "{"+k+"}", url.PathEscape(v))
	}

	// Convert to absolute url
	var reqURL *url.URL
	var err error
	if c.baseURL == nil {
		reqURL, err = url.Parse(reqURLStr)
	} else {
		reqURL, err = c.baseURL.Parse(strings.TrimLeft(reqURLStr, "/"))
	}
	if err != nil {
		return nil, err
	}

	// Set query parameters, the parameters from the URL are preserved
	if params := reqDef.QueryParams(); len(params) > 0 {
		query := reqURL.Query()
		for k, values := range params {
			query[k] = values
		}
		reqURL.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}

	// Global headers
	for k, values := range c.header {
		for _, v := range values {
			req.Header.Set(k, v)
		}
	}

	// Request headers
	for k, values := range reqDef.RequestHeader() {
		req.Header.Del(k) // clear global values
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	// Body
	if reqDef.RequestBody() != nil {
		// GetBody factory is used for requests when a redirect/retry requires reading the body more than once.
		req.GetBody = func() (io.ReadCloser, error) {
			if body, err := requestBody(reqDef); err == nil {
				return body, nil
			} else {
				return nil, fmt.Errorf(`request %s "%s": cannot prepare request body: %w`, req.Method, req.URL.String(), err)
			}
		}
		req.Body, err = req.GetBody()
		if err != nil {
			return nil, err
		}
		if req.Body == nil {
			req.Body = http.NoBody
		}
	}

	return req, nil
}

func requestBody(r request.HTTPRequest) (io.ReadCloser, error) {
	body := r.RequestBody()
	switch v := body.(type) {
	case string:
		return io.NopCloser(strings.NewReader(v)), nil
	case []byte:
		return io.NopCloser(bytes.NewReader(v)), nil
	case io.ReadSeekCloser:
		if _, err := v.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return v, nil
	case io.ReadSeeker:
		if _, err := v.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return io.NopCloser(v), nil
	}
	if body != nil && isJSONContentType(r.RequestHeader().Get("Content-Type")) {
		c, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf(`cannot encode JSON body: %w`, err)
		}
		return io.NopCloser(bytes.NewReader(c)), nil
	}
	// empty body
	return nil, nil
}

// handleResponseBody maps the body to the resultDef, JSON is mapped only for 2xx status codes.
func handleResponseBody(r *http.Response, resultDef any) (result any, err error) {
	defer r.Body.Close()

	if r.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	// Process content encoding
	body, err := decode.Decode(r.Body, r.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	switch v := resultDef.(type) {
	case *[]byte, *string:
		bodyBytes, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf(`cannot read response body: %w`, err)
		}
		if p, ok := v.(*[]byte); ok {
			*p = bodyBytes
		} else {
			*v.(*string) = string(bodyBytes)
		}
		return v, nil
	case io.Writer:
		// Stream response to io.Writer, io.WriteCloser is closed
		if _, err := io.Copy(v, body); err != nil {
			return nil, fmt.Errorf(`cannot read response body: %w`, err)
		}
		if c, ok := v.(io.Closer); ok {
			if err := c.Close(); err != nil {
				return nil, fmt.Errorf(`cannot read response body: %w`, err)
			}
		}
		return v, nil
	}

	// Map JSON response to defined result
	if resultDef != nil && r.StatusCode > 199 && r.StatusCode < 300 && isJSONContentType(r.Header.Get("Content-Type")) {
		if err := json.NewDecoder(body).Decode(resultDef); err != nil {
			return nil, fmt.Errorf(`cannot decode JSON result: %w`, err)
		}
		return resultDef, nil
	}

	return nil, nil
}

func handleSendError(startedAt time.Time, clientTimeout time.Duration, req *http.Request, err error) error {
	// Timeout
	var netErr net.Error
	if deadline, ok := req.Context().Deadline(); ok && errors.Is(err, context.DeadlineExceeded) {
		err = urlError(req, fmt.Errorf("timeout after %s: %w", deadline.Sub(startedAt), context.DeadlineExceeded))
	} else if errors.Is(err, context.Canceled) {
		err = urlError(req, fmt.Errorf("canceled after %s: %w", time.Since(startedAt), context.Canceled))
	} else if errors.As(err, &netErr) && netErr.Timeout() {
		if strings.Contains(err.Error(), "Client.Timeout exceeded") {
			err = urlError(req, fmt.Errorf("timeout after %s", clientTimeout))
		} else {
			err = urlError(req, fmt.Errorf("timeout after %s", time.Since(startedAt)))
		}
	}

	// Url error
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = fmt.Errorf(`request %s "%s" failed: %w`, strings.ToUpper(urlErr.Op), urlErr.URL, urlErr.Err)
	}

	return err
}

// roundTripper wraps a http.RoundTripper and adds trace and retry functionality.
type roundTripper struct {
	trace   *trace.ClientTrace
	retry   RetryConfig
	wrapped http.RoundTripper
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	state := rt.retry.NewBackoff()
	attempt := 0
	for {
		attemptReq := req.WithContext(context.WithValue(req.Context(), retryAttemptCtxKey, attempt))

		// Trace request start
		if rt.trace != nil && rt.trace.HTTPRequestStart != nil {
			rt.trace.HTTPRequestStart(attemptReq)
		}

		// Send
		res, err := rt.wrapped.RoundTrip(attemptReq)

		// Trace request done
		if rt.trace != nil && rt.trace.HTTPRequestDone != nil {
			rt.trace.HTTPRequestDone(res, err)
		}

		// Check if we should retry
		if rt.retry.Condition == nil || attempt >= rt.retry.Count || !rt.retry.Condition(res, err) {
			// No retry
			return res, err
		}

		// Get next delay
		delay := state.NextBackOff()
		if delay == backoff.Stop {
			// Stop
			return res, err
		}

		// Discard the response before retry
		if res != nil && res.Body != nil {
			_, _ = io.Copy(io.Discard, res.Body)
			_ = res.Body.Close()
		}

		// Trace retry
		attempt++
		if rt.trace != nil && rt.trace.HTTPRequestRetry != nil {
			rt.trace.HTTPRequestRetry(attempt, delay)
		}

		// Rewind body before retry
		if req.GetBody != nil {
			req.Body, err = req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("cannot rewind body: %w", err)
			}
		}

		// Wait
		timer := time.NewTimer(delay)
		select {
		case <-req.Context().Done():
			// context is canceled
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
			// time elapsed, retry
		}
	}
}

func urlError(req *http.Request, err error) *url.Error {
	return &url.Error{Op: req.Method, URL: req.URL.String(), Err: err}
}
