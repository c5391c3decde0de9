package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Result - any value.
type Result = any

// NoResult type.
type NoResult struct{}

// HTTPRequest is an immutable HTTP request, each With* and And* method returns a modified copy.
//
// An invalid definition does not panic.
// The error is reported by DefinitionError and returned by Send, the request is not sent.
type HTTPRequest interface {
	httpRequestReadOnly
	// WithGet is shortcut for WithMethod(http.MethodGet).WithURL(url)
	WithGet(url string) HTTPRequest
	// WithPost is shortcut for WithMethod(http.MethodPost).WithURL(url)
	WithPost(url string) HTTPRequest
	// WithMethod method sets the HTTP method.
	WithMethod(method string) HTTPRequest
	// WithURL method sets the URL, it may be relative to the base URL of the Sender.
	WithURL(url string) HTTPRequest
	// AndHeader method sets a single header field and its value.
	AndHeader(header string, value string) HTTPRequest
	// AndQueryParam method sets single parameter and its value.
	AndQueryParam(param, value string) HTTPRequest
	// AndPathParam method sets single URL path key-value pair, mapped to a {placeholder} in the URL.
	AndPathParam(param, value string) HTTPRequest
	// WithFormBody method sets Form parameters and Content-Type header to "application/x-www-form-urlencoded".
	WithFormBody(form map[string]string) HTTPRequest
	// WithJSONBody method sets request body to the JSON value and Content-Type header to "application/json".
	WithJSONBody(body any) HTTPRequest
	// WithBody method sets request body.
	WithBody(body any) HTTPRequest
	// WithContentType method sets custom content type.
	WithContentType(contentType string) HTTPRequest
	// WithResult method registers the target of the response body, for each status code.
	WithResult(result any) HTTPRequest
	// WithOnComplete method registers callback to be executed when the request is completed.
	WithOnComplete(func(ctx context.Context, response HTTPResponse, err error) error) HTTPRequest
	// WithOnSuccess method registers callback to be executed when the request is completed without error.
	WithOnSuccess(func(ctx context.Context, response HTTPResponse) error) HTTPRequest
	// WithOnError method registers callback to be executed when the request is completed with an error.
	WithOnError(func(ctx context.Context, response HTTPResponse, err error) error) HTTPRequest
	// Send method sends defined request and returns response, mapped result and error.
	Send(ctx context.Context) (response HTTPResponse, result any, err error)
	SendOrErr(ctx context.Context) error
}

type httpRequestReadOnly interface {
	// Method returns HTTP method.
	Method() string
	// URL method returns HTTP URL.
	URL() string
	// RequestHeader method returns HTTP request headers.
	RequestHeader() http.Header
	// QueryParams method returns HTTP query parameters.
	QueryParams() url.Values
	// PathParams method returns HTTP path parameters mapped to a {placeholder} in the URL.
	PathParams() map[string]string
	// RequestBody method returns a definition of HTTP request body.
	// Supported request body data types are:
	// `string`, `[]byte`, `*struct`, `*map`, `*slice`, `io.ReadSeeker` and `io.ReadSeekCloser`.
	// Automatic marshaling for JSON is provided, if the Content-Type is "application/json".
	RequestBody() any
	// ResultDef method returns a target value for result mapping.
	ResultDef() any
	// DefinitionError returns all problems of the definition, or nil if the request can be sent.
	DefinitionError() error
}

// NewHTTPRequest creates immutable HTTP request.
func NewHTTPRequest(sender Sender) HTTPRequest {
	return httpRequest{sender: sender, header: make(http.Header)}
}

// httpRequest implements HTTPRequest interface.
type httpRequest struct {
	sender      Sender
	method      string
	url         string
	header      http.Header
	queryParams url.Values
	pathParams  map[string]string
	body        any
	resultDef   any
	errs        []error
	listeners   []func(ctx context.Context, response HTTPResponse, err error) error
}

func (r httpRequest) Method() string {
	return r.method
}

func (r httpRequest) URL() string {
	return r.url
}

func (r httpRequest) RequestHeader() http.Header {
	return r.header
}

func (r httpRequest) QueryParams() url.Values {
	return r.queryParams
}

func (r httpRequest) PathParams() map[string]string {
	return r.pathParams
}

func (r httpRequest) RequestBody() any {
	return r.body
}

func (r httpRequest) ResultDef() any {
	return r.resultDef
}

func (r httpRequest) DefinitionError() error {
	var merr *multierror.Error
	if r.sender == nil {
		merr = multierror.Append(merr, errors.New("sender is not set"))
	}
	if r.method == "" {
		merr = multierror.Append(merr, errors.New("request method is not set"))
	}
	if r.url == "" {
		merr = multierror.Append(merr, errors.New("request url is not set"))
	}
	merr = multierror.Append(merr, r.errs...)
	if err := merr.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid request definition: %w", err)
	}
	return nil
}

func (r httpRequest) WithGet(url string) HTTPRequest {
	return r.WithMethod(http.MethodGet).WithURL(url)
}

func (r httpRequest) WithPost(url string) HTTPRequest {
	return r.WithMethod(http.MethodPost).WithURL(url)
}

func (r httpRequest) WithMethod(method string) HTTPRequest {
	r.method = strings.ToUpper(method)
	return r
}

func (r httpRequest) WithURL(urlStr string) HTTPRequest {
	if _, err := url.Parse(urlStr); err != nil {
		return r.withError(fmt.Errorf(`url "%s" is not valid: %w`, urlStr, err))
	}
	r.url = urlStr
	return r
}

func (r httpRequest) AndHeader(header string, value string) HTTPRequest {
	if header == "" {
		return r.withError(fmt.Errorf(`header name cannot be empty, value "%s"`, value))
	}
	r.header = r.header.Clone()
	r.header.Set(header, value)
	return r
}

func (r httpRequest) AndQueryParam(key, value string) HTTPRequest {
	r.queryParams = cloneURLValues(r.queryParams)
	r.queryParams.Set(key, value)
	return r
}

func (r httpRequest) AndPathParam(key, value string) HTTPRequest {
	r.pathParams = cloneParams(r.pathParams)
	r.pathParams[key] = value
	return r
}

func (r httpRequest) WithFormBody(form map[string]string) HTTPRequest {
	formData := make(url.Values)
	for k, v := range form {
		formData.Set(k, v)
	}
	r.body = formData.Encode()
	return r.AndHeader("Content-Type", "application/x-www-form-urlencoded")
}

func (r httpRequest) WithJSONBody(body any) HTTPRequest {
	r.body = body
	return r.AndHeader("Content-Type", "application/json")
}

func (r httpRequest) WithBody(body any) HTTPRequest {
	r.body = body
	return r
}

func (r httpRequest) WithContentType(contentType string) HTTPRequest {
	return r.AndHeader("Content-Type", contentType)
}

func (r httpRequest) WithResult(result any) HTTPRequest {
	if _, ok := result.(io.Writer); !ok && reflect.ValueOf(result).Kind() != reflect.Ptr {
		return r.withError(fmt.Errorf(`result must be defined by a pointer or io.Writer, found "%T"`, result))
	}
	r.resultDef = result
	return r
}

func (r httpRequest) WithOnComplete(fn func(ctx context.Context, response HTTPResponse, err error) error) HTTPRequest {
	r.listeners = append(r.listeners[:len(r.listeners):len(r.listeners)], fn)
	return r
}

func (r httpRequest) WithOnSuccess(fn func(ctx context.Context, response HTTPResponse) error) HTTPRequest {
	return r.WithOnComplete(func(ctx context.Context, response HTTPResponse, err error) error {
		if err == nil {
			return fn(ctx, response)
		}
		return err
	})
}

func (r httpRequest) WithOnError(fn func(ctx context.Context, response HTTPResponse, err error) error) HTTPRequest {
	return r.WithOnComplete(func(ctx context.Context, response HTTPResponse, err error) error {
		if err != nil {
			return fn(ctx, response, err)
		}
		return err
	})
}

// Send sends the request by the Sender and invokes the listeners in the registration order.
// Each listener gets the error returned by the previous one.
//
// The listeners are not invoked if the definition is invalid or the ctx is done.
func (r httpRequest) Send(ctx context.Context) (HTTPResponse, any, error) {
	if err := r.DefinitionError(); err != nil {
		return nil, nil, err
	}

	// Stop if context has been cancelled
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Send request
	rawResponse, result, err := r.sender.Send(ctx, r)
	out := &httpResponse{httpRequest: r, rawResponse: rawResponse, result: result, err: err}

	// Invoke listeners
	for _, fn := range r.listeners {
		// Stop if context has been cancelled
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		out.err = fn(ctx, out, out.err)
	}

	return out, out.result, out.err
}

func (r httpRequest) SendOrErr(ctx context.Context) error {
	_, _, err := r.Send(ctx)
	return err
}

func (r httpRequest) withError(err error) httpRequest {
	r.errs = append(r.errs[:len(r.errs):len(r.errs)], err)
	return r
}
