package apicall

import (
	"context"
	"net/http"
)

// Handler is invoked with the received response, if the response Outcome matches the category
// the handler has been registered for. The returned error is returned by Builder.Send.
type Handler func(ctx context.Context, response Response) error

// Response is a received HTTP response with the body loaded.
type Response struct {
	raw     *http.Response
	body    []byte
	outcome Outcome
}

func (r Response) StatusCode() int {
	return r.raw.StatusCode
}

func (r Response) Header() http.Header {
	return r.raw.Header
}

// Body returns the decoded response body, it is empty for "204 No Content".
func (r Response) Body() []byte {
	return r.body
}

func (r Response) Outcome() Outcome {
	return r.outcome
}

func (r Response) RawResponse() *http.Response {
	return r.raw
}

// Ignore creates a Handler which does not read the response body.
func Ignore(fn func(ctx context.Context) error) Handler {
	return func(ctx context.Context, _ Response) error {
		return fn(ctx)
	}
}

// Decode creates a Handler which decodes the JSON response body to the T type.
// If the body cannot be decoded, the *DecodeError is returned and fn is not called.
func Decode[T any](fn func(ctx context.Context, value T) error) Handler {
	return func(ctx context.Context, response Response) error {
		var value T
		if err := json.Unmarshal(response.Body(), &value); err != nil {
			return &DecodeError{StatusCode: response.StatusCode(), Err: err}
		}
		return fn(ctx, value)
	}
}

// Notify creates a Handler which shows the info message and then navigates to the path.
// Empty message or path is skipped.
func Notify(messages MessageSink, navigator Navigator, message, navigateTo string) Handler {
	return func(ctx context.Context, _ Response) error {
		if message != "" {
			messages.Info(message)
		}
		if navigateTo != "" {
			return navigator.NavigateTo(ctx, navigateTo)
		}
		return nil
	}
}

// Chain creates a Handler which invokes the handlers one by one, it stops at the first error.
// Nil handlers are skipped.
func Chain(handlers ...Handler) Handler {
	return func(ctx context.Context, response Response) error {
		for _, h := range handlers {
			if h == nil {
				continue
			}
			if err := h(ctx, response); err != nil {
				return err
			}
		}
		return nil
	}
}
