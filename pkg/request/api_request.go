package request

import (
	"context"
	"errors"
)

// APIRequest with response mapped to the generic type R.
//
// It is used for a call composed of more HTTP requests,
// for example a captcha token request followed by the protected request.
type APIRequest[R Result] interface {
	// WithBefore method registers callback to be executed before the first request.
	// If an error is returned, no request is sent.
	WithBefore(func(ctx context.Context) error) APIRequest[R]
	// WithOnComplete method registers callback to be executed when all requests are completed or one failed.
	WithOnComplete(func(ctx context.Context, result R, err error) error) APIRequest[R]
	// WithOnSuccess method registers callback to be executed when all requests are completed without error.
	WithOnSuccess(func(ctx context.Context, result R) error) APIRequest[R]
	// WithOnError method registers callback to be executed when a request failed.
	WithOnError(func(ctx context.Context, err error) error) APIRequest[R]
	// Send sends the requests one by one, sending stops at the first error.
	Send(ctx context.Context) (result R, err error)
	SendOrErr(ctx context.Context) error
}

// NewAPIRequest creates an API request with the result mapped to the R type.
// It is composed of one or multiple Sendable (HTTPRequest or APIRequest), the result is filled by them.
// If no request is provided, Send returns an error, see NewNoOperationAPIRequest.
func NewAPIRequest[R Result](result R, requests ...Sendable) APIRequest[R] {
	if len(requests) == 0 {
		requests = []Sendable{NewReqDefinitionError(errors.New("at least one request must be provided"))}
	}
	return apiRequest[R]{requests: requests, result: result}
}

// NewNoOperationAPIRequest returns an APIRequest that immediately returns the result, no request is sent.
// The listeners are invoked as usual.
func NewNoOperationAPIRequest[R Result](result R) APIRequest[R] {
	return apiRequest[R]{result: result}
}

type apiRequest[R Result] struct {
	requests []Sendable
	before   []func(ctx context.Context) error
	after    []func(ctx context.Context, result R, err error) error
	result   R
}

func (r apiRequest[R]) WithBefore(fn func(ctx context.Context) error) APIRequest[R] {
	r.before = append(r.before[:len(r.before):len(r.before)], fn)
	return r
}

func (r apiRequest[R]) WithOnComplete(fn func(ctx context.Context, result R, err error) error) APIRequest[R] {
	r.after = append(r.after[:len(r.after):len(r.after)], fn)
	return r
}

func (r apiRequest[R]) WithOnSuccess(fn func(ctx context.Context, result R) error) APIRequest[R] {
	return r.WithOnComplete(func(ctx context.Context, result R, err error) error {
		if err != nil {
			return err
		}
		return fn(ctx, result)
	})
}

func (r apiRequest[R]) WithOnError(fn func(ctx context.Context, err error) error) APIRequest[R] {
	return r.WithOnComplete(func(ctx context.Context, _ R, err error) error {
		if err == nil {
			return nil
		}
		return fn(ctx, err)
	})
}

func (r apiRequest[R]) Send(ctx context.Context) (R, error) {
	if err := r.send(ctx); err != nil {
		return r.result, err
	}
	return r.result, nil
}

func (r apiRequest[R]) SendOrErr(ctx context.Context) error {
	return r.send(ctx)
}

func (r apiRequest[R]) send(ctx context.Context) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, fn := range r.before {
		if err := fn(ctx); err != nil {
			return err
		}
	}

	for _, request := range r.requests {
		if err = ctx.Err(); err != nil {
			break
		}
		if err = request.SendOrErr(ctx); err != nil {
			break
		}
	}

	// The listeners are skipped, if the context has been cancelled meanwhile
	for _, fn := range r.after {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn(ctx, r.result, err)
	}
	return err
}
