package apicall

import (
	"errors"
	"fmt"
)

var errNoCaptchaProvider = errors.New("no captcha provider is configured")

// TransportError is returned by Builder.Send if no HTTP response has been received.
// For example: the server is unreachable, DNS failed, the request timed out or the context has been cancelled.
type TransportError struct {
	Method string
	Target string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf(`transport failure %s "%s": %s`, e.Method, e.Target, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is returned if the response body does not match the shape expected by a Decode handler.
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf(`cannot decode response body (status %d): %s`, e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError is returned if the payload cannot be serialized, the request is not sent.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf(`cannot encode request payload: %s`, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// CaptchaError is returned if a captcha token for a CaptchaProtected payload cannot be obtained, the request is not sent.
type CaptchaError struct {
	Target string
	Err    error
}

func (e *CaptchaError) Error() string {
	return fmt.Sprintf(`cannot obtain captcha token for "%s": %s`, e.Target, e.Err)
}

func (e *CaptchaError) Unwrap() error {
	return e.Err
}
