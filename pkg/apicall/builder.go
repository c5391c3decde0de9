// Package apicall provides Builder, which sends one HTTP request to a target address
// and dispatches the response to the handler registered for its Outcome.
//
// The builder shows the loading state and error messages through the MessageSink,
// attaches the CSRF token read from the CookieReader and fills the captcha token of a CaptchaProtected payload.
//
// Example:
//
//	err := apicall.New(env, "/api/users").
//		OnSuccessNotify("User has been created.", "/users").
//		OnClientError(apicall.Decode(func(ctx context.Context, v ValidationErrors) error {
//			return form.ShowErrors(v)
//		})).
//		Post(ctx, &user)
package apicall

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/tossapp/apiclient/pkg/request"
)

const (
	// CSRFCookieName is the cookie with the anti-forgery token.
	CSRFCookieName = "CSRF-TOKEN"
	// CSRFHeaderName is the request header the anti-forgery token is sent in.
	CSRFHeaderName = "X-CSRF-TOKEN"
	// ConnectionErrorMessage is announced if no HTTP response has been received.
	ConnectionErrorMessage = "Connection error, server is down or you are not connected to the same network."
	// ServerErrorMessage is announced on a 5xx response.
	ServerErrorMessage = "A server error occured, sorry"
)

// Builder is an immutable definition of one API call.
// Each With*, And* and On* method returns a modified copy.
//
// Invalid definition does not panic, the error is returned by the Send method.
type Builder struct {
	env           Env
	telemetry     *telemetry
	target        string
	header        http.Header
	onSuccess     Handler
	onClientError Handler
	errs          []error
}

// New creates Builder for the target address.
// The target may be relative, if the Env.Sender resolves it against a base URL.
func New(env Env, target string) Builder {
	b := Builder{
		env:       env.withDefaults(),
		telemetry: newTelemetry(env.TracerProvider, env.MeterProvider),
		target:    target,
		header:    make(http.Header),
	}
	if env.Sender == nil {
		b = b.withError(errors.New("sender is not set"))
	}
	if target == "" {
		b = b.withError(errors.New("target cannot be empty"))
	} else if _, err := url.Parse(target); err != nil {
		b = b.withError(fmt.Errorf(`target "%s" is not valid: %w`, target, err))
	}
	return b
}

// Target returns the target address.
func (b Builder) Target() string {
	return b.target
}

// Header returns a copy of the configured headers.
func (b Builder) Header() http.Header {
	return b.header.Clone()
}

// AndHeader sets a header sent with the request.
// Each key holds a single value, the previous value of the key is replaced.
func (b Builder) AndHeader(key, value string) Builder {
	if key == "" {
		return b.withError(fmt.Errorf(`header key cannot be empty, value "%s"`, value))
	}
	b.header = b.header.Clone()
	b.header.Set(key, value)
	return b
}

// OnSuccess registers the handler for 2xx responses, the previous one is replaced.
func (b Builder) OnSuccess(h Handler) Builder {
	b.onSuccess = h
	return b
}

// OnClientError registers the handler for 4xx responses, except 401 and 403, the previous one is replaced.
func (b Builder) OnClientError(h Handler) Builder {
	b.onClientError = h
	return b
}

// OnSuccessNotify registers a success handler, which shows the info message and then navigates to the path.
// Empty message or path is skipped.
func (b Builder) OnSuccessNotify(message, navigateTo string) Builder {
	return b.OnSuccess(Notify(b.env.Messages, b.env.Navigator, message, navigateTo))
}

// OnClientErrorNotify registers a client-error handler, which shows the info message and then navigates to the path.
// Empty message or path is skipped.
func (b Builder) OnClientErrorNotify(message, navigateTo string) Builder {
	return b.OnClientError(Notify(b.env.Messages, b.env.Navigator, message, navigateTo))
}

func (b Builder) Get(ctx context.Context) error {
	return b.Send(ctx, http.MethodGet, nil)
}

func (b Builder) Post(ctx context.Context, payload any) error {
	return b.Send(ctx, http.MethodPost, payload)
}

func (b Builder) Put(ctx context.Context, payload any) error {
	return b.Send(ctx, http.MethodPut, payload)
}

func (b Builder) Delete(ctx context.Context) error {
	return b.Send(ctx, http.MethodDelete, nil)
}

// Send sends the request and dispatches the response by its Outcome:
//   - Success: the OnSuccess handler is invoked, if any.
//   - ClientError: the OnClientError handler is invoked, if any.
//   - Unauthorized: nothing happens.
//   - ServerError: ServerErrorMessage is announced, no error is returned.
//   - Other: nothing happens.
//
// If no HTTP response is received, ConnectionErrorMessage is announced and the *TransportError is returned.
// Cancellation of the ctx is not announced.
// Loading state is announced before the request and cleared on every exit path.
func (b Builder) Send(ctx context.Context, method string, payload any) (err error) {
	method = strings.ToUpper(method)
	if method == "" {
		b = b.withError(errors.New("method cannot be empty"))
	}
	if err := b.definitionError(); err != nil {
		return err
	}

	env := b.env
	logger := env.Logger.With().Str("method", method).Str("target", b.target).Logger()

	var response *Response
	ctx, done := b.telemetry.start(ctx, method, b.target)
	defer func() {
		done(response, err)
	}()

	// Fill captcha token before the payload is serialized
	if err := b.fillCaptchaToken(ctx, payload); err != nil {
		return err
	}

	env.Messages.Loading()
	defer env.Messages.LoadingDone()

	// Define request
	req := request.NewHTTPRequest(env.Sender).WithMethod(method).WithURL(b.target)
	for key := range b.header {
		req = req.AndHeader(key, b.header.Get(key))
	}
	if token, found := env.Cookies.Cookie(ctx, func(name string) bool { return name == CSRFCookieName }); found {
		req = req.AndHeader(CSRFHeaderName, token)
	}
	req, err = withPayload(req, payload)
	if err != nil {
		return err
	}
	if err := req.DefinitionError(); err != nil {
		return fmt.Errorf("invalid api call definition: %w", err)
	}

	// Send request, the body is loaded for each status code
	var body []byte
	res, _, sendErr := req.WithResult(&body).Send(ctx)
	if res == nil || !res.HasResponse() {
		if sendErr == nil {
			sendErr = errors.New("no response received")
		}
		if errors.Is(sendErr, context.Canceled) {
			logger.Debug().Err(sendErr).Msg("api call cancelled")
		} else {
			logger.Warn().Err(sendErr).Msg("api call failed")
			env.Messages.Error(ConnectionErrorMessage)
		}
		return &TransportError{Method: method, Target: b.target, Err: sendErr}
	}

	// Dispatch by outcome, the status error of the sender is replaced by the outcome
	response = &Response{raw: res.RawResponse(), body: body, outcome: Classify(res.StatusCode())}
	logger.Debug().Int("status", response.StatusCode()).Str("outcome", response.Outcome().String()).Msg("api call dispatched")
	switch response.Outcome() {
	case Success:
		if b.onSuccess != nil {
			return b.onSuccess(ctx, *response)
		}
	case ClientError:
		if b.onClientError != nil {
			return b.onClientError(ctx, *response)
		}
	case Unauthorized:
		// no hook, authorization is handled outside the call
	case ServerError:
		env.Messages.Error(ServerErrorMessage)
	case Other:
	}
	return nil
}

func (b Builder) fillCaptchaToken(ctx context.Context, payload any) error {
	v, ok := payload.(CaptchaProtected)
	if !ok {
		if _, marked := payload.(captchaMarked); marked {
			return &CaptchaError{Target: b.target, Err: errors.New("captcha-protected payload must be passed by pointer")}
		}
		return nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return &CaptchaError{Target: b.target, Err: errors.New("captcha-protected payload is nil")}
	}
	token, err := b.env.Captcha.Token(ctx, b.target)
	if err != nil {
		return &CaptchaError{Target: b.target, Err: err}
	}
	v.SetCaptchaToken(token)
	return nil
}

func (b Builder) withError(err error) Builder {
	b.errs = append(b.errs[:len(b.errs):len(b.errs)], err)
	return b
}

func (b Builder) definitionError() error {
	if len(b.errs) == 0 {
		return nil
	}
	var merr *multierror.Error
	merr = multierror.Append(merr, b.errs...)
	return fmt.Errorf("invalid api call definition: %w", merr)
}
