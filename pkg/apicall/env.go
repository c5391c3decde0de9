package apicall

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tossapp/apiclient/pkg/request"
)

// CookieReader reads cookies of the current session, see the cookie package.
type CookieReader interface {
	// Cookie returns the value of the first cookie whose name matches.
	Cookie(ctx context.Context, match func(name string) bool) (value string, found bool)
}

// CaptchaProvider obtains a captcha token for the target address, see the captcha package.
type CaptchaProvider interface {
	Token(ctx context.Context, target string) (string, error)
}

// Navigator moves the user to another page, see the navigation package.
type Navigator interface {
	NavigateTo(ctx context.Context, path string) error
}

// MessageSink shows the loading state and status messages to the user, see the message package.
type MessageSink interface {
	Loading()
	LoadingDone()
	Info(text string)
	Error(text string)
}

// Env bundles the collaborators used by a Builder.
// Missing collaborators are replaced by no-op implementations, except Sender, which is required.
type Env struct {
	Sender         request.Sender
	Cookies        CookieReader
	Captcha        CaptchaProvider
	Navigator      Navigator
	Messages       MessageSink
	Logger         zerolog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

func (e Env) withDefaults() Env {
	if e.Cookies == nil {
		e.Cookies = noCookies{}
	}
	if e.Captcha == nil {
		e.Captcha = noCaptcha{}
	}
	if e.Navigator == nil {
		e.Navigator = noNavigation{}
	}
	if e.Messages == nil {
		e.Messages = noMessages{}
	}
	return e
}

type noCookies struct{}

func (noCookies) Cookie(context.Context, func(string) bool) (string, bool) {
	return "", false
}

type noCaptcha struct{}

func (noCaptcha) Token(context.Context, string) (string, error) {
	return "", errNoCaptchaProvider
}

type noNavigation struct{}

func (noNavigation) NavigateTo(context.Context, string) error {
	return nil
}

type noMessages struct{}

func (noMessages) Loading()     {}
func (noMessages) LoadingDone() {}
func (noMessages) Info(string)  {}
func (noMessages) Error(string) {}
