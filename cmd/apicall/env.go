package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/tossapp/apiclient/internal/cliconfig"
	"github.com/tossapp/apiclient/pkg/apicall"
	"github.com/tossapp/apiclient/pkg/captcha"
	"github.com/tossapp/apiclient/pkg/client"
	"github.com/tossapp/apiclient/pkg/client/trace"
	"github.com/tossapp/apiclient/pkg/cookie"
	"github.com/tossapp/apiclient/pkg/message"
	"github.com/tossapp/apiclient/pkg/navigation"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// requestOptions are flags of one API call, they are not part of the config file.
type requestOptions struct {
	data           string
	dataFile       string
	form           []string
	headers        []string
	cookies        []string
	captcha        bool
	successMessage string
	navigate       string
}

// jsonPayload is a free-form JSON object, the captcha token is set as the "token" key.
type jsonPayload map[string]any

func (p jsonPayload) SetCaptchaToken(token string) {
	p["token"] = token
}

func (o requestOptions) payload() (any, error) {
	switch {
	case len(o.form) > 0:
		if o.captcha {
			return nil, fmt.Errorf("captcha can be used only with a JSON payload")
		}
		form := make(apicall.Form)
		for _, field := range o.form {
			key, value, found := strings.Cut(field, "=")
			if !found || key == "" {
				return nil, fmt.Errorf(`form field "%s" must be in the key=value format`, field)
			}
			form[key] = value
		}
		return form, nil
	case o.data != "" || o.dataFile != "":
		data := []byte(o.data)
		if o.dataFile != "" {
			var err error
			if data, err = os.ReadFile(o.dataFile); err != nil {
				return nil, fmt.Errorf("cannot read data file: %w", err)
			}
		}
		if !o.captcha {
			if !json.Valid(data) {
				return nil, fmt.Errorf("data is not a valid JSON")
			}
			// Raw JSON body, sent unmodified
			return jsoniter.RawMessage(data), nil
		}
		payload := make(jsonPayload)
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("data must be a JSON object: %w", err)
		}
		return payload, nil
	case o.captcha:
		return make(jsonPayload), nil
	default:
		return nil, nil
	}
}

func newEnv(cfg cliconfig.Config, opts requestOptions, target string, transport http.RoundTripper, logger zerolog.Logger, stderr io.Writer) (apicall.Env, error) {
	targetURL, err := resolveTarget(cfg.BaseURL, target)
	if err != nil {
		return apicall.Env{}, err
	}

	// Session cookies
	jar, err := cookie.NewJar()
	if err != nil {
		return apicall.Env{}, err
	}
	cookies, err := cookie.ParseDocumentCookie(cfg.Cookies)
	if err != nil {
		return apicall.Env{}, err
	}
	for _, pair := range opts.cookies {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return apicall.Env{}, fmt.Errorf(`cookie "%s" must be in the name=value format`, pair)
		}
		cookies[name] = value
	}
	var jarCookies []*http.Cookie
	for name, value := range cookies {
		jarCookies = append(jarCookies, &http.Cookie{Name: name, Value: value})
	}
	jar.SetCookies(targetURL, jarCookies)
	cookieReader, err := cookie.NewJarReader(jar, targetURL.String())
	if err != nil {
		return apicall.Env{}, err
	}

	// HTTP client
	retry := client.NoRetry()
	retry.TotalRequestTimeout = cfg.Timeout
	c := client.New().WithRetry(retry)
	switch {
	case transport != nil:
		c = c.WithTransport(transport)
	case cfg.HTTP2:
		c = c.WithTransport(client.HTTP2Transport())
	}
	if cfg.BaseURL != "" {
		c = c.WithBaseURL(cfg.BaseURL)
	}
	if cfg.UserAgent != "" {
		c = c.WithUserAgent(cfg.UserAgent)
	}
	if cfg.Verbose {
		c = c.AndTrace(trace.LogTracer(logger))
	}
	if cfg.Dump {
		c = c.AndTrace(trace.DumpTracer(stderr))
	}

	// Captcha provider, the session cookies are not sent to the token endpoint
	var captchaProvider apicall.CaptchaProvider
	switch {
	case cfg.CaptchaURL != "":
		captchaProvider = captcha.NewRemote(c, cfg.CaptchaURL)
	case cfg.CaptchaToken != "":
		captchaProvider = captcha.Static(cfg.CaptchaToken)
	}

	if header := cookieHeader(jar.Cookies(targetURL)); header != "" {
		c = c.WithHeader("Cookie", header)
	}

	return apicall.Env{
		Sender:    c,
		Cookies:   cookieReader,
		Captcha:   captchaProvider,
		Messages:  message.NewLogSink(logger),
		Navigator: navigation.Func(func(_ context.Context, path string) error {
			logger.Info().Str("path", path).Msg("navigate")
			return nil
		}),
		Logger: logger,
	}, nil
}

// resolveTarget returns the absolute URL of the target, the cookies are scoped to it.
func resolveTarget(baseURL, target string) (*url.URL, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf(`target "%s" is not valid: %w`, target, err)
	}
	if u.IsAbs() {
		return u, nil
	}
	if baseURL == "" {
		return nil, fmt.Errorf(`target "%s" is relative, base-url must be set`, target)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf(`base url "%s" is not valid: %w`, baseURL, err)
	}
	base.Path = strings.TrimRight(base.Path, "/") + "/"
	return base.Parse(strings.TrimLeft(target, "/"))
}

func cookieHeader(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}
