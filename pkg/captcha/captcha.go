// Package captcha provides implementations of the apicall.CaptchaProvider interface.
package captcha

import (
	"context"
	"errors"
	"fmt"

	"github.com/tossapp/apiclient/pkg/request"
)

// Static always returns the same token.
type Static string

func (s Static) Token(_ context.Context, _ string) (string, error) {
	if s == "" {
		return "", errors.New("captcha token is empty")
	}
	return string(s), nil
}

// Func adapts a function to the apicall.CaptchaProvider interface.
type Func func(ctx context.Context, target string) (string, error)

func (f Func) Token(ctx context.Context, target string) (string, error) {
	return f(ctx, target)
}

// Remote obtains tokens from a token endpoint.
//
// The endpoint receives {"action": "<target>"} and must respond with {"token": "<token>"}.
type Remote struct {
	sender   request.Sender
	tokenURL string
}

type tokenRequest struct {
	Action string `json:"action"`
}

// TokenResponse is the body returned by the token endpoint.
type TokenResponse struct {
	Token string `json:"token"`
}

func NewRemote(sender request.Sender, tokenURL string) Remote {
	return Remote{sender: sender, tokenURL: tokenURL}
}

func (r Remote) Token(ctx context.Context, target string) (string, error) {
	result, err := r.TokenRequest(target).Send(ctx)
	if err != nil {
		return "", err
	}
	return result.Token, nil
}

// TokenRequest returns the request for the target token, so it can be composed with other requests.
func (r Remote) TokenRequest(target string) request.APIRequest[*TokenResponse] {
	result := &TokenResponse{}
	req := request.NewHTTPRequest(r.sender).
		WithPost(r.tokenURL).
		WithJSONBody(tokenRequest{Action: target}).
		WithResult(result)
	return request.NewAPIRequest(result, req).
		WithOnComplete(func(ctx context.Context, result *TokenResponse, err error) error {
			if err != nil {
				return fmt.Errorf(`captcha endpoint failed: %w`, err)
			}
			if result.Token == "" {
				return errors.New("captcha endpoint returned an empty token")
			}
			return nil
		})
}
