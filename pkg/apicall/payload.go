package apicall

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/tossapp/apiclient/pkg/request"
)

// json - replacement of the standard encoding/json library.
var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// CaptchaProtected is implemented by a payload which must carry a captcha token.
// The token is obtained from the CaptchaProvider and set before the payload is serialized.
type CaptchaProtected interface {
	SetCaptchaToken(token string)
}

// captchaMarked is implemented by a payload embedding NotARobot, also if it is passed by value.
type captchaMarked interface {
	captchaRequired()
}

// NotARobot can be embedded into a payload struct to make it CaptchaProtected.
// The payload must be passed to Builder.Send as a pointer, otherwise the *CaptchaError is returned.
type NotARobot struct {
	Token string `json:"token"`
}

func (v *NotARobot) SetCaptchaToken(token string) {
	v.Token = token
}

func (NotARobot) captchaRequired() {}

// Form payload is sent as "application/x-www-form-urlencoded".
// Nested values are flattened by the request.ToFormBody function.
type Form map[string]any

// withPayload sets the request body.
//   - nil: empty body
//   - []byte, string: raw body, unmodified
//   - jsoniter.RawMessage: raw JSON body, unmodified
//   - Form: form encoded body
//   - other values: JSON body
func withPayload(req request.HTTPRequest, payload any) (request.HTTPRequest, error) {
	switch v := payload.(type) {
	case nil:
		return req, nil
	case []byte:
		return req.WithBody(v), nil
	case string:
		return req.WithBody(v), nil
	case jsoniter.RawMessage:
		return req.WithBody([]byte(v)).WithContentType("application/json"), nil
	case Form:
		return withFormPayload(req, v)
	default:
		body, err := json.Marshal(v)
		if err != nil {
			return nil, &EncodeError{Err: err}
		}
		return req.WithBody(body).WithContentType("application/json"), nil
	}
}

// withFormPayload converts a panic of request.ToFormBody, caused by an unsupported value, to the *EncodeError.
func withFormPayload(req request.HTTPRequest, form Form) (out request.HTTPRequest, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &EncodeError{Err: fmt.Errorf("%v", r)}
		}
	}()
	return req.WithFormBody(request.ToFormBody(form)), nil
}
