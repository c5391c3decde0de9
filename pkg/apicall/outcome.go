package apicall

import "net/http"

// Outcome is the category of a received HTTP status code.
// It is computed once per response by Classify, the dispatch matches on it.
type Outcome int

const (
	// Other covers informational, redirect and non-standard status codes, no handler is invoked.
	Other Outcome = iota
	// Success covers 2xx status codes, the success handler is invoked.
	Success
	// ClientError covers 4xx status codes except 401 and 403, the client-error handler is invoked.
	ClientError
	// Unauthorized covers 401 and 403 status codes, no handler is invoked.
	Unauthorized
	// ServerError covers 5xx status codes, a generic message is announced.
	ServerError
)

// Classify maps the HTTP status code to the Outcome.
func Classify(statusCode int) Outcome {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return Unauthorized
	case statusCode >= 200 && statusCode <= 299:
		return Success
	case statusCode >= 400 && statusCode <= 499:
		return ClientError
	case statusCode >= 500 && statusCode <= 599:
		return ServerError
	default:
		return Other
	}
}

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case ClientError:
		return "client_error"
	case Unauthorized:
		return "unauthorized"
	case ServerError:
		return "server_error"
	default:
		return "other"
	}
}
