package trace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"time"

	"github.com/tossapp/apiclient/pkg/client/decode"
	"github.com/tossapp/apiclient/pkg/request"
)

const (
	dumpTraceMaxLength = 2000
	maskedValue        = "*****"
)

// DumpMaskedHeaders are replaced by a placeholder in the dump output.
var DumpMaskedHeaders = []string{"Authorization", "Cookie", "Set-Cookie", "X-CSRF-TOKEN"} //nolint:gochecknoglobals

type dumpTrace struct {
	ClientTrace
	wr io.Writer
}

// DumpTracer dumps HTTP request and response to a writer.
// Values of DumpMaskedHeaders are masked, the body is not, do not use it in production!
func DumpTracer(wr io.Writer) Factory {
	return func(ctx context.Context, _ request.HTTPRequest) (context.Context, *ClientTrace) {
		var requestMethod, requestURI string
		var responseStatusCode int
		var requestDump []byte
		var responseErr error
		var startTime, headersTime time.Time

		t := &dumpTrace{wr: wr}
		t.HTTPRequestStart = func(r *http.Request) {
			startTime = time.Now()
			requestMethod = r.Method
			requestURI = r.URL.RequestURI()
			requestDump = dumpRequest(r)
		}
		t.HTTPRequestDone = func(r *http.Response, err error) {
			// Response can be nil, for example, if some network error occurred
			if r != nil {
				responseStatusCode = r.StatusCode
				headersTime = time.Now()
			}
			responseErr = err

			// Dump request
			t.log()
			t.log(">>>>>> HTTP DUMP")
			t.dump(string(requestDump))

			// Dump response
			t.log("------")
			if err != nil {
				t.log("ERROR: ", err)
			} else {
				t.dumpResponse(r)
			}
			t.log("<<<<<< HTTP DUMP END")
		}
		t.HTTPRequestRetry = func(attempt int, delay time.Duration) {
			t.log()
			t.log(">>>>>> HTTP RETRY", "| ATTEMPT:", attempt, "| DELAY:", delay, "| ", requestMethod, requestURI, responseStatusCode, "| ERROR:", responseErr)
		}
		t.RequestProcessed = func(result any, err error) {
			t.log()
			t.log(">>>>>> HTTP REQUEST PROCESSED", "| ", requestMethod, requestURI, responseStatusCode, "| ERROR:", err, "| HEADERS AT:", headersTime.Sub(startTime), "| DONE AT:", time.Since(startTime))
		}
		return ctx, &t.ClientTrace
	}
}

// dumpRequest temporarily replaces the header by a masked copy.
// The body is read and set back to the request by httputil.DumpRequestOut.
func dumpRequest(r *http.Request) []byte {
	original := r.Header
	r.Header = maskHeader(original)
	defer func() { r.Header = original }()
	out, err := httputil.DumpRequestOut(r, true)
	if err != nil {
		return []byte(fmt.Sprintf("cannot dump request: %s", err))
	}
	return out
}

func (t *dumpTrace) dumpResponse(r *http.Response) {
	// Dump response headers
	original := r.Header
	r.Header = maskHeader(original)
	if v, err := httputil.DumpResponse(r, false); err == nil {
		t.log(strings.TrimSpace(string(v)))
	} else {
		t.log("cannot dump response headers: ", err)
	}
	r.Header = original

	if r.Body == nil {
		return
	}

	// Decode body and copy raw body to rawBody buffer
	var rawBody bytes.Buffer
	var decodedBody strings.Builder
	bodyReader, err := decode.Decode(io.NopCloser(io.TeeReader(r.Body, &rawBody)), r.Header.Get("Content-Encoding"))
	if err != nil {
		t.log("cannot read response body: ", err)
	} else if _, err := io.Copy(&decodedBody, bodyReader); err != nil {
		t.log("cannot read response body: ", err)
	}

	// Set buffered raw body back to the response
	r.Body = io.NopCloser(bytes.NewReader(rawBody.Bytes()))

	// Dump decoded response
	if decodedBody.Len() > 0 {
		t.log("------")
		t.dump(decodedBody.String())
	}
}

func maskHeader(in http.Header) http.Header {
	out := in.Clone()
	if out == nil {
		return nil
	}
	for _, name := range DumpMaskedHeaders {
		if out.Get(name) != "" {
			out.Set(name, maskedValue)
		}
	}
	return out
}

func (t *dumpTrace) dump(body string) {
	body = strings.TrimSpace(body)
	if len(body) > dumpTraceMaxLength && os.Getenv("HTTP_DUMP_TRACE_FULL") != "true" { //nolint:forbidigo
		t.log(body[:dumpTraceMaxLength])
		t.log("... (set env HTTP_DUMP_TRACE_FULL=true to see full output)")
	} else {
		t.log(body)
	}
}

func (t *dumpTrace) log(a ...any) {
	_, _ = fmt.Fprintln(t.wr, a...)
}
