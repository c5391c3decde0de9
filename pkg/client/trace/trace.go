// Package trace extends the httptrace.ClientTrace and adds additional HTTPRequest hooks.
// A custom ClientTrace definition can be registered in the client.Client by the AndTrace method.
package trace

import (
	"context"
	"net/http"
	"net/http/httptrace"
	"reflect"
	"time"

	"github.com/tossapp/apiclient/pkg/request"
)

// Factory creates ClientTrace hooks for a request.
// It may return a modified context and a nil trace, if the request should not be traced.
type Factory func(ctx context.Context, request request.HTTPRequest) (context.Context, *ClientTrace)

// ClientTrace is a set of hooks to run at various stages of an outgoing HTTPRequest.
type ClientTrace struct {
	httptrace.ClientTrace // native, low level trace
	// HTTPRequestStart is called when the request begins. It includes redirects and retries.
	HTTPRequestStart func(request *http.Request)
	// HTTPRequestDone is called when the request completes. It includes redirects and retries.
	HTTPRequestDone func(response *http.Response, err error)
	// HTTPRequestRetry is called before retry delay.
	HTTPRequestRetry func(attempt int, delay time.Duration)
	// RequestProcessed is called when Client.Send method is done.
	RequestProcessed func(result any, err error)
}

// Compose modifies t such that it respects the previously-registered hooks in old.
// Hooks from old are called first, except the native httptrace hooks, see composeNative.
func (t *ClientTrace) Compose(old *ClientTrace) {
	if old == nil {
		return
	}
	tv := reflect.ValueOf(t).Elem()
	ov := reflect.ValueOf(old).Elem()
	t.ClientTrace = composeNative(t.ClientTrace, old.ClientTrace)
	structType := tv.Type()
	for i := range structType.NumField() {
		tf := tv.Field(i)
		hookType := tf.Type()
		if hookType.Kind() != reflect.Func {
			continue
		}
		of := ov.Field(i)
		if of.IsNil() {
			continue
		}
		if tf.IsNil() {
			tf.Set(of)
			continue
		}

		// Make a copy of tf for tf to call. (Otherwise it
		// creates a recursive call cycle and stack overflows)
		tfCopy := reflect.ValueOf(tf.Interface())

		newFunc := reflect.MakeFunc(hookType, func(args []reflect.Value) []reflect.Value {
			of.Call(args)
			return tfCopy.Call(args)
		})
		tv.Field(i).Set(newFunc)
	}
}

// composeNative merges the low level hooks by the httptrace package itself,
// so the hooks of current are called first, then the hooks of old.
func composeNative(current, old httptrace.ClientTrace) httptrace.ClientTrace {
	ctx := httptrace.WithClientTrace(context.Background(), &old)
	ctx = httptrace.WithClientTrace(ctx, &current)
	if merged := httptrace.ContextClientTrace(ctx); merged != nil {
		return *merged
	}
	return current
}
