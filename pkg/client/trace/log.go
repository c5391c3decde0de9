package trace

import (
	"context"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tossapp/apiclient/pkg/request"
)

// LogTracer logs each stage of the request to the logger.
// Each request gets a sequential request_id, so retries and redirects can be correlated.
func LogTracer(logger zerolog.Logger) Factory {
	var idGenerator uint64
	return func(ctx context.Context, reqDef request.HTTPRequest) (context.Context, *ClientTrace) {
		log := logger.With().Uint64("request_id", atomic.AddUint64(&idGenerator, 1)).Logger()

		var req *http.Request
		var connStartTime time.Time
		var startTime time.Time
		var doneTime time.Time

		t := &ClientTrace{}
		t.ConnectStart = func(network, addr string) {
			connStartTime = time.Now()
		}
		t.GotConn = func(info httptrace.GotConnInfo) {
			if req == nil {
				return
			}
			e := log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Bool("reused", info.Reused)
			if info.Reused {
				e = e.Bool("was_idle", info.WasIdle).Dur("idle_time", info.IdleTime)
			} else if !connStartTime.IsZero() {
				e = e.Dur("connect", time.Since(connStartTime))
			}
			e.Msg("http connection")
		}
		t.HTTPRequestStart = func(r *http.Request) {
			req = r
			startTime = time.Now()
			log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("http request start")
		}
		t.HTTPRequestDone = func(r *http.Response, err error) {
			doneTime = time.Now()
			e := log.Debug()
			if err != nil {
				e = log.Warn().Err(err)
			} else if r != nil {
				e = e.Int("status", r.StatusCode)
			}
			e.Str("method", req.Method).Str("url", req.URL.String()).Dur("duration", doneTime.Sub(startTime)).Msg("http request done")
		}
		t.HTTPRequestRetry = func(attempt int, delay time.Duration) {
			log.Info().Str("method", req.Method).Str("url", req.URL.String()).Int("attempt", attempt).Dur("delay", delay).Msg("http request retry")
		}
		t.RequestProcessed = func(result any, err error) {
			e := log.Debug()
			if err != nil {
				e = log.Warn().Err(err)
			}
			e = e.Str("method", reqDef.Method()).Str("url", reqDef.URL())
			if !doneTime.IsZero() {
				e = e.Dur("body", time.Since(doneTime))
			}
			e.Msg("http request processed")
		}
		return ctx, t
	}
}
