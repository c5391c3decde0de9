package apicall

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricNoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	traceNoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	instrumentationName = "github.com/tossapp/apiclient/pkg/apicall"
	requestSpanName     = "apicall.request"
	meterPrefix         = "apicall.request."
	attrMethod          = attribute.Key("http.method")
	attrTarget          = attribute.Key("apicall.target")
	attrStatusCode      = attribute.Key("http.status_code")
	attrOutcome         = attribute.Key("apicall.outcome")
)

type telemetry struct {
	tracer   trace.Tracer
	inFlight metric.Int64UpDownCounter
	duration metric.Float64Histogram
	outcomes metric.Int64Counter
}

func newTelemetry(tracerProvider trace.TracerProvider, meterProvider metric.MeterProvider) *telemetry {
	if tracerProvider == nil {
		tracerProvider = traceNoop.NewTracerProvider()
	}
	if meterProvider == nil {
		meterProvider = metricNoop.NewMeterProvider()
	}
	meter := meterProvider.Meter(instrumentationName)
	return &telemetry{
		tracer:   tracerProvider.Tracer(instrumentationName),
		inFlight: mustInstrument(meter.Int64UpDownCounter(meterPrefix+"in_flight", metric.WithDescription("API call: in flight requests."))),
		duration: mustInstrument(meter.Float64Histogram(meterPrefix+"duration", metric.WithDescription("API call: duration including handlers."), metric.WithUnit("ms"))),
		outcomes: mustInstrument(meter.Int64Counter(meterPrefix+"outcome", metric.WithDescription("API call: received responses by outcome."))),
	}
}

// start opens the span and the in-flight meter of one Send call.
// The returned function must be called exactly once, response is nil if no response has been received.
func (t *telemetry) start(ctx context.Context, method, target string) (context.Context, func(response *Response, err error)) {
	startTime := time.Now()
	definition := []attribute.KeyValue{attrMethod.String(method), attrTarget.String(target)}
	t.inFlight.Add(ctx, 1, metric.WithAttributes(definition...))

	ctx, span := t.tracer.Start(ctx, requestSpanName, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(definition...))
	return ctx, func(response *Response, err error) {
		elapsedTime := float64(time.Since(startTime)) / float64(time.Millisecond)
		t.inFlight.Add(ctx, -1, metric.WithAttributes(definition...)) // same attributes as above (+1)!

		attrs := definition
		if response != nil {
			responseAttrs := []attribute.KeyValue{attrStatusCode.Int(response.StatusCode()), attrOutcome.String(response.Outcome().String())}
			attrs = append(attrs[:len(attrs):len(attrs)], responseAttrs...)
			t.outcomes.Add(ctx, 1, metric.WithAttributes(attrs...))
			span.SetAttributes(responseAttrs...)
		}
		t.duration.Record(ctx, elapsedTime, metric.WithAttributes(attrs...))

		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case response != nil && response.Outcome() == ServerError:
			span.SetStatus(codes.Error, fmt.Sprintf("server error %d", response.StatusCode()))
		}
		span.End()
	}
}

func mustInstrument[T any](instrument T, err error) T {
	if err != nil {
		panic(err)
	}
	return instrument
}
