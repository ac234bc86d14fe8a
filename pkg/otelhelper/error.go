package otelhelper

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// StatusError is implemented by vendor errors that carry an HTTP status.
type StatusError interface {
	HTTPStatus() int
}

// SetError marks the span failed and records err on it. A cancelled caller
// is recorded as an event only, so aborted requests do not count as vendor
// failures.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if errors.Is(err, context.Canceled) {
		span.AddEvent("request_cancelled", trace.WithAttributes(attrs...))

		return
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		attrs = append(attrs, semconv.HTTPResponseStatusCodeKey.Int(statusErr.HTTPStatus()))
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent("error_occurred", trace.WithAttributes(
		attrs...,
	))
}
