package otelhelper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := StartSpan(context.Background(), provider.Tracer("test"), "twitter.Publish",
		attribute.String(TweetIDKey, "42"))
	SetError(span, errors.New("rate limited"), attribute.String(ActionKey, "tweet"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "twitter.Publish", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "rate limited", spans[0].Status().Description)
	assert.Contains(t, spans[0].Attributes(), attribute.String(TweetIDKey, "42"))

	names := []string{}
	for _, event := range spans[0].Events() {
		names = append(names, event.Name)
	}

	assert.Contains(t, names, "error_occurred")
}

type statusErr struct{ status int }

func (e statusErr) Error() string   { return "vendor failed" }
func (e statusErr) HTTPStatus() int { return e.status }

func TestSetError_StatusAndCancel(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, failed := StartSpan(context.Background(), provider.Tracer("test"), "twitter.Engage")
	SetError(failed, fmt.Errorf("engage: %w", statusErr{status: 429}))
	failed.End()

	_, cancelled := StartSpan(context.Background(), provider.Tracer("test"), "generator.Generate")
	SetError(cancelled, fmt.Errorf("generate: %w", context.Canceled))
	cancelled.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.NotEmpty(t, spans[0].Events())
	assert.Contains(t, spans[0].Events()[len(spans[0].Events())-1].Attributes,
		attribute.Int("http.response.status_code", 429))

	assert.Equal(t, codes.Unset, spans[1].Status().Code)
	require.Len(t, spans[1].Events(), 1)
	assert.Equal(t, "request_cancelled", spans[1].Events()[0].Name)
}

func TestNoopTracer(t *testing.T) {
	ctx, span := StartSpan(context.Background(), NoopTracer(), "noop")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
}
