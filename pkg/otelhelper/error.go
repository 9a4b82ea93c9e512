package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError marks a span as a failed action invocation. The attrs carry
// the structured failure details (see ErrorCodeKey) alongside the
// recorded error itself.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent("action_failed", trace.WithAttributes(
		attrs...,
	))
}
