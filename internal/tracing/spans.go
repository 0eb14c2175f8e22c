package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrOpID       = "recents.op.id"
	AttrOpName     = "recents.op.name"
	AttrRecordPath = "recents.record.path"
	AttrFilePath   = "recents.file.path"
	AttrEntries    = "recents.entries"
	AttrDropped    = "recents.dropped"
	AttrErrorKind  = "error.kind"
)

// SpanPrefix is prepended to every registry span name.
const SpanPrefix = "recents."

// Span event names.
const (
	EventLockAcquired = "lock.acquired"
	EventLoaded       = "record.loaded"
	EventCleaned      = "record.cleaned"
	EventPersisted    = "record.persisted"
	EventFileIO       = "file.io"
)

// Start opens a span named SpanPrefix+op. A nil tracer yields a
// non-recording span that is not attached to ctx.
func Start(ctx context.Context, tracer trace.Tracer, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return tracer.Start(ctx, SpanPrefix+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(append(attrs, attribute.String(AttrOpName, op))...),
	)
}

// End marks the span OK or records err on it, then ends it.
func End(span trace.Span, err error, kind string) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if kind != "" {
			span.SetAttributes(attribute.String(AttrErrorKind, kind))
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
