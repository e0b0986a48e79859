// Package telemetry wires the module's OTel tracer and metric instruments.
// It uses the global OTel providers, which default to no-ops, so spans and
// counters are free until a real exporter is installed.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// RetryMaxElapsed bounds how long the db package's backoff wrapper keeps
// retrying a transient SQLITE_BUSY/SQLITE_LOCKED condition.
const RetryMaxElapsed = 5 * time.Second

var tracer = otel.Tracer("github.com/nexus-kg/nexus")

var instruments struct {
	retryCount metric.Int64Counter
}

func init() {
	m := otel.Meter("github.com/nexus-kg/nexus")
	instruments.retryCount, _ = m.Int64Counter("nexus.db.retry_count",
		metric.WithDescription("storage operations retried after a transient busy/locked error"),
		metric.WithUnit("{retry}"),
	)
}

// StartSpan begins a client-kind span for a storage operation. statement is
// truncated so spans stay readable; pass "" when there is no single query to
// attribute (e.g. BeginTx).
func StartSpan(ctx context.Context, name, statement string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("db.system", "sqlite")}
	if statement != "" {
		attrs = append(attrs, attribute.String("db.statement", truncate(statement, 300)))
	}
	return tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

// EndSpan records err (if any) onto span and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// RecordRetry increments the retry counter by n.
func RecordRetry(ctx context.Context, n int64) {
	instruments.retryCount.Add(ctx, n)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
