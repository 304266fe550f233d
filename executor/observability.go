package executor

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// executorMetrics holds the OpenTelemetry instruments recorded once per
// run. They are created lazily the first time a Meter is configured.
type executorMetrics struct {
	runDuration  metric.Float64Histogram
	runItemCount metric.Int64Histogram
}

func initExecutorMetrics(meter metric.Meter) (*executorMetrics, error) {
	if meter == nil {
		return nil, nil
	}

	m := &executorMetrics{}
	var err error

	m.runDuration, err = meter.Float64Histogram(
		"apt.executor.run.duration",
		metric.WithDescription("Wall-clock duration of an executor run in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create run duration histogram: %w", err)
	}

	m.runItemCount, err = meter.Int64Histogram(
		"apt.executor.run.items",
		metric.WithDescription("Number of test results produced by an executor run"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create run item count histogram: %w", err)
	}

	return m, nil
}

// startRunSpan opens a span for a single Run call. If tracer is nil, it
// returns a no-op span and the original context.
func startRunSpan(ctx context.Context, tracer trace.Tracer, strategy Strategy, planSize int) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("executor")
	}
	ctx, span := tracer.Start(ctx, "executor.run", trace.WithAttributes(
		attribute.String("apt.strategy", string(strategy)),
		attribute.Int("apt.plan_size", planSize),
	))
	return ctx, span
}

// finishRunSpan records the run's outcome on span and, if metrics is
// non-nil, records the run's duration and item count.
func finishRunSpan(span trace.Span, metrics *executorMetrics, durationMs float64, itemCount int, runErr error) {
	defer span.End()

	if runErr != nil {
		span.SetStatus(codes.Error, runErr.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.Int("apt.result_count", itemCount))

	if metrics == nil {
		return
	}
	if metrics.runDuration != nil {
		metrics.runDuration.Record(context.Background(), durationMs)
	}
	if metrics.runItemCount != nil {
		metrics.runItemCount.Record(context.Background(), int64(itemCount))
	}
}
