// Package observability provides OpenTelemetry tracing and metrics for
// process lifecycles.
//
// Nothing is exported unless the application installs providers; until
// then the global no-op providers absorb every span and measurement.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanProcessStart)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewProcessMetrics(observability.Meter("my-service"))
//	metrics.RecordStop(ctx, "process", elapsed, escalated)
package observability
