package ast

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for the Cypress extractor.
var (
	tracer = otel.Tracer("scryo.ast")
	meter  = otel.Meter("scryo.ast")
)

// Metrics for analysis operations.
var (
	analyzeLatency  metric.Float64Histogram
	analyzeTotal    metric.Int64Counter
	recordsEmitted  metric.Int64Histogram
	analyzeFailures metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times;
// a registration failure disables recording but never analysis.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		analyzeLatency, err = meter.Float64Histogram(
			"scryo_analyze_duration_seconds",
			metric.WithDescription("Duration of per-file Cypress extraction"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeTotal, err = meter.Int64Counter(
			"scryo_analyze_total",
			metric.WithDescription("Number of files analyzed"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		recordsEmitted, err = meter.Int64Histogram(
			"scryo_records_emitted",
			metric.WithDescription("Structural records emitted per file"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeFailures, err = meter.Int64Counter(
			"scryo_analyze_failures_total",
			metric.WithDescription("Files that failed analysis"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// recordAnalysis records the outcome of one Analyze call.
func recordAnalysis(ctx context.Context, filePath string, duration time.Duration, records int, err error) {
	if initMetrics() != nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
		analyzeFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("file", filePath),
		))
	}

	attrs := metric.WithAttributes(attribute.String("status", status))
	analyzeLatency.Record(ctx, duration.Seconds(), attrs)
	analyzeTotal.Add(ctx, 1, attrs)
	if err == nil {
		recordsEmitted.Record(ctx, int64(records))
	}
}

// startAnalyzeSpan opens the per-file extraction span.
func startAnalyzeSpan(ctx context.Context, filePath string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Analyzer.Analyze",
		trace.WithAttributes(attribute.String("file", filePath)),
	)
}
