// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	otelScope = "go-storage-sync/service"

	metricOperations = "storage_sync.operations"
	metricFailures   = "storage_sync.operation_failures"
	metricConflicts  = "storage_sync.manifest_conflicts"
	metricUploaded   = "storage_sync.items_uploaded"
	metricMerged     = "storage_sync.items_merged"
)

// syncTelemetry holds the tracer and counters of the sync engine. Without a
// configured provider every instrument is a no-op.
type syncTelemetry struct {
	tracer       trace.Tracer
	cntOps       metric.Int64Counter
	cntFailures  metric.Int64Counter
	cntConflicts metric.Int64Counter
	cntUploaded  metric.Int64Counter
	cntMerged    metric.Int64Counter
}

func newSyncTelemetry() *syncTelemetry {
	meter := otel.Meter(otelScope)

	mustCounter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			otel.Handle(err)
			return noop.Int64Counter{}
		}
		return c
	}

	return &syncTelemetry{
		tracer:       otel.Tracer(otelScope),
		cntOps:       mustCounter(metricOperations, "Number of sync operations run"),
		cntFailures:  mustCounter(metricFailures, "Number of sync operations that failed after retries"),
		cntConflicts: mustCounter(metricConflicts, "Number of manifest writes rejected for a version conflict"),
		cntUploaded:  mustCounter(metricUploaded, "Number of records uploaded"),
		cntMerged:    mustCounter(metricMerged, "Number of remote records merged"),
	}
}

// start opens the span of one sync operation.
func (t *syncTelemetry) start(ctx context.Context, operation string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "storage_sync."+operation,
		trace.WithAttributes(attribute.String("operation", operation)))
}

// finish records the outcome of one sync operation and ends span.
func (t *syncTelemetry) finish(ctx context.Context, span trace.Span, operation string, err error) {
	attrs := metric.WithAttributes(attribute.String("operation", operation))
	t.cntOps.Add(ctx, 1, attrs)
	if err != nil {
		t.cntFailures.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
