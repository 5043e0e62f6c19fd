package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

// RecordRanking counts one ranking run and the size of its filtered set.
func (o *Observability) RecordRanking(ctx context.Context, strategy string, filtered int) {
	if o.rankingCounter != nil {
		o.rankingCounter.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("strategy", strategy)))
	}
	if o.filteredHist != nil {
		o.filteredHist.Record(ctx, int64(filtered), otelmetric.WithAttributes(attribute.String("strategy", strategy)))
	}
}
