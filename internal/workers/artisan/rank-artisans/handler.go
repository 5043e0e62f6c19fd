// internal/workers/artisan/rank-artisans/handler.go
package rankartisans

import (
	"context"
	"encoding/json"
	"time"

	"artisan-workers/internal/common/errors"
	"artisan-workers/internal/common/logger"
	"artisan-workers/internal/common/metrics"
	"artisan-workers/internal/common/observability"
	"artisan-workers/internal/ranking"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const TaskType = "rank-artisans"

type Handler struct {
	config     *Config
	ranker     *ranking.Ranker
	obs        *observability.Observability
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, ranker *ranking.Ranker, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = observability.Noop()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		ranker:     ranker,
		obs:        obs,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	timer := metrics.StartJob(TaskType)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := errors.NewParseError(err)
		timer.Done(string(stdErr.Code))
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.errHandler.HandleJobError(ctx, client, job, stdErr)
		return
	}

	start := time.Now()
	output, err := h.execute(ctx, &input)
	if err != nil {
		timer.Done(string(errors.AsStandardError(err).Code))
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	timer.Done("")
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	runID := uuid.NewString()
	ctx, span := h.obs.StartSpan(ctx, "ranking.rank",
		attribute.String("ranking.run_id", runID),
		attribute.Int("ranking.candidates", len(input.Candidates)),
	)
	defer span.End()

	page, pageSize := input.Pagination.Page, input.Pagination.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = h.config.DefaultPageSize
	}
	if pageSize < 1 {
		pageSize = ranking.DefaultPageSize
	}

	start := time.Now()
	result, err := h.ranker.Rank(ctx, ranking.Request{
		Candidates: input.Candidates,
		Criteria:   input.Criteria,
		Page:       page,
		PageSize:   pageSize,
		Seed:       input.Seed,
	})
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "distance filter failed")
		return nil, errors.NewDistanceFilterFailedError(err).WithMetadata("runId", runID)
	}

	span.SetAttributes(
		attribute.String("ranking.strategy", result.Strategy),
		attribute.Int("ranking.filtered", result.TotalCount),
		attribute.Int("ranking.featured", result.FeaturedCount),
	)
	metrics.ObserveRanking(result.Strategy, result.TotalCount, result.FeaturedCount)
	h.obs.RecordRanking(ctx, result.Strategy, result.TotalCount)

	output := &Output{
		Artisans:         result.Artisans,
		TotalCount:       result.TotalCount,
		HasRandomPremium: result.HasRandomPremium,
		Page:             page,
		PageSize:         pageSize,
		TotalPages:       ranking.TotalPages(result.TotalCount, pageSize),
		Strategy:         result.Strategy,
		RunID:            runID,
		DurationMs:       elapsed.Milliseconds(),
	}

	fields := map[string]interface{}{
		"runId":      runID,
		"candidates": len(input.Candidates),
		"filtered":   result.TotalCount,
		"featured":   result.FeaturedCount,
		"returned":   len(result.Artisans),
		"strategy":   result.Strategy,
		"page":       page,
		"durationMs": output.DurationMs,
	}
	if h.config.SlowThreshold > 0 && elapsed > h.config.SlowThreshold {
		h.logger.Warn("slow ranking run", fields)
	} else {
		h.logger.Info("ranking completed", fields)
	}

	return output, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
