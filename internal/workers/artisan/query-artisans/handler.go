// internal/workers/artisan/query-artisans/handler.go
package queryartisans

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"artisan-workers/internal/common/errors"
	"artisan-workers/internal/common/logger"
	"artisan-workers/internal/common/metrics"
	"artisan-workers/internal/models"
	"artisan-workers/internal/workers/artisan/query-artisans/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "query-artisans"

type Handler struct {
	config     *Config
	source     queries.Source
	cache      *queries.Cache
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

// NewHandler wires a candidate source. cache may be nil.
func NewHandler(config *Config, source queries.Source, cache *queries.Cache, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		source:     source,
		cache:      cache,
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
		h.errHandler.HandleJobError(ctx, client, job, stdErr)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		timer.Done(string(errors.AsStandardError(err).Code))
		// The job context may be spent after a timeout.
		h.errHandler.HandleJobError(context.Background(), client, job, err)
		return
	}

	timer.Done("")
	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	limit := h.config.Limit
	if input.Limit > 0 && input.Limit < limit {
		limit = input.Limit
	}

	start := time.Now()

	var (
		candidates []models.Candidate
		cached     bool
		err        error
	)
	if h.cache != nil {
		candidates, cached, err = h.cache.Load(ctx, h.source, limit)
	} else {
		candidates, err = h.source.Load(ctx, limit)
	}
	if err != nil {
		return nil, h.mapError(ctx, err)
	}

	output := &Output{
		Candidates:     candidates,
		CandidateCount: len(candidates),
		Source:         h.source.Name(),
		Cached:         cached,
		QueryTimeMs:    time.Since(start).Milliseconds(),
	}

	h.logger.Info("candidates loaded", map[string]interface{}{
		"source":      output.Source,
		"count":       output.CandidateCount,
		"limit":       limit,
		"cached":      cached,
		"queryTimeMs": output.QueryTimeMs,
	})

	return output, nil
}

func (h *Handler) mapError(ctx context.Context, err error) error {
	switch {
	case stderrors.Is(ctx.Err(), context.DeadlineExceeded), stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewCandidateQueryTimeoutError(h.source.Name())
	case stderrors.Is(err, queries.ErrIndexNotFound):
		return errors.NewCandidateIndexNotFoundError(h.config.Index)
	default:
		return errors.NewCandidateQueryFailedError(h.source.Name(), err)
	}
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
