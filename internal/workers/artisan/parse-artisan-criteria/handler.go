// internal/workers/artisan/parse-artisan-criteria/handler.go
package parseartisancriteria

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"artisan-workers/internal/common/errors"
	"artisan-workers/internal/common/logger"
	"artisan-workers/internal/common/metrics"
	"artisan-workers/internal/common/validation"
	"artisan-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "parse-artisan-criteria"

var schema = validation.MustCompile(criteriaSchema)

type Handler struct {
	config     *Config
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
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
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	timer.Done("")
	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.RawCriteria == nil {
		input.RawCriteria = map[string]interface{}{}
	}

	if err := validate(input.RawCriteria); err != nil {
		return nil, err
	}

	raw, err := decode(input.RawCriteria)
	if err != nil {
		return nil, errors.NewInvalidSearchCriteriaError(err.Error())
	}

	criteria := models.Criteria{
		LocationSearch:     strings.TrimSpace(raw.LocationSearch),
		PrestationSearch:   strings.TrimSpace(raw.PrestationSearch),
		SelectedPrestation: strings.TrimSpace(raw.SelectedPrestation),
	}
	if raw.SelectedLocation != nil {
		loc := *raw.SelectedLocation
		loc.Name = strings.TrimSpace(loc.Name)
		criteria.SelectedLocation = &loc
	}

	resolved := false
	if criteria.SelectedPrestation == "" && criteria.PrestationSearch != "" {
		if name, ok := h.config.Catalog.Resolve(criteria.PrestationSearch); ok {
			criteria.SelectedPrestation = name
			resolved = true
		}
	}

	output := &Output{
		Criteria:           criteria,
		Pagination:         h.pagination(raw.Page, raw.PageSize),
		Seed:               raw.Seed,
		ResolvedPrestation: resolved,
	}

	h.logger.Info("criteria parsed", map[string]interface{}{
		"locationSearch":     criteria.LocationSearch,
		"hasSelectedPoint":   criteria.SelectedLocation != nil,
		"service":            criteria.ServiceTerm(),
		"resolvedPrestation": resolved,
		"page":               output.Pagination.Page,
		"pageSize":           output.Pagination.PageSize,
	})

	return output, nil
}

func (h *Handler) pagination(page, pageSize int) models.Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = h.config.DefaultPageSize
	}
	if h.config.MaxPageSize > 0 && pageSize > h.config.MaxPageSize {
		pageSize = h.config.MaxPageSize
	}
	return models.Pagination{Page: page, PageSize: pageSize}
}

func validate(raw map[string]interface{}) error {
	result, err := schema.ValidateInput(raw)
	if err != nil {
		return errors.NewInvalidSearchCriteriaError(fmt.Sprintf("validation error: %v", err))
	}

	if !result.Valid {
		return errors.NewInvalidSearchCriteriaError(strings.Join(result.GetErrorMessages(), "; "))
	}

	return nil
}

func decode(raw map[string]interface{}) (*rawCriteria, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var out rawCriteria
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
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
