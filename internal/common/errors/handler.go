// internal/common/errors/handler.go
package errors

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler handles job errors with standardized error handling
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError fails the job with retries for transient errors and throws
// a BPMN error otherwise.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := AsStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logError(job, stdErr, bpmnErr)

	if retries, retry := RetryDecision(stdErr, job.Retries); retry {
		h.failJobWithRetries(ctx, client, job, bpmnErr, retries)
	} else {
		h.throwBPMNError(ctx, client, job, bpmnErr)
	}
}

// RetryDecision returns the retries left after this failure and whether the
// job should be failed (true) rather than thrown to the process (false).
// remaining is the job's current retry budget as reported by the broker.
func RetryDecision(stdErr *StandardError, remaining int32) (int32, bool) {
	if !stdErr.Retryable {
		return 0, false
	}
	maxRetries := int32(GetRetryCount(stdErr.Code))
	if maxRetries == 0 || remaining <= 1 {
		return 0, false
	}
	return min(remaining-1, maxRetries), true
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int32) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(bpmnErr.Message)

	if cmdWithVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables()); err == nil {
		h.send(ctx, job, cmdWithVars.Send)
		return
	}

	h.send(ctx, job, cmd.Send)
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if cmdWithVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables()); err == nil {
		h.sendThrow(ctx, job, cmdWithVars.Send)
		return
	}

	h.sendThrow(ctx, job, cmd.Send)
}

func (h *ErrorHandler) send(ctx context.Context, job entities.Job, send func(context.Context) (*pb.FailJobResponse, error)) {
	if _, err := send(ctx); err != nil {
		h.logger.Error("failed to send fail job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *ErrorHandler) sendThrow(ctx context.Context, job entities.Job, send func(context.Context) (*pb.ThrowErrorResponse, error)) {
	if _, err := send(ctx); err != nil {
		h.logger.Error("failed to send throw error command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retries":          GetRetryCount(stdErr.Code),
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
