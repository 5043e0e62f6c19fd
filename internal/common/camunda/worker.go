// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"artisan-workers/internal/common/config"
	"artisan-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// HandlerFunc processes one activated job and reports the outcome to the broker itself.
type HandlerFunc = worker.JobHandler

// JobWorker is the subset of the Zeebe worker used here.
type JobWorker interface {
	Close()
	AwaitClose()
}

// Worker is an open job subscription for one task type.
type Worker struct {
	worker   JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. It does not close the shared client on Stop.
func NewWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler HandlerFunc, log logger.Logger) *Worker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})

	return &Worker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

// TaskType returns the job type this worker subscribes to.
func (w *Worker) TaskType() string {
	return w.taskType
}

// Stop closes the subscription and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}
