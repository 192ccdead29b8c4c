package tasks

import (
	"time"

	"github.com/hibiken/asynq"
)

const TypeVerificationSweep = "verification:sweep"

// NewVerificationSweepTask builds the periodic code cleanup task. At most one
// sweep is queued at a time.
func NewVerificationSweepTask() (*asynq.Task, []asynq.Option) {
	task := asynq.NewTask(TypeVerificationSweep, nil)
	opts := []asynq.Option{
		asynq.Unique(5 * time.Minute),
		asynq.MaxRetry(1),
		asynq.Timeout(time.Minute),
	}
	return task, opts
}
