package cron

import (
	"context"
	"fmt"
	"time"

	"venuebook/config"
	"venuebook/services/tasks"
	"venuebook/services/verification"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Sweeper is the part of the verification service the worker drives.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

var _ Sweeper = (verification.VerificationService)(nil)

// Worker runs the asynq scheduler that enqueues code sweeps and the server
// that executes them.
type Worker struct {
	scheduler *asynq.Scheduler
	server    *asynq.Server
	mux       *asynq.ServeMux
	logger    *zap.Logger
}

func redisOpts(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}

// NewWorker registers the sweep task on cfg.SweepInterval.
func NewWorker(cfg config.Config, sweeper Sweeper, logger *zap.Logger) (*Worker, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("worker initialization error: sweeper is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := redisOpts(cfg)

	scheduler := asynq.NewScheduler(opts, &asynq.SchedulerOpts{
		Location: cfg.Location(),
		Logger:   logger.Sugar(),
	})
	task, taskOpts := tasks.NewVerificationSweepTask()
	entryID, err := scheduler.Register(cfg.SweepInterval, task, taskOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule verification sweep %q: %w", cfg.SweepInterval, err)
	}
	logger.Info("Verification sweep scheduled", zap.String("entry_id", entryID), zap.String("spec", cfg.SweepInterval))

	server := asynq.NewServer(opts, asynq.Config{
		Concurrency: 2,
		Queues: map[string]int{
			"default": 1,
		},
		Logger: logger.Sugar(),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeVerificationSweep, HandleSweepTask(sweeper, logger))

	return &Worker{scheduler: scheduler, server: server, mux: mux, logger: logger}, nil
}

// HandleSweepTask returns the asynq handler for tasks.TypeVerificationSweep.
func HandleSweepTask(sweeper Sweeper, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		start := time.Now()
		removed, err := sweeper.Sweep(ctx)
		if err != nil {
			logger.Error("Verification sweep failed", zap.Error(err))
			return err
		}
		logger.Debug("Verification sweep finished",
			zap.Int("removed", removed),
			zap.Duration("took", time.Since(start)))
		return nil
	}
}

// Start launches the server and scheduler. Startup is retried with backoff
// because Redis may come up after the API.
func (w *Worker) Start(ctx context.Context) error {
	const maxAttempts = 5
	for attempts := 1; ; attempts++ {
		err := w.server.Start(w.mux)
		if err == nil {
			break
		}
		w.logger.Warn("Worker failed to start",
			zap.Int("attempt", attempts), zap.Int("max_attempts", maxAttempts), zap.Error(err))
		if attempts == maxAttempts {
			return fmt.Errorf("worker did not start after %d attempts: %w", maxAttempts, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempts*2) * time.Second):
		}
	}

	if err := w.scheduler.Start(); err != nil {
		w.server.Shutdown()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	w.logger.Info("Worker started")
	return nil
}

// Shutdown stops the scheduler first so no new sweeps are enqueued.
func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
	w.logger.Info("Worker stopped")
}
