package workers

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/recipebox-dev/recipebox/internal/tasks"
)

// Enqueuer is the part of *asynq.Client the scheduler needs
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// StartPurgeScheduler enqueues a purge task on the given cron schedule (standard 5-field or a
// descriptor such as "@hourly"). The returned function stops the scheduler and waits for a
// running enqueue to finish.
func StartPurgeScheduler(client Enqueuer, schedule string, logger zerolog.Logger) (func(), error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		enqueuePurge(client, time.Now(), logger)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}

	c.Start()
	logger.Info().Str("schedule", schedule).Msg("Purge scheduler started")

	return func() {
		<-c.Stop().Done()
		logger.Info().Msg("Purge scheduler stopped")
	}, nil
}

func enqueuePurge(client Enqueuer, now time.Time, logger zerolog.Logger) {
	task, err := tasks.NewPurgeRevokedTokensTask(now)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create purge task")
		return
	}

	info, err := client.Enqueue(task, asynq.Queue("low"), asynq.MaxRetry(3), asynq.Timeout(5*time.Minute))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue purge task")
		return
	}

	logger.Debug().Str("task_id", info.ID).Msg("Purge task enqueued")
}
