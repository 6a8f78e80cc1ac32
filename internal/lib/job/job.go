// Package job runs background work on asynq: transactional emails and the
// scheduled ledger reconciliation.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/edufinance/internal/config"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

type JobService struct {
	Client     *asynq.Client
	server     *asynq.Server
	scheduler  *asynq.Scheduler
	logger     *zerolog.Logger
	mailer     Mailer
	reconciler Reconciler
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6, // receipts
				"default":  3,
				"low":      1, // reconciliation
			},
		},
	)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC})

	return &JobService{
		Client:    client,
		server:    server,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Start registers the handlers and the periodic tasks, then starts the
// worker server and the scheduler. Neither call blocks.
func (j *JobService) Start() error {
	if _, err := j.scheduler.Register(ReconcileSchedule, NewReconcileTask()); err != nil {
		return fmt.Errorf("registering reconcile schedule: %w", err)
	}

	j.logger.Info().Msg("starting background job server")

	if err := j.server.Start(j.mux()); err != nil {
		return err
	}

	if err := j.scheduler.Start(); err != nil {
		j.server.Shutdown()
		return fmt.Errorf("starting scheduler: %w", err)
	}

	return nil
}

func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.scheduler.Shutdown()
	j.server.Shutdown()
	j.Client.Close()
}

// EnqueueWelcomeEmail queues the welcome email of a newly created user.
func (j *JobService) EnqueueWelcomeEmail(ctx context.Context, p WelcomeEmailPayload) error {
	task, err := NewWelcomeEmailTask(p)
	if err != nil {
		return err
	}
	_, err = j.Client.EnqueueContext(ctx, task)
	return err
}

// EnqueuePaymentReceipt queues a guardian receipt for a ledger movement.
func (j *JobService) EnqueuePaymentReceipt(ctx context.Context, p ReceiptEmailPayload) error {
	task, err := NewPaymentReceiptTask(p)
	if err != nil {
		return err
	}
	_, err = j.Client.EnqueueContext(ctx, task)
	return err
}
