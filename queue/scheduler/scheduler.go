package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/notify"
	"github.com/quillhq/quill/queue/executor"
)

// jobTimeout bounds a single job execution.
// TODO move to config.Scheduler once a second handler needs a different value.
const jobTimeout = 10 * time.Minute

// Scheduler claims due jobs on a fixed interval and runs them through the
// executor with bounded concurrency.
type Scheduler struct {
	cfg          config.Scheduler
	db           db.DbQueue
	executor     executor.JobExecutor
	logger       *slog.Logger
	notifier     notify.Notifier
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownDone chan struct{}
}

// NewScheduler creates a new scheduler with executor. The notifier may be nil.
func NewScheduler(cfg config.Scheduler, dbq db.DbQueue, exec executor.JobExecutor, logger *slog.Logger, notifier notify.Notifier) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:          cfg,
		db:           dbq,
		executor:     exec,
		logger:       logger,
		notifier:     notifier,
		ctx:          ctx,
		cancel:       cancel,
		shutdownDone: make(chan struct{}),
	}
}

// Start begins the job scheduler operation: a long running goroutine that
// fans out claimed jobs to worker goroutines every tick.
func (s *Scheduler) Start() {
	go func() {
		s.logger.Info("starting job scheduler", "interval", s.cfg.Interval.Duration)
		ticker := time.NewTicker(s.cfg.Interval.Duration)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				s.logger.Info("job scheduler received shutdown signal")
				close(s.shutdownDone)
				return
			case <-ticker.C:
				s.logger.Debug("scheduler tick, processing jobs")
				s.processJobs()
			}
		}
	}()
}

// Stop signals the scheduler to stop and waits for all jobs to complete
// or the context to be canceled, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("stopping job scheduler")
	s.cancel()

	select {
	case <-s.shutdownDone:
		s.logger.Info("job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Info("job scheduler shutdown timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) processJobs() {
	jobs, err := s.db.Claim(s.cfg.MaxJobsPerTick)
	if err != nil {
		s.logger.Error("failed to claim jobs", "err", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	s.logger.Info("claimed jobs", "count", len(jobs))

	// The scheduler context is the parent so in-flight jobs receive the
	// shutdown signal.
	g, ctx := errgroup.WithContext(s.ctx)
	g.SetLimit(runtime.NumCPU() * s.cfg.ConcurrencyMultiplier)

	for _, job := range jobs {
		jobCopy := job
		g.Go(func() error {
			jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()

			err := s.executeJob(jobCtx, *jobCopy)
			s.finishJob(*jobCopy, err)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Info("job batch interrupted due to scheduler shutdown")
		} else {
			s.logger.Error("error executing batch jobs", "err", err)
		}
	}
}

func (s *Scheduler) executeJob(ctx context.Context, job db.Job) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.Info("starting job execution",
		"job_id", job.ID,
		"job_type", job.JobType,
		"attempt", job.Attempts)

	return s.executor.Execute(ctx, job)
}

// finishJob records the outcome of a run: completion (with successor insert
// for recurrent jobs), or failure with the reason.
func (s *Scheduler) finishJob(job db.Job, err error) {
	switch {
	case err == nil:
		s.markSuccess(job)
	case errors.Is(err, context.DeadlineExceeded):
		s.markFailure(job, fmt.Sprintf("job timeout reached: %s", err))
	case errors.Is(err, context.Canceled):
		s.markFailure(job, fmt.Sprintf("scheduler ordered to stop: %s", err))
		s.logger.Info("job interrupted", "job_id", job.ID)
	default:
		s.markFailure(job, err.Error())
	}
}

func (s *Scheduler) markSuccess(job db.Job) {
	if !job.Recurrent {
		if err := s.db.MarkCompleted(job.ID); err != nil {
			s.logger.Error("failed to mark job as completed", "job_id", job.ID, "err", err)
		}
		return
	}

	successor := db.Job{
		JobType:      job.JobType,
		Payload:      job.Payload,
		PayloadExtra: job.PayloadExtra,
		MaxAttempts:  job.MaxAttempts,
		ScheduledFor: time.Now().UTC().Add(job.Interval),
		Recurrent:    true,
		Interval:     job.Interval,
	}
	if err := s.db.MarkRecurrentCompleted(job.ID, successor); err != nil {
		s.logger.Error("failed to mark recurrent job as completed", "job_id", job.ID, "err", err)
	}
}

func (s *Scheduler) markFailure(job db.Job, reason string) {
	if err := s.db.MarkFailed(job.ID, reason); err != nil {
		s.logger.Error("failed to mark job as failed", "job_id", job.ID, "err", err)
		return
	}

	// Claim already counted this attempt.
	if job.Attempts >= job.MaxAttempts && s.notifier != nil {
		_ = s.notifier.Send(s.ctx, notify.Notification{
			Timestamp: time.Now().UTC(),
			Type:      notify.AlarmNotification,
			Level:     slog.LevelError,
			Source:    "scheduler",
			Message:   "job failed permanently",
			Fields: map[string]any{
				"job_id":   job.ID,
				"job_type": job.JobType,
				"attempts": job.Attempts,
				"error":    reason,
			},
		})
	}
}
