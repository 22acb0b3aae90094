// Package schedule runs periodic background jobs on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
)

// Job is a unit of periodic work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu   sync.Mutex
	jobs map[string]Job

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	logger := log.With(slog.String("service", "schedule"))
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cronLogger{logger}))),
		logger: logger,
		jobs:   map[string]Job{},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds job under the cron spec. Names must be unique.
func (s *Scheduler) Register(spec string, job Job) error {
	spec = strings.TrimSpace(spec)
	if job == nil || strings.TrimSpace(job.Name()) == "" {
		return fmt.Errorf("job name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("job %s already registered", job.Name())
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(s.ctx, job) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name(), spec, err)
	}
	s.jobs[job.Name()] = job
	s.logger.Info("job registered", slog.String("job", job.Name()), slog.String("spec", spec))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	if err := job.Run(ctx); err != nil {
		s.logger.Error("job failed", slog.String("job", job.Name()), slog.Any("error", err))
	}
}

// cronLogger satisfies cron.Logger on top of slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, slog.Any("error", err))...)
}
