// Package scheduler runs periodic background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const jobTimeout = 30 * time.Minute

// Task is one unit of scheduled work. The int result is logged as the number
// of items processed.
type Task interface {
	Run(ctx context.Context) (int, error)
}

type TaskFunc func(ctx context.Context) (int, error)

func (f TaskFunc) Run(ctx context.Context) (int, error) { return f(ctx) }

type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
	stop context.CancelFunc
	log  zerolog.Logger
}

func New(log zerolog.Logger, opts ...cron.Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	opts = append([]cron.Option{cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))}, opts...)
	return &Scheduler{
		cron: cron.New(opts...),
		ctx:  ctx,
		stop: cancel,
		log:  log,
	}
}

// Add schedules task under name. spec uses the standard five-field cron
// syntax or descriptors such as "@weekly".
func (s *Scheduler) Add(name, spec string, task Task) error {
	_, err := s.cron.AddJob(spec, &job{name: name, task: task, s: s})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	s.log.Info().Str("job", name).Str("schedule", spec).Msg("job scheduled")
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs, cancels running jobs and waits for them to return
// or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type job struct {
	name string
	task Task
	s    *Scheduler
}

func (j *job) Run() {
	ctx, cancel := context.WithTimeout(j.s.ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := j.task.Run(ctx)
	if err != nil {
		j.s.log.Error().Err(err).Str("job", j.name).Dur("took", time.Since(start)).Msg("job failed")
		return
	}
	j.s.log.Info().Str("job", j.name).Int("processed", n).Dur("took", time.Since(start)).Msg("job finished")
}
