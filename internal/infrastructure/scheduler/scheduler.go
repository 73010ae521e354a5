// Package scheduler runs periodic background maintenance jobs, such as
// purging consumed outcome history.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Job defines the interface that all scheduled jobs must implement.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job.
	// The context is cancelled when the scheduler is stopping.
	Run(ctx context.Context) error
}

// Schedule defines when a job should run.
type Schedule interface {
	// Next returns the next time the job should run after the given time.
	Next(t time.Time) time.Time

	// String returns a human-readable representation of the schedule.
	String() string
}

// JobResult contains the result of a job execution.
type JobResult struct {
	JobName     string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Success     bool
	Error       error
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Scheduler manages and executes scheduled jobs. Each job runs in its
// own goroutine on its own schedule; overlapping runs of the same job
// are prevented because the next run is only armed after the previous
// one returns.
type Scheduler struct {
	mu sync.RWMutex

	logger *slog.Logger

	jobs    map[string]*scheduledJob
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	lastRuns map[string]*JobResult
}

// scheduledJob wraps a Job with scheduling information.
type scheduledJob struct {
	job      Job
	schedule Schedule
}

// SchedulerConfig contains configuration for the Scheduler.
type SchedulerConfig struct {
	// Logger for structured logging.
	Logger *slog.Logger
}

// NewScheduler creates a new Scheduler with the given configuration.
func NewScheduler(config SchedulerConfig) *Scheduler {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Scheduler{
		logger:   config.Logger,
		jobs:     make(map[string]*scheduledJob),
		lastRuns: make(map[string]*JobResult),
	}
}

// AddJob registers a job with its schedule. Jobs must be added before
// Start is called.
func (s *Scheduler) AddJob(job Job, schedule Schedule) error {
	if job == nil {
		return fmt.Errorf("scheduler: job is nil")
	}
	if schedule == nil {
		return fmt.Errorf("scheduler: schedule is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler: cannot add job %q while running", job.Name())
	}
	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("scheduler: job %q already registered", job.Name())
	}

	s.jobs[job.Name()] = &scheduledJob{job: job, schedule: schedule}
	return nil
}

// Start launches one goroutine per registered job.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler: already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true

	for _, sj := range s.jobs {
		s.wg.Add(1)
		go s.runLoop(sj)
	}

	s.logger.Info("scheduler started", "jobs", len(s.jobs))
	return nil
}

// Stop cancels all job loops and waits for in-flight runs to finish or
// the context to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: stop timed out: %w", ctx.Err())
	}
}

// LastRun returns the most recent result for a job, or nil if it has
// not run yet.
func (s *Scheduler) LastRun(jobName string) *JobResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRuns[jobName]
}

// runLoop waits for each scheduled time and executes the job.
func (s *Scheduler) runLoop(sj *scheduledJob) {
	defer s.wg.Done()

	timer := time.NewTimer(time.Until(sj.schedule.Next(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
			s.execute(sj)
			timer.Reset(time.Until(sj.schedule.Next(time.Now())))
		}
	}
}

// execute runs a single job, recovering from panics so one bad job
// cannot take down the loop.
func (s *Scheduler) execute(sj *scheduledJob) {
	result := JobResult{
		JobName:   sj.job.Name(),
		StartedAt: time.Now(),
	}

	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Errorf("job panicked: %v", r)
		}

		result.CompletedAt = time.Now()
		result.Duration = result.CompletedAt.Sub(result.StartedAt)
		result.Success = result.Error == nil

		s.mu.Lock()
		s.lastRuns[result.JobName] = &result
		s.mu.Unlock()

		if result.Success {
			s.logger.Info("job completed",
				"job", result.JobName,
				"duration", result.Duration.String(),
			)
		} else {
			s.logger.Error("job failed",
				"job", result.JobName,
				"duration", result.Duration.String(),
				"error", result.Error,
			)
		}
	}()

	result.Error = sj.job.Run(s.ctx)
}
