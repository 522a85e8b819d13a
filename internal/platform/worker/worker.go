// Package worker runs the periodic background jobs (course status sweep,
// reminder dispatch) on a cron scheduler with panic isolation and graceful
// shutdown.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one unit of periodic work. Run receives a context that is cancelled
// on shutdown; implementations check it between items so a batch can stop at
// a safe boundary.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner schedules jobs at fixed intervals. A tick is skipped while the
// previous run of the same job is still in flight.
type Runner struct {
	cron   *cron.Cron
	logger zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRunner(logger zerolog.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	cl := cronLogger{logger: logger}
	return &Runner{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule registers a job to run every interval.
func (r *Runner) Schedule(interval time.Duration, job Job) error {
	spec := fmt.Sprintf("@every %s", interval)
	_, err := r.cron.AddJob(spec, &cronJob{runner: r, job: job})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}
	return nil
}

// Start begins dispatching ticks in a background goroutine.
func (r *Runner) Start() {
	r.cron.Start()
}

// Stop cancels the job context, stops new ticks, and waits for in-flight jobs
// to finish or for the timeout to pass.
func (r *Runner) Stop(timeout time.Duration) {
	r.cancel()
	done := r.cron.Stop().Done()
	select {
	case <-done:
	case <-time.After(timeout):
		r.logger.Warn().Msg("worker stop timed out; abandoning in-flight jobs")
	}
}

type cronJob struct {
	runner *Runner
	job    Job
}

func (c *cronJob) Run() {
	log := c.runner.logger.With().Str("job", c.job.Name()).Logger()
	if c.runner.ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := c.job.Run(c.runner.ctx); err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("job failed")
		return
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("job finished")
}

// cronLogger adapts zerolog to the cron.Logger interface.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
