package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingJob struct {
	runs int64
}

func (j *countingJob) Name() string { return "counting" }
func (j *countingJob) Run(ctx context.Context) error {
	atomic.AddInt64(&j.runs, 1)
	return nil
}

type blockingJob struct {
	started chan struct{}
	stopped chan struct{}
}

func (j *blockingJob) Name() string { return "blocking" }
func (j *blockingJob) Run(ctx context.Context) error {
	close(j.started)
	<-ctx.Done()
	close(j.stopped)
	return ctx.Err()
}

func TestRunner_RunsJobPeriodically(t *testing.T) {
	r := NewRunner(zerolog.Nop())
	job := &countingJob{}
	if err := r.Schedule(10*time.Millisecond, job); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	r.Start()
	time.Sleep(120 * time.Millisecond)
	r.Stop(time.Second)

	if n := atomic.LoadInt64(&job.runs); n < 2 {
		t.Errorf("expected at least 2 runs, got %d", n)
	}
}

func TestRunner_StopCancelsJobContext(t *testing.T) {
	r := NewRunner(zerolog.Nop())
	job := &blockingJob{started: make(chan struct{}), stopped: make(chan struct{})}
	if err := r.Schedule(10*time.Millisecond, job); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	r.Start()

	select {
	case <-job.started:
	case <-time.After(2 * time.Second):
		t.Fatal("job never started")
	}

	r.Stop(time.Second)

	select {
	case <-job.stopped:
	case <-time.After(time.Second):
		t.Fatal("job did not observe cancellation")
	}
}

func TestRunner_NoRunsAfterStop(t *testing.T) {
	r := NewRunner(zerolog.Nop())
	job := &countingJob{}
	if err := r.Schedule(10*time.Millisecond, job); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	r.Start()
	time.Sleep(30 * time.Millisecond)
	r.Stop(time.Second)

	before := atomic.LoadInt64(&job.runs)
	time.Sleep(50 * time.Millisecond)
	after := atomic.LoadInt64(&job.runs)
	if before != after {
		t.Errorf("job ran after stop: before=%d after=%d", before, after)
	}
}
