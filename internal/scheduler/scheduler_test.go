package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yhlin/chipmon/pkg/logger"
)

type testJob struct {
	name     string
	schedule string
	runs     atomic.Int32
	err      error
}

func (j *testJob) Name() string     { return j.name }
func (j *testJob) Schedule() string { return j.schedule }
func (j *testJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := New(logger.NewNop())

	job := &testJob{name: "dup", schedule: "@hourly"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("first AddJob: %v", err)
	}
	if err := s.AddJob(job); err == nil {
		t.Fatal("expected duplicate AddJob to fail")
	}
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(logger.NewNop())

	if err := s.AddJob(&testJob{name: "bad", schedule: "not a cron expr"}); err == nil {
		t.Fatal("expected bad schedule to fail")
	}
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := New(logger.NewNop()).WithRetry(0, time.Millisecond)

	job := &testJob{name: "ok", schedule: "@daily"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	if err := s.RunJob("ok"); err != nil {
		t.Fatalf("RunJob: %v", err)
	}

	waitFor(t, func() bool {
		h, err := s.GetJobHistory("ok")
		return err == nil && len(h.Results) == 1
	})

	h, err := s.GetJobHistory("ok")
	if err != nil {
		t.Fatalf("GetJobHistory: %v", err)
	}
	if !h.Results[0].Success {
		t.Error("expected a successful result")
	}
	if h.GetSuccessRate() != 1.0 {
		t.Errorf("success rate = %v, want 1.0", h.GetSuccessRate())
	}
}

func TestRunJobRetriesOnFailure(t *testing.T) {
	s := New(logger.NewNop()).WithRetry(2, time.Millisecond)

	job := &testJob{name: "flaky", schedule: "@daily", err: errors.New("boom")}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	if err := s.RunJob("flaky"); err != nil {
		t.Fatalf("RunJob: %v", err)
	}

	waitFor(t, func() bool {
		h, err := s.GetJobHistory("flaky")
		return err == nil && len(h.Results) == 1
	})

	if got := job.runs.Load(); got != 3 {
		t.Errorf("job ran %d times, want 3 (1 + 2 retries)", got)
	}

	h, _ := s.GetJobHistory("flaky")
	if h.Results[0].Success {
		t.Error("expected a failed result")
	}
	if h.Results[0].Error == "" {
		t.Error("expected the error message to be recorded")
	}
}

func TestRunJobUnknown(t *testing.T) {
	s := New(logger.NewNop())

	if err := s.RunJob("missing"); err == nil {
		t.Fatal("expected unknown job to fail")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
