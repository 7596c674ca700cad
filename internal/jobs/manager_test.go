package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

// waitForTerminal polls until the job leaves pending/running.
func waitForTerminal(t *testing.T, m *Manager, id string) *Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := m.Get(id)
		if !ok {
			t.Fatalf("job %s disappeared", id)
		}
		if job.Status == StatusDone || job.Status == StatusFailed {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never finished", id)
	return nil
}

func TestSubmit_Success(t *testing.T) {
	m := NewManager(nil)

	job := m.Submit(525, func(ctx context.Context) error { return nil })
	if job.ID == "" {
		t.Fatal("expected a job id")
	}
	if job.OperatorID != 525 {
		t.Errorf("expected operator 525, got %d", job.OperatorID)
	}

	done := waitForTerminal(t, m, job.ID)
	if done.Status != StatusDone {
		t.Errorf("expected done, got %s (%s)", done.Status, done.Error)
	}
	if done.FinishedAt.IsZero() {
		t.Error("expected a finish timestamp")
	}
}

func TestSubmit_Failure(t *testing.T) {
	m := NewManager(nil)

	job := m.Submit(19, func(ctx context.Context) error {
		return errors.New("document link not found")
	})

	failed := waitForTerminal(t, m, job.ID)
	if failed.Status != StatusFailed {
		t.Errorf("expected failed, got %s", failed.Status)
	}
	if failed.Error != "document link not found" {
		t.Errorf("expected error message preserved, got %q", failed.Error)
	}
}

func TestGet_Unknown(t *testing.T) {
	m := NewManager(nil)
	if _, ok := m.Get("no-such-id"); ok {
		t.Error("expected lookup miss for unknown id")
	}
}

func TestList_NewestFirst(t *testing.T) {
	m := NewManager(nil)

	first := m.Submit(1, func(ctx context.Context) error { return nil })
	waitForTerminal(t, m, first.ID)
	time.Sleep(2 * time.Millisecond)
	second := m.Submit(2, func(ctx context.Context) error { return nil })
	waitForTerminal(t, m, second.ID)

	jobs := m.List()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != second.ID {
		t.Errorf("expected newest job first, got %s", jobs[0].ID)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	m := NewManager(nil)
	job := m.Submit(3, func(ctx context.Context) error { return nil })
	waitForTerminal(t, m, job.ID)

	copy1, _ := m.Get(job.ID)
	copy1.Status = "tampered"

	copy2, _ := m.Get(job.ID)
	if copy2.Status == "tampered" {
		t.Error("Get must return a copy, not shared state")
	}
}
