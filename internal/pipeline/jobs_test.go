package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/docsort/internal/rules"
)

func TestNewJobID_UniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for range 100 {
		id := NewJobID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		if prev != "" && id < prev {
			t.Errorf("ids must sort by creation: %q after %q", id, prev)
		}
		prev = id
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("invoice.pdf", []byte("data"))
	if job.Status != JobQueued {
		t.Fatalf("expected queued, got %q", job.Status)
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{JobExtracting, "extracting"},
		{JobMatching, "matching"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_FinishClassified(t *testing.T) {
	job := NewJob("bill.pdf", []byte("data"))
	job.Finish(Result{
		Source:  "bill.pdf",
		Status:  StatusClassified,
		Matches: []rules.Rule{{Destination: "bills", Keywords: []string{"bill"}}},
	})

	snap := job.Snapshot()
	if snap.Status != JobCompleted {
		t.Errorf("expected completed, got %q", snap.Status)
	}
	if snap.Result == nil || snap.Result.Status != StatusClassified {
		t.Fatalf("expected classified result, got %+v", snap.Result)
	}
	if job.FileData() != nil {
		t.Error("upload should be released once the job finishes")
	}

	// The snapshot must not alias job state.
	snap.Result.Matches[0].Destination = "changed"
	if job.Snapshot().Result.Matches[0].Destination != "bills" {
		t.Error("snapshot aliases job result")
	}
}

func TestJob_FinishFailed(t *testing.T) {
	job := NewJob("broken.pdf", nil)
	job.Finish(failed("broken.pdf", errors.New("bad xref")))
	snap := job.Snapshot()
	if snap.Status != JobFailed {
		t.Errorf("expected failed, got %q", snap.Status)
	}
	if snap.Result.Error != "bad xref" {
		t.Errorf("expected error to be kept, got %q", snap.Result.Error)
	}
}

func TestJob_SnapshotWithoutResult(t *testing.T) {
	snap := NewJob("a.pdf", nil).Snapshot()
	if snap.Result != nil {
		t.Errorf("expected no result before completion, got %+v", snap.Result)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
