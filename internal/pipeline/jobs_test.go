package pipeline

import (
	"testing"
	"time"

	"github.com/brightpath-labs/textbookd/internal/ocr"
)

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusChunking, "chunking"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
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

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("page 3 unreadable")
	job.AddError("store batch at 100 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "page 3 unreadable" {
		t.Errorf("first error = %q", snap.Progress.Errors[0])
	}
}

func TestJob_AddChunksStored(t *testing.T) {
	job := &Job{ID: "incr-test", UpdatedAt: time.Now()}
	job.AddChunksStored(100)
	job.AddChunksStored(42)

	snap := job.Snapshot()
	if snap.Progress.ChunksStored != 142 {
		t.Errorf("chunks stored = %d, want 142", snap.Progress.ChunksStored)
	}
}

func TestJob_SetCounts(t *testing.T) {
	job := &Job{ID: "counts-test", UpdatedAt: time.Now()}
	job.SetCounts(120, 340, 8, 52)

	snap := job.Snapshot()
	if snap.Progress.TotalPages != 120 || snap.Progress.TotalChunks != 340 {
		t.Errorf("totals: %d pages, %d chunks", snap.Progress.TotalPages, snap.Progress.TotalChunks)
	}
	if snap.Progress.Units != 8 || snap.Progress.Lessons != 52 {
		t.Errorf("curriculum: %d units, %d lessons", snap.Progress.Units, snap.Progress.Lessons)
	}
}

func TestJob_RecordsRoundTrip(t *testing.T) {
	job := &Job{ID: "rec-test"}
	page := 3
	job.SetRecords([]ocr.Result{{DocType: ocr.DocTypePage, PageNumber: &page, RawText: "content"}})
	got := job.Records()
	if len(got) != 1 || got[0].RawText != "content" {
		t.Errorf("records round trip failed: %+v", got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return a non-nil errors slice.
	job := &Job{ID: "clean"}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestJobStore_PutGetCleanup(t *testing.T) {
	s := NewJobStore(10 * time.Millisecond)
	job := &Job{ID: "j1", UpdatedAt: time.Now()}
	s.Put(job)

	if got := s.Get("j1"); got != job {
		t.Fatal("Get returned wrong job")
	}
	if got := s.Get("missing"); got != nil {
		t.Error("expected nil for unknown id")
	}

	time.Sleep(25 * time.Millisecond)
	s.Cleanup()
	if got := s.Get("j1"); got != nil {
		t.Error("expected expired job to be evicted")
	}
}

func TestLessonID(t *testing.T) {
	if got := LessonID(2, 5); got != "u2-l5" {
		t.Errorf("LessonID = %q", got)
	}
	if got := LessonID(0, 3); got != "u0-l3" {
		t.Errorf("orphan LessonID = %q", got)
	}
}
