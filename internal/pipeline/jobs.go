package pipeline

import (
	"sync"
	"time"

	"github.com/brightpath-labs/textbookd/internal/ocr"
)

// JobStatus represents the state of an ingestion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusChunking   JobStatus = "chunking"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Job tracks the state of a single textbook ingestion.
type Job struct {
	mu sync.Mutex

	ID         string `json:"job_id"`
	TextbookID string `json:"textbook_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename,omitempty"`
	Title    string    `json:"title,omitempty"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	records   []ocr.Result
	fileData  []byte
	coverPage int
	tocPages  []int
	errors    []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalPages   int      `json:"total_pages"`
	TotalChunks  int      `json:"total_chunks"`
	ChunksStored int      `json:"chunks_stored"`
	Units        int      `json:"units"`
	Lessons      int      `json:"lessons"`
	Errors       []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddChunksStored atomically adds to the stored chunk count.
func (j *Job) AddChunksStored(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChunksStored += n
	j.UpdatedAt = time.Now()
}

// SetCounts records page/chunk totals and curriculum sizes.
func (j *Job) SetCounts(pages, chunks, units, lessons int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalPages = pages
	j.Progress.TotalChunks = chunks
	j.Progress.Units = units
	j.Progress.Lessons = lessons
	j.UpdatedAt = time.Now()
}

// SetContentHash records the whole-book content hash.
func (j *Job) SetContentHash(hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = hash
	j.UpdatedAt = time.Now()
}

// SetRecords sets pre-parsed scan records for processing.
func (j *Job) SetRecords(records []ocr.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = records
}

// Records returns the scan records.
func (j *Job) Records() []ocr.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.records
}

// SetFileData sets the raw file bytes for the import path.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetPageOverrides marks imported pages to retype: coverPage becomes a
// cover record, tocPages become TOC records. Zero values mean no
// override.
func (j *Job) SetPageOverrides(coverPage int, tocPages []int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.coverPage = coverPage
	j.tocPages = tocPages
}

// PageOverrides returns the import retyping overrides.
func (j *Job) PageOverrides() (coverPage int, tocPages []int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.coverPage, j.tocPages
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	TextbookID  string    `json:"textbook_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename,omitempty"`
	Title       string    `json:"title,omitempty"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:          j.ID,
		TextbookID:  j.TextbookID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		ContentHash: j.ContentHash,
		Progress: Progress{
			TotalPages:   j.Progress.TotalPages,
			TotalChunks:  j.Progress.TotalChunks,
			ChunksStored: j.Progress.ChunksStored,
			Units:        j.Progress.Units,
			Lessons:      j.Progress.Lessons,
			Errors:       errs,
		},
	}
}
