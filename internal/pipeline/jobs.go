package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/docsort/internal/rules"
)

// JobStatus represents the state of an asynchronous classification job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobExtracting JobStatus = "extracting"
	JobMatching   JobStatus = "matching"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job tracks one uploaded document through the queue.
type Job struct {
	mu sync.Mutex

	ID       string
	Filename string

	Status JobStatus
	Phase  string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Internal: not serialized.
	fileData []byte
	result   *Result
}

// NewJob creates a queued job for filename.
func NewJob(filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        NewJobID(),
		Filename:  filename,
		Status:    JobQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
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

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Finish stores the result, marks the job done and releases the upload.
func (j *Job) Finish(res Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &res
	j.fileData = nil
	if res.Status == StatusFailed {
		j.Status = JobFailed
	} else {
		j.Status = JobCompleted
	}
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Filename  string    `json:"filename"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Result    *Result   `json:"result,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := JobSnapshot{
		ID:        j.ID,
		Filename:  j.Filename,
		Status:    j.Status,
		Phase:     j.Phase,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if j.result != nil {
		res := *j.result
		res.Matches = append([]rules.Rule{}, res.Matches...)
		snap.Result = &res
	}
	return snap
}
