package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docsort/internal/config"
)

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("pipeline stopped")

// Orchestrator runs queued classification jobs on a fixed worker pool.
type Orchestrator struct {
	jobs       *JobStore
	queue      chan *Job
	classifier *Classifier
	log        *slog.Logger
	cfg        config.Config

	cleanupEvery time.Duration

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline; call Start to run it.
func NewOrchestrator(cfg config.Config, classifier *Classifier, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:         NewJobStore(cfg.JobTTL),
		queue:        make(chan *Job, cfg.MaxQueueSize),
		classifier:   classifier,
		log:          log,
		cfg:          cfg,
		cleanupEvery: 5 * time.Minute,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(o.cleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

func (o *Orchestrator) process(job *Job) {
	log := o.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	job.SetStatus(JobExtracting, "extracting")
	text, err := o.classifier.Extract(job.Filename, bytes.NewReader(job.FileData()))
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.Finish(o.classifier.finish(failed(job.Filename, fmt.Errorf("extract: %w", err)), start))
		return
	}

	job.SetStatus(JobMatching, "matching")
	res := o.classifier.finish(o.classifier.Match(job.Filename, text), start)
	job.Finish(res)
	log.Info("job complete", "status", res.Status, "matches", len(res.Matches))
}

// Stop gracefully shuts down the pipeline. Queued jobs not yet picked up
// are abandoned.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return ErrStopped
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(JobFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Classifier returns the classifier for synchronous use by API handlers.
func (o *Orchestrator) Classifier() *Classifier {
	return o.classifier
}
