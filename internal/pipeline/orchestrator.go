package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/brightpath-labs/textbookd/internal/bookstore"
	"github.com/brightpath-labs/textbookd/internal/chunker"
	"github.com/brightpath-labs/textbookd/internal/config"
)

// Orchestrator manages the textbook ingestion pipeline.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	store *bookstore.Client
	log   *slog.Logger
	cfg   config.Config

	chunkOpts chunker.Options

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Start launches its workers.
func NewOrchestrator(cfg config.Config, store *bookstore.Client, log *slog.Logger) *Orchestrator {
	chunkOpts := chunker.DefaultOptions()
	chunkOpts.TargetTokens = cfg.ChunkTargetTokens
	chunkOpts.MinTokens = cfg.ChunkMinTokens
	chunkOpts.MaxTokens = cfg.ChunkMaxTokens
	chunkOpts.OverlapTokens = cfg.ChunkOverlapTokens

	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		store:     store,
		log:       log,
		cfg:       cfg,
		chunkOpts: chunkOpts,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.store, o.log, o.chunkOpts, o.cfg.MaxConcurrentStore, o.cfg.PDFFallbackPdftotext)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
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

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
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

// StoreClient returns the bookstore client for direct use by API handlers.
func (o *Orchestrator) StoreClient() *bookstore.Client {
	return o.store
}
