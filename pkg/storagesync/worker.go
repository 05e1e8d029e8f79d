// Package storagesync moves validated uploads from the database to object
// storage. Submissions enqueue a sync job in the same database as the
// material itself; a worker pool drains the queue and stamps the storage
// URL back onto the material once the object lands.
package storagesync

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MaterialMarker records a completed upload on the owning material. It is
// satisfied by review.MaterialStore but avoids importing the package.
type MaterialMarker interface {
	MarkStored(materialID, storageURL string) error
}

// Worker processes queued sync jobs using a pool of goroutines.
type Worker struct {
	store    *SyncStore
	uploader Uploader
	marker   MaterialMarker
	cfg      Config
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewWorker creates a new sync worker pool.
func NewWorker(store *SyncStore, uploader Uploader, marker MaterialMarker, cfg Config, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		store:    store,
		uploader: uploader,
		marker:   marker,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run starts the worker pool. It spawns cfg.Concurrency goroutines, each
// polling for jobs, and blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w.store == nil || !w.cfg.Enabled {
		w.logger.Info("storage sync worker disabled")
		return
	}

	w.logger.Info("storage sync worker starting",
		"concurrency", w.cfg.Concurrency,
		"maxRetries", w.cfg.MaxRetries,
		"pollInterval", w.cfg.PollInterval().String())

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.cleanupLoop(ctx)
	}()

	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go func(workerID int) {
			defer w.wg.Done()
			w.workerLoop(ctx, workerID)
		}(i)
	}

	<-ctx.Done()
	w.logger.Info("storage sync worker shutting down, waiting for workers to finish")
	w.wg.Wait()
	w.logger.Info("storage sync worker stopped")
}

func (w *Worker) workerLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(w.cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ProcessOne(ctx, workerID)
		}
	}
}

// ProcessOne tries to claim and process a single job.
func (w *Worker) ProcessOne(ctx context.Context, workerID int) {
	job, err := w.store.Claim(w.cfg.MaxRetries)
	if err != nil {
		w.logger.Error("failed to claim sync job", "workerID", workerID, "error", err)
		return
	}
	if job == nil {
		return
	}

	w.logger.Info("syncing material to storage",
		"workerID", workerID,
		"jobID", job.ID,
		"materialID", job.MaterialID,
		"attempt", job.AttemptCount)

	key := objectKey(w.cfg.KeyPrefix, job.MaterialID, job.FileName)
	url, err := w.uploader.Upload(ctx, key, contentTypeFor(job.FileName), job.Content)
	if err != nil {
		w.logger.Error("sync upload failed",
			"workerID", workerID,
			"jobID", job.ID,
			"error", err)
		if failErr := w.store.Fail(job.ID, err.Error(), w.cfg.MaxRetries); failErr != nil {
			w.logger.Error("failed to mark sync job as failed", "jobID", job.ID, "error", failErr)
		}
		return
	}

	if err := w.marker.MarkStored(job.MaterialID, url); err != nil {
		w.logger.Error("failed to record storage url on material",
			"jobID", job.ID, "materialID", job.MaterialID, "error", err)
		if failErr := w.store.Fail(job.ID, err.Error(), w.cfg.MaxRetries); failErr != nil {
			w.logger.Error("failed to mark sync job as failed", "jobID", job.ID, "error", failErr)
		}
		return
	}

	if err := w.store.Complete(job.ID, url); err != nil {
		w.logger.Error("failed to mark sync job as complete", "jobID", job.ID, "error", err)
		return
	}

	w.logger.Info("material synced", "jobID", job.ID, "materialID", job.MaterialID, "url", url)
}

// cleanupLoop periodically requeues stuck jobs and prunes old terminal ones.
func (w *Worker) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.cfg.ClaimTimeout() > 0 {
				recovered, err := w.store.CleanupStuckJobs(w.cfg.ClaimTimeout())
				if err != nil {
					w.logger.Error("failed to cleanup stuck sync jobs", "error", err)
				} else if recovered > 0 {
					w.logger.Info("recovered stuck sync jobs", "count", recovered)
				}
			}

			if w.cfg.RetentionDays > 0 {
				cutoff := time.Now().AddDate(0, 0, -w.cfg.RetentionDays)
				deleted, err := w.store.DeleteOlderThan(cutoff)
				if err != nil {
					w.logger.Error("failed to delete old sync jobs", "error", err)
				} else if deleted > 0 {
					w.logger.Info("deleted old sync jobs", "count", deleted)
				}
			}
		}
	}
}
