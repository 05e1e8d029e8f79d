package storagesync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncStore provides database operations for storage sync jobs.
type SyncStore struct {
	db *gorm.DB
}

// NewSyncStore creates a new SyncStore.
func NewSyncStore(db *gorm.DB) *SyncStore {
	return &SyncStore{db: db}
}

// AutoMigrate creates or updates the storage_sync_jobs table.
func (s *SyncStore) AutoMigrate() error {
	return s.db.AutoMigrate(&SyncJobRecord{})
}

// Enqueue queues an upload for the given material. It satisfies the review
// engine's SyncEnqueuer interface.
func (s *SyncStore) Enqueue(_ context.Context, materialID, fileName string, content []byte) error {
	job := &SyncJobRecord{
		ID:         uuid.NewString(),
		MaterialID: materialID,
		FileName:   fileName,
		Content:    content,
		State:      SyncStateQueued,
		EnqueuedAt: time.Now(),
	}
	if err := s.db.Create(job).Error; err != nil {
		return fmt.Errorf("enqueue sync job: %w", err)
	}
	return nil
}

// Claim atomically picks the oldest queued job and transitions it to running.
// Returns nil if no jobs are available.
func (s *SyncStore) Claim(maxRetries int) (*SyncJobRecord, error) {
	var job SyncJobRecord

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("state = ? AND attempt_count <= ?", SyncStateQueued, maxRetries).
			Order("enqueued_at ASC").
			Limit(1).
			First(&job).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}

		now := time.Now()
		return tx.Model(&SyncJobRecord{}).Where("id = ? AND state = ?", job.ID, SyncStateQueued).
			Updates(map[string]any{
				"state":         SyncStateRunning,
				"started_at":    now,
				"attempt_count": gorm.Expr("attempt_count + 1"),
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("claim sync job: %w", err)
	}

	if job.ID == "" {
		return nil, nil
	}

	if err := s.db.First(&job, "id = ?", job.ID).Error; err != nil {
		return nil, fmt.Errorf("reload claimed sync job: %w", err)
	}
	return &job, nil
}

// Complete marks a job as succeeded and drops its content payload.
func (s *SyncStore) Complete(jobID, storageURL string) error {
	now := time.Now()
	result := s.db.Model(&SyncJobRecord{}).Where("id = ?", jobID).Updates(map[string]any{
		"state":       SyncStateSucceeded,
		"storage_url": storageURL,
		"finished_at": now,
		"content":     nil,
	})
	if result.Error != nil {
		return fmt.Errorf("complete sync job: %w", result.Error)
	}
	return nil
}

// Fail records an upload error. Jobs within the retry budget go back to the
// queue, the rest are marked failed.
func (s *SyncStore) Fail(jobID, errMsg string, maxRetries int) error {
	var job SyncJobRecord
	if err := s.db.First(&job, "id = ?", jobID).Error; err != nil {
		return fmt.Errorf("load sync job for fail: %w", err)
	}

	updates := map[string]any{
		"last_error": errMsg,
	}
	if job.AttemptCount < maxRetries {
		updates["state"] = SyncStateQueued
		updates["started_at"] = nil
	} else {
		updates["state"] = SyncStateFailed
		updates["finished_at"] = time.Now()
	}

	if err := s.db.Model(&SyncJobRecord{}).Where("id = ?", jobID).Updates(updates).Error; err != nil {
		return fmt.Errorf("fail sync job: %w", err)
	}
	return nil
}

// Get retrieves a job by ID.
func (s *SyncStore) Get(jobID string) (*SyncJobRecord, error) {
	var job SyncJobRecord
	if err := s.db.First(&job, "id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get sync job: %w", err)
	}
	return &job, nil
}

// ListByMaterial returns a material's sync jobs, newest first.
func (s *SyncStore) ListByMaterial(materialID string) ([]SyncJobRecord, error) {
	var jobs []SyncJobRecord
	err := s.db.Where("material_id = ?", materialID).
		Order("enqueued_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("list sync jobs: %w", err)
	}
	return jobs, nil
}

// CleanupStuckJobs requeues running jobs whose claim is older than the timeout.
func (s *SyncStore) CleanupStuckJobs(claimTimeout time.Duration) (int64, error) {
	cutoff := time.Now().Add(-claimTimeout)
	result := s.db.Model(&SyncJobRecord{}).
		Where("state = ? AND started_at < ?", SyncStateRunning, cutoff).
		Updates(map[string]any{
			"state":      SyncStateQueued,
			"started_at": nil,
			"last_error": "timed out (stuck job recovery)",
		})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup stuck sync jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteOlderThan removes terminal jobs older than the given cutoff.
func (s *SyncStore) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := s.db.Where("state IN ? AND finished_at < ?",
		[]SyncState{SyncStateSucceeded, SyncStateFailed}, cutoff).
		Delete(&SyncJobRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete old sync jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
