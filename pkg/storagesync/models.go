package storagesync

import (
	"time"
)

// SyncState represents the lifecycle state of a storage sync job.
type SyncState string

const (
	SyncStateQueued    SyncState = "queued"
	SyncStateRunning   SyncState = "running"
	SyncStateSucceeded SyncState = "succeeded"
	SyncStateFailed    SyncState = "failed"
)

// SyncJobRecord is the GORM model for a queued upload to object storage.
// The file content rides along in the row so a restart cannot lose a
// validated upload before it reaches the bucket.
type SyncJobRecord struct {
	ID           string     `gorm:"primaryKey;column:id;type:varchar(36)"`
	MaterialID   string     `gorm:"column:material_id;index:idx_sync_material;not null"`
	FileName     string     `gorm:"column:file_name;not null"`
	Content      []byte     `gorm:"column:content"`
	State        SyncState  `gorm:"column:state;index:idx_sync_state;not null;default:queued"`
	StorageURL   string     `gorm:"column:storage_url"`
	AttemptCount int        `gorm:"column:attempt_count;default:0"`
	LastError    string     `gorm:"column:last_error"`
	EnqueuedAt   time.Time  `gorm:"column:enqueued_at;not null"`
	StartedAt    *time.Time `gorm:"column:started_at"`
	FinishedAt   *time.Time `gorm:"column:finished_at"`
}

// TableName returns the GORM table name.
func (SyncJobRecord) TableName() string { return "storage_sync_jobs" }

// IsTerminal returns true if the job is in a terminal state.
func (j *SyncJobRecord) IsTerminal() bool {
	return j.State == SyncStateSucceeded || j.State == SyncStateFailed
}
