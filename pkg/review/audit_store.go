package review

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// AuditStore provides append-only operations for the audit ledger.
// No update or delete is exposed: entries are evidence, not state.
type AuditStore struct {
	db *gorm.DB
}

// NewAuditStore creates a new AuditStore.
func NewAuditStore(db *gorm.DB) *AuditStore {
	return &AuditStore{db: db}
}

// AutoMigrate creates or updates the audit_events table.
func (s *AuditStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&AuditEventRecord{}); err != nil {
		return fmt.Errorf("auto-migrate audit_events: %w", err)
	}
	return nil
}

// Append creates a new immutable audit event record.
func (s *AuditStore) Append(event *AuditEventRecord) error {
	if err := s.db.Create(event).Error; err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListByEntity returns paginated audit events for one entity reference,
// newest first. pageToken is an RFC3339Nano timestamp.
func (s *AuditStore) ListByEntity(entityType, entityID string, pageSize int, pageToken string) ([]AuditEventRecord, string, int, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var totalSize int64
	if err := s.db.Model(&AuditEventRecord{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Count(&totalSize).Error; err != nil {
		return nil, "", 0, fmt.Errorf("count audit events: %w", err)
	}

	query := s.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").Limit(pageSize + 1)
	if pageToken != "" {
		t, err := time.Parse(time.RFC3339Nano, pageToken)
		if err != nil {
			return nil, "", 0, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.Where("created_at < ?", t)
	}

	var records []AuditEventRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, "", 0, fmt.Errorf("list audit events: %w", err)
	}

	var nextToken string
	if len(records) > pageSize {
		nextToken = records[pageSize-1].CreatedAt.Format(time.RFC3339Nano)
		records = records[:pageSize]
	}

	return records, nextToken, int(totalSize), nil
}

// ListAll returns paginated audit events across the ledger, newest first,
// optionally filtered by action and/or actor.
func (s *AuditStore) ListAll(action AuditAction, actor string, pageSize int, pageToken string) ([]AuditEventRecord, string, int, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	baseQuery := s.db.Model(&AuditEventRecord{})
	if action != "" {
		baseQuery = baseQuery.Where("action = ?", string(action))
	}
	if actor != "" {
		baseQuery = baseQuery.Where("actor = ?", actor)
	}

	var totalSize int64
	if err := baseQuery.Count(&totalSize).Error; err != nil {
		return nil, "", 0, fmt.Errorf("count audit events: %w", err)
	}

	query := s.db.Order("created_at DESC").Limit(pageSize + 1)
	if action != "" {
		query = query.Where("action = ?", string(action))
	}
	if actor != "" {
		query = query.Where("actor = ?", actor)
	}
	if pageToken != "" {
		t, err := time.Parse(time.RFC3339Nano, pageToken)
		if err != nil {
			return nil, "", 0, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.Where("created_at < ?", t)
	}

	var records []AuditEventRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, "", 0, fmt.Errorf("list all audit events: %w", err)
	}

	var nextToken string
	if len(records) > pageSize {
		nextToken = records[pageSize-1].CreatedAt.Format(time.RFC3339Nano)
		records = records[:pageSize]
	}

	return records, nextToken, int(totalSize), nil
}
