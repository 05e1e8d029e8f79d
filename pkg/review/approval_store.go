package review

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ApprovalStore provides CRUD operations for approval records.
type ApprovalStore struct {
	db *gorm.DB
}

// NewApprovalStore creates a new ApprovalStore.
func NewApprovalStore(db *gorm.DB) *ApprovalStore {
	return &ApprovalStore{db: db}
}

// AutoMigrate creates or updates the approvals table.
func (s *ApprovalStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&ApprovalRecord{}); err != nil {
		return fmt.Errorf("auto-migrate approvals: %w", err)
	}
	return nil
}

// Create inserts a new approval.
func (s *ApprovalStore) Create(record *ApprovalRecord) error {
	if record.Status == "" {
		record.Status = StatusPending
	}
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("create approval: %w", err)
	}
	return nil
}

// Get retrieves an approval by ID. Returns nil, nil if no record exists.
func (s *ApprovalStore) Get(id string) (*ApprovalRecord, error) {
	var record ApprovalRecord
	err := s.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get approval: %w", err)
	}
	return &record, nil
}

// GetByReviewer retrieves the approval of one reviewer on one material.
// Returns nil, nil if no record exists.
func (s *ApprovalStore) GetByReviewer(materialID, reviewer string) (*ApprovalRecord, error) {
	var record ApprovalRecord
	err := s.db.Where("material_id = ? AND reviewer = ?", materialID, reviewer).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get approval by reviewer: %w", err)
	}
	return &record, nil
}

// ListByMaterial returns all approvals for a material.
func (s *ApprovalStore) ListByMaterial(materialID string) ([]ApprovalRecord, error) {
	var records []ApprovalRecord
	err := s.db.Where("material_id = ?", materialID).
		Order("created_at ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	return records, nil
}

// ListPendingForReviewer returns a reviewer's open approvals, oldest first.
func (s *ApprovalStore) ListPendingForReviewer(reviewer string) ([]ApprovalRecord, error) {
	var records []ApprovalRecord
	err := s.db.Where("reviewer = ? AND status = ?", reviewer, string(StatusPending)).
		Order("created_at ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list pending approvals: %w", err)
	}
	return records, nil
}

// Resolve moves an approval to a terminal status and stamps resolution time.
func (s *ApprovalStore) Resolve(id string, status MaterialStatus, comments string) error {
	now := time.Now()
	result := s.db.Model(&ApprovalRecord{}).Where("id = ?", id).
		Updates(map[string]any{
			"status":      string(status),
			"comments":    comments,
			"resolved_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("resolve approval: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrApprovalNotFound
	}
	return nil
}

// ReopenForMaterial resets every approval on a material back to pending.
// Used when a re-upload restarts the review cycle.
func (s *ApprovalStore) ReopenForMaterial(materialID string) error {
	err := s.db.Model(&ApprovalRecord{}).Where("material_id = ?", materialID).
		Updates(map[string]any{
			"status":      string(StatusPending),
			"resolved_at": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("reopen approvals: %w", err)
	}
	return nil
}
