package review

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// MaterialStore provides CRUD operations for material records.
type MaterialStore struct {
	db *gorm.DB
}

// NewMaterialStore creates a new MaterialStore.
func NewMaterialStore(db *gorm.DB) *MaterialStore {
	return &MaterialStore{db: db}
}

// AutoMigrate creates or updates the materials table.
func (s *MaterialStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&MaterialRecord{}); err != nil {
		return fmt.Errorf("auto-migrate materials: %w", err)
	}
	return nil
}

// Create inserts a new material. A unique-index violation on the slot is
// surfaced as ErrSlotConflict: the caller lost a race for the slot.
func (s *MaterialStore) Create(record *MaterialRecord) error {
	if err := s.db.Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlotConflict
		}
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

// Save persists all fields of an existing material.
func (s *MaterialStore) Save(record *MaterialRecord) error {
	if err := s.db.Save(record).Error; err != nil {
		return fmt.Errorf("save material: %w", err)
	}
	return nil
}

// Get retrieves a material by ID. Returns nil, nil if no record exists.
func (s *MaterialStore) Get(id string) (*MaterialRecord, error) {
	var record MaterialRecord
	err := s.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return &record, nil
}

// GetBySlot retrieves the material occupying a (project, platform, slot).
// Returns nil, nil if the slot is empty.
func (s *MaterialStore) GetBySlot(projectID, platform, assetSlot string) (*MaterialRecord, error) {
	var record MaterialRecord
	err := s.db.Where("project_id = ? AND platform = ? AND asset_slot = ?",
		projectID, platform, assetSlot).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get material by slot: %w", err)
	}
	return &record, nil
}

// ListByProject returns a project's materials, optionally filtered by
// status and/or platform, ordered by platform then slot.
func (s *MaterialStore) ListByProject(projectID string, status MaterialStatus, platform string) ([]MaterialRecord, error) {
	query := s.db.Where("project_id = ?", projectID).
		Order("platform ASC, asset_slot ASC")
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}

	var records []MaterialRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return records, nil
}

// ListByUploader returns all materials uploaded by the given actor.
func (s *MaterialStore) ListByUploader(uploader string) ([]MaterialRecord, error) {
	var records []MaterialRecord
	err := s.db.Where("uploaded_by = ?", uploader).
		Order("created_at DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list materials by uploader: %w", err)
	}
	return records, nil
}

// MarkStored records the storage locator once the remote sync succeeded.
// Version snapshots of the same file are backfilled so a later rollback
// restores a real locator instead of an empty one.
func (s *MaterialStore) MarkStored(id, storageURL string) error {
	material, err := s.Get(id)
	if err != nil {
		return err
	}
	if material == nil {
		return ErrMaterialNotFound
	}
	if err := s.db.Model(&MaterialRecord{}).Where("id = ?", id).
		Updates(map[string]any{"storage_url": storageURL, "storage_pending": false}).Error; err != nil {
		return fmt.Errorf("mark material stored: %w", err)
	}
	if err := s.db.Model(&MaterialVersionRecord{}).
		Where("material_id = ? AND file_hash = ? AND storage_url = ?", id, material.FileHash, "").
		Update("storage_url", storageURL).Error; err != nil {
		return fmt.Errorf("mark versions stored: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-constraint violation.
// GORM's dialect translation covers postgres and mysql; the sqlite driver
// used in tests reports the constraint in the message.
func isUniqueViolation(err error) bool {
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
