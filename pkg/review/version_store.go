package review

import (
	"fmt"

	"gorm.io/gorm"
)

// VersionStore provides append-only operations for material versions.
type VersionStore struct {
	db *gorm.DB
}

// NewVersionStore creates a new VersionStore.
func NewVersionStore(db *gorm.DB) *VersionStore {
	return &VersionStore{db: db}
}

// AutoMigrate creates or updates the material_versions table.
func (s *VersionStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&MaterialVersionRecord{}); err != nil {
		return fmt.Errorf("auto-migrate material_versions: %w", err)
	}
	return nil
}

// Append inserts a new immutable version record. The caller must assign
// VersionNumber via NextVersionNumber within the same transaction.
func (s *VersionStore) Append(record *MaterialVersionRecord) error {
	if err := s.db.Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlotConflict
		}
		return fmt.Errorf("append version: %w", err)
	}
	return nil
}

// NextVersionNumber returns max(version_number)+1 for a material. It must
// run inside the same transaction as the Append so no concurrent writer can
// observe the gap; the unique (material, number) index backstops any race.
func (s *VersionStore) NextVersionNumber(materialID string) (int, error) {
	var current int
	err := s.db.Model(&MaterialVersionRecord{}).
		Where("material_id = ?", materialID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, fmt.Errorf("next version number: %w", err)
	}
	return current + 1, nil
}

// Get retrieves a version record by ID. Returns nil, nil if no record exists.
func (s *VersionStore) Get(id string) (*MaterialVersionRecord, error) {
	var record MaterialVersionRecord
	err := s.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get version: %w", err)
	}
	return &record, nil
}

// ListByMaterial returns all versions of a material, newest first.
func (s *VersionStore) ListByMaterial(materialID string) ([]MaterialVersionRecord, error) {
	var records []MaterialVersionRecord
	err := s.db.Where("material_id = ?", materialID).
		Order("version_number DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return records, nil
}
