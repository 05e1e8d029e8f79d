package specs

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlatformSpecRecord is a GORM model for an administrator spec override.
// Overrides are never hard-deleted; retiring one clears the active flag so
// resolution falls back to the compiled default table.
type PlatformSpecRecord struct {
	ID        string     `gorm:"primaryKey;column:id;type:varchar(36)"`
	Platform  string     `gorm:"column:platform;uniqueIndex:idx_spec_platform_slot;not null"`
	AssetSlot string     `gorm:"column:asset_slot;uniqueIndex:idx_spec_platform_slot;not null"`
	Spec      SpecColumn `gorm:"column:spec;type:text;not null"`
	Active    bool       `gorm:"column:active;not null;default:true"`
	UpdatedBy string     `gorm:"column:updated_by"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (PlatformSpecRecord) TableName() string { return "platform_specs" }

// SpecStore provides CRUD operations for spec overrides.
type SpecStore struct {
	db *gorm.DB
}

// NewSpecStore creates a new SpecStore.
func NewSpecStore(db *gorm.DB) *SpecStore {
	return &SpecStore{db: db}
}

// AutoMigrate creates or updates the platform spec table.
func (s *SpecStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&PlatformSpecRecord{}); err != nil {
		return fmt.Errorf("auto-migrate platform_specs: %w", err)
	}
	return nil
}

// Upsert creates or replaces the override for a (platform, asset slot) and
// reactivates it if it had been retired.
func (s *SpecStore) Upsert(platform Platform, assetSlot string, spec Spec, updatedBy string) (*PlatformSpecRecord, error) {
	var record PlatformSpecRecord
	err := s.db.Where("platform = ? AND asset_slot = ?", string(platform), assetSlot).First(&record).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		record = PlatformSpecRecord{
			ID:        uuid.New().String(),
			Platform:  string(platform),
			AssetSlot: assetSlot,
			Spec:      SpecColumn(spec),
			Active:    true,
			UpdatedBy: updatedBy,
		}
		if err := s.db.Create(&record).Error; err != nil {
			return nil, fmt.Errorf("create platform spec: %w", err)
		}
		return &record, nil
	case err != nil:
		return nil, fmt.Errorf("get platform spec: %w", err)
	}

	updates := map[string]any{
		"spec":       SpecColumn(spec),
		"active":     true,
		"updated_by": updatedBy,
	}
	if err := s.db.Model(&record).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update platform spec: %w", err)
	}
	record.Spec = SpecColumn(spec)
	record.Active = true
	record.UpdatedBy = updatedBy
	return &record, nil
}

// Deactivate retires an override so resolution falls back to the compiled
// defaults. The record itself is kept.
func (s *SpecStore) Deactivate(platform Platform, assetSlot, updatedBy string) error {
	result := s.db.Model(&PlatformSpecRecord{}).
		Where("platform = ? AND asset_slot = ? AND active = ?", string(platform), assetSlot, true).
		Updates(map[string]any{"active": false, "updated_by": updatedBy})
	if result.Error != nil {
		return fmt.Errorf("deactivate platform spec: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSpecNotFound
	}
	return nil
}

// GetActive returns the active override for a (platform, asset slot), or
// nil when none exists.
func (s *SpecStore) GetActive(platform Platform, assetSlot string) (*PlatformSpecRecord, error) {
	var record PlatformSpecRecord
	err := s.db.Where("platform = ? AND asset_slot = ? AND active = ?", string(platform), assetSlot, true).
		First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get platform spec: %w", err)
	}
	return &record, nil
}

// ListActive returns active overrides, optionally filtered by platform.
func (s *SpecStore) ListActive(platform Platform) ([]PlatformSpecRecord, error) {
	query := s.db.Where("active = ?", true).Order("platform ASC, asset_slot ASC")
	if platform != "" {
		query = query.Where("platform = ?", string(platform))
	}
	var records []PlatformSpecRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list platform specs: %w", err)
	}
	return records, nil
}
