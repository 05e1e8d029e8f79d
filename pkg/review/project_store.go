package review

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ProjectStore provides CRUD operations for project records.
type ProjectStore struct {
	db *gorm.DB
}

// NewProjectStore creates a new ProjectStore.
func NewProjectStore(db *gorm.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// AutoMigrate creates or updates the projects table.
func (s *ProjectStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&ProjectRecord{}); err != nil {
		return fmt.Errorf("auto-migrate projects: %w", err)
	}
	return nil
}

// Create inserts a new project.
func (s *ProjectStore) Create(record *ProjectRecord) error {
	if record.Status == "" {
		record.Status = ProjectDraft
	}
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// Get retrieves a project by ID. Returns nil, nil if no record exists.
func (s *ProjectStore) Get(id string) (*ProjectRecord, error) {
	var record ProjectRecord
	err := s.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &record, nil
}

// List returns paginated projects, optionally filtered by status.
func (s *ProjectStore) List(status ProjectStatus, pageSize int, pageToken string) ([]ProjectRecord, string, int, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	baseQuery := s.db.Model(&ProjectRecord{})
	if status != "" {
		baseQuery = baseQuery.Where("status = ?", string(status))
	}

	var totalSize int64
	if err := baseQuery.Count(&totalSize).Error; err != nil {
		return nil, "", 0, fmt.Errorf("count projects: %w", err)
	}

	query := s.db.Order("created_at DESC").Limit(pageSize + 1)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	if pageToken != "" {
		t, err := time.Parse(time.RFC3339Nano, pageToken)
		if err != nil {
			return nil, "", 0, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.Where("created_at < ?", t)
	}

	var records []ProjectRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, "", 0, fmt.Errorf("list projects: %w", err)
	}

	var nextToken string
	if len(records) > pageSize {
		nextToken = records[pageSize-1].CreatedAt.Format(time.RFC3339Nano)
		records = records[:pageSize]
	}

	return records, nextToken, int(totalSize), nil
}

// UpdateStatus updates the status of a project.
func (s *ProjectStore) UpdateStatus(id string, status ProjectStatus) error {
	result := s.db.Model(&ProjectRecord{}).Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("update project status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// SetReviewers replaces the assigned reviewer set of a project.
func (s *ProjectStore) SetReviewers(id string, reviewers []string) error {
	result := s.db.Model(&ProjectRecord{}).Where("id = ?", id).
		Update("reviewers", JSONStringSlice(reviewers))
	if result.Error != nil {
		return fmt.Errorf("set project reviewers: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// ListAll returns every project, newest first. The dashboard aggregation
// filters by visibility in memory.
func (s *ProjectStore) ListAll() ([]ProjectRecord, error) {
	var records []ProjectRecord
	if err := s.db.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list all projects: %w", err)
	}
	return records, nil
}
