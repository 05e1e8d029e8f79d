package review

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONStringSlice is a custom GORM type for []string stored as JSON.
type JSONStringSlice []string

// Scan implements the sql.Scanner interface for JSONStringSlice.
func (s *JSONStringSlice) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	default:
		return fmt.Errorf("unsupported type for JSONStringSlice: %T", value)
	}
	return json.Unmarshal(bytes, s)
}

// Value implements the driver.Valuer interface for JSONStringSlice.
func (s JSONStringSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Contains reports whether the slice has the given element.
func (s JSONStringSlice) Contains(v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

// JSONAny is a custom GORM type for map[string]any stored as JSON.
type JSONAny map[string]any

// Scan implements the sql.Scanner interface for JSONAny.
func (m *JSONAny) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	default:
		return fmt.Errorf("unsupported type for JSONAny: %T", value)
	}
	return json.Unmarshal(bytes, m)
}

// Value implements the driver.Valuer interface for JSONAny.
func (m JSONAny) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ProjectRecord groups the materials for one client application.
type ProjectRecord struct {
	ID        string          `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Name      string          `gorm:"column:name;not null" json:"name"`
	Company   string          `gorm:"column:company" json:"company,omitempty"`
	AppName   string          `gorm:"column:app_name" json:"appName,omitempty"`
	Status    ProjectStatus   `gorm:"column:status;index:idx_project_status;default:draft;not null" json:"status"`
	Deadline  *time.Time      `gorm:"column:deadline" json:"deadline,omitempty"`
	CreatedBy string          `gorm:"column:created_by;index:idx_project_creator;not null" json:"createdBy"`
	Reviewers JSONStringSlice `gorm:"column:reviewers;type:text" json:"reviewers"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (ProjectRecord) TableName() string { return "projects" }

// MaterialRecord is the current deliverable occupying one asset slot within
// a project. The unique slot index doubles as the concurrency primitive for
// racing submissions: the loser of a race fails with a conflict instead of
// corrupting version numbering.
type MaterialRecord struct {
	ID              string         `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	ProjectID       string         `gorm:"column:project_id;uniqueIndex:idx_material_slot,priority:1;not null" json:"projectId"`
	Platform        string         `gorm:"column:platform;uniqueIndex:idx_material_slot,priority:2;not null" json:"platform"`
	AssetSlot       string         `gorm:"column:asset_slot;uniqueIndex:idx_material_slot,priority:3;not null" json:"assetSlot"`
	MaterialType    string         `gorm:"column:material_type;default:image;not null" json:"materialType"`
	FileName        string         `gorm:"column:file_name;not null" json:"fileName"`
	FileSize        int64          `gorm:"column:file_size;not null" json:"fileSize"`
	FileHash        string         `gorm:"column:file_hash;not null" json:"fileHash"`
	MIMEType        string         `gorm:"column:mime_type;not null" json:"mimeType"`
	Width           *int           `gorm:"column:width" json:"width,omitempty"`
	Height          *int           `gorm:"column:height" json:"height,omitempty"`
	HasTransparency bool           `gorm:"column:has_transparency;not null" json:"hasTransparency"`
	Status          MaterialStatus `gorm:"column:status;index:idx_material_status;default:pending;not null" json:"status"`
	Comments        string         `gorm:"column:comments" json:"comments,omitempty"`
	UploadedBy      string         `gorm:"column:uploaded_by;index:idx_material_uploader;not null" json:"uploadedBy"`
	StorageURL      string         `gorm:"column:storage_url" json:"storageUrl,omitempty"`
	StoragePending  bool           `gorm:"column:storage_pending;not null" json:"storagePending"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (MaterialRecord) TableName() string { return "materials" }

// MaterialVersionRecord is an immutable snapshot of a material's file
// metadata. Version numbers are contiguous from 1 per material; the unique
// index backstops the in-transaction max+1 assignment against races.
type MaterialVersionRecord struct {
	ID              string    `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	MaterialID      string    `gorm:"column:material_id;uniqueIndex:idx_version_number,priority:1;not null" json:"materialId"`
	VersionNumber   int       `gorm:"column:version_number;uniqueIndex:idx_version_number,priority:2;not null" json:"versionNumber"`
	FileName        string    `gorm:"column:file_name;not null" json:"fileName"`
	FileSize        int64     `gorm:"column:file_size;not null" json:"fileSize"`
	FileHash        string    `gorm:"column:file_hash;not null" json:"fileHash"`
	MIMEType        string    `gorm:"column:mime_type;not null" json:"mimeType"`
	Width           *int      `gorm:"column:width" json:"width,omitempty"`
	Height          *int      `gorm:"column:height" json:"height,omitempty"`
	HasTransparency bool      `gorm:"column:has_transparency;not null" json:"hasTransparency"`
	StorageURL      string    `gorm:"column:storage_url" json:"storageUrl,omitempty"`
	UploadedBy      string    `gorm:"column:uploaded_by;not null" json:"uploadedBy"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName returns the GORM table name.
func (MaterialVersionRecord) TableName() string { return "material_versions" }

// ApprovalRecord is one reviewer's judgment on a material, unique per
// (material, reviewer). ResolvedAt is set only on terminal transitions.
type ApprovalRecord struct {
	ID         string         `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	MaterialID string         `gorm:"column:material_id;uniqueIndex:idx_approval_reviewer,priority:1;not null" json:"materialId"`
	Reviewer   string         `gorm:"column:reviewer;uniqueIndex:idx_approval_reviewer,priority:2;index:idx_approval_by_reviewer;not null" json:"reviewer"`
	Status     MaterialStatus `gorm:"column:status;default:pending;not null" json:"status"`
	Comments   string         `gorm:"column:comments" json:"comments,omitempty"`
	ResolvedAt *time.Time     `gorm:"column:resolved_at" json:"resolvedAt,omitempty"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (ApprovalRecord) TableName() string { return "approvals" }

// AuditEventRecord is an immutable audit ledger entry. Entries carry an
// entity reference rather than a foreign key: the ledger outlives the
// entities it describes and no cascade ever touches it.
type AuditEventRecord struct {
	ID         string      `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Action     AuditAction `gorm:"column:action;index:idx_audit_action_time,priority:1;not null" json:"action"`
	Actor      string      `gorm:"column:actor;index:idx_audit_actor_time,priority:1;not null" json:"actor"`
	EntityType string      `gorm:"column:entity_type;index:idx_audit_entity,priority:1;not null" json:"entityType"`
	EntityID   string      `gorm:"column:entity_id;index:idx_audit_entity,priority:2;not null" json:"entityId"`
	Payload    JSONAny     `gorm:"column:payload;type:text" json:"payload,omitempty"`
	IPAddress  string      `gorm:"column:ip_address" json:"ipAddress,omitempty"`
	UserAgent  string      `gorm:"column:user_agent" json:"userAgent,omitempty"`
	CreatedAt  time.Time   `gorm:"column:created_at;index:idx_audit_action_time,priority:2;index:idx_audit_actor_time,priority:2;autoCreateTime" json:"createdAt"`
}

// TableName returns the GORM table name.
func (AuditEventRecord) TableName() string { return "audit_events" }
