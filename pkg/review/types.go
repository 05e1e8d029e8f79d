// Package review implements the material lifecycle: validated submissions,
// review status transitions, per-reviewer approvals, immutable version
// history with rollback, and the append-only audit ledger behind them.
package review

import "errors"

// MaterialStatus is the review state of a material. Approvals reuse the
// same values restricted to pending/approved/needs_correction.
type MaterialStatus string

const (
	StatusPending         MaterialStatus = "pending"
	StatusInReview        MaterialStatus = "in_review"
	StatusApproved        MaterialStatus = "approved"
	StatusNeedsCorrection MaterialStatus = "needs_correction"
)

// Valid reports whether s is a known material status.
func (s MaterialStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusApproved, StatusNeedsCorrection:
		return true
	}
	return false
}

// ProjectStatus is the state of a project.
type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "draft"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectDraft, ProjectInProgress, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// MaterialType distinguishes image deliverables from plain documents.
const (
	MaterialTypeImage    = "image"
	MaterialTypeDocument = "document"
)

// AuditAction classifies an audit ledger entry.
type AuditAction string

const (
	ActionCreate   AuditAction = "create"
	ActionUpdate   AuditAction = "update"
	ActionApprove  AuditAction = "approve"
	ActionReject   AuditAction = "reject"
	ActionUpload   AuditAction = "upload"
	ActionRollback AuditAction = "rollback"
	ActionSync     AuditAction = "sync_storage"
)

// Entity types referenced by audit ledger entries.
const (
	EntityProject  = "Project"
	EntityMaterial = "Material"
	EntityApproval = "Approval"
)

// Sentinel errors for the lifecycle engine. Transport layers map these to
// status codes; ErrForbidden is deliberately distinct from the not-found
// errors so denials never read as absence.
var (
	ErrForbidden        = errors.New("forbidden")
	ErrProjectNotFound  = errors.New("project not found")
	ErrMaterialNotFound = errors.New("material not found")
	ErrVersionNotFound  = errors.New("version not found")
	ErrApprovalNotFound = errors.New("approval not found")
	ErrSlotConflict     = errors.New("concurrent write to the same asset slot")
)
