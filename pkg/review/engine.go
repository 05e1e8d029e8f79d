package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandworks/material-registry/pkg/assetcheck"
	"github.com/brandworks/material-registry/pkg/audit"
	"github.com/brandworks/material-registry/pkg/authz"
	"github.com/brandworks/material-registry/pkg/specs"
)

// Engine owns the material lifecycle. Every mutating operation runs as one
// transaction covering the material upsert, the version append when
// applicable, and the audit append: a partially applied mutation is a
// data-integrity bug. Notifications and storage sync happen after commit,
// best-effort, and never roll a committed mutation back.
type Engine struct {
	db        *gorm.DB
	validator *assetcheck.Validator
	machine   *StatusMachine
	notifier  Notifier
	syncer    SyncEnqueuer
	logger    *slog.Logger

	projects  *ProjectStore
	materials *MaterialStore
	versions  *VersionStore
	approvals *ApprovalStore
	auditLog  *AuditStore
}

// NewEngine creates an Engine. notifier and syncer may be nil, which
// disables the corresponding post-commit side effect.
func NewEngine(db *gorm.DB, validator *assetcheck.Validator, notifier Notifier, syncer SyncEnqueuer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		db:        db,
		validator: validator,
		machine:   NewStatusMachine(),
		notifier:  notifier,
		syncer:    syncer,
		logger:    logger,
		projects:  NewProjectStore(db),
		materials: NewMaterialStore(db),
		versions:  NewVersionStore(db),
		approvals: NewApprovalStore(db),
		auditLog:  NewAuditStore(db),
	}
}

// AutoMigrate creates or updates all lifecycle tables.
func (e *Engine) AutoMigrate() error {
	for _, migrate := range []func() error{
		e.projects.AutoMigrate,
		e.materials.AutoMigrate,
		e.versions.AutoMigrate,
		e.approvals.AutoMigrate,
		e.auditLog.AutoMigrate,
	} {
		if err := migrate(); err != nil {
			return err
		}
	}
	return nil
}

// Store accessors for read paths that need no lifecycle mediation.

func (e *Engine) Projects() *ProjectStore   { return e.projects }
func (e *Engine) Materials() *MaterialStore { return e.materials }
func (e *Engine) Versions() *VersionStore   { return e.versions }
func (e *Engine) Approvals() *ApprovalStore { return e.approvals }
func (e *Engine) AuditLog() *AuditStore     { return e.auditLog }

// Machine exposes the status machine, e.g. for listing allowed transitions.
func (e *Engine) Machine() *StatusMachine { return e.machine }

func (e *Engine) newAuditEvent(ctx context.Context, action AuditAction, actor, entityType, entityID string, payload JSONAny) *AuditEventRecord {
	origin := audit.OriginFromContext(ctx)
	return &AuditEventRecord{
		ID:         uuid.New().String(),
		Action:     action,
		Actor:      actor,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    payload,
		IPAddress:  origin.IPAddress,
		UserAgent:  origin.UserAgent,
	}
}

// SubmitRequest carries one upload into the lifecycle.
type SubmitRequest struct {
	ProjectID string
	Platform  specs.Platform
	AssetSlot string
	FileName  string
	Content   []byte
	Identity  authz.Identity
}

// Submit validates the upload and, on acceptance, upserts the slot's
// material, appends the next version, fans out pending approvals to the
// project's assigned reviewers, and writes an upload audit entry, all in
// one transaction. On rejection nothing is written and the typed rejection
// is returned. Racing submissions to the same slot serialize on the slot's
// unique constraint; the loser gets ErrSlotConflict.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (*MaterialRecord, *assetcheck.Result, error) {
	project, err := e.projects.Get(req.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, ErrProjectNotFound
	}

	existing, err := e.materials.GetBySlot(req.ProjectID, string(req.Platform), req.AssetSlot)
	if err != nil {
		return nil, nil, err
	}
	if !CanSubmit(req.Identity, existing) {
		return nil, nil, ErrForbidden
	}

	result, err := e.validator.Validate(req.Platform, req.AssetSlot, req.Content)
	if err != nil {
		return nil, nil, err
	}

	var material *MaterialRecord
	err = e.db.Transaction(func(tx *gorm.DB) error {
		materials := NewMaterialStore(tx)
		versions := NewVersionStore(tx)
		approvals := NewApprovalStore(tx)
		auditLog := NewAuditStore(tx)

		if existing == nil {
			material = &MaterialRecord{
				ID:           uuid.New().String(),
				ProjectID:    req.ProjectID,
				Platform:     string(req.Platform),
				AssetSlot:    req.AssetSlot,
				MaterialType: MaterialTypeImage,
				Status:       StatusPending,
				UploadedBy:   req.Identity.Actor,
			}
			applyResult(material, req.FileName, result)
			if err := materials.Create(material); err != nil {
				return err
			}
		} else {
			material = existing
			material.Status = StatusPending
			applyResult(material, req.FileName, result)
			if err := materials.Save(material); err != nil {
				return err
			}
			if err := approvals.ReopenForMaterial(material.ID); err != nil {
				return err
			}
		}

		number, err := versions.NextVersionNumber(material.ID)
		if err != nil {
			return err
		}
		version := &MaterialVersionRecord{
			ID:              uuid.New().String(),
			MaterialID:      material.ID,
			VersionNumber:   number,
			FileName:        material.FileName,
			FileSize:        material.FileSize,
			FileHash:        material.FileHash,
			MIMEType:        material.MIMEType,
			Width:           material.Width,
			Height:          material.Height,
			HasTransparency: material.HasTransparency,
			UploadedBy:      req.Identity.Actor,
		}
		if err := versions.Append(version); err != nil {
			return err
		}

		for _, reviewer := range project.Reviewers {
			current, err := approvals.GetByReviewer(material.ID, reviewer)
			if err != nil {
				return err
			}
			if current != nil {
				continue
			}
			if err := approvals.Create(&ApprovalRecord{
				ID:         uuid.New().String(),
				MaterialID: material.ID,
				Reviewer:   reviewer,
				Status:     StatusPending,
			}); err != nil {
				return err
			}
		}

		return auditLog.Append(e.newAuditEvent(ctx, ActionUpload, req.Identity.Actor,
			EntityMaterial, material.ID, JSONAny{
				"platform":           string(req.Platform),
				"assetSlot":          req.AssetSlot,
				"fileSize":           result.FileSize,
				"versionNumber":      number,
				"validationWarnings": result.Warnings,
				"validationStatus":   "passed",
			}))
	})
	if err != nil {
		return nil, nil, err
	}

	// Post-commit side effects: best-effort, never propagated.
	if e.notifier != nil {
		for _, reviewer := range project.Reviewers {
			e.notifier.NotifyApprovalRequested(ctx, material, reviewer)
		}
	}
	if e.syncer != nil {
		if err := e.syncer.Enqueue(ctx, material.ID, req.FileName, req.Content); err != nil {
			e.logger.Error("failed to enqueue storage sync",
				"error", err, "materialID", material.ID)
		}
	}

	return material, result, nil
}

func applyResult(material *MaterialRecord, fileName string, result *assetcheck.Result) {
	material.FileName = fileName
	material.FileSize = result.FileSize
	material.FileHash = result.FileHash
	material.MIMEType = result.MIMEType
	material.Width = result.Width
	material.Height = result.Height
	material.HasTransparency = result.HasTransparency
	material.Comments = ""
	material.StorageURL = ""
	material.StoragePending = true
}

// ChangeStatus moves a material to a new status after checking the actor's
// authorization and the transition rules. A denied attempt mutates nothing
// and leaves no audit entry.
func (e *Engine) ChangeStatus(ctx context.Context, materialID string, newStatus MaterialStatus, id authz.Identity, comments string) (*MaterialRecord, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("unknown status %q", newStatus)
	}

	material, err := e.materials.Get(materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, ErrMaterialNotFound
	}
	project, err := e.projects.Get(material.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	if !CanChangeStatus(id, material, project, newStatus) {
		return nil, ErrForbidden
	}
	if err := e.machine.ValidateTransition(material.Status, newStatus); err != nil {
		return nil, err
	}

	oldStatus := material.Status
	err = e.db.Transaction(func(tx *gorm.DB) error {
		material.Status = newStatus
		if comments != "" {
			material.Comments = comments
		}
		if err := NewMaterialStore(tx).Save(material); err != nil {
			return err
		}
		return NewAuditStore(tx).Append(e.newAuditEvent(ctx, ActionUpdate, id.Actor,
			EntityMaterial, material.ID, JSONAny{
				"oldStatus": string(oldStatus),
				"newStatus": string(newStatus),
				"comments":  comments,
			}))
	})
	if err != nil {
		return nil, err
	}

	if e.notifier != nil && oldStatus != newStatus {
		e.notifier.NotifyStatusChange(ctx, material, oldStatus, newStatus, id.Actor)
	}
	return material, nil
}

// Approve resolves an approval in favor of the material.
func (e *Engine) Approve(ctx context.Context, approvalID string, id authz.Identity, comments string) (*ApprovalRecord, error) {
	return e.resolveApproval(ctx, approvalID, id, comments, StatusApproved, ActionApprove)
}

// Reject resolves an approval against the material, requesting correction.
func (e *Engine) Reject(ctx context.Context, approvalID string, id authz.Identity, comments string) (*ApprovalRecord, error) {
	return e.resolveApproval(ctx, approvalID, id, comments, StatusNeedsCorrection, ActionReject)
}

// resolveApproval moves one approval to a terminal state and cascades the
// material's status to match that single approval's outcome. With several
// reviewers the last one to act determines the material's visible status;
// that last-write-wins behavior is inherited and deliberately preserved.
func (e *Engine) resolveApproval(ctx context.Context, approvalID string, id authz.Identity, comments string, target MaterialStatus, action AuditAction) (*ApprovalRecord, error) {
	approval, err := e.approvals.Get(approvalID)
	if err != nil {
		return nil, err
	}
	if approval == nil {
		return nil, ErrApprovalNotFound
	}
	if !CanResolveApproval(id, approval) {
		return nil, ErrForbidden
	}

	material, err := e.materials.Get(approval.MaterialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, ErrMaterialNotFound
	}

	oldStatus := material.Status
	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := NewApprovalStore(tx).Resolve(approval.ID, target, comments); err != nil {
			return err
		}
		material.Status = target
		if err := NewMaterialStore(tx).Save(material); err != nil {
			return err
		}
		return NewAuditStore(tx).Append(e.newAuditEvent(ctx, action, id.Actor,
			EntityApproval, approval.ID, JSONAny{
				"materialId": material.ID,
				"reviewer":   approval.Reviewer,
				"oldStatus":  string(oldStatus),
				"newStatus":  string(target),
				"comments":   comments,
			}))
	})
	if err != nil {
		return nil, err
	}

	approval.Status = target
	approval.Comments = comments
	now := time.Now()
	approval.ResolvedAt = &now

	if e.notifier != nil && oldStatus != target {
		e.notifier.NotifyStatusChange(ctx, material, oldStatus, target, id.Actor)
	}
	return approval, nil
}

// Rollback copies a version's file metadata back onto the material's
// current view and resets its status to pending. The rollback is a move,
// not a new deliverable: no version number is allocated and the validator
// does not re-run, since a previously accepted version is trusted.
func (e *Engine) Rollback(ctx context.Context, materialID, versionID string, id authz.Identity) (*MaterialRecord, error) {
	material, err := e.materials.Get(materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, ErrMaterialNotFound
	}
	project, err := e.projects.Get(material.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if !CanChangeStatus(id, material, project, StatusPending) {
		return nil, ErrForbidden
	}

	version, err := e.versions.Get(versionID)
	if err != nil {
		return nil, err
	}
	if version == nil || version.MaterialID != materialID {
		return nil, ErrVersionNotFound
	}

	oldStatus := material.Status
	err = e.db.Transaction(func(tx *gorm.DB) error {
		material.FileName = version.FileName
		material.FileSize = version.FileSize
		material.FileHash = version.FileHash
		material.MIMEType = version.MIMEType
		material.Width = version.Width
		material.Height = version.Height
		material.HasTransparency = version.HasTransparency
		material.StorageURL = version.StorageURL
		material.StoragePending = version.StorageURL == ""
		material.Status = StatusPending
		if err := NewMaterialStore(tx).Save(material); err != nil {
			return err
		}
		return NewAuditStore(tx).Append(e.newAuditEvent(ctx, ActionRollback, id.Actor,
			EntityMaterial, material.ID, JSONAny{
				"versionId":     version.ID,
				"versionNumber": version.VersionNumber,
			}))
	})
	if err != nil {
		return nil, err
	}

	if e.notifier != nil && oldStatus != StatusPending {
		e.notifier.NotifyStatusChange(ctx, material, oldStatus, StatusPending, id.Actor)
	}
	return material, nil
}

// CreateProjectRequest carries a new project definition.
type CreateProjectRequest struct {
	Name      string
	Company   string
	AppName   string
	Deadline  *time.Time
	Reviewers []string
	Identity  authz.Identity
}

// CreateProject creates a project owned by the requesting actor.
func (e *Engine) CreateProject(ctx context.Context, req CreateProjectRequest) (*ProjectRecord, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	project := &ProjectRecord{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Company:   req.Company,
		AppName:   req.AppName,
		Status:    ProjectDraft,
		Deadline:  req.Deadline,
		CreatedBy: req.Identity.Actor,
		Reviewers: JSONStringSlice(req.Reviewers),
	}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := NewProjectStore(tx).Create(project); err != nil {
			return err
		}
		return NewAuditStore(tx).Append(e.newAuditEvent(ctx, ActionCreate, req.Identity.Actor,
			EntityProject, project.ID, JSONAny{
				"projectName": project.Name,
				"company":     project.Company,
				"appName":     project.AppName,
			}))
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProjectStatus moves a project to a new status. Only an admin or the
// project's creator may do so.
func (e *Engine) UpdateProjectStatus(ctx context.Context, projectID string, status ProjectStatus, id authz.Identity) (*ProjectRecord, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown project status %q", status)
	}
	project, err := e.projects.Get(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if !id.IsAdmin() && project.CreatedBy != id.Actor {
		return nil, ErrForbidden
	}

	oldStatus := project.Status
	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := NewProjectStore(tx).UpdateStatus(projectID, status); err != nil {
			return err
		}
		return NewAuditStore(tx).Append(e.newAuditEvent(ctx, ActionUpdate, id.Actor,
			EntityProject, projectID, JSONAny{
				"oldStatus": string(oldStatus),
				"newStatus": string(status),
			}))
	})
	if err != nil {
		return nil, err
	}
	project.Status = status
	return project, nil
}

// AssignReviewers replaces a project's reviewer set. Admin only. The new
// set applies to future submissions; approvals already fanned out to
// removed reviewers are left untouched.
func (e *Engine) AssignReviewers(ctx context.Context, projectID string, reviewers []string, id authz.Identity) (*ProjectRecord, error) {
	if !id.IsAdmin() {
		return nil, ErrForbidden
	}
	project, err := e.projects.Get(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := NewProjectStore(tx).SetReviewers(projectID, reviewers); err != nil {
			return err
		}
		return NewAuditStore(tx).Append(e.newAuditEvent(ctx, ActionUpdate, id.Actor,
			EntityProject, projectID, JSONAny{
				"reviewers": reviewers,
			}))
	})
	if err != nil {
		return nil, err
	}
	project.Reviewers = JSONStringSlice(reviewers)
	return project, nil
}

// ProjectStats computes the derived review progress for a project.
func (e *Engine) ProjectStats(projectID string) (*ProjectStats, error) {
	project, err := e.projects.Get(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	materials, err := e.materials.ListByProject(projectID, "", "")
	if err != nil {
		return nil, err
	}
	stats := BuildProjectStats(project, materials, time.Now())
	return &stats, nil
}

// DashboardStats aggregates progress across the projects visible to the
// identity: admins see all, reviewers their assignments, clients their own.
func (e *Engine) DashboardStats(id authz.Identity) (*DashboardStats, error) {
	projects, err := e.projects.ListAll()
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{
		ProjectsByStatus:    make(map[ProjectStatus]int),
		MaterialsByStatus:   make(map[MaterialStatus]int),
		MaterialsByPlatform: make(map[string]int),
	}
	now := time.Now()
	for i := range projects {
		project := &projects[i]
		if !CanSeeProject(id, project) {
			continue
		}
		stats.TotalProjects++
		stats.ProjectsByStatus[project.Status]++
		if IsOverdue(project, now) {
			stats.OverdueProjects++
		}
		materials, err := e.materials.ListByProject(project.ID, "", "")
		if err != nil {
			return nil, err
		}
		for _, m := range materials {
			stats.TotalMaterials++
			stats.MaterialsByStatus[m.Status]++
			stats.MaterialsByPlatform[m.Platform]++
		}
	}
	return stats, nil
}
