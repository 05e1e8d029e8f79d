package review

import "github.com/brandworks/material-registry/pkg/authz"

// CanChangeStatus decides whether an actor may move a material to the
// target status. It is a pure function with no side effects:
//   - Admins are unrestricted.
//   - Reviewers may move a material to approved or needs_correction, and
//     only when assigned to its project.
//   - Clients may only move their own uploads back to pending.
func CanChangeStatus(id authz.Identity, material *MaterialRecord, project *ProjectRecord, target MaterialStatus) bool {
	switch id.Role {
	case authz.RoleAdmin:
		return true
	case authz.RoleReviewer:
		if target != StatusApproved && target != StatusNeedsCorrection {
			return false
		}
		return project.Reviewers.Contains(id.Actor)
	case authz.RoleClient:
		return target == StatusPending && material.UploadedBy == id.Actor
	}
	return false
}

// CanSubmit decides whether an actor may upload to a slot. existing is nil
// for a first upload. Reviewers review, they do not upload.
func CanSubmit(id authz.Identity, existing *MaterialRecord) bool {
	switch id.Role {
	case authz.RoleAdmin:
		return true
	case authz.RoleClient:
		return existing == nil || existing.UploadedBy == id.Actor
	}
	return false
}

// CanResolveApproval decides whether an actor may resolve an approval.
// Only the approval's own reviewer or an admin may act on it.
func CanResolveApproval(id authz.Identity, approval *ApprovalRecord) bool {
	if id.Role == authz.RoleAdmin {
		return true
	}
	return id.Role == authz.RoleReviewer && approval.Reviewer == id.Actor
}

// CanSeeProject decides whether an actor may see a project at all: admins
// see everything, reviewers the projects they are assigned to, clients the
// projects they created.
func CanSeeProject(id authz.Identity, project *ProjectRecord) bool {
	switch id.Role {
	case authz.RoleAdmin:
		return true
	case authz.RoleReviewer:
		return project.Reviewers.Contains(id.Actor)
	case authz.RoleClient:
		return project.CreatedBy == id.Actor
	}
	return false
}
