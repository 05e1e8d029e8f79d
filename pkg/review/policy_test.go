package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brandworks/material-registry/pkg/authz"
)

func TestCanChangeStatus(t *testing.T) {
	project := &ProjectRecord{
		ID:        "p1",
		Reviewers: JSONStringSlice{"rev1", "rev2"},
	}
	material := &MaterialRecord{
		ID:         "m1",
		ProjectID:  "p1",
		UploadedBy: "client1",
		Status:     StatusInReview,
	}

	admin := authz.Identity{Actor: "boss", Role: authz.RoleAdmin}
	assigned := authz.Identity{Actor: "rev1", Role: authz.RoleReviewer}
	unassigned := authz.Identity{Actor: "rev9", Role: authz.RoleReviewer}
	owner := authz.Identity{Actor: "client1", Role: authz.RoleClient}
	otherClient := authz.Identity{Actor: "client2", Role: authz.RoleClient}

	t.Run("admin is unrestricted", func(t *testing.T) {
		for _, target := range []MaterialStatus{StatusPending, StatusInReview, StatusApproved, StatusNeedsCorrection} {
			assert.True(t, CanChangeStatus(admin, material, project, target))
		}
	})

	t.Run("assigned reviewer may approve or request correction", func(t *testing.T) {
		assert.True(t, CanChangeStatus(assigned, material, project, StatusApproved))
		assert.True(t, CanChangeStatus(assigned, material, project, StatusNeedsCorrection))
		assert.False(t, CanChangeStatus(assigned, material, project, StatusPending))
		assert.False(t, CanChangeStatus(assigned, material, project, StatusInReview))
	})

	t.Run("unassigned reviewer is denied", func(t *testing.T) {
		assert.False(t, CanChangeStatus(unassigned, material, project, StatusApproved))
		assert.False(t, CanChangeStatus(unassigned, material, project, StatusNeedsCorrection))
	})

	t.Run("client may only reset own uploads to pending", func(t *testing.T) {
		assert.True(t, CanChangeStatus(owner, material, project, StatusPending))
		assert.False(t, CanChangeStatus(owner, material, project, StatusApproved))
		assert.False(t, CanChangeStatus(otherClient, material, project, StatusPending))
	})
}

func TestCanSubmit(t *testing.T) {
	admin := authz.Identity{Actor: "boss", Role: authz.RoleAdmin}
	reviewer := authz.Identity{Actor: "rev1", Role: authz.RoleReviewer}
	owner := authz.Identity{Actor: "client1", Role: authz.RoleClient}
	otherClient := authz.Identity{Actor: "client2", Role: authz.RoleClient}

	existing := &MaterialRecord{UploadedBy: "client1"}

	assert.True(t, CanSubmit(admin, nil))
	assert.True(t, CanSubmit(admin, existing))
	assert.True(t, CanSubmit(owner, nil))
	assert.True(t, CanSubmit(owner, existing))
	assert.False(t, CanSubmit(otherClient, existing))
	assert.False(t, CanSubmit(reviewer, nil))
	assert.False(t, CanSubmit(reviewer, existing))
}

func TestCanResolveApproval(t *testing.T) {
	approval := &ApprovalRecord{Reviewer: "rev1"}

	assert.True(t, CanResolveApproval(authz.Identity{Actor: "boss", Role: authz.RoleAdmin}, approval))
	assert.True(t, CanResolveApproval(authz.Identity{Actor: "rev1", Role: authz.RoleReviewer}, approval))
	assert.False(t, CanResolveApproval(authz.Identity{Actor: "rev2", Role: authz.RoleReviewer}, approval))
	assert.False(t, CanResolveApproval(authz.Identity{Actor: "rev1", Role: authz.RoleClient}, approval))
}
