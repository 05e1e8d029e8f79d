package review

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brandworks/material-registry/pkg/assetcheck"
	"github.com/brandworks/material-registry/pkg/authz"
	"github.com/brandworks/material-registry/pkg/specs"
)

var (
	adminID   = authz.Identity{Actor: "admin@example.com", Role: authz.RoleAdmin}
	clientID  = authz.Identity{Actor: "client@example.com", Role: authz.RoleClient}
	client2ID = authz.Identity{Actor: "intruder@example.com", Role: authz.RoleClient}
	rev1ID    = authz.Identity{Actor: "rev1@example.com", Role: authz.RoleReviewer}
	rev2ID    = authz.Identity{Actor: "rev2@example.com", Role: authz.RoleReviewer}
)

// fakeSyncer records storage sync enqueues.
type fakeSyncer struct {
	materialIDs []string
	failWith    error
}

func (f *fakeSyncer) Enqueue(_ context.Context, materialID, _ string, _ []byte) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.materialIDs = append(f.materialIDs, materialID)
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *fakeSyncer) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	specStore := specs.NewSpecStore(db)
	require.NoError(t, specStore.AutoMigrate())
	validator := assetcheck.NewValidator(specs.NewRegistry(specStore))

	syncer := &fakeSyncer{}
	engine := NewEngine(db, validator, NewSlogNotifier(nil), syncer, nil)
	require.NoError(t, engine.AutoMigrate())
	return engine, syncer
}

func newTestProject(t *testing.T, engine *Engine, reviewers ...string) *ProjectRecord {
	t.Helper()
	project, err := engine.CreateProject(context.Background(), CreateProjectRequest{
		Name:      "summer launch",
		Company:   "Acme Streaming",
		AppName:   "acme-tv",
		Reviewers: reviewers,
		Identity:  adminID,
	})
	require.NoError(t, err)
	return project
}

// logoPNG encodes a width x height PNG whose pixels carry the given alpha.
func logoPNG(t *testing.T, width, height int, alpha uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: alpha})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func submitLogo(t *testing.T, engine *Engine, projectID string, id authz.Identity, data []byte) *MaterialRecord {
	t.Helper()
	material, _, err := engine.Submit(context.Background(), SubmitRequest{
		ProjectID: projectID,
		Platform:  specs.PlatformWebBrand,
		AssetSlot: "logo",
		FileName:  "logo.png",
		Content:   data,
		Identity:  id,
	})
	require.NoError(t, err)
	return material
}

func TestEngine_SubmitAccepted(t *testing.T) {
	engine, syncer := newTestEngine(t)
	project := newTestProject(t, engine, rev1ID.Actor, rev2ID.Actor)

	material, result, err := engine.Submit(context.Background(), SubmitRequest{
		ProjectID: project.ID,
		Platform:  specs.PlatformWebBrand,
		AssetSlot: "logo",
		FileName:  "logo.png",
		Content:   logoPNG(t, 482, 108, 0),
		Identity:  clientID,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, material.Status)
	assert.Equal(t, clientID.Actor, material.UploadedBy)
	assert.Equal(t, 482, *material.Width)
	assert.True(t, material.HasTransparency)
	assert.True(t, material.StoragePending)
	assert.Empty(t, result.Warnings)

	// Version #1 appended.
	versions, err := engine.Versions().ListByMaterial(material.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].VersionNumber)
	assert.Equal(t, material.FileHash, versions[0].FileHash)

	// Approval fan-out: one pending approval per assigned reviewer.
	approvals, err := engine.Approvals().ListByMaterial(material.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 2)
	for _, a := range approvals {
		assert.Equal(t, StatusPending, a.Status)
		assert.Nil(t, a.ResolvedAt)
	}

	// Upload audit entry with validation payload.
	events, _, _, err := engine.AuditLog().ListByEntity(EntityMaterial, material.ID, 10, "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionUpload, events[0].Action)
	assert.Equal(t, "passed", events[0].Payload["validationStatus"])

	// Storage sync enqueued post-commit.
	assert.Equal(t, []string{material.ID}, syncer.materialIDs)
}

func TestEngine_SubmitRejectedLeavesNoState(t *testing.T) {
	engine, syncer := newTestEngine(t)
	project := newTestProject(t, engine, rev1ID.Actor)

	_, _, err := engine.Submit(context.Background(), SubmitRequest{
		ProjectID: project.ID,
		Platform:  specs.PlatformWebBrand,
		AssetSlot: "logo",
		FileName:  "logo.png",
		Content:   logoPNG(t, 480, 108, 0),
		Identity:  clientID,
	})
	rej, ok := assetcheck.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, assetcheck.CodeDimensionMismatch, rej.Code)
	assert.Equal(t, 482, rej.Details["expected"])
	assert.Equal(t, 480, rej.Details["actual"])

	// No material, no version, no upload audit entry, no sync.
	material, err := engine.Materials().GetBySlot(project.ID, string(specs.PlatformWebBrand), "logo")
	require.NoError(t, err)
	assert.Nil(t, material)

	events, _, total, err := engine.AuditLog().ListAll(ActionUpload, "", 10, "")
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Zero(t, total)
	assert.Empty(t, syncer.materialIDs)
}

func TestEngine_SubmitOpaqueRejected(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := newTestProject(t, engine)

	_, _, err := engine.Submit(context.Background(), SubmitRequest{
		ProjectID: project.ID,
		Platform:  specs.PlatformWebBrand,
		AssetSlot: "logo",
		FileName:  "logo.png",
		Content:   logoPNG(t, 482, 108, 255),
		Identity:  clientID,
	})
	rej, ok := assetcheck.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, assetcheck.CodeTransparencyRequired, rej.Code)
}

func TestEngine_ResubmitAppendsVersionAndReopensReview(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := newTestProject(t, engine, rev1ID.Actor)
	ctx := context.Background()

	material := submitLogo(t, engine, project.ID, clientID, logoPNG(t, 482, 108, 0))

	// Reviewer sends it back for correction.
	approvals, err := engine.Approvals().ListByMaterial(material.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	_, err = engine.Reject(ctx, approvals[0].ID, rev1ID, "logo is blurry")
	require.NoError(t, err)

	current, err := engine.Materials().Get(material.ID)
	require.NoError(t, err)
	require.Equal(t, StatusNeedsCorrection, current.Status)

	// Client re-uploads to the needs_correction slot.
	firstHash := material.FileHash
	resubmitted := submitLogo(t, engine, project.ID, clientID, logoPNG(t, 482, 108, 128))
	assert.Equal(t, material.ID, resubmitted.ID, "re-upload mutates the slot's material, not a sibling")
	assert.Equal(t, StatusPending, resubmitted.Status)
	assert.NotEqual(t, firstHash, resubmitted.FileHash)

	// Version history: #2 appended, #1 retrievable unchanged.
	versions, err := engine.Versions().ListByMaterial(material.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].VersionNumber)
	assert.Equal(t, 1, versions[1].VersionNumber)
	assert.Equal(t, firstHash, versions[1].FileHash)

	// The reviewer's approval is pending again.
	approvals, err = engine.Approvals().ListByMaterial(material.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	assert.Equal(t, StatusPending, approvals[0].Status)
	assert.Nil(t, approvals[0].ResolvedAt)
}

func TestEngine_SubmitAuthorization(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := newTestProject(t, engine)
	ctx := context.Background()

	submitLogo(t, engine, project.ID, clientID, logoPNG(t, 482, 108, 0))

	t.Run("another client cannot overwrite the slot", func(t *testing.T) {
		_, _, err := engine.Submit(ctx, SubmitRequest{
			ProjectID: project.ID,
			Platform:  specs.PlatformWebBrand,
			AssetSlot: "logo",
			FileName:  "logo.png",
			Content:   logoPNG(t, 482, 108, 0),
			Identity:  client2ID,
		})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("reviewers do not upload", func(t *testing.T) {
		_, _, err := engine.Submit(ctx, SubmitRequest{
			ProjectID: project.ID,
			Platform:  specs.PlatformWebBrand,
			AssetSlot: "logo_top",
			FileName:  "logo_top.png",
			Content:   logoPNG(t, 400, 377, 0),
			Identity:  rev1ID,
		})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, _, err := engine.Submit(ctx, SubmitRequest{
			ProjectID: "no-such-project",
			Platform:  specs.PlatformWebBrand,
			AssetSlot: "logo",
			FileName:  "logo.png",
			Content:   logoPNG(t, 482, 108, 0),
			Identity:  clientID,
		})
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestEngine_ChangeStatus(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := newTestProject(t, engine, rev1ID.Actor)
	ctx := context.Background()

	material := submitLogo(t, engine, project.ID, clientID, logoPNG(t, 482, 108, 0))

	t.Run("admin moves pending to in_review", func(t *testing.T) {
		updated, err := engine.ChangeStatus(ctx, material.ID, StatusInReview, adminID, "")
		require.NoError(t, err)
		assert.Equal(t, StatusInReview, updated.Status)
	})

	t.Run("unassigned reviewer is denied without an audit trace", func(t *testing.T) {
		_, _, before, err := engine.AuditLog().ListByEntity(EntityMaterial, material.ID, 100, "")
		require.NoError(t, err)

		_, err = engine.ChangeStatus(ctx, material.ID, StatusApproved, rev2ID, "")
		assert.ErrorIs(t, err, ErrForbidden)

		current, err := engine.Materials().Get(material.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusInReview, current.Status)

		_, _, after, err := engine.AuditLog().ListByEntity(EntityMaterial, material.ID, 100, "")
		require.NoError(t, err)
		assert.Equal(t, before, after, "denied attempts leave no audit entries")
	})

	t.Run("assigned reviewer approves with comments", func(t *testing.T) {
		updated, err := engine.ChangeStatus(ctx, material.ID, StatusApproved, rev1ID, "looks great")
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, updated.Status)
		assert.Equal(t, "looks great", updated.Comments)

		events, _, _, err := engine.AuditLog().ListByEntity(EntityMaterial, material.ID, 10, "")
		require.NoError(t, err)
		assert.Equal(t, ActionUpdate, events[0].Action)
		assert.Equal(t, "in_review", events[0].Payload["oldStatus"])
		assert.Equal(t, "approved", events[0].Payload["newStatus"])
	})

	t.Run("invalid transition is rejected even for admin", func(t *testing.T) {
		_, err := engine.ChangeStatus(ctx, material.ID, StatusInReview, adminID, "")
		var transition *TransitionError
		require.ErrorAs(t, err, &transition)
		assert.Equal(t, StatusApproved, transition.From)
	})

	t.Run("unknown material", func(t *testing.T) {
		_, err := engine.ChangeStatus(ctx, "no-such-material", StatusInReview, adminID, "")
		assert.ErrorIs(t, err, ErrMaterialNotFound)
	})
}

func TestEngine_ApprovalCascade(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := newTestProject(t, engine, rev1ID.Actor, rev2ID.Actor)
	ctx := context.Background()

	material := submitLogo(t, engine, project.ID, clientID, logoPNG(t, 482, 108, 0))
	approvals, err := engine.Approvals().ListByMaterial(material.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 2)
	byReviewer := map[string]ApprovalRecord{}
	for _, a := range approvals {
		byReviewer[a.Reviewer] = a
	}

	t.Run("reviewer cannot resolve someone else's approval", func(t *testing.T) {
		_, err := engine.Approve(ctx, byReviewer[rev1ID.Actor].ID, rev2ID, "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("first approval cascades to the material", func(t *testing.T) {
		resolved, err := engine.Approve(ctx, byReviewer[rev1ID.Actor].ID, rev1ID, "ship it")
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, resolved.Status)
		require.NotNil(t, resolved.ResolvedAt)

		current, err := engine.Materials().Get(material.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, current.Status)
	})

	t.Run("last reviewer to act wins", func(t *testing.T) {
		_, err := engine.Reject(ctx, byReviewer[rev2ID.Actor].ID, rev2ID, "colors are off")
		require.NoError(t, err)

		current, err := engine.Materials().Get(material.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusNeedsCorrection, current.Status)
	})

	t.Run("audit records both verdicts", func(t *testing.T) {
		approveEvents, _, _, err := engine.AuditLog().ListAll(ActionApprove, "", 10, "")
		require.NoError(t, err)
		require.Len(t, approveEvents, 1)
		assert.Equal(t, material.ID, approveEvents[0].Payload["materialId"])

		rejectEvents, _, _, err := engine.AuditLog().ListAll(ActionReject, "", 10, "")
		require.NoError(t, err)
		require.Len(t, rejectEvents, 1)
	})
}

func TestEngine_Rollback(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := newTestProject(t, engine)
	ctx := context.Background()

	submitLogo(t, engine, project.ID, clientID, logoPNG(t, 482, 108, 0))
	material := submitLogo(t, engine, project.ID, clientID, logoPNG(t, 482, 108, 128))

	versions, err := engine.Versions().ListByMaterial(material.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	v1 := versions[1]
	require.Equal(t, 1, v1.VersionNumber)
	require.NotEqual(t, v1.FileHash, material.FileHash)

	t.Run("restores version fields and resets to pending", func(t *testing.T) {
		rolled, err := engine.Rollback(ctx, material.ID, v1.ID, clientID)
		require.NoError(t, err)
		assert.Equal(t, v1.FileHash, rolled.FileHash)
		assert.Equal(t, v1.FileSize, rolled.FileSize)
		assert.Equal(t, StatusPending, rolled.Status)

		// A rollback is a move, not a new deliverable.
		after, err := engine.Versions().ListByMaterial(material.ID)
		require.NoError(t, err)
		assert.Len(t, after, 2)
	})

	t.Run("idempotent in content, not in audit trail", func(t *testing.T) {
		first, err := engine.Rollback(ctx, material.ID, v1.ID, clientID)
		require.NoError(t, err)
		second, err := engine.Rollback(ctx, material.ID, v1.ID, clientID)
		require.NoError(t, err)
		assert.Equal(t, first.FileHash, second.FileHash)

		events, _, total, err := engine.AuditLog().ListAll(ActionRollback, "", 10, "")
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Equal(t, float64(1), events[0].Payload["versionNumber"])
	})

	t.Run("cross-material version is rejected", func(t *testing.T) {
		other, _, err := engine.Submit(ctx, SubmitRequest{
			ProjectID: project.ID,
			Platform:  specs.PlatformWebBrand,
			AssetSlot: "logo_top",
			FileName:  "logo_top.png",
			Content:   logoPNG(t, 400, 377, 0),
			Identity:  clientID,
		})
		require.NoError(t, err)
		otherVersions, err := engine.Versions().ListByMaterial(other.ID)
		require.NoError(t, err)
		require.Len(t, otherVersions, 1)

		_, err = engine.Rollback(ctx, material.ID, otherVersions[0].ID, clientID)
		assert.ErrorIs(t, err, ErrVersionNotFound)
	})

	t.Run("reviewers cannot roll back", func(t *testing.T) {
		_, err := engine.Rollback(ctx, material.ID, v1.ID, rev1ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestEngine_VersionNumbersAreContiguous(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := newTestProject(t, engine)

	for i := 0; i < 3; i++ {
		submitLogo(t, engine, project.ID, clientID, logoPNG(t, 482, 108, uint8(i)))
	}

	material, err := engine.Materials().GetBySlot(project.ID, string(specs.PlatformWebBrand), "logo")
	require.NoError(t, err)
	require.NotNil(t, material)

	versions, err := engine.Versions().ListByMaterial(material.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, 3-i, v.VersionNumber)
	}
}

func TestEngine_ProjectLifecycle(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	deadline := time.Now().Add(-time.Hour)
	project, err := engine.CreateProject(ctx, CreateProjectRequest{
		Name:     "fall refresh",
		Deadline: &deadline,
		Identity: clientID,
	})
	require.NoError(t, err)
	assert.Equal(t, ProjectDraft, project.Status)

	t.Run("creator updates status", func(t *testing.T) {
		updated, err := engine.UpdateProjectStatus(ctx, project.ID, ProjectInProgress, clientID)
		require.NoError(t, err)
		assert.Equal(t, ProjectInProgress, updated.Status)
	})

	t.Run("strangers cannot", func(t *testing.T) {
		_, err := engine.UpdateProjectStatus(ctx, project.ID, ProjectCancelled, client2ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("only admins assign reviewers", func(t *testing.T) {
		_, err := engine.AssignReviewers(ctx, project.ID, []string{rev1ID.Actor}, clientID)
		assert.ErrorIs(t, err, ErrForbidden)

		updated, err := engine.AssignReviewers(ctx, project.ID, []string{rev1ID.Actor}, adminID)
		require.NoError(t, err)
		assert.Equal(t, JSONStringSlice{rev1ID.Actor}, updated.Reviewers)
	})

	t.Run("stats reflect materials and deadline", func(t *testing.T) {
		submitLogo(t, engine, project.ID, clientID, logoPNG(t, 482, 108, 0))

		stats, err := engine.ProjectStats(project.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalMaterials)
		assert.Equal(t, 0.0, stats.CompletionPercentage)
		assert.True(t, stats.Overdue)
	})
}

func TestEngine_SyncFailureIsNonFatal(t *testing.T) {
	engine, syncer := newTestEngine(t)
	syncer.failWith = assert.AnError
	project := newTestProject(t, engine)

	material := submitLogo(t, engine, project.ID, clientID, logoPNG(t, 482, 108, 0))
	assert.True(t, material.StoragePending)
}

func TestEngine_DashboardStats(t *testing.T) {
	engine, _ := newTestEngine(t)
	assigned := newTestProject(t, engine, rev1ID.Actor)
	newTestProject(t, engine)
	submitLogo(t, engine, assigned.ID, clientID, logoPNG(t, 482, 108, 0))

	t.Run("admin sees every project", func(t *testing.T) {
		stats, err := engine.DashboardStats(adminID)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalProjects)
		assert.Equal(t, 2, stats.ProjectsByStatus[ProjectDraft])
		assert.Equal(t, 1, stats.TotalMaterials)
		assert.Equal(t, 1, stats.MaterialsByStatus[StatusPending])
		assert.Equal(t, 1, stats.MaterialsByPlatform[string(specs.PlatformWebBrand)])
	})

	t.Run("reviewer sees only assigned projects", func(t *testing.T) {
		stats, err := engine.DashboardStats(rev1ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalProjects)
		assert.Equal(t, 1, stats.TotalMaterials)
	})

	t.Run("client without projects sees nothing", func(t *testing.T) {
		stats, err := engine.DashboardStats(client2ID)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalProjects)
		assert.Zero(t, stats.TotalMaterials)
	})
}

func TestEngine_RollbackRestoresStorageTracking(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := newTestProject(t, engine)
	material := submitLogo(t, engine, project.ID, clientID, logoPNG(t, 482, 108, 0))
	ctx := context.Background()

	require.NoError(t, engine.Materials().MarkStored(material.ID, "s3://assets/logo-v1.png"))

	versions, err := engine.Versions().ListByMaterial(material.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "s3://assets/logo-v1.png", versions[0].StorageURL,
		"sync completion backfills the version snapshot")
	synced := versions[0]

	submitLogo(t, engine, project.ID, clientID, logoPNG(t, 482, 108, 64))
	versions, err = engine.Versions().ListByMaterial(material.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	unsynced := versions[0]
	assert.Empty(t, unsynced.StorageURL)

	t.Run("rollback to a synced version restores its locator", func(t *testing.T) {
		rolled, err := engine.Rollback(ctx, material.ID, synced.ID, clientID)
		require.NoError(t, err)
		assert.Equal(t, "s3://assets/logo-v1.png", rolled.StorageURL)
		assert.False(t, rolled.StoragePending)
	})

	t.Run("rollback to an unsynced version reads as pending", func(t *testing.T) {
		rolled, err := engine.Rollback(ctx, material.ID, unsynced.ID, clientID)
		require.NoError(t, err)
		assert.Empty(t, rolled.StorageURL)
		assert.True(t, rolled.StoragePending)
	})
}
