package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompletionPercentage(t *testing.T) {
	assert.Equal(t, 0.0, CompletionPercentage(nil))

	materials := []MaterialRecord{
		{Status: StatusApproved},
		{Status: StatusApproved},
		{Status: StatusPending},
		{Status: StatusNeedsCorrection},
	}
	assert.Equal(t, 50.0, CompletionPercentage(materials))
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name     string
		deadline *time.Time
		status   ProjectStatus
		want     bool
	}{
		{"no deadline", nil, ProjectInProgress, false},
		{"future deadline", &future, ProjectInProgress, false},
		{"past deadline in progress", &past, ProjectInProgress, true},
		{"past deadline draft", &past, ProjectDraft, true},
		{"past deadline completed", &past, ProjectCompleted, false},
		{"past deadline cancelled", &past, ProjectCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := &ProjectRecord{Deadline: tt.deadline, Status: tt.status}
			assert.Equal(t, tt.want, IsOverdue(project, now))
		})
	}
}

func TestBuildProjectStats(t *testing.T) {
	now := time.Now()
	project := &ProjectRecord{ID: "p1", Status: ProjectInProgress}
	materials := []MaterialRecord{
		{Platform: "web_brand", Status: StatusApproved},
		{Platform: "web_brand", Status: StatusPending},
		{Platform: "lg_webos", Status: StatusApproved},
	}

	stats := BuildProjectStats(project, materials, now)
	assert.Equal(t, "p1", stats.ProjectID)
	assert.Equal(t, 3, stats.TotalMaterials)
	assert.Equal(t, 2, stats.CountsByStatus[StatusApproved])
	assert.Equal(t, 1, stats.CountsByStatus[StatusPending])
	assert.Equal(t, 2, stats.CountsByPlatform["web_brand"])
	assert.InDelta(t, 66.66, stats.CompletionPercentage, 0.1)
	assert.False(t, stats.Overdue)
}
