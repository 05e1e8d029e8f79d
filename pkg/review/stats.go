package review

import "time"

// ProjectStats is a derived snapshot of a project's review progress. It is
// computed on read and never stored, so it cannot go stale.
type ProjectStats struct {
	ProjectID            string                 `json:"projectId"`
	TotalMaterials       int                    `json:"totalMaterials"`
	CountsByStatus       map[MaterialStatus]int `json:"countsByStatus"`
	CountsByPlatform     map[string]int         `json:"countsByPlatform"`
	CompletionPercentage float64                `json:"completionPercentage"`
	Overdue              bool                   `json:"overdue"`
}

// CompletionPercentage returns approved materials over total materials as a
// percentage, 0 when the project has no materials.
func CompletionPercentage(materials []MaterialRecord) float64 {
	if len(materials) == 0 {
		return 0
	}
	approved := 0
	for _, m := range materials {
		if m.Status == StatusApproved {
			approved++
		}
	}
	return float64(approved) / float64(len(materials)) * 100
}

// IsOverdue reports whether a project's deadline has passed while work is
// still open. Completed and cancelled projects are never overdue.
func IsOverdue(project *ProjectRecord, now time.Time) bool {
	if project.Deadline == nil {
		return false
	}
	if project.Status != ProjectDraft && project.Status != ProjectInProgress {
		return false
	}
	return project.Deadline.Before(now)
}

// BuildProjectStats computes the derived stats for a project snapshot.
func BuildProjectStats(project *ProjectRecord, materials []MaterialRecord, now time.Time) ProjectStats {
	stats := ProjectStats{
		ProjectID:            project.ID,
		TotalMaterials:       len(materials),
		CountsByStatus:       make(map[MaterialStatus]int),
		CountsByPlatform:     make(map[string]int),
		CompletionPercentage: CompletionPercentage(materials),
		Overdue:              IsOverdue(project, now),
	}
	for _, m := range materials {
		stats.CountsByStatus[m.Status]++
		stats.CountsByPlatform[m.Platform]++
	}
	return stats
}

// DashboardStats aggregates review progress across every project an
// identity can see. Like ProjectStats it is derived on read.
type DashboardStats struct {
	TotalProjects       int                    `json:"totalProjects"`
	ProjectsByStatus    map[ProjectStatus]int  `json:"projectsByStatus"`
	OverdueProjects     int                    `json:"overdueProjects"`
	TotalMaterials      int                    `json:"totalMaterials"`
	MaterialsByStatus   map[MaterialStatus]int `json:"materialsByStatus"`
	MaterialsByPlatform map[string]int         `json:"materialsByPlatform"`
}
