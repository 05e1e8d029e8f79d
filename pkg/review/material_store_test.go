package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotMaterial(id, projectID string) *MaterialRecord {
	return &MaterialRecord{
		ID:         id,
		ProjectID:  projectID,
		Platform:   "web_brand",
		AssetSlot:  "logo",
		FileName:   "logo.png",
		FileSize:   42,
		FileHash:   "abc123",
		MIMEType:   "image/png",
		Status:     StatusPending,
		UploadedBy: "client@example.com",
	}
}

func TestMaterialStore_CreateSlotConflict(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := newTestProject(t, engine)
	store := engine.Materials()

	require.NoError(t, store.Create(slotMaterial("mat-1", project.ID)))

	// A second insert into the same (project, platform, slot) loses the
	// race on the unique index.
	err := store.Create(slotMaterial("mat-2", project.ID))
	require.ErrorIs(t, err, ErrSlotConflict)

	other := slotMaterial("mat-3", project.ID)
	other.AssetSlot = "splash"
	assert.NoError(t, store.Create(other))
}

func TestVersionStore_AppendNumberConflict(t *testing.T) {
	engine, _ := newTestEngine(t)
	project := newTestProject(t, engine)
	require.NoError(t, engine.Materials().Create(slotMaterial("mat-1", project.ID)))
	store := engine.Versions()

	version := func(id string, number int) *MaterialVersionRecord {
		return &MaterialVersionRecord{
			ID:            id,
			MaterialID:    "mat-1",
			VersionNumber: number,
			FileName:      "logo.png",
			FileSize:      42,
			FileHash:      "abc123",
			MIMEType:      "image/png",
			UploadedBy:    "client@example.com",
		}
	}

	require.NoError(t, store.Append(version("ver-1", 1)))

	err := store.Append(version("ver-2", 1))
	require.ErrorIs(t, err, ErrSlotConflict)

	assert.NoError(t, store.Append(version("ver-3", 2)))
}
