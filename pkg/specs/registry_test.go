package specs

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB creates an in-memory SQLite DB with the spec table migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	store := NewSpecStore(db)
	require.NoError(t, store.AutoMigrate())
	return db
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(NewSpecStore(newTestDB(t)))
}

func TestDefaultSpec(t *testing.T) {
	t.Run("web brand logo", func(t *testing.T) {
		spec, ok := DefaultSpec(PlatformWebBrand, "logo")
		require.True(t, ok)
		require.NotNil(t, spec.Width)
		require.NotNil(t, spec.Height)
		assert.Equal(t, 482, *spec.Width)
		assert.Equal(t, 108, *spec.Height)
		assert.Equal(t, []Format{FormatPNG}, spec.Formats)
		require.NotNil(t, spec.TransparentBG)
		assert.True(t, *spec.TransparentBG)
		assert.Equal(t, int64(10*1024*1024), spec.MaxSizeBytes)
	})

	t.Run("samsung launcher icon carries margin", func(t *testing.T) {
		spec, ok := DefaultSpec(PlatformSamsungTizen, "launcher_icon")
		require.True(t, ok)
		assert.Equal(t, 50, spec.RecommendedMarginPx)
		assert.Nil(t, spec.TransparentBG)
	})

	t.Run("ios store logo is svg only", func(t *testing.T) {
		spec, ok := DefaultSpec(PlatformIOSTVOSAppStore, "store_logo")
		require.True(t, ok)
		assert.Equal(t, []Format{FormatSVG}, spec.Formats)
		require.NotNil(t, spec.TransparentBG)
		assert.True(t, *spec.TransparentBG)
	})

	t.Run("unknown slot", func(t *testing.T) {
		_, ok := DefaultSpec(PlatformWebBrand, "banner")
		assert.False(t, ok)
	})
}

func TestRegistry_Resolve(t *testing.T) {
	registry := newTestRegistry(t)

	t.Run("falls back to compiled defaults", func(t *testing.T) {
		spec, err := registry.Resolve(PlatformLGWebOS, "icon_80")
		require.NoError(t, err)
		assert.Equal(t, 80, *spec.Width)
		assert.Equal(t, 25, spec.RecommendedMarginPx)
	})

	t.Run("unknown platform", func(t *testing.T) {
		_, err := registry.Resolve(Platform("roku"), "logo")
		assert.ErrorIs(t, err, ErrSpecNotFound)
	})

	t.Run("unknown slot", func(t *testing.T) {
		_, err := registry.Resolve(PlatformAmazonAppstore, "banner")
		assert.ErrorIs(t, err, ErrSpecNotFound)
	})
}

func TestRegistry_OverridesShadowDefaults(t *testing.T) {
	registry := newTestRegistry(t)

	override := Spec{
		Width:        intp(964),
		Height:       intp(216),
		Formats:      []Format{FormatPNG, FormatJPG},
		MaxSizeBytes: 5 * 1024 * 1024,
	}
	_, err := registry.Upsert(PlatformWebBrand, "logo", override, "admin@example.com")
	require.NoError(t, err)

	spec, err := registry.Resolve(PlatformWebBrand, "logo")
	require.NoError(t, err)
	assert.Equal(t, 964, *spec.Width)
	assert.Equal(t, int64(5*1024*1024), spec.MaxSizeBytes)
	assert.True(t, spec.AllowsFormat(FormatJPG))

	// Retiring the override restores the compiled default.
	require.NoError(t, registry.Deactivate(PlatformWebBrand, "logo", "admin@example.com"))
	spec, err = registry.Resolve(PlatformWebBrand, "logo")
	require.NoError(t, err)
	assert.Equal(t, 482, *spec.Width)
}

func TestRegistry_OverrideAddsNewSlot(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Resolve(PlatformWebBrand, "banner")
	require.ErrorIs(t, err, ErrSpecNotFound)

	_, err = registry.Upsert(PlatformWebBrand, "banner", Spec{
		Width:        intp(1920),
		Height:       intp(480),
		Formats:      []Format{FormatJPG},
		MaxSizeBytes: 10 * 1024 * 1024,
	}, "admin@example.com")
	require.NoError(t, err)

	spec, err := registry.Resolve(PlatformWebBrand, "banner")
	require.NoError(t, err)
	assert.Equal(t, 1920, *spec.Width)
}

func TestRegistry_UpsertValidation(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Upsert(Platform("roku"), "logo", Spec{Formats: []Format{FormatPNG}}, "admin")
	assert.Error(t, err)

	_, err = registry.Upsert(PlatformWebBrand, "logo", Spec{}, "admin")
	assert.Error(t, err)
}

func TestRegistry_DeactivateWithoutOverride(t *testing.T) {
	registry := newTestRegistry(t)
	err := registry.Deactivate(PlatformWebBrand, "logo", "admin")
	assert.ErrorIs(t, err, ErrSpecNotFound)
}

func TestRegistry_ListSlots(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Upsert(PlatformAmazonAppstore, "app_icon", Spec{
		Width:        intp(1280),
		Height:       intp(720),
		Formats:      []Format{FormatPNG, FormatJPG},
		MaxSizeBytes: 10 * 1024 * 1024,
	}, "admin")
	require.NoError(t, err)

	slots, err := registry.ListSlots(PlatformAmazonAppstore)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	bySlot := make(map[string]ResolvedSlot)
	for _, s := range slots {
		bySlot[s.AssetSlot] = s
	}
	assert.True(t, bySlot["app_icon"].Overridden)
	assert.False(t, bySlot["background"].Overridden)
	assert.True(t, bySlot["app_icon"].Spec.AllowsFormat(FormatJPG))
}

func TestSpecStore_UpsertReactivates(t *testing.T) {
	store := NewSpecStore(newTestDB(t))

	_, err := store.Upsert(PlatformWebBrand, "logo", Spec{Formats: []Format{FormatPNG}, MaxSizeBytes: 1024}, "a")
	require.NoError(t, err)
	require.NoError(t, store.Deactivate(PlatformWebBrand, "logo", "a"))

	record, err := store.GetActive(PlatformWebBrand, "logo")
	require.NoError(t, err)
	assert.Nil(t, record)

	_, err = store.Upsert(PlatformWebBrand, "logo", Spec{Formats: []Format{FormatSVG}, MaxSizeBytes: 2048}, "b")
	require.NoError(t, err)

	record, err = store.GetActive(PlatformWebBrand, "logo")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, []Format{FormatSVG}, Spec(record.Spec).Formats)
	assert.Equal(t, "b", record.UpdatedBy)
}
