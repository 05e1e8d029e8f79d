package specs

import (
	"fmt"
	"sort"
	"time"

	"github.com/brandworks/material-registry/pkg/cache"
)

const (
	specCacheSize = 512
	specCacheTTL  = 5 * time.Minute
)

// Registry resolves (platform, asset slot) pairs to specs. Active store
// overrides shadow the compiled defaults; resolved specs are cached on the
// validation hot path and invalidated on every mutation so readers always
// see their own writes.
type Registry struct {
	store *SpecStore
	cache *cache.LRUCache
}

// NewRegistry creates a Registry backed by the given override store.
func NewRegistry(store *SpecStore) *Registry {
	return &Registry{
		store: store,
		cache: cache.NewLRUCache(specCacheSize, specCacheTTL),
	}
}

func cacheKey(platform Platform, assetSlot string) string {
	return string(platform) + "/" + assetSlot
}

// Resolve returns the spec governing a (platform, asset slot).
// It returns ErrSpecNotFound when neither an active override nor a compiled
// default exists; such a slot cannot accept uploads.
func (r *Registry) Resolve(platform Platform, assetSlot string) (Spec, error) {
	if !platform.Valid() {
		return Spec{}, fmt.Errorf("%w: unknown platform %q", ErrSpecNotFound, platform)
	}

	key := cacheKey(platform, assetSlot)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(Spec), nil
	}

	record, err := r.store.GetActive(platform, assetSlot)
	if err != nil {
		return Spec{}, err
	}
	if record != nil {
		spec := Spec(record.Spec)
		r.cache.Set(key, spec)
		return spec, nil
	}

	spec, ok := DefaultSpec(platform, assetSlot)
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s/%s", ErrSpecNotFound, platform, assetSlot)
	}
	r.cache.Set(key, spec)
	return spec, nil
}

// Upsert creates or replaces an override and drops the cached resolution.
func (r *Registry) Upsert(platform Platform, assetSlot string, spec Spec, updatedBy string) (*PlatformSpecRecord, error) {
	if !platform.Valid() {
		return nil, fmt.Errorf("unknown platform %q", platform)
	}
	if len(spec.Formats) == 0 {
		return nil, fmt.Errorf("spec for %s/%s must allow at least one format", platform, assetSlot)
	}
	record, err := r.store.Upsert(platform, assetSlot, spec, updatedBy)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(cacheKey(platform, assetSlot))
	return record, nil
}

// Deactivate retires an override and drops the cached resolution, so the
// slot falls back to its compiled default if one exists.
func (r *Registry) Deactivate(platform Platform, assetSlot, updatedBy string) error {
	if err := r.store.Deactivate(platform, assetSlot, updatedBy); err != nil {
		return err
	}
	r.cache.Invalidate(cacheKey(platform, assetSlot))
	return nil
}

// ResolvedSlot pairs an asset slot with the spec resolution currently in
// effect for it.
type ResolvedSlot struct {
	Platform   Platform `json:"platform"`
	AssetSlot  string   `json:"assetSlot"`
	Spec       Spec     `json:"spec"`
	Overridden bool     `json:"overridden"`
}

// ListSlots returns the effective spec for every slot a platform defines,
// merging active overrides over the compiled defaults. Overrides may add
// slots the default table does not know.
func (r *Registry) ListSlots(platform Platform) ([]ResolvedSlot, error) {
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: unknown platform %q", ErrSpecNotFound, platform)
	}

	overrides, err := r.store.ListActive(platform)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]ResolvedSlot)
	for _, slot := range DefaultSlots(platform) {
		spec, _ := DefaultSpec(platform, slot)
		merged[slot] = ResolvedSlot{Platform: platform, AssetSlot: slot, Spec: spec}
	}
	for _, record := range overrides {
		merged[record.AssetSlot] = ResolvedSlot{
			Platform:   platform,
			AssetSlot:  record.AssetSlot,
			Spec:       Spec(record.Spec),
			Overridden: true,
		}
	}

	slots := make([]string, 0, len(merged))
	for slot := range merged {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	out := make([]ResolvedSlot, 0, len(merged))
	for _, slot := range slots {
		out = append(out, merged[slot])
	}
	return out, nil
}
