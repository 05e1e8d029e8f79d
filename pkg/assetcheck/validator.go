// Package assetcheck validates uploaded creative assets against platform
// specs. Validation is all-or-nothing: content either satisfies every
// constraint of its resolved spec or is rejected with a typed
// RejectionError. Warnings (recommended margins) are advisory and never
// block acceptance.
package assetcheck

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/brandworks/material-registry/pkg/specs"
)

// Validator runs the validation pipeline for uploaded assets.
type Validator struct {
	registry *specs.Registry
}

// NewValidator creates a Validator resolving specs through the given registry.
func NewValidator(registry *specs.Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate checks content against the spec resolved for (platform, asset
// slot). Checks run in a fixed order: spec resolution, format membership,
// size ceiling, then format-specific content checks. The first failure wins.
func (v *Validator) Validate(platform specs.Platform, assetSlot string, data []byte) (*Result, error) {
	spec, err := v.registry.Resolve(platform, assetSlot)
	if err != nil {
		if errors.Is(err, specs.ErrSpecNotFound) {
			return nil, rejectf(CodeSpecNotFound,
				map[string]any{"platform": platform, "assetSlot": assetSlot},
				"no spec for %s/%s", platform, assetSlot)
		}
		return nil, err
	}

	format := DetectFormat(data)
	if !spec.AllowsFormat(format) {
		allowed := make([]string, len(spec.Formats))
		for i, f := range spec.Formats {
			allowed[i] = string(f)
		}
		return nil, rejectf(CodeFormatNotAllowed,
			map[string]any{"detected": format, "allowed": spec.Formats},
			"format %s not allowed, expected one of: %s", format, strings.Join(allowed, ", "))
	}

	if int64(len(data)) > spec.MaxSizeBytes {
		return nil, rejectf(CodeTooLarge,
			map[string]any{"fileSize": len(data), "maxSizeBytes": spec.MaxSizeBytes},
			"file is %d bytes, spec allows at most %d", len(data), spec.MaxSizeBytes)
	}

	var (
		result *Result
		rej    *RejectionError
	)
	if format == specs.FormatSVG {
		result, rej = checkSVG(data, spec)
	} else {
		result, rej = checkRaster(data, format, spec)
	}
	if rej != nil {
		return nil, rej
	}

	sum := sha256.Sum256(data)
	result.FileHash = hex.EncodeToString(sum[:])
	return result, nil
}
