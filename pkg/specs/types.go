// Package specs resolves (platform, asset slot) pairs to the technical
// specification an uploaded asset must satisfy. Resolution is two-tier:
// an administrator-managed override store takes precedence over a compiled
// default table.
package specs

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Platform identifies a distribution platform with its own asset specs.
type Platform string

const (
	PlatformWebBrand          Platform = "web_brand"
	PlatformSamsungTizen      Platform = "samsung_tizen"
	PlatformLGWebOS           Platform = "lg_webos"
	PlatformAndroidGooglePlay Platform = "android_google_play"
	PlatformAmazonAppstore    Platform = "amazon_appstore"
	PlatformIOSTVOSAppStore   Platform = "ios_tvos_app_store"
)

// Platforms lists all supported platforms in display order.
var Platforms = []Platform{
	PlatformWebBrand,
	PlatformSamsungTizen,
	PlatformLGWebOS,
	PlatformAndroidGooglePlay,
	PlatformAmazonAppstore,
	PlatformIOSTVOSAppStore,
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// Format is a file format accepted by a spec. Detection is content-based;
// FormatUnknown never satisfies any spec.
type Format string

const (
	FormatPNG     Format = "PNG"
	FormatJPG     Format = "JPG"
	FormatSVG     Format = "SVG"
	FormatUnknown Format = "UNKNOWN"
)

// MIMEType returns the canonical MIME classification for the format.
func (f Format) MIMEType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPG:
		return "image/jpeg"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// Spec is the technical contract an asset must satisfy to be accepted into
// a (platform, asset slot). Width and Height are nil when the slot carries
// no exact-dimension constraint. TransparentBG is tri-state: nil means the
// spec is silent on transparency, true requires it, false forbids it.
type Spec struct {
	Width               *int    `json:"width,omitempty"`
	Height              *int    `json:"height,omitempty"`
	Formats             []Format `json:"formats"`
	TransparentBG       *bool   `json:"transparentBg,omitempty"`
	MaxSizeBytes        int64   `json:"maxSizeBytes"`
	RecommendedMarginPx int     `json:"recommendedMarginPx,omitempty"`
}

// AllowsFormat reports whether the detected format is in the allowed set.
func (s Spec) AllowsFormat(f Format) bool {
	for _, allowed := range s.Formats {
		if allowed == f {
			return true
		}
	}
	return false
}

// SpecColumn is a custom GORM type storing a Spec as JSON text.
type SpecColumn Spec

// Scan implements the sql.Scanner interface for SpecColumn.
func (c *SpecColumn) Scan(value any) error {
	if value == nil {
		*c = SpecColumn{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	default:
		return fmt.Errorf("unsupported type for SpecColumn: %T", value)
	}
	return json.Unmarshal(bytes, c)
}

// Value implements the driver.Valuer interface for SpecColumn.
func (c SpecColumn) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ErrSpecNotFound is returned when no active spec exists for a
// (platform, asset slot) pair. A slot with no spec cannot accept uploads.
var ErrSpecNotFound = errors.New("platform spec not found")
