package assetcheck

import "github.com/brandworks/material-registry/pkg/specs"

// Result describes an asset that passed validation. Width and Height are
// nil for SVG content, which has no fixed pixel dimensions. Warnings are
// advisory only and never block acceptance.
type Result struct {
	Format          specs.Format `json:"format"`
	MIMEType        string       `json:"mimeType"`
	FileSize        int64        `json:"fileSize"`
	FileHash        string       `json:"fileHash"`
	Width           *int         `json:"width,omitempty"`
	Height          *int         `json:"height,omitempty"`
	HasTransparency bool         `json:"hasTransparency"`
	Warnings        []string     `json:"warnings"`
}
