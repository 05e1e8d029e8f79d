package assetcheck

import (
	"bytes"

	"github.com/brandworks/material-registry/pkg/specs"
)

var (
	pngMagic = []byte{0x89, 'P', 'N', 'G'}
	jpgMagic = []byte{0xff, 0xd8, 0xff}
	svgOpen  = []byte("<svg")
	xmlDecl  = []byte("<?xml")
)

// DetectFormat classifies content by its leading bytes. File names and
// declared content types are never consulted. Unrecognized content returns
// FormatUnknown, which no spec accepts.
func DetectFormat(data []byte) specs.Format {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return specs.FormatPNG
	case bytes.HasPrefix(data, jpgMagic):
		return specs.FormatJPG
	case bytes.HasPrefix(data, svgOpen), bytes.HasPrefix(data, xmlDecl):
		return specs.FormatSVG
	default:
		return specs.FormatUnknown
	}
}
