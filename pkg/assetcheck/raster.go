package assetcheck

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/brandworks/material-registry/pkg/specs"
)

// decodeRaster decodes PNG or JPEG content. A decode failure means the
// content is corrupt for its detected format.
func decodeRaster(data []byte, format specs.Format) (image.Image, *RejectionError) {
	var (
		img image.Image
		err error
	)
	switch format {
	case specs.FormatPNG:
		img, err = png.Decode(bytes.NewReader(data))
	case specs.FormatJPG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	default:
		return nil, rejectf(CodeCorrupt, nil, "unsupported raster format %s", format)
	}
	if err != nil {
		return nil, rejectf(CodeCorrupt, map[string]any{"format": format},
			"corrupt %s content: %v", format, err)
	}
	return img, nil
}

// checkRaster validates decoded raster content against a spec: exact
// dimensions first, then the transparency constraint, then advisory margin
// warnings. Transparency means at least one pixel is not fully opaque; a
// mere alpha channel of all-opaque pixels does not count.
func checkRaster(data []byte, format specs.Format, spec specs.Spec) (*Result, *RejectionError) {
	img, rej := decodeRaster(data, format)
	if rej != nil {
		return nil, rej
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if spec.Width != nil && width != *spec.Width {
		return nil, rejectf(CodeDimensionMismatch,
			map[string]any{"dimension": "width", "expected": *spec.Width, "actual": width},
			"width is %dpx, spec requires exactly %dpx", width, *spec.Width)
	}
	if spec.Height != nil && height != *spec.Height {
		return nil, rejectf(CodeDimensionMismatch,
			map[string]any{"dimension": "height", "expected": *spec.Height, "actual": height},
			"height is %dpx, spec requires exactly %dpx", height, *spec.Height)
	}

	hasTransparency := hasTransparentPixel(img)
	if spec.TransparentBG != nil {
		if *spec.TransparentBG && !hasTransparency {
			return nil, rejectf(CodeTransparencyRequired, nil,
				"transparency required: content has no pixel below full opacity")
		}
		if !*spec.TransparentBG && hasTransparency {
			return nil, rejectf(CodeTransparencyForbidden, nil,
				"transparency forbidden: use a solid background instead of an alpha channel")
		}
	}

	warnings := []string{}
	if spec.RecommendedMarginPx > 0 {
		effectiveWidth := width - spec.RecommendedMarginPx*2
		effectiveHeight := height - spec.RecommendedMarginPx*2
		warnings = append(warnings, fmt.Sprintf(
			"recommended margin of %dpx leaves an effective area of %dx%dpx",
			spec.RecommendedMarginPx, effectiveWidth, effectiveHeight))
	}

	return &Result{
		Format:          format,
		MIMEType:        format.MIMEType(),
		FileSize:        int64(len(data)),
		Width:           &width,
		Height:          &height,
		HasTransparency: hasTransparency,
		Warnings:        warnings,
	}, nil
}

// hasTransparentPixel reports whether any pixel's alpha is below full
// opacity. Opaque color models (JPEG output) short-circuit to false.
func hasTransparentPixel(img image.Image) bool {
	switch typed := img.(type) {
	case *image.YCbCr, *image.Gray, *image.CMYK:
		return false
	case *image.NRGBA:
		for i := 3; i < len(typed.Pix); i += 4 {
			if typed.Pix[i] < 0xff {
				return true
			}
		}
		return false
	case *image.RGBA:
		for i := 3; i < len(typed.Pix); i += 4 {
			if typed.Pix[i] < 0xff {
				return true
			}
		}
		return false
	}

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a < 0xffff {
				return true
			}
		}
	}
	return false
}
