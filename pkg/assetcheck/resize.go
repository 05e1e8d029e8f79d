package assetcheck

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/brandworks/material-registry/pkg/specs"
)

const jpegQuality = 95

// Resize scales raster content to the target dimensions, preserving the
// source format and any alpha channel. With maintainAspect the content is
// scaled to fit and centered on a transparent canvas of the exact target
// size; otherwise it is stretched. SVG content cannot be resized.
func Resize(data []byte, targetWidth, targetHeight int, maintainAspect bool) ([]byte, error) {
	if targetWidth <= 0 || targetHeight <= 0 {
		return nil, fmt.Errorf("invalid target dimensions %dx%d", targetWidth, targetHeight)
	}

	format := DetectFormat(data)
	if format != specs.FormatPNG && format != specs.FormatJPG {
		return nil, fmt.Errorf("cannot resize %s content", format)
	}

	src, rej := decodeRaster(data, format)
	if rej != nil {
		return nil, rej
	}

	dst := image.NewNRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	if maintainAspect {
		fitted := fitRect(src.Bounds(), targetWidth, targetHeight)
		draw.CatmullRom.Scale(dst, fitted, src, src.Bounds(), draw.Over, nil)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	}

	var buf bytes.Buffer
	switch format {
	case specs.FormatPNG:
		if err := png.Encode(&buf, dst); err != nil {
			return nil, fmt.Errorf("encode resized png: %w", err)
		}
	case specs.FormatJPG:
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("encode resized jpeg: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// fitRect computes the largest centered rectangle with src's aspect ratio
// that fits within targetWidth x targetHeight.
func fitRect(src image.Rectangle, targetWidth, targetHeight int) image.Rectangle {
	srcW, srcH := src.Dx(), src.Dy()
	if srcW == 0 || srcH == 0 {
		return image.Rect(0, 0, targetWidth, targetHeight)
	}

	scaledW := targetWidth
	scaledH := srcH * targetWidth / srcW
	if scaledH > targetHeight {
		scaledH = targetHeight
		scaledW = srcW * targetHeight / srcH
	}

	x := (targetWidth - scaledW) / 2
	y := (targetHeight - scaledH) / 2
	return image.Rect(x, y, x+scaledW, y+scaledH)
}
