package assetcheck

import (
	"strings"
	"unicode/utf8"

	"github.com/brandworks/material-registry/pkg/specs"
)

// forbiddenElements are SVG constructs rejected regardless of what the spec
// allows. The check cannot be disabled by an override.
var forbiddenElements = []string{"<script", "<iframe", "<object", "<embed"}

// transparencyTokens are the substrings treated as evidence of transparency
// in SVG content.
var transparencyTokens = []string{"transparent", "rgba", `fill="none"`, "fill:none"}

// checkSVG validates SVG content against a spec. SVG has no fixed pixel
// dimensions, so exact-dimension constraints do not apply; instead the
// document must carry a viewBox or width sizing hint.
func checkSVG(data []byte, spec specs.Spec) (*Result, *RejectionError) {
	if !utf8.Valid(data) {
		return nil, rejectf(CodeInvalidEncoding, nil, "svg content is not valid UTF-8")
	}

	lower := strings.ToLower(string(data))

	if !strings.Contains(lower, "<svg") || !strings.Contains(lower, "</svg>") {
		return nil, rejectf(CodeCorrupt, nil, "svg content is missing a well-formed <svg> element")
	}

	if !strings.Contains(lower, "viewbox") && !strings.Contains(lower, "width") {
		return nil, rejectf(CodeMissingDimensions, nil,
			"svg must declare a viewBox or width")
	}

	hasTransparency := false
	for _, token := range transparencyTokens {
		if strings.Contains(lower, token) {
			hasTransparency = true
			break
		}
	}

	if spec.TransparentBG != nil {
		if *spec.TransparentBG && !hasTransparency {
			return nil, rejectf(CodeTransparencyRequired, nil,
				`transparency required: use fill="none" or rgba colors`)
		}
		if !*spec.TransparentBG && hasTransparency {
			return nil, rejectf(CodeTransparencyForbidden, nil,
				"transparency forbidden: use a solid background")
		}
	}

	for _, element := range forbiddenElements {
		if strings.Contains(lower, element) {
			return nil, rejectf(CodeUnsafeContent,
				map[string]any{"element": element},
				"svg contains forbidden element %s", element)
		}
	}

	return &Result{
		Format:          specs.FormatSVG,
		MIMEType:        specs.FormatSVG.MIMEType(),
		FileSize:        int64(len(data)),
		HasTransparency: hasTransparency,
		Warnings:        []string{},
	}, nil
}
