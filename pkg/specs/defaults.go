package specs

const defaultMaxSizeBytes = 10 * 1024 * 1024

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func dims(w, h int) (width, height *int) {
	return intp(w), intp(h)
}

func pngSpec(w, h int) Spec {
	width, height := dims(w, h)
	return Spec{
		Width:        width,
		Height:       height,
		Formats:      []Format{FormatPNG},
		MaxSizeBytes: defaultMaxSizeBytes,
	}
}

func svgSpec(w, h int) Spec {
	width, height := dims(w, h)
	return Spec{
		Width:        width,
		Height:       height,
		Formats:      []Format{FormatSVG},
		MaxSizeBytes: defaultMaxSizeBytes,
	}
}

func withTransparency(s Spec) Spec {
	s.TransparentBG = boolp(true)
	return s
}

func withMargin(s Spec, px int) Spec {
	s.RecommendedMarginPx = px
	return s
}

// defaultSpecs is the compiled specification table. It is the fallback tier
// of resolution; administrator overrides in the spec store shadow it per
// (platform, asset slot).
var defaultSpecs = map[Platform]map[string]Spec{
	PlatformWebBrand: {
		"logo":        withTransparency(pngSpec(482, 108)),
		"logo_top":    withTransparency(pngSpec(400, 377)),
		"placeholder": pngSpec(220, 160),
		"background":  pngSpec(3480, 2160),
		"splash":      pngSpec(3480, 2160),
	},
	PlatformSamsungTizen: {
		"launcher_icon": withMargin(pngSpec(400, 400), 50),
		"splash":        pngSpec(3840, 2160),
	},
	PlatformLGWebOS: {
		"icon_80":    withMargin(pngSpec(80, 80), 25),
		"large_icon": pngSpec(130, 130),
		"background": pngSpec(1920, 1080),
		"splash":     pngSpec(1920, 1080),
	},
	PlatformAndroidGooglePlay: {
		"default_logo_services": pngSpec(430, 314),
		"default_logo_vod":      pngSpec(300, 440),
		"logo_home":             withTransparency(pngSpec(1200, 472)),
		"logo_watermark":        pngSpec(1200, 472),
		"background":            pngSpec(1920, 1080),
		"background_mobile":     pngSpec(1080, 1920),
		"logo_splash":           pngSpec(1000, 1000),
		"radio_background":      pngSpec(1920, 1080),
		"play_feature_graphic":  pngSpec(1024, 500),
		"play_banner_tv":        pngSpec(1280, 720),
	},
	PlatformAmazonAppstore: {
		"app_icon":   pngSpec(1280, 720),
		"background": pngSpec(1920, 1080),
	},
	PlatformIOSTVOSAppStore: {
		"store_logo":        withTransparency(svgSpec(1920, 1080)),
		"logo_top":          svgSpec(400, 377),
		"background_mobile": svgSpec(4688, 10150),
		"background":        svgSpec(3480, 2160),
	},
}

// DefaultSpec returns the compiled default spec for a (platform, asset slot),
// or false when the table has no entry for the pair.
func DefaultSpec(platform Platform, assetSlot string) (Spec, bool) {
	slots, ok := defaultSpecs[platform]
	if !ok {
		return Spec{}, false
	}
	spec, ok := slots[assetSlot]
	return spec, ok
}

// DefaultSlots returns the asset slots the compiled table defines for a
// platform. Administrator overrides may add slots beyond this set.
func DefaultSlots(platform Platform) []string {
	slots := defaultSpecs[platform]
	out := make([]string, 0, len(slots))
	for slot := range slots {
		out = append(out, slot)
	}
	return out
}
