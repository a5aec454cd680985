package preview

import (
	"fmt"
	"math"
	"strings"

	"github.com/1broseidon/sizepeek/internal/geometry"
)

// RendererKind selects which renderer the factory builds.
type RendererKind int

const (
	RendererOutline RendererKind = iota
	RendererThumbnail
	RendererSimulated
	RendererSimplified
)

func (k RendererKind) String() string {
	switch k {
	case RendererOutline:
		return "outline"
	case RendererThumbnail:
		return "thumbnail"
	case RendererSimulated:
		return "simulated"
	case RendererSimplified:
		return "simplified"
	default:
		return fmt.Sprintf("renderer(%d)", int(k))
	}
}

// ParseRendererKind converts a config or command value into a RendererKind.
func ParseRendererKind(s string) (RendererKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "outline", "":
		return RendererOutline, nil
	case "thumbnail", "live":
		return RendererThumbnail, nil
	case "simulated":
		return RendererSimulated, nil
	case "simplified":
		return RendererSimplified, nil
	default:
		return RendererOutline, fmt.Errorf("unknown renderer %q (want outline, thumbnail, simulated or simplified)", s)
	}
}

// IndicatorKind controls the size label a renderer draws. The engine passes it
// through without interpreting it.
type IndicatorKind int

const (
	IndicatorNone IndicatorKind = iota
	IndicatorPixels
	IndicatorPixelsAndPercent
	IndicatorPercent
)

func (k IndicatorKind) String() string {
	switch k {
	case IndicatorNone:
		return "none"
	case IndicatorPixels:
		return "pixels"
	case IndicatorPixelsAndPercent:
		return "pixels-percent"
	case IndicatorPercent:
		return "percent"
	default:
		return fmt.Sprintf("indicator(%d)", int(k))
	}
}

// ParseIndicatorKind converts a config or command value into an IndicatorKind.
func ParseIndicatorKind(s string) (IndicatorKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return IndicatorNone, nil
	case "pixels", "":
		return IndicatorPixels, nil
	case "pixels-percent", "pixels_percent", "both":
		return IndicatorPixelsAndPercent, nil
	case "percent":
		return IndicatorPercent, nil
	default:
		return IndicatorPixels, fmt.Errorf("unknown indicator %q (want none, pixels, pixels-percent or percent)", s)
	}
}

// PreviewMode is the coarse projection of a renderer kind that is persisted
// next to it in settings.
type PreviewMode string

const (
	ModeOutline PreviewMode = "outline"
	ModeLive    PreviewMode = "live"
	ModeMock    PreviewMode = "mock"
)

// ModeFor derives the preview mode of a renderer kind.
func ModeFor(kind RendererKind) PreviewMode {
	switch kind {
	case RendererThumbnail:
		return ModeLive
	case RendererSimulated, RendererSimplified:
		return ModeMock
	default:
		return ModeOutline
	}
}

// FormatIndicator returns the label text for size. Percentages are relative to
// hostSize and are omitted when hostSize is not valid.
func FormatIndicator(kind IndicatorKind, size, hostSize geometry.Size) string {
	pixels := fmt.Sprintf("%d x %d", size.Width, size.Height)
	percent := ""
	if hostSize.Valid() {
		percent = fmt.Sprintf("%d%% x %d%%", percentOf(size.Width, hostSize.Width), percentOf(size.Height, hostSize.Height))
	}

	switch kind {
	case IndicatorPixels:
		return pixels
	case IndicatorPixelsAndPercent:
		if percent == "" {
			return pixels
		}
		return pixels + " (" + percent + ")"
	case IndicatorPercent:
		return percent
	default:
		return ""
	}
}

func percentOf(v, of int) int {
	return int(math.Round(float64(v) * 100 / float64(of)))
}
