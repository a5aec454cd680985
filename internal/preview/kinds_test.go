package preview

import (
	"testing"

	"github.com/1broseidon/sizepeek/internal/geometry"
)

func TestFormatIndicator(t *testing.T) {
	size := geometry.Size{Width: 800, Height: 600}
	host := geometry.Size{Width: 600, Height: 600}

	tests := []struct {
		kind IndicatorKind
		host geometry.Size
		want string
	}{
		{IndicatorNone, host, ""},
		{IndicatorPixels, host, "800 x 600"},
		{IndicatorPixelsAndPercent, host, "800 x 600 (133% x 100%)"},
		{IndicatorPercent, host, "133% x 100%"},
		{IndicatorPixelsAndPercent, geometry.Size{}, "800 x 600"},
		{IndicatorPercent, geometry.Size{}, ""},
	}
	for _, tt := range tests {
		if got := FormatIndicator(tt.kind, size, tt.host); got != tt.want {
			t.Errorf("FormatIndicator(%v, host=%+v) = %q, want %q", tt.kind, tt.host, got, tt.want)
		}
	}
}

func TestParseKindsRoundTrip(t *testing.T) {
	for _, k := range []RendererKind{RendererOutline, RendererThumbnail, RendererSimulated, RendererSimplified} {
		got, err := ParseRendererKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseRendererKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	for _, k := range []IndicatorKind{IndicatorNone, IndicatorPixels, IndicatorPixelsAndPercent, IndicatorPercent} {
		got, err := ParseIndicatorKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseIndicatorKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseRendererKind("hologram"); err == nil {
		t.Errorf("expected error for unknown renderer")
	}
	if _, err := ParseIndicatorKind("inches"); err == nil {
		t.Errorf("expected error for unknown indicator")
	}
}

func TestModeFor(t *testing.T) {
	tests := map[RendererKind]PreviewMode{
		RendererOutline:    ModeOutline,
		RendererThumbnail:  ModeLive,
		RendererSimulated:  ModeMock,
		RendererSimplified: ModeMock,
	}
	for kind, want := range tests {
		if got := ModeFor(kind); got != want {
			t.Errorf("ModeFor(%v) = %q, want %q", kind, got, want)
		}
	}
}
