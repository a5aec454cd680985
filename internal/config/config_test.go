package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/sizepeek/internal/placement"
	"github.com/1broseidon/sizepeek/internal/preview"
)

func writeConfig(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	settings, err := cfg.PreviewSettings()
	if err != nil {
		t.Fatalf("preview settings: %v", err)
	}
	if settings.Renderer != preview.RendererOutline || settings.Indicator != preview.IndicatorPixels || settings.Mode != preview.ModeOutline {
		t.Fatalf("unexpected default settings %+v", settings)
	}
	opts, err := cfg.PlacementOptions()
	if err != nil {
		t.Fatalf("placement options: %v", err)
	}
	if opts.SnapDistance != 10 || opts.AdjacentThreshold != 0.8 || opts.SnapThreshold != 0.9 || opts.SmartDelegate != placement.KindAdjacent {
		t.Fatalf("unexpected default placement options %+v", opts)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Preview.Strategy != "adjacent" {
		t.Fatalf("expected default strategy, got %q", res.Config.Preview.Strategy)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_PreviewAndOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path,
		"preview:",
		"  renderer: simulated",
		"  indicator: pixels-percent",
		"  strategy: smart",
		"  smart_delegate: snap",
		"  snap_distance: 16",
		"overlay:",
		"  color: \"#ff0000\"",
		"  background: 0x101010",
		"  border_thickness: 2",
		"display: \":1\"",
	)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config

	settings, err := cfg.PreviewSettings()
	if err != nil {
		t.Fatalf("preview settings: %v", err)
	}
	if settings.Renderer != preview.RendererSimulated || settings.Indicator != preview.IndicatorPixelsAndPercent {
		t.Fatalf("unexpected settings %+v", settings)
	}
	if settings.Mode != preview.ModeMock {
		t.Fatalf("mode should be derived from renderer, got %q", settings.Mode)
	}
	if kind, _ := cfg.Strategy(); kind != placement.KindSmart {
		t.Fatalf("strategy = %v", kind)
	}
	opts, _ := cfg.PlacementOptions()
	if opts.SmartDelegate != placement.KindSnap || opts.SnapDistance != 16 {
		t.Fatalf("unexpected options %+v", opts)
	}
	if cfg.Overlay.Color != 0xff0000 || cfg.Overlay.Background != 0x101010 || cfg.Overlay.TextColor != 0xf5f7fa {
		t.Fatalf("unexpected overlay colors %+v", cfg.Overlay)
	}
	if cfg.Overlay.BorderThickness != 2 {
		t.Fatalf("border_thickness = %d", cfg.Overlay.BorderThickness)
	}

	val, src, err := Explain(res, "display")
	if err != nil {
		t.Fatalf("explain display: %v", err)
	}
	if val != ":1" {
		t.Fatalf("expected explain display :1, got %#v", val)
	}
	if src.Kind != SourceFile || src.Line != 11 {
		t.Fatalf("expected display source from file line 11, got %#v", src)
	}
	if _, src, _ := Explain(res, "logging.level"); src.Kind != SourceDefault {
		t.Fatalf("expected logging.level from defaults, got %#v", src)
	}
	if val, _, _ := Explain(res, "overlay.color"); val != "0xff0000" {
		t.Fatalf("overlay.color = %#v", val)
	}
	if _, _, err := Explain(res, "preview.nope"); err == nil {
		t.Fatalf("expected error for unknown path")
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "preview:", "  unknown_key: 1")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	tests := []struct {
		name string
		yaml []string
		path string
	}{
		{"renderer", []string{"preview:", "  renderer: hologram"}, "preview.renderer"},
		{"strategy", []string{"preview:", "  strategy: spiral"}, "preview.strategy"},
		{"smart delegate loop", []string{"preview:", "  smart_delegate: smart"}, "preview.smart_delegate"},
		{"threshold", []string{"preview:", "  snap_threshold: 1.5"}, "preview.snap_threshold"},
		{"thickness", []string{"overlay:", "  border_thickness: 0"}, "overlay.border_thickness"},
		{"level", []string{"logging:", "  level: loud"}, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			writeConfig(t, path, tt.yaml...)

			_, err := LoadFromPath(path)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
			if verr.Source.Line != 2 || !strings.Contains(err.Error(), ":2:") {
				t.Fatalf("expected line 2 in error, got %v", err)
			}
		})
	}
}

func TestLoadFromPath_BadColor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "overlay:", "  color: blue")
	if _, err := LoadFromPath(path); err == nil || !strings.Contains(err.Error(), "invalid color") {
		t.Fatalf("expected color error, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"0x3498db", 0x3498db, false},
		{"#1F2933", 0x1f2933, false},
		{"255", 255, false},
		{"0x1000000", 0, true},
		{"teal", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseColor(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, filepath.Join(configD, "10-base.yaml"), "preview:", "  snap_distance: 5", "  renderer: thumbnail")
	writeConfig(t, filepath.Join(configD, "20-override.yaml"), "preview:", "  snap_distance: 6")

	// Main file overrides includes.
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path,
		"include:",
		"  - config.d",
		"preview:",
		"  snap_distance: 7",
	)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Preview.SnapDistance != 7 {
		t.Fatalf("expected snap_distance to be 7, got %d", res.Config.Preview.SnapDistance)
	}
	if res.Config.Preview.Renderer != "thumbnail" {
		t.Fatalf("expected renderer from include, got %q", res.Config.Preview.Renderer)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files loaded, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "include:", "  - missing.yaml")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeConfig(t, a, "include: b.yaml")
	writeConfig(t, b, "include: a.yaml")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_SharedIncludeMergedOnce(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	a := filepath.Join(dir, "a.yaml")
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, base, "preview:", "  renderer: thumbnail", "  snap_distance: 5")
	writeConfig(t, a, "include: base.yaml", "preview:", "  snap_distance: 6")
	writeConfig(t, path, "include:", "  - a.yaml", "  - base.yaml")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected each file once, got %v", res.Files)
	}
	if filepath.Base(res.Files[0]) != "base.yaml" || filepath.Base(res.Files[2]) != "config.yaml" {
		t.Fatalf("includes should load before their includer, got %v", res.Files)
	}
	if res.Config.Preview.SnapDistance != 6 || res.Config.Preview.Renderer != "thumbnail" {
		t.Fatalf("unexpected preview %+v", res.Config.Preview)
	}
	src := res.Sources["preview.snap_distance"]
	if filepath.Base(src.File) != "a.yaml" || src.Line != 3 {
		t.Fatalf("snap_distance source = %v", src)
	}
	if !strings.HasSuffix(src.String(), "a.yaml:3:18") {
		t.Fatalf("source string = %q", src.String())
	}
}

func TestLoadFromPath_EmptyIncludeErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "include: \"\"")
	if _, err := LoadFromPath(path); err == nil || !strings.Contains(err.Error(), "path is empty") {
		t.Fatalf("expected empty include error, got %v", err)
	}
}

func TestGetLoggingConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	got := cfg.GetLoggingConfig()
	if got.Level != "info" || got.MaxSizeMB != 10 || got.MaxFiles != 3 {
		t.Fatalf("unexpected logging defaults %+v", got)
	}
}

func TestStore_SaveKeepsOtherSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sizepeek", "config.yaml")
	store := NewStore(path)

	settings, err := store.LoadPreviewSettings()
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if settings.Renderer != preview.RendererOutline {
		t.Fatalf("expected outline default, got %v", settings.Renderer)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, path, "preview:", "  strategy: snap", "logging:", "  level: debug")

	want := preview.Settings{Renderer: preview.RendererThumbnail, Indicator: preview.IndicatorPercent}
	if err := store.SavePreviewSettings(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.LoadPreviewSettings()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Renderer != want.Renderer || got.Indicator != want.Indicator || got.Mode != preview.ModeLive {
		t.Fatalf("round trip = %+v", got)
	}

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Preview.Strategy != "snap" || cfg.Logging.Level != "debug" {
		t.Fatalf("save dropped unrelated settings: %+v", cfg)
	}
	if cfg.Preview.Mode != "live" {
		t.Fatalf("mode should be rewritten on save, got %q", cfg.Preview.Mode)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "color: \"0x3498db\"") && !strings.Contains(string(data), "color: 0x3498db") {
		t.Fatalf("expected hex color in saved file:\n%s", data)
	}
}
