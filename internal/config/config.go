package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/sizepeek/internal/placement"
	"github.com/1broseidon/sizepeek/internal/preview"
)

// Color is a 0xRRGGBB pixel value. YAML accepts an integer, "0x3498db" or
// "#3498db" and always writes the 0x form.
type Color uint32

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a scalar like 0x3498db or \"#3498db\"")
	}
	v, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c Color) String() string { return fmt.Sprintf("0x%06x", uint32(c)) }

// ParseColor parses "0x3498db", "#3498db" or a decimal pixel value.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	if v > 0xffffff {
		return 0, fmt.Errorf("color %#x exceeds 0xffffff", v)
	}
	return Color(v), nil
}

// PreviewConfig selects the renderer, label and placement strategy.
type PreviewConfig struct {
	// Renderer is one of: outline, thumbnail, simulated, simplified
	Renderer string `yaml:"renderer"`
	// Indicator is one of: none, pixels, pixels-percent, percent
	Indicator string `yaml:"indicator"`
	// Mode is derived from Renderer and rewritten on save.
	Mode string `yaml:"mode"`
	// Strategy is one of: adjacent, center, snap, smart
	Strategy      string `yaml:"strategy"`
	SmartDelegate string `yaml:"smart_delegate"`
	// SnapDistance is the gap between host and preview in logical pixels.
	SnapDistance      int     `yaml:"snap_distance"`
	AdjacentThreshold float64 `yaml:"adjacent_threshold"`
	SnapThreshold     float64 `yaml:"snap_threshold"`
}

// OverlayConfig styles the preview window.
type OverlayConfig struct {
	BorderThickness int   `yaml:"border_thickness"`
	Color           Color `yaml:"color"`
	Background      Color `yaml:"background"`
	TextColor       Color `yaml:"text_color"`
}

// LoggingConfig configures daemon logging.
type LoggingConfig struct {
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// File is the log file path; empty logs to stderr.
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files"`
}

// Config holds the application configuration.
type Config struct {
	Preview PreviewConfig `yaml:"preview"`
	Overlay OverlayConfig `yaml:"overlay"`
	Logging LoggingConfig `yaml:"logging"`
	Display string        `yaml:"display,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Preview: PreviewConfig{
			Renderer:          preview.RendererOutline.String(),
			Indicator:         preview.IndicatorPixels.String(),
			Mode:              string(preview.ModeOutline),
			Strategy:          placement.KindAdjacent.String(),
			SmartDelegate:     placement.KindAdjacent.String(),
			SnapDistance:      placement.DefaultSnapDistance,
			AdjacentThreshold: placement.DefaultAdjacentThreshold,
			SnapThreshold:     placement.DefaultSnapThreshold,
		},
		Overlay: OverlayConfig{
			BorderThickness: 4,
			Color:           0x3498db,
			Background:      0x1f2933,
			TextColor:       0xf5f7fa,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
	}
}

// PreviewSettings returns the persisted renderer selection. Mode is derived
// from the renderer, whatever the file says.
func (c *Config) PreviewSettings() (preview.Settings, error) {
	renderer, err := preview.ParseRendererKind(c.Preview.Renderer)
	if err != nil {
		return preview.Settings{}, &ValidationError{Path: "preview.renderer", Err: err}
	}
	indicator, err := preview.ParseIndicatorKind(c.Preview.Indicator)
	if err != nil {
		return preview.Settings{}, &ValidationError{Path: "preview.indicator", Err: err}
	}
	return preview.Settings{Renderer: renderer, Indicator: indicator, Mode: preview.ModeFor(renderer)}, nil
}

// ApplyPreviewSettings writes s into the preview section.
func (c *Config) ApplyPreviewSettings(s preview.Settings) {
	c.Preview.Renderer = s.Renderer.String()
	c.Preview.Indicator = s.Indicator.String()
	c.Preview.Mode = string(preview.ModeFor(s.Renderer))
}

// Strategy returns the configured placement strategy.
func (c *Config) Strategy() (placement.Kind, error) {
	kind, err := placement.ParseKind(c.Preview.Strategy)
	if err != nil {
		return placement.KindAdjacent, &ValidationError{Path: "preview.strategy", Err: err}
	}
	return kind, nil
}

// PlacementOptions returns the strategy tuning.
func (c *Config) PlacementOptions() (placement.Options, error) {
	opts := placement.DefaultOptions()
	delegate, err := placement.ParseKind(c.Preview.SmartDelegate)
	if err != nil {
		return opts, &ValidationError{Path: "preview.smart_delegate", Err: err}
	}
	opts.SmartDelegate = delegate
	opts.SnapDistance = c.Preview.SnapDistance
	opts.AdjacentThreshold = c.Preview.AdjacentThreshold
	opts.SnapThreshold = c.Preview.SnapThreshold
	return opts, nil
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return DefaultConfig().Logging
	}
	cfg := c.Logging
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if strings.HasPrefix(cfg.File, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.File = filepath.Join(home, cfg.File[2:])
		}
	}
	return cfg
}

// Save writes the configuration to the standard location.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	save := *c
	if renderer, err := preview.ParseRendererKind(c.Preview.Renderer); err == nil {
		save.Preview.Mode = string(preview.ModeFor(renderer))
	}

	data, err := yaml.Marshal(&save)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if _, err := c.PreviewSettings(); err != nil {
		return err
	}
	switch preview.PreviewMode(c.Preview.Mode) {
	case "", preview.ModeOutline, preview.ModeLive, preview.ModeMock:
	default:
		return &ValidationError{Path: "preview.mode", Err: fmt.Errorf("mode must be one of: outline, live, mock")}
	}
	if _, err := c.Strategy(); err != nil {
		return err
	}
	opts, err := c.PlacementOptions()
	if err != nil {
		return err
	}
	if opts.SmartDelegate == placement.KindSmart {
		return &ValidationError{Path: "preview.smart_delegate", Err: fmt.Errorf("smart_delegate must not be smart")}
	}
	if c.Preview.SnapDistance < 0 {
		return &ValidationError{Path: "preview.snap_distance", Err: fmt.Errorf("snap_distance must be >= 0")}
	}
	if c.Preview.AdjacentThreshold <= 0 || c.Preview.AdjacentThreshold > 1 {
		return &ValidationError{Path: "preview.adjacent_threshold", Err: fmt.Errorf("adjacent_threshold must be in (0, 1]")}
	}
	if c.Preview.SnapThreshold <= 0 || c.Preview.SnapThreshold > 1 {
		return &ValidationError{Path: "preview.snap_threshold", Err: fmt.Errorf("snap_threshold must be in (0, 1]")}
	}

	if c.Overlay.BorderThickness < 1 || c.Overlay.BorderThickness > 64 {
		return &ValidationError{Path: "overlay.border_thickness", Err: fmt.Errorf("border_thickness must be between 1 and 64")}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	return nil
}
