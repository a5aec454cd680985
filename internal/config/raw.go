package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawPreviewConfig struct {
	Renderer          *string  `yaml:"renderer"`
	Indicator         *string  `yaml:"indicator"`
	Mode              *string  `yaml:"mode"`
	Strategy          *string  `yaml:"strategy"`
	SmartDelegate     *string  `yaml:"smart_delegate"`
	SnapDistance      *int     `yaml:"snap_distance"`
	AdjacentThreshold *float64 `yaml:"adjacent_threshold"`
	SnapThreshold     *float64 `yaml:"snap_threshold"`
}

type RawOverlayConfig struct {
	BorderThickness *int   `yaml:"border_thickness"`
	Color           *Color `yaml:"color"`
	Background      *Color `yaml:"background"`
	TextColor       *Color `yaml:"text_color"`
}

type RawLoggingConfig struct {
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

type RawConfig struct {
	Include IncludeList       `yaml:"include"`
	Preview *RawPreviewConfig `yaml:"preview"`
	Overlay *RawOverlayConfig `yaml:"overlay"`
	Logging *RawLoggingConfig `yaml:"logging"`
	Display *string           `yaml:"display"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	if overlay.Preview != nil {
		var base RawPreviewConfig
		if out.Preview != nil {
			base = *out.Preview
		}
		merged := mergeRawPreview(base, *overlay.Preview)
		out.Preview = &merged
	}
	if overlay.Overlay != nil {
		var base RawOverlayConfig
		if out.Overlay != nil {
			base = *out.Overlay
		}
		merged := mergeRawOverlay(base, *overlay.Overlay)
		out.Overlay = &merged
	}
	if overlay.Logging != nil {
		var base RawLoggingConfig
		if out.Logging != nil {
			base = *out.Logging
		}
		merged := mergeRawLogging(base, *overlay.Logging)
		out.Logging = &merged
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	return out
}

func mergeRawPreview(base RawPreviewConfig, overlay RawPreviewConfig) RawPreviewConfig {
	out := base
	if overlay.Renderer != nil {
		out.Renderer = overlay.Renderer
	}
	if overlay.Indicator != nil {
		out.Indicator = overlay.Indicator
	}
	if overlay.Mode != nil {
		out.Mode = overlay.Mode
	}
	if overlay.Strategy != nil {
		out.Strategy = overlay.Strategy
	}
	if overlay.SmartDelegate != nil {
		out.SmartDelegate = overlay.SmartDelegate
	}
	if overlay.SnapDistance != nil {
		out.SnapDistance = overlay.SnapDistance
	}
	if overlay.AdjacentThreshold != nil {
		out.AdjacentThreshold = overlay.AdjacentThreshold
	}
	if overlay.SnapThreshold != nil {
		out.SnapThreshold = overlay.SnapThreshold
	}
	return out
}

func mergeRawOverlay(base RawOverlayConfig, overlay RawOverlayConfig) RawOverlayConfig {
	out := base
	if overlay.BorderThickness != nil {
		out.BorderThickness = overlay.BorderThickness
	}
	if overlay.Color != nil {
		out.Color = overlay.Color
	}
	if overlay.Background != nil {
		out.Background = overlay.Background
	}
	if overlay.TextColor != nil {
		out.TextColor = overlay.TextColor
	}
	return out
}

func mergeRawLogging(base RawLoggingConfig, overlay RawLoggingConfig) RawLoggingConfig {
	out := base
	if overlay.Level != nil {
		out.Level = overlay.Level
	}
	if overlay.File != nil {
		out.File = overlay.File
	}
	if overlay.MaxSizeMB != nil {
		out.MaxSizeMB = overlay.MaxSizeMB
	}
	if overlay.MaxFiles != nil {
		out.MaxFiles = overlay.MaxFiles
	}
	return out
}
