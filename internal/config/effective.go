package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig overlays raw onto DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if p := raw.Preview; p != nil {
		if p.Renderer != nil {
			cfg.Preview.Renderer = strings.TrimSpace(*p.Renderer)
		}
		if p.Indicator != nil {
			cfg.Preview.Indicator = strings.TrimSpace(*p.Indicator)
		}
		if p.Mode != nil {
			cfg.Preview.Mode = strings.TrimSpace(*p.Mode)
		}
		if p.Strategy != nil {
			cfg.Preview.Strategy = strings.TrimSpace(*p.Strategy)
		}
		if p.SmartDelegate != nil {
			cfg.Preview.SmartDelegate = strings.TrimSpace(*p.SmartDelegate)
		}
		cfg.Preview.SnapDistance = derefInt(p.SnapDistance, cfg.Preview.SnapDistance)
		cfg.Preview.AdjacentThreshold = derefFloat(p.AdjacentThreshold, cfg.Preview.AdjacentThreshold)
		cfg.Preview.SnapThreshold = derefFloat(p.SnapThreshold, cfg.Preview.SnapThreshold)
	}

	if o := raw.Overlay; o != nil {
		cfg.Overlay.BorderThickness = derefInt(o.BorderThickness, cfg.Overlay.BorderThickness)
		if o.Color != nil {
			cfg.Overlay.Color = *o.Color
		}
		if o.Background != nil {
			cfg.Overlay.Background = *o.Background
		}
		if o.TextColor != nil {
			cfg.Overlay.TextColor = *o.TextColor
		}
	}

	if l := raw.Logging; l != nil {
		if l.Level != nil {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*l.Level))
		}
		if l.File != nil {
			cfg.Logging.File = strings.TrimSpace(*l.File)
		}
		cfg.Logging.MaxSizeMB = derefInt(l.MaxSizeMB, cfg.Logging.MaxSizeMB)
		cfg.Logging.MaxFiles = derefInt(l.MaxFiles, cfg.Logging.MaxFiles)
	}

	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}

	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
