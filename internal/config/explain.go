package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	preview.renderer
//	preview.strategy
//	preview.snap_threshold
//	overlay.color
//	logging.level
//	display
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if len(parts) == 1 {
		switch parts[0] {
		case "display":
			return cfg.Display, nil
		case "preview":
			return cfg.Preview, nil
		case "overlay":
			return cfg.Overlay, nil
		case "logging":
			return cfg.Logging, nil
		}
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	if len(parts) != 2 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	switch parts[0] {
	case "preview":
		p := cfg.Preview
		switch parts[1] {
		case "renderer":
			return p.Renderer, nil
		case "indicator":
			return p.Indicator, nil
		case "mode":
			return p.Mode, nil
		case "strategy":
			return p.Strategy, nil
		case "smart_delegate":
			return p.SmartDelegate, nil
		case "snap_distance":
			return p.SnapDistance, nil
		case "adjacent_threshold":
			return p.AdjacentThreshold, nil
		case "snap_threshold":
			return p.SnapThreshold, nil
		}
	case "overlay":
		o := cfg.Overlay
		switch parts[1] {
		case "border_thickness":
			return o.BorderThickness, nil
		case "color":
			return o.Color.String(), nil
		case "background":
			return o.Background.String(), nil
		case "text_color":
			return o.TextColor.String(), nil
		}
	case "logging":
		l := cfg.Logging
		switch parts[1] {
		case "level":
			return l.Level, nil
		case "file":
			return l.File, nil
		case "max_size_mb":
			return l.MaxSizeMB, nil
		case "max_files":
			return l.MaxFiles, nil
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
