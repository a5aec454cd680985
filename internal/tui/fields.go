package tui

import (
	"fmt"
	"strconv"

	"github.com/1broseidon/sizepeek/internal/config"
	"github.com/1broseidon/sizepeek/internal/placement"
	"github.com/1broseidon/sizepeek/internal/preview"
)

// field is one editable config value. Values travel as strings so huh can
// bind them directly; set parses and stores, and doubles as the validator.
type field struct {
	key     string
	title   string
	desc    string
	options []string
	get     func(*config.Config) string
	set     func(*config.Config, string) error
}

var logLevels = []string{"debug", "info", "warn", "error"}

func sectionFields(tab Tab) []field {
	switch tab {
	case TabPreview:
		return []field{
			{
				key: "preview.renderer", title: "Renderer", desc: "How the previewed size is drawn",
				options: rendererCycle,
				get:     func(c *config.Config) string { return c.Preview.Renderer },
				set: func(c *config.Config, v string) error {
					if _, err := preview.ParseRendererKind(v); err != nil {
						return err
					}
					c.Preview.Renderer = v
					return nil
				},
			},
			{
				key: "preview.indicator", title: "Indicator", desc: "Size label shown on the preview",
				options: indicatorCycle,
				get:     func(c *config.Config) string { return c.Preview.Indicator },
				set: func(c *config.Config, v string) error {
					if _, err := preview.ParseIndicatorKind(v); err != nil {
						return err
					}
					c.Preview.Indicator = v
					return nil
				},
			},
			{
				key: "preview.strategy", title: "Strategy", desc: "Where the preview is placed",
				options: strategyCycle,
				get:     func(c *config.Config) string { return c.Preview.Strategy },
				set: func(c *config.Config, v string) error {
					if _, err := placement.ParseKind(v); err != nil {
						return err
					}
					c.Preview.Strategy = v
					return nil
				},
			},
		}

	case TabPlacement:
		return []field{
			{
				key: "preview.smart_delegate", title: "Smart Delegate", desc: "Strategy the smart strategy resolves to",
				options: strategyCycle[:len(strategyCycle)-1],
				get:     func(c *config.Config) string { return c.Preview.SmartDelegate },
				set: func(c *config.Config, v string) error {
					kind, err := placement.ParseKind(v)
					if err != nil {
						return err
					}
					if kind == placement.KindSmart {
						return fmt.Errorf("smart_delegate must not be smart")
					}
					c.Preview.SmartDelegate = v
					return nil
				},
			},
			{
				key: "preview.snap_distance", title: "Snap Distance", desc: "Gap between window and preview, in pixels",
				get: func(c *config.Config) string { return strconv.Itoa(c.Preview.SnapDistance) },
				set: func(c *config.Config, v string) error {
					n, err := strconv.Atoi(v)
					if err != nil || n < 0 {
						return fmt.Errorf("snap distance must be a non-negative integer")
					}
					c.Preview.SnapDistance = n
					return nil
				},
			},
			{
				key: "preview.adjacent_threshold", title: "Adjacent Threshold", desc: "Minimum visible fraction for a side placement",
				get: func(c *config.Config) string { return formatFraction(c.Preview.AdjacentThreshold) },
				set: func(c *config.Config, v string) error {
					f, err := parseFraction(v)
					if err != nil {
						return err
					}
					c.Preview.AdjacentThreshold = f
					return nil
				},
			},
			{
				key: "preview.snap_threshold", title: "Snap Threshold", desc: "Minimum overlap fraction for a snapped placement",
				get: func(c *config.Config) string { return formatFraction(c.Preview.SnapThreshold) },
				set: func(c *config.Config, v string) error {
					f, err := parseFraction(v)
					if err != nil {
						return err
					}
					c.Preview.SnapThreshold = f
					return nil
				},
			},
		}

	case TabOverlay:
		return []field{
			{
				key: "overlay.border_thickness", title: "Border Thickness", desc: "Outline width in pixels",
				get: func(c *config.Config) string { return strconv.Itoa(c.Overlay.BorderThickness) },
				set: func(c *config.Config, v string) error {
					n, err := strconv.Atoi(v)
					if err != nil || n < 1 {
						return fmt.Errorf("border thickness must be a positive integer")
					}
					c.Overlay.BorderThickness = n
					return nil
				},
			},
			colorField("overlay.color", "Border Color", func(c *config.Config) *config.Color { return &c.Overlay.Color }),
			colorField("overlay.background", "Background", func(c *config.Config) *config.Color { return &c.Overlay.Background }),
			colorField("overlay.text_color", "Text Color", func(c *config.Config) *config.Color { return &c.Overlay.TextColor }),
		}

	case TabLogging:
		return []field{
			{
				key: "logging.level", title: "Level", desc: "Daemon log verbosity",
				options: logLevels,
				get:     func(c *config.Config) string { return c.Logging.Level },
				set: func(c *config.Config, v string) error {
					c.Logging.Level = v
					return nil
				},
			},
			{
				key: "logging.file", title: "File", desc: "Log file path; empty logs to stderr",
				get: func(c *config.Config) string { return c.Logging.File },
				set: func(c *config.Config, v string) error {
					c.Logging.File = v
					return nil
				},
			},
		}
	}
	return nil
}

func colorField(key, title string, ref func(*config.Config) *config.Color) field {
	return field{
		key: key, title: title, desc: "RGB hex, e.g. #3498db",
		get: func(c *config.Config) string { return ref(c).String() },
		set: func(c *config.Config, v string) error {
			col, err := config.ParseColor(v)
			if err != nil {
				return err
			}
			*ref(c) = col
			return nil
		},
	}
}

func formatFraction(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func parseFraction(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 || f > 1 {
		return 0, fmt.Errorf("threshold must be in (0, 1]")
	}
	return f, nil
}
