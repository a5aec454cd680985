// Package placement computes where a preview overlay goes relative to its host
// window. Strategies are pure: the same input always yields the same point.
package placement

import (
	"fmt"
	"math"
	"strings"

	"github.com/1broseidon/sizepeek/internal/geometry"
)

// Kind selects a placement strategy.
type Kind int

const (
	KindAdjacent Kind = iota
	KindCenter
	KindSnap
	KindSmart
)

func (k Kind) String() string {
	switch k {
	case KindAdjacent:
		return "adjacent"
	case KindCenter:
		return "center"
	case KindSnap:
		return "snap"
	case KindSmart:
		return "smart"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a config value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "adjacent", "":
		return KindAdjacent, nil
	case "center", "centre":
		return KindCenter, nil
	case "snap":
		return KindSnap, nil
	case "smart":
		return KindSmart, nil
	default:
		return KindAdjacent, fmt.Errorf("unknown placement strategy %q (want adjacent, center, snap or smart)", s)
	}
}

const (
	DefaultSnapDistance      = 10
	DefaultAdjacentThreshold = 0.8
	DefaultSnapThreshold     = 0.9
)

// Options tune the strategy family.
type Options struct {
	// SnapDistance is the gap between host and preview, in logical units.
	SnapDistance int
	// AdjacentThreshold is the minimum visible fraction for Adjacent candidates.
	AdjacentThreshold float64
	// SnapThreshold is the minimum overlap fraction for Snap candidates.
	SnapThreshold float64
	// SmartDelegate is the strategy Smart resolves to.
	SmartDelegate Kind
	// Default is the screen extent used when no monitor matches.
	Default geometry.Monitor
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		SnapDistance:      DefaultSnapDistance,
		AdjacentThreshold: DefaultAdjacentThreshold,
		SnapThreshold:     DefaultSnapThreshold,
		SmartDelegate:     KindAdjacent,
		Default:           geometry.DefaultMonitor(),
	}
}

func (o Options) normalized() Options {
	if o.SnapDistance < 0 {
		o.SnapDistance = 0
	}
	if o.AdjacentThreshold <= 0 || o.AdjacentThreshold > 1 {
		o.AdjacentThreshold = DefaultAdjacentThreshold
	}
	if o.SnapThreshold <= 0 || o.SnapThreshold > 1 {
		o.SnapThreshold = DefaultSnapThreshold
	}
	if o.Default.Bounds.Empty() {
		o.Default = geometry.DefaultMonitor()
	}
	return o
}

// Strategy maps host geometry and a preview size to a preview origin.
type Strategy interface {
	Kind() Kind
	CalculatePosition(hostPos geometry.Point, hostSize, previewSize geometry.Size, monitors []geometry.Monitor) geometry.Point
}

// New builds the strategy for kind. Smart resolves to opts.SmartDelegate.
func New(kind Kind, opts Options) (Strategy, error) {
	opts = opts.normalized()
	switch kind {
	case KindAdjacent:
		return &Adjacent{opts: opts, center: &Center{opts: opts}}, nil
	case KindCenter:
		return &Center{opts: opts}, nil
	case KindSnap:
		return &Snap{opts: opts, center: &Center{opts: opts}}, nil
	case KindSmart:
		if opts.SmartDelegate == KindSmart {
			return nil, fmt.Errorf("smart strategy cannot delegate to itself")
		}
		return New(opts.SmartDelegate, opts)
	default:
		return nil, fmt.Errorf("unknown placement strategy %v", kind)
	}
}

// scaledGap converts the logical snap distance into desktop units for the
// monitor hosting the window.
func scaledGap(host geometry.Rect, monitors []geometry.Monitor, distance int) int {
	scale := 1.0
	if m, ok := geometry.MonitorContainingWindow(host, monitors); ok {
		scale = geometry.DpiScaleFactor(m)
	}
	return int(math.Round(float64(distance) * scale))
}

// candidates lists preview origins around the host in fallback order. The first
// entry is the default right-hand placement.
func candidates(host geometry.Rect, preview geometry.Size, gap int) []geometry.Point {
	x, y, w, h := host.X, host.Y, host.Width, host.Height
	pw, ph := preview.Width, preview.Height
	return []geometry.Point{
		{X: x + w + gap, Y: y},           // right, top-aligned
		{X: x, Y: y + h + gap},           // below, left-aligned
		{X: x - pw - gap, Y: y},          // left, top-aligned
		{X: x, Y: y - ph - gap},          // above, left-aligned
		{X: x + w + gap, Y: y + h - ph},  // right, bottom-aligned
		{X: x + w - pw, Y: y + h + gap},  // below, right-aligned
		{X: x - pw - gap, Y: y + h - ph}, // left, bottom-aligned
		{X: x + w - pw, Y: y - ph - gap}, // above, right-aligned
	}
}
