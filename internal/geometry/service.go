package geometry

import (
	"fmt"
	"log/slog"
	"math"
)

// MonitorSource enumerates the monitors known to the windowing system.
type MonitorSource interface {
	Monitors() ([]Monitor, error)
}

// MonitorSourceFunc adapts a function to MonitorSource.
type MonitorSourceFunc func() ([]Monitor, error)

func (f MonitorSourceFunc) Monitors() ([]Monitor, error) { return f() }

// StaticMonitors is a MonitorSource that always returns the same layout.
type StaticMonitors []Monitor

func (s StaticMonitors) Monitors() ([]Monitor, error) {
	out := make([]Monitor, len(s))
	copy(out, s)
	return out, nil
}

// Service answers visibility and containment queries over monitor snapshots.
type Service struct {
	source MonitorSource
	logger *slog.Logger
}

// NewService creates a geometry service. A nil logger discards output.
func NewService(source MonitorSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{source: source, logger: logger}
}

// EnumerateMonitors queries the source on every call. The result is a snapshot;
// callers re-enumerate when staleness matters.
func (s *Service) EnumerateMonitors() ([]Monitor, error) {
	if s == nil || s.source == nil {
		return nil, fmt.Errorf("no monitor source configured")
	}
	monitors, err := s.source.Monitors()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate monitors: %w", err)
	}

	out := make([]Monitor, 0, len(monitors))
	for _, m := range monitors {
		if m.Bounds.Empty() {
			s.logger.Debug("skipping monitor with empty bounds", "id", m.ID)
			continue
		}
		m.Scale = DpiScaleFactor(m)
		if m.WorkArea.Empty() {
			m.WorkArea = m.Bounds
		}
		out = append(out, m)
	}
	return out, nil
}

// MonitorsOrDefault enumerates monitors and substitutes DefaultMonitor when the
// source fails or reports nothing.
func (s *Service) MonitorsOrDefault() []Monitor {
	monitors, err := s.EnumerateMonitors()
	if err != nil {
		s.logger.Warn("monitor enumeration failed, using default monitor", "error", err)
		return []Monitor{DefaultMonitor()}
	}
	if len(monitors) == 0 {
		s.logger.Warn("no monitors reported, using default monitor")
		return []Monitor{DefaultMonitor()}
	}
	return monitors
}

// DpiScaleFactor returns the monitor's scale, or 1.0 when unknown.
func DpiScaleFactor(m Monitor) float64 {
	if m.Scale <= 0 || math.IsNaN(m.Scale) || math.IsInf(m.Scale, 0) {
		return 1.0
	}
	return m.Scale
}

// MonitorContainingWindow returns the monitor whose bounds contain the center of
// the window.
func MonitorContainingWindow(window Rect, monitors []Monitor) (Monitor, bool) {
	center := window.Center()
	for _, m := range monitors {
		if m.Bounds.ContainsPoint(center) {
			return m, true
		}
	}
	return Monitor{}, false
}

// BestMonitorForRect returns the monitor with the greatest intersection area.
// Ties prefer the primary monitor, then the first enumerated.
func BestMonitorForRect(rect Rect, monitors []Monitor) (Monitor, bool) {
	bestIdx := -1
	var bestArea int64
	for i, m := range monitors {
		area := rect.Intersect(m.Bounds).Area()
		if area == 0 {
			continue
		}
		switch {
		case bestIdx < 0, area > bestArea:
			bestIdx, bestArea = i, area
		case area == bestArea && m.Primary && !monitors[bestIdx].Primary:
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return Monitor{}, false
	}
	return monitors[bestIdx], true
}

// PrimaryMonitor returns the primary monitor, or the first one when none is flagged.
func PrimaryMonitor(monitors []Monitor) (Monitor, bool) {
	if len(monitors) == 0 {
		return Monitor{}, false
	}
	for _, m := range monitors {
		if m.Primary {
			return m, true
		}
	}
	return monitors[0], true
}

// NearestMonitor returns the monitor whose center is closest to the rect's center.
func NearestMonitor(rect Rect, monitors []Monitor) (Monitor, bool) {
	if len(monitors) == 0 {
		return Monitor{}, false
	}
	c := rect.Center()
	best := 0
	bestDist := int64(math.MaxInt64)
	for i, m := range monitors {
		mc := m.Bounds.Center()
		dx := int64(mc.X - c.X)
		dy := int64(mc.Y - c.Y)
		if d := dx*dx + dy*dy; d < bestDist {
			best, bestDist = i, d
		}
	}
	return monitors[best], true
}

// FullyVisible reports whether rect lies entirely within some monitor's work area.
func FullyVisible(rect Rect, monitors []Monitor) bool {
	for _, m := range monitors {
		if m.Usable().Contains(rect) {
			return true
		}
	}
	return false
}

// VisibleFraction returns the largest share of rect covered by a single work area.
func VisibleFraction(rect Rect, monitors []Monitor) float64 {
	total := rect.Area()
	if total == 0 {
		return 0
	}
	var best int64
	for _, m := range monitors {
		if a := rect.Intersect(m.Usable()).Area(); a > best {
			best = a
		}
	}
	return float64(best) / float64(total)
}

// PartiallyVisible reports whether rect is fully visible or at least threshold of
// its area overlaps one monitor's work area.
func PartiallyVisible(rect Rect, monitors []Monitor, threshold float64) bool {
	if FullyVisible(rect, monitors) {
		return true
	}
	return VisibleFraction(rect, monitors) >= threshold
}

// ConstrainToScreen shifts rect into the work area of the best matching monitor.
// Right/bottom are clamped first and left/top last, so a rect larger than the work
// area is pinned to its top-left corner.
func ConstrainToScreen(rect Rect, monitors []Monitor) Rect {
	target, ok := BestMonitorForRect(rect, monitors)
	if !ok {
		target, ok = NearestMonitor(rect, monitors)
	}
	if !ok {
		target = DefaultMonitor()
	}
	area := target.Usable()

	out := rect
	if out.Right() > area.Right() {
		out.X = area.Right() - out.Width
	}
	if out.Bottom() > area.Bottom() {
		out.Y = area.Bottom() - out.Height
	}
	if out.X < area.X {
		out.X = area.X
	}
	if out.Y < area.Y {
		out.Y = area.Y
	}
	return out
}
