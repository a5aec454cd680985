package placement

import "github.com/1broseidon/sizepeek/internal/geometry"

// Center puts the preview in the middle of the host's monitor.
type Center struct {
	opts Options
}

func (c *Center) Kind() Kind { return KindCenter }

// CalculatePosition centers on the work area of the monitor containing the host
// center. Without a match it uses the primary monitor of the list, and without
// monitors the configured default extent. A preview larger than the work area
// is pinned to its top-left corner, which is what ConstrainToScreen yields.
func (c *Center) CalculatePosition(hostPos geometry.Point, hostSize, previewSize geometry.Size, monitors []geometry.Monitor) geometry.Point {
	host := geometry.RectAt(hostPos, hostSize)

	target, ok := geometry.MonitorContainingWindow(host, monitors)
	if !ok {
		target, ok = geometry.PrimaryMonitor(monitors)
	}
	if !ok {
		target = c.opts.Default
	}

	area := target.Usable()
	return geometry.Point{
		X: area.X + max(area.Width-previewSize.Width, 0)/2,
		Y: area.Y + max(area.Height-previewSize.Height, 0)/2,
	}
}

// Adjacent places the preview beside the host, walking a fixed fallback order
// and finally centering.
type Adjacent struct {
	opts   Options
	center *Center
}

func (a *Adjacent) Kind() Kind { return KindAdjacent }

func (a *Adjacent) CalculatePosition(hostPos geometry.Point, hostSize, previewSize geometry.Size, monitors []geometry.Monitor) geometry.Point {
	host := geometry.RectAt(hostPos, hostSize)
	gap := scaledGap(host, monitors, a.opts.SnapDistance)

	chosen, found := geometry.Point{}, false
	for _, p := range candidates(host, previewSize, gap) {
		if geometry.PartiallyVisible(geometry.RectAt(p, previewSize), monitors, a.opts.AdjacentThreshold) {
			chosen, found = p, true
			break
		}
	}
	if !found {
		chosen = a.center.CalculatePosition(hostPos, hostSize, previewSize, monitors)
	}

	rect := geometry.RectAt(chosen, previewSize)
	if !geometry.FullyVisible(rect, monitors) {
		rect = geometry.ConstrainToScreen(rect, monitors)
	}
	return rect.Origin()
}

// Snap uses Adjacent's candidates with a stricter rule and no clamping: a
// candidate must sit inside a work area or overlap one by SnapThreshold.
type Snap struct {
	opts   Options
	center *Center
}

func (s *Snap) Kind() Kind { return KindSnap }

func (s *Snap) CalculatePosition(hostPos geometry.Point, hostSize, previewSize geometry.Size, monitors []geometry.Monitor) geometry.Point {
	host := geometry.RectAt(hostPos, hostSize)
	gap := scaledGap(host, monitors, s.opts.SnapDistance)

	for _, p := range candidates(host, previewSize, gap) {
		if s.qualifies(geometry.RectAt(p, previewSize), monitors) {
			return p
		}
	}
	return s.center.CalculatePosition(hostPos, hostSize, previewSize, monitors)
}

func (s *Snap) qualifies(rect geometry.Rect, monitors []geometry.Monitor) bool {
	return geometry.PartiallyVisible(rect, monitors, s.opts.SnapThreshold)
}
