// Package geometry answers monitor and visibility questions for preview placement.
//
// All values live in a single coordinate space: the desktop coordinates reported by
// the windowing system. Monitor scale factors convert logical constants into that
// space; they never change how rectangles are compared.
package geometry

import "math"

// Point is a position in desktop coordinates.
type Point struct {
	X int
	Y int
}

// Size is a width/height pair.
type Size struct {
	Width  int
	Height int
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Scale multiplies both dimensions by factor, rounding to the nearest unit.
func (s Size) Scale(factor float64) Size {
	return Size{
		Width:  int(math.Round(float64(s.Width) * factor)),
		Height: int(math.Round(float64(s.Height) * factor)),
	}
}

// Rect describes a rectangular region.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// RectAt builds a rect from an origin and a size.
func RectAt(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }
func (r Rect) Size() Size    { return Size{Width: r.Width, Height: r.Height} }

// Empty reports whether the rect covers no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns width*height, or 0 for empty rects.
func (r Rect) Area() int64 {
	if r.Empty() {
		return 0
	}
	return int64(r.Width) * int64(r.Height)
}

// Center returns the center point (integer division).
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// ContainsPoint uses half-open intervals: the right and bottom edges are outside.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Contains reports whether other lies entirely inside r.
func (r Rect) Contains(other Rect) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	return other.X >= r.X && other.Y >= r.Y &&
		other.Right() <= r.Right() && other.Bottom() <= r.Bottom()
}

// Intersect returns the overlapping region, or an empty Rect.
func (r Rect) Intersect(other Rect) Rect {
	x1 := max(r.X, other.X)
	y1 := max(r.Y, other.Y)
	x2 := min(r.Right(), other.Right())
	y2 := min(r.Bottom(), other.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Intersects reports whether r and other overlap by a positive area.
func (r Rect) Intersects(other Rect) bool {
	return !r.Intersect(other).Empty()
}

// Monitor is a read-only snapshot of one display.
type Monitor struct {
	// ID is a stable device identifier (the RandR output name on X11).
	ID       string
	Bounds   Rect
	WorkArea Rect
	// Scale is the DPI scale factor (logical to desktop units).
	Scale   float64
	Primary bool
}

// Usable returns the work area, or the bounds when no work area is known.
func (m Monitor) Usable() Rect {
	if m.WorkArea.Empty() {
		return m.Bounds
	}
	return m.WorkArea
}

const (
	DefaultMonitorWidth  = 1920
	DefaultMonitorHeight = 1080
	// BaseDPI is the DPI at which the scale factor is 1.0.
	BaseDPI = 96.0
)

// DefaultMonitor is substituted whenever enumeration yields no monitors.
func DefaultMonitor() Monitor {
	bounds := Rect{X: 0, Y: 0, Width: DefaultMonitorWidth, Height: DefaultMonitorHeight}
	return Monitor{
		ID:       "default",
		Bounds:   bounds,
		WorkArea: bounds,
		Scale:    1.0,
		Primary:  true,
	}
}

// ScaleFromDPI converts a DPI value into a scale factor rounded to quarter steps.
// Non-positive input yields 1.0.
func ScaleFromDPI(dpi float64) float64 {
	if dpi <= 0 || math.IsNaN(dpi) || math.IsInf(dpi, 0) {
		return 1.0
	}
	scale := math.Round(dpi/BaseDPI*4) / 4
	if scale <= 0 {
		return 1.0
	}
	return scale
}
