package platform

import "github.com/1broseidon/sizepeek/internal/geometry"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect = geometry.Rect

// Display describes a physical display and its usable work area.
type Display struct {
	ID      int
	Name    string
	Bounds  Rect
	Usable  Rect
	Primary bool
	// DPI is zero when the density is unknown.
	DPI float64
}

// Monitor converts a display into the geometry snapshot used for placement.
func (d Display) Monitor() geometry.Monitor {
	return geometry.Monitor{
		ID:       d.Name,
		Bounds:   d.Bounds,
		WorkArea: d.Usable,
		Scale:    geometry.ScaleFromDPI(d.DPI),
		Primary:  d.Primary,
	}
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	Title  string
	Bounds Rect
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	ActiveWindow() (WindowID, error)
	Window(windowID WindowID) (Window, error)
	Resize(windowID WindowID, width, height int) error
	// WatchGeometry calls fn after the window moves or resizes.
	WatchGeometry(windowID WindowID, fn func()) (stop func(), err error)
}

// MonitorSource exposes a Backend's displays as placement monitors.
type MonitorSource struct {
	Backend Backend
}

var _ geometry.MonitorSource = MonitorSource{}

func (s MonitorSource) Monitors() ([]geometry.Monitor, error) {
	displays, err := s.Backend.Displays()
	if err != nil {
		return nil, err
	}
	monitors := make([]geometry.Monitor, 0, len(displays))
	for _, d := range displays {
		monitors = append(monitors, d.Monitor())
	}
	return monitors, nil
}
