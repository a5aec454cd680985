package platform

import (
	"errors"
	"testing"

	"github.com/1broseidon/sizepeek/internal/geometry"
)

type stubBackend struct {
	displays []Display
	windows  map[WindowID]Window
	resized  map[WindowID]geometry.Size
}

func (s *stubBackend) Displays() ([]Display, error) { return s.displays, nil }

func (s *stubBackend) ActiveWindow() (WindowID, error) { return 0, errors.New("none") }

func (s *stubBackend) Window(id WindowID) (Window, error) {
	w, ok := s.windows[id]
	if !ok {
		return Window{}, errors.New("BadWindow")
	}
	return w, nil
}

func (s *stubBackend) Resize(id WindowID, width, height int) error {
	if s.resized == nil {
		s.resized = map[WindowID]geometry.Size{}
	}
	s.resized[id] = geometry.Size{Width: width, Height: height}
	return nil
}

func (s *stubBackend) WatchGeometry(WindowID, func()) (func(), error) { return func() {}, nil }

func TestMonitorSourceConvertsDisplays(t *testing.T) {
	backend := &stubBackend{displays: []Display{
		{ID: 0, Name: "eDP-1", Bounds: Rect{X: 0, Y: 0, Width: 2880, Height: 1800}, Usable: Rect{X: 0, Y: 32, Width: 2880, Height: 1768}, DPI: 192, Primary: true},
		{ID: 1, Name: "HDMI-1", Bounds: Rect{X: 2880, Y: 0, Width: 1920, Height: 1080}, Usable: Rect{X: 2880, Y: 0, Width: 1920, Height: 1080}},
	}}

	monitors, err := MonitorSource{Backend: backend}.Monitors()
	if err != nil {
		t.Fatalf("monitors: %v", err)
	}
	if len(monitors) != 2 {
		t.Fatalf("expected 2 monitors, got %d", len(monitors))
	}
	if m := monitors[0]; m.ID != "eDP-1" || m.Scale != 2 || !m.Primary || m.WorkArea.Y != 32 {
		t.Fatalf("unexpected first monitor %+v", m)
	}
	if m := monitors[1]; m.Scale != 1 || m.Primary {
		t.Fatalf("unknown DPI should map to scale 1, got %+v", m)
	}
}

func TestHostWindowResizeAndBounds(t *testing.T) {
	backend := &stubBackend{windows: map[WindowID]Window{
		0x2a00007: {ID: 0x2a00007, Title: "editor", Bounds: Rect{X: 10, Y: 20, Width: 800, Height: 600}},
	}}
	host := NewHostWindow(backend, 0x2a00007)

	b, err := host.Bounds()
	if err != nil || b.Width != 800 {
		t.Fatalf("bounds = %+v, %v", b, err)
	}
	if host.Title() != "editor" {
		t.Fatalf("title = %q", host.Title())
	}
	if err := host.Resize(geometry.Size{Width: 1024, Height: 768}); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if got := backend.resized[0x2a00007]; got != (geometry.Size{Width: 1024, Height: 768}) {
		t.Fatalf("backend resized to %+v", got)
	}
	if err := host.Resize(geometry.Size{}); err == nil {
		t.Fatalf("expected error for empty size")
	}

	gone := NewHostWindow(backend, 0x1)
	if _, err := gone.Bounds(); err == nil {
		t.Fatalf("expected error for missing window")
	}
}
