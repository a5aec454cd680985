package platform

import (
	"fmt"

	"github.com/1broseidon/sizepeek/internal/geometry"
)

// HostWindow adapts a backend window to preview.HostWindow.
type HostWindow struct {
	backend Backend
	id      WindowID
}

// NewHostWindow returns a host handle for windowID. It does not check that the
// window exists; Bounds reports that.
func NewHostWindow(backend Backend, windowID WindowID) *HostWindow {
	return &HostWindow{backend: backend, id: windowID}
}

// ID returns the window identifier.
func (h *HostWindow) ID() WindowID { return h.id }

// Bounds returns the current window rectangle.
func (h *HostWindow) Bounds() (geometry.Rect, error) {
	w, err := h.backend.Window(h.id)
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("host window 0x%x: %w", uint32(h.id), err)
	}
	return w.Bounds, nil
}

// Resize applies size to the window.
func (h *HostWindow) Resize(size geometry.Size) error {
	if !size.Valid() {
		return fmt.Errorf("invalid size %dx%d", size.Width, size.Height)
	}
	if err := h.backend.Resize(h.id, size.Width, size.Height); err != nil {
		return fmt.Errorf("resize host window 0x%x: %w", uint32(h.id), err)
	}
	return nil
}

// Title returns the window title, or "" when unavailable.
func (h *HostWindow) Title() string {
	w, err := h.backend.Window(h.id)
	if err != nil {
		return ""
	}
	return w.Title
}

// Watch calls fn after every move or resize of the window.
func (h *HostWindow) Watch(fn func()) (func(), error) {
	return h.backend.WatchGeometry(h.id, fn)
}
