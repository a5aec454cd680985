package daemon

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/sizepeek/internal/platform"
	"github.com/1broseidon/sizepeek/internal/preview"
)

// Previewer is the part of the preview coordinator the daemon drives when the
// host window changes.
type Previewer interface {
	Initialize(host preview.HostWindow) bool
	Reinitialize(host preview.HostWindow) bool
	HostGeometryChanged() bool
	Cleanup() bool
}

// Poster queues work onto the loop goroutine.
type Poster interface {
	Post(fn func()) bool
}

// HostSynchronizer tracks the attached host window and keeps the preview in
// step with it. All methods must run on the loop goroutine.
type HostSynchronizer struct {
	backend   platform.Backend
	previewer Previewer
	loop      Poster
	logger    *slog.Logger

	host      *platform.HostWindow
	stopWatch func()
}

// NewHostSynchronizer creates a synchronizer. Geometry notifications arrive on
// the X event goroutine and are re-posted to loop.
func NewHostSynchronizer(backend platform.Backend, previewer Previewer, loop Poster, logger *slog.Logger) *HostSynchronizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HostSynchronizer{
		backend:   backend,
		previewer: previewer,
		loop:      loop,
		logger:    logger,
	}
}

// Host returns the attached host, or nil.
func (s *HostSynchronizer) Host() *platform.HostWindow { return s.host }

// Attach binds the preview to windowID. Attaching the current window again
// keeps the existing session; switching windows starts a fresh one. A failed
// switch leaves nothing attached.
func (s *HostSynchronizer) Attach(windowID platform.WindowID) (*platform.HostWindow, error) {
	if windowID == 0 {
		return nil, preview.ErrNoHostWindow
	}
	if s.host != nil && s.host.ID() == windowID {
		return s.host, nil
	}
	if _, err := s.backend.Window(windowID); err != nil {
		return nil, fmt.Errorf("attach window 0x%x: %w", uint32(windowID), err)
	}

	host := platform.NewHostWindow(s.backend, windowID)
	bind := s.previewer.Initialize
	if s.host != nil {
		bind = s.previewer.Reinitialize
	}
	ok := bind(host)
	s.unwatch()
	if !ok {
		// The previous session is gone either way.
		s.host = nil
		return nil, fmt.Errorf("initialize preview for window 0x%x failed", uint32(windowID))
	}

	s.host = host
	stop, err := host.Watch(func() {
		s.loop.Post(func() {
			if s.host == host {
				s.previewer.HostGeometryChanged()
			}
		})
	})
	if err != nil {
		s.logger.Warn("host geometry watch failed, preview will not follow moves",
			"window_id", uint32(windowID),
			"error", err)
	} else {
		s.stopWatch = stop
	}

	s.logger.Info("attached host window", "window_id", uint32(windowID), "title", host.Title())
	return host, nil
}

// AttachActive attaches the focused window.
func (s *HostSynchronizer) AttachActive() (*platform.HostWindow, error) {
	windowID, err := s.backend.ActiveWindow()
	if err != nil {
		return nil, err
	}
	return s.Attach(windowID)
}

// HandleWindowClosed tears the preview down if windowID is the attached host.
func (s *HostSynchronizer) HandleWindowClosed(windowID platform.WindowID) {
	if s.host == nil || s.host.ID() != windowID {
		return // Not our host, nothing to do
	}
	s.logger.Info("host window closed, cleaning up", "window_id", uint32(windowID))
	s.Detach()
}

// Detach stops watching the host and releases the preview resources.
func (s *HostSynchronizer) Detach() {
	s.unwatch()
	s.host = nil
	s.previewer.Cleanup()
}

func (s *HostSynchronizer) unwatch() {
	if s.stopWatch != nil {
		s.stopWatch()
		s.stopWatch = nil
	}
}
