package preview

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/1broseidon/sizepeek/internal/geometry"
	"github.com/1broseidon/sizepeek/internal/placement"
)

// Phase is the lifecycle state of a Manager.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseReady
	PhaseActive
	// PhaseBusy is held while an operation is in flight. Calls arriving in this
	// phase are rejected with ErrBusy.
	PhaseBusy
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseReady:
		return "ready"
	case PhaseActive:
		return "active"
	case PhaseBusy:
		return "busy"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session is the state of one host window's preview.
type Session struct {
	ID        string
	Host      HostWindow
	Size      geometry.Size
	Placement geometry.Rect
}

// Snapshot is a read-only view of a Manager.
type Snapshot struct {
	Phase     Phase
	SessionID string
	Renderer  RendererKind
	Indicator IndicatorKind
	Strategy  placement.Kind
	Size      geometry.Size
	Placement geometry.Rect
}

// ManagerConfig wires a Manager to its collaborators.
type ManagerConfig struct {
	Factory   RendererFactory
	Overlay   Overlay
	Geometry  *geometry.Service
	Renderer  RendererKind
	Indicator IndicatorKind
	Strategy  placement.Kind
	Placement placement.Options
	Logger    *slog.Logger
}

// Manager owns the lifecycle of one preview session. It is not safe for
// concurrent use; callers serialize access (see daemon.Loop).
type Manager struct {
	factory  RendererFactory
	overlay  Overlay
	geo      *geometry.Service
	opts     placement.Options
	logger   *slog.Logger
	events   *hub
	phase    Phase
	entered  Phase
	session  *Session
	renderer Renderer

	rendererKind  RendererKind
	indicatorKind IndicatorKind
	strategyKind  placement.Kind
	strategy      placement.Strategy
}

// NewManager validates cfg and builds a Manager in PhaseUninitialized.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Factory == nil {
		return nil, fmt.Errorf("preview manager: renderer factory is required")
	}
	if cfg.Overlay == nil {
		return nil, fmt.Errorf("preview manager: overlay is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	geo := cfg.Geometry
	if geo == nil {
		geo = geometry.NewService(geometry.StaticMonitors{geometry.DefaultMonitor()}, logger)
	}

	strategy, err := placement.New(cfg.Strategy, cfg.Placement)
	if err != nil {
		return nil, fmt.Errorf("preview manager: %w", err)
	}

	return &Manager{
		factory:       cfg.Factory,
		overlay:       cfg.Overlay,
		geo:           geo,
		opts:          cfg.Placement,
		logger:        logger,
		events:        newHub(logger),
		rendererKind:  cfg.Renderer,
		indicatorKind: cfg.Indicator,
		strategyKind:  cfg.Strategy,
		strategy:      strategy,
	}, nil
}

// Subscribe registers fn for session events and returns a cancel function.
func (m *Manager) Subscribe(fn func(Event)) func() {
	return m.events.subscribe(fn)
}

// Phase returns the current lifecycle phase.
func (m *Manager) Phase() Phase { return m.phase }

// Active reports whether a preview is currently shown.
func (m *Manager) Active() bool { return m.phase == PhaseActive }

// Renderer returns the bound renderer, or nil before Initialize.
func (m *Manager) Renderer() Renderer { return m.renderer }

// Snapshot returns the current state without side effects.
func (m *Manager) Snapshot() Snapshot {
	s := Snapshot{
		Phase:     m.phase,
		Renderer:  m.rendererKind,
		Indicator: m.indicatorKind,
		Strategy:  m.strategyKind,
	}
	if m.session != nil {
		s.SessionID = m.session.ID
		s.Size = m.session.Size
		s.Placement = m.session.Placement
	}
	return s
}

// run executes fn as a single operation. The phase is PhaseBusy while fn runs;
// afterwards it becomes whatever fn returned, or the previous phase if fn
// panicked.
func (m *Manager) run(op string, fn func() (Phase, error)) (err error) {
	if m.phase == PhaseBusy {
		m.logger.Debug("preview operation rejected", "op", op, "reason", "busy")
		return fmt.Errorf("%s: %w", op, ErrBusy)
	}

	prev := m.phase
	next := prev
	m.entered = prev
	m.phase = PhaseBusy
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("preview operation panic recovered", "op", op, "panic", r)
			err = fmt.Errorf("%s: %w: %v", op, ErrInternal, r)
			next = prev
		}
		m.phase = next
	}()

	next, err = fn()
	if err != nil {
		m.logger.Warn("preview operation failed", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Initialize binds host and prepares a renderer. Initializing with the host that
// is already bound is a no-op; a different host replaces the previous session.
func (m *Manager) Initialize(host HostWindow) error {
	if host == nil {
		return fmt.Errorf("initialize: %w", ErrNoHostWindow)
	}
	return m.run("initialize", func() (Phase, error) {
		if m.session != nil {
			if m.session.Host == host {
				return m.phaseBefore(), nil
			}
			m.teardown()
			if m.renderer != nil {
				m.renderer.Cleanup()
				m.renderer = nil
			}
		}

		if m.renderer == nil {
			r, kind, err := createRenderer(m.factory, m.rendererKind, m.logger)
			if err != nil {
				return PhaseUninitialized, err
			}
			m.renderer = r
			m.rendererKind = kind
		}
		m.renderer.SetIndicatorKind(m.indicatorKind)
		if err := m.renderer.Initialize(host); err != nil {
			return PhaseUninitialized, fmt.Errorf("%w: renderer init: %w", ErrInternal, err)
		}

		m.session = &Session{ID: uuid.NewString(), Host: host}
		m.logger.Info("preview session initialized",
			"session", m.session.ID,
			"renderer", m.rendererKind.String(),
			"strategy", m.strategyKind.String())
		return PhaseReady, nil
	})
}

// StartPreview places and shows the overlay at size.
func (m *Manager) StartPreview(size geometry.Size) error {
	return m.run("start", func() (Phase, error) {
		if err := m.checkSize(size); err != nil {
			return m.phaseBefore(), err
		}
		if err := m.show(size); err != nil {
			return m.phaseBefore(), err
		}
		m.events.emit(newEvent(PreviewStarted, size))
		return PhaseActive, nil
	})
}

// UpdatePreview re-places and re-renders the overlay at size. When no preview is
// active it behaves as StartPreview.
func (m *Manager) UpdatePreview(size geometry.Size) error {
	if m.phase != PhaseActive && m.phase != PhaseBusy {
		return m.StartPreview(size)
	}
	return m.run("update", func() (Phase, error) {
		if err := m.checkSize(size); err != nil {
			return PhaseActive, err
		}
		if err := m.show(size); err != nil {
			return PhaseActive, err
		}
		m.events.emit(newEvent(PreviewUpdated, size))
		return PhaseActive, nil
	})
}

// Refresh re-places the active preview at its recorded size, typically after the
// host moved or resized. It does nothing unless a preview is active.
func (m *Manager) Refresh() error {
	if m.phase != PhaseActive && m.phase != PhaseBusy {
		return nil
	}
	return m.run("refresh", func() (Phase, error) {
		size := m.session.Size
		if err := m.show(size); err != nil {
			return PhaseActive, err
		}
		m.events.emit(newEvent(PreviewUpdated, size))
		return PhaseActive, nil
	})
}

// StopPreview hides the overlay. Stopping an inactive preview succeeds without
// changing state.
func (m *Manager) StopPreview() error {
	return m.run("stop", func() (Phase, error) {
		prev := m.phaseBefore()
		if prev != PhaseActive {
			return prev, nil
		}
		if err := m.overlay.Hide(); err != nil {
			m.logger.Warn("failed to hide preview overlay", "error", err)
		}
		m.events.emit(newEvent(PreviewStopped, m.session.Size))
		return PhaseStopped, nil
	})
}

// ApplyPreviewedDimensions resizes the host to the last previewed size. The
// preview stays active.
func (m *Manager) ApplyPreviewedDimensions() error {
	return m.run("apply", func() (Phase, error) {
		prev := m.phaseBefore()
		if prev != PhaseActive {
			return prev, ErrNotActive
		}
		size := m.session.Size
		if err := m.session.Host.Resize(size); err != nil {
			return prev, fmt.Errorf("%w: resize host: %w", ErrInternal, err)
		}
		m.logger.Info("applied previewed dimensions", "session", m.session.ID, "width", size.Width, "height", size.Height)
		m.events.emit(newEvent(PreviewApplied, size))
		return PhaseActive, nil
	})
}

// Cleanup hides the overlay and releases the renderer and host. Valid from any
// phase except while busy.
func (m *Manager) Cleanup() error {
	return m.run("cleanup", func() (Phase, error) {
		m.teardown()
		if m.renderer != nil {
			m.renderer.Cleanup()
			m.renderer = nil
		}
		return PhaseUninitialized, nil
	})
}

// BindRenderer replaces the renderer. The old renderer is cleaned up after the
// new one is initialized; an active preview is re-rendered at its recorded size.
func (m *Manager) BindRenderer(kind RendererKind, indicator IndicatorKind, r Renderer) error {
	if r == nil {
		return fmt.Errorf("bind renderer: %w: nil renderer", ErrInternal)
	}
	return m.run("bind renderer", func() (Phase, error) {
		prev := m.phaseBefore()
		r.SetIndicatorKind(indicator)
		if m.session != nil {
			if err := r.Initialize(m.session.Host); err != nil {
				r.Cleanup()
				return prev, fmt.Errorf("%w: renderer init: %w", ErrInternal, err)
			}
		}

		old := m.renderer
		m.renderer = r
		m.rendererKind = kind
		m.indicatorKind = indicator
		if old != nil {
			old.Cleanup()
		}

		if prev == PhaseActive {
			if err := m.show(m.session.Size); err != nil {
				return prev, err
			}
		}
		return prev, nil
	})
}

// SetStrategy switches the placement strategy and re-places an active preview.
func (m *Manager) SetStrategy(kind placement.Kind) error {
	return m.run("set strategy", func() (Phase, error) {
		prev := m.phaseBefore()
		strategy, err := placement.New(kind, m.opts)
		if err != nil {
			return prev, err
		}
		m.strategy = strategy
		m.strategyKind = kind
		if prev == PhaseActive {
			if err := m.show(m.session.Size); err != nil {
				return prev, err
			}
			m.events.emit(newEvent(PreviewUpdated, m.session.Size))
		}
		return prev, nil
	})
}

// phaseBefore reports the phase the current operation started from. Only valid
// inside run.
func (m *Manager) phaseBefore() Phase { return m.entered }

func (m *Manager) checkSize(size geometry.Size) error {
	if !size.Valid() {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, size.Width, size.Height)
	}
	if m.session == nil {
		return ErrNotInitialized
	}
	return nil
}

// show computes the placement for size, moves the overlay there and re-renders.
// The session records size and placement only when every step succeeded.
func (m *Manager) show(size geometry.Size) error {
	host, err := m.session.Host.Bounds()
	if err != nil {
		return fmt.Errorf("%w: host bounds: %w", ErrInternal, err)
	}
	monitors := m.geo.MonitorsOrDefault()

	origin := m.strategy.CalculatePosition(host.Origin(), host.Size(), size, monitors)
	rect := geometry.RectAt(origin, size)

	if err := m.overlay.Show(rect); err != nil {
		return fmt.Errorf("%w: show overlay: %w", ErrInternal, err)
	}
	if err := m.renderer.UpdateVisual(size); err != nil {
		return fmt.Errorf("%w: render: %w", ErrInternal, err)
	}

	m.session.Size = size
	m.session.Placement = rect
	m.logger.Debug("preview placed",
		"session", m.session.ID,
		"strategy", m.strategy.Kind().String(),
		"x", rect.X, "y", rect.Y,
		"width", size.Width, "height", size.Height)
	return nil
}

// teardown hides an active overlay and forgets the session. The renderer is kept.
func (m *Manager) teardown() {
	if m.session == nil {
		return
	}
	session := m.session
	m.session = nil
	if m.phaseBefore() == PhaseActive {
		if err := m.overlay.Hide(); err != nil {
			m.logger.Warn("failed to hide preview overlay", "error", err)
		}
		m.events.emit(newEvent(PreviewStopped, session.Size))
	}
	m.logger.Info("preview session closed", "session", session.ID)
}

// createRenderer builds kind from factory, degrading to the outline renderer
// when kind cannot be built. It returns the kind actually created.
func createRenderer(factory RendererFactory, kind RendererKind, logger *slog.Logger) (Renderer, RendererKind, error) {
	r, err := factory.Create(kind)
	if err == nil && r != nil {
		return r, kind, nil
	}
	if err == nil {
		err = errors.New("factory returned nil renderer")
	}
	if kind == RendererOutline {
		return nil, kind, fmt.Errorf("%w: create %s renderer: %w", ErrInternal, kind, err)
	}

	logger.Warn("renderer unavailable, falling back to outline", "renderer", kind.String(), "error", err)
	r, err = factory.Create(RendererOutline)
	if err != nil {
		return nil, kind, fmt.Errorf("%w: create outline renderer: %w", ErrInternal, err)
	}
	if r == nil {
		return nil, kind, fmt.Errorf("%w: factory returned nil outline renderer", ErrInternal)
	}
	return r, RendererOutline, nil
}
