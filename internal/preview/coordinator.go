package preview

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/sizepeek/internal/geometry"
	"github.com/1broseidon/sizepeek/internal/placement"
)

// CoordinatorConfig holds the collaborators and initial selections of a
// Coordinator.
type CoordinatorConfig struct {
	Factory   RendererFactory
	Overlay   Overlay
	Geometry  *geometry.Service
	Settings  SettingsStore
	Renderer  RendererKind
	Indicator IndicatorKind
	Strategy  placement.Kind
	Placement placement.Options
	Logger    *slog.Logger
}

// Coordinator is the public entry point of the preview engine. It owns one
// Manager at a time, tracks the selected renderer, indicator and strategy, and
// relays session events to its own subscribers.
//
// Every method reports success as a bool; failures are logged, never returned or
// panicked. A Coordinator must only be used from one goroutine.
type Coordinator struct {
	factory  RendererFactory
	overlay  Overlay
	geo      *geometry.Service
	settings SettingsStore
	opts     placement.Options
	logger   *slog.Logger
	events   *hub

	rendererKind  RendererKind
	indicatorKind IndicatorKind
	strategyKind  placement.Kind

	host    HostWindow
	manager *Manager
	unrelay func()
	busy    bool
	lastErr error
}

// NewCoordinator builds a Coordinator. No host is bound until Initialize.
func NewCoordinator(cfg CoordinatorConfig) (*Coordinator, error) {
	if cfg.Factory == nil {
		return nil, fmt.Errorf("preview coordinator: renderer factory is required")
	}
	if cfg.Overlay == nil {
		return nil, fmt.Errorf("preview coordinator: overlay is required")
	}
	if _, err := placement.New(cfg.Strategy, cfg.Placement); err != nil {
		return nil, fmt.Errorf("preview coordinator: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{
		factory:       cfg.Factory,
		overlay:       cfg.Overlay,
		geo:           cfg.Geometry,
		settings:      cfg.Settings,
		opts:          cfg.Placement,
		logger:        logger,
		events:        newHub(logger),
		rendererKind:  cfg.Renderer,
		indicatorKind: cfg.Indicator,
		strategyKind:  cfg.Strategy,
	}, nil
}

// Subscribe registers fn for relayed session events.
func (c *Coordinator) Subscribe(fn func(Event)) func() {
	return c.events.subscribe(fn)
}

// Err returns why the most recent call failed, or nil if it succeeded.
func (c *Coordinator) Err() error { return c.lastErr }

func (c *Coordinator) guard(op string, fn func() error) (ok bool) {
	if c.busy {
		c.logger.Debug("preview call rejected", "op", op, "reason", "busy")
		c.lastErr = fmt.Errorf("%s: %w", op, ErrBusy)
		return false
	}
	c.busy = true
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("preview coordinator panic recovered", "op", op, "panic", r)
			c.lastErr = fmt.Errorf("%s: %w: %v", op, ErrInternal, r)
			ok = false
		}
		c.busy = false
	}()

	c.lastErr = nil
	if err := fn(); err != nil {
		c.logger.Warn("preview call failed", "op", op, "error", err)
		c.lastErr = fmt.Errorf("%s: %w", op, err)
		return false
	}
	return true
}

// Initialize binds host. Calling it again with the same host is a no-op.
func (c *Coordinator) Initialize(host HostWindow) bool {
	return c.guard("initialize", func() error {
		return c.initialize(host)
	})
}

// Reinitialize drops the current session and binds host.
func (c *Coordinator) Reinitialize(host HostWindow) bool {
	return c.guard("reinitialize", func() error {
		if host == nil {
			return ErrNoHostWindow
		}
		if err := c.cleanup(); err != nil {
			return err
		}
		return c.initialize(host)
	})
}

// Cleanup releases the session. The host stays known so a later StartPreview
// can re-initialize.
func (c *Coordinator) Cleanup() bool {
	return c.guard("cleanup", c.cleanup)
}

// StartPreview shows the preview at size, initializing first if a host is known.
// An active preview is updated instead.
func (c *Coordinator) StartPreview(size geometry.Size) bool {
	return c.guard("start", func() error {
		return c.start(size)
	})
}

// StartPreviewDims is StartPreview for a width/height pair.
func (c *Coordinator) StartPreviewDims(width, height int) bool {
	return c.StartPreview(geometry.Size{Width: width, Height: height})
}

// UpdatePreview re-places the preview at size, starting one when inactive.
func (c *Coordinator) UpdatePreview(size geometry.Size) bool {
	return c.guard("update", func() error {
		if !c.active() {
			return c.start(size)
		}
		if !size.Valid() {
			return ErrInvalidSize
		}
		return c.manager.UpdatePreview(size)
	})
}

// StopPreview hides the preview. Succeeds when nothing is shown.
func (c *Coordinator) StopPreview() bool {
	return c.guard("stop", func() error {
		if !c.active() {
			return nil
		}
		return c.manager.StopPreview()
	})
}

// ApplyPreviewedDimensions resizes the host to the previewed size.
func (c *Coordinator) ApplyPreviewedDimensions() bool {
	return c.guard("apply", func() error {
		if !c.active() {
			return ErrNotActive
		}
		return c.manager.ApplyPreviewedDimensions()
	})
}

// HostGeometryChanged re-places an active preview after the host moved or
// resized.
func (c *Coordinator) HostGeometryChanged() bool {
	return c.guard("host changed", func() error {
		if c.manager == nil {
			return nil
		}
		return c.manager.Refresh()
	})
}

// SetRendererKind swaps to a renderer of kind. An active preview is re-rendered
// at its recorded size.
func (c *Coordinator) SetRendererKind(kind RendererKind) bool {
	return c.guard("set renderer", func() error {
		return c.selectRenderer(kind, c.indicatorKind)
	})
}

// SetIndicatorKind rebuilds the renderer with a new indicator.
func (c *Coordinator) SetIndicatorKind(kind IndicatorKind) bool {
	return c.guard("set indicator", func() error {
		return c.selectRenderer(c.rendererKind, kind)
	})
}

// SetStrategyKind switches placement strategy and re-places an active preview.
func (c *Coordinator) SetStrategyKind(kind placement.Kind) bool {
	return c.guard("set strategy", func() error {
		if kind == c.strategyKind {
			return nil
		}
		if c.manager == nil {
			if _, err := placement.New(kind, c.opts); err != nil {
				return err
			}
		} else if err := c.manager.SetStrategy(kind); err != nil {
			return err
		}
		c.strategyKind = kind
		return nil
	})
}

// LoadFromSettings applies the stored renderer and indicator.
func (c *Coordinator) LoadFromSettings() bool {
	return c.guard("load settings", func() error {
		if c.settings == nil {
			return errors.New("no settings store configured")
		}
		s, err := c.settings.LoadPreviewSettings()
		if err != nil {
			return fmt.Errorf("load preview settings: %w", err)
		}
		return c.selectRenderer(s.Renderer, s.Indicator)
	})
}

// SaveToSettings persists the current renderer and indicator.
func (c *Coordinator) SaveToSettings() bool {
	return c.guard("save settings", func() error {
		if c.settings == nil {
			return errors.New("no settings store configured")
		}
		return c.settings.SavePreviewSettings(Settings{
			Renderer:  c.rendererKind,
			Indicator: c.indicatorKind,
			Mode:      ModeFor(c.rendererKind),
		})
	})
}

// Status is a point-in-time view of the coordinator.
type Status struct {
	Initialized bool
	Active      bool
	Busy        bool
	HostKnown   bool
	Renderer    RendererKind
	Indicator   IndicatorKind
	Strategy    placement.Kind
	Session     Snapshot
}

// Status returns the current state without side effects.
func (c *Coordinator) Status() Status {
	st := Status{
		Busy:      c.busy,
		HostKnown: c.host != nil,
		Renderer:  c.rendererKind,
		Indicator: c.indicatorKind,
		Strategy:  c.strategyKind,
	}
	if c.manager != nil {
		st.Session = c.manager.Snapshot()
		st.Initialized = st.Session.Phase != PhaseUninitialized
		st.Active = c.manager.Phase() == PhaseActive
	}
	return st
}

// DiagnoseState renders Status as text for troubleshooting.
func (c *Coordinator) DiagnoseState() (report string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("diagnose panic recovered", "panic", r)
			report = "preview state unavailable"
		}
	}()

	st := c.Status()
	var b strings.Builder
	fmt.Fprintf(&b, "initialized: %t\n", st.Initialized)
	fmt.Fprintf(&b, "active:      %t\n", st.Active)
	fmt.Fprintf(&b, "busy:        %t\n", st.Busy)
	fmt.Fprintf(&b, "host known:  %t\n", st.HostKnown)
	fmt.Fprintf(&b, "renderer:    %s\n", st.Renderer)
	if c.manager != nil && st.Session.Renderer != st.Renderer {
		fmt.Fprintf(&b, "  bound:     %s (fallback)\n", st.Session.Renderer)
	}
	fmt.Fprintf(&b, "indicator:   %s\n", st.Indicator)
	fmt.Fprintf(&b, "strategy:    %s\n", st.Strategy)
	if c.manager == nil {
		b.WriteString("session:     none\n")
		return b.String()
	}
	fmt.Fprintf(&b, "phase:       %s\n", st.Session.Phase)
	if st.Session.SessionID != "" {
		fmt.Fprintf(&b, "session:     %s\n", st.Session.SessionID)
	}
	if st.Session.Size.Valid() {
		p := st.Session.Placement
		fmt.Fprintf(&b, "size:        %dx%d\n", st.Session.Size.Width, st.Session.Size.Height)
		fmt.Fprintf(&b, "placement:   %dx%d+%d+%d\n", p.Width, p.Height, p.X, p.Y)
	}
	return b.String()
}

func (c *Coordinator) active() bool {
	return c.manager != nil && c.manager.Phase() == PhaseActive
}

func (c *Coordinator) initialize(host HostWindow) error {
	if host == nil {
		return ErrNoHostWindow
	}
	if c.manager != nil && c.host != host {
		if err := c.cleanup(); err != nil {
			return err
		}
	}
	c.host = host

	if c.manager == nil {
		m, err := NewManager(ManagerConfig{
			Factory:   c.factory,
			Overlay:   c.overlay,
			Geometry:  c.geo,
			Renderer:  c.rendererKind,
			Indicator: c.indicatorKind,
			Strategy:  c.strategyKind,
			Placement: c.opts,
			Logger:    c.logger,
		})
		if err != nil {
			return err
		}
		c.manager = m
		c.unrelay = m.Subscribe(c.events.emit)
	}
	return c.manager.Initialize(host)
}

func (c *Coordinator) cleanup() error {
	if c.manager == nil {
		return nil
	}
	err := c.manager.Cleanup()
	if c.unrelay != nil {
		c.unrelay()
	}
	c.manager = nil
	c.unrelay = nil
	return err
}

func (c *Coordinator) start(size geometry.Size) error {
	if !size.Valid() {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, size.Width, size.Height)
	}
	if c.manager == nil || c.manager.Phase() == PhaseUninitialized {
		if c.host == nil {
			return ErrNotInitialized
		}
		if err := c.initialize(c.host); err != nil {
			return err
		}
	}
	if c.manager.Phase() == PhaseActive {
		return c.manager.UpdatePreview(size)
	}
	return c.manager.StartPreview(size)
}

// selectRenderer records the requested kinds and, when a manager exists, binds a
// freshly created renderer. On failure the previous selection is restored.
func (c *Coordinator) selectRenderer(kind RendererKind, indicator IndicatorKind) error {
	if kind == c.rendererKind && indicator == c.indicatorKind {
		return nil
	}
	prevKind, prevIndicator := c.rendererKind, c.indicatorKind
	c.rendererKind, c.indicatorKind = kind, indicator
	if c.manager == nil {
		return nil
	}

	r, actual, err := createRenderer(c.factory, kind, c.logger)
	if err == nil {
		r.SetIndicatorKind(indicator)
		err = c.manager.BindRenderer(actual, indicator, r)
	}
	if err != nil {
		c.rendererKind, c.indicatorKind = prevKind, prevIndicator
		return err
	}
	c.logger.Info("preview renderer changed", "renderer", actual.String(), "indicator", indicator.String())
	return nil
}
