package preview

import (
	"errors"
	"testing"

	"github.com/1broseidon/sizepeek/internal/geometry"
	"github.com/1broseidon/sizepeek/internal/placement"
)

func TestManagerLifecycle(t *testing.T) {
	h := newHarness()
	m := h.manager(t)
	host := testHost()

	if m.Phase() != PhaseUninitialized {
		t.Fatalf("expected uninitialized, got %v", m.Phase())
	}
	if err := m.Initialize(host); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if m.Phase() != PhaseReady {
		t.Fatalf("expected ready, got %v", m.Phase())
	}
	if m.Snapshot().SessionID == "" {
		t.Fatalf("expected a session id")
	}

	size := geometry.Size{Width: 300, Height: 200}
	if err := m.StartPreview(size); err != nil {
		t.Fatalf("start: %v", err)
	}
	if m.Phase() != PhaseActive {
		t.Fatalf("expected active, got %v", m.Phase())
	}
	want := geometry.Rect{X: 910, Y: 100, Width: 300, Height: 200}
	if h.overlay.rect != want || !h.overlay.visible {
		t.Fatalf("overlay at %+v visible=%v, want %+v", h.overlay.rect, h.overlay.visible, want)
	}
	if got := h.factory.last().lastVisual(); got != size {
		t.Fatalf("renderer drew %+v, want %+v", got, size)
	}

	if err := m.StopPreview(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if m.Phase() != PhaseStopped || h.overlay.visible {
		t.Fatalf("expected stopped with hidden overlay, got %v visible=%v", m.Phase(), h.overlay.visible)
	}

	if err := m.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if m.Phase() != PhaseUninitialized || m.Renderer() != nil {
		t.Fatalf("expected released state after cleanup, got %v renderer=%v", m.Phase(), m.Renderer())
	}
	if h.factory.created[0].cleanups != 1 {
		t.Fatalf("expected renderer cleanup once, got %d", h.factory.created[0].cleanups)
	}
}

func TestManagerInitializeValidation(t *testing.T) {
	m := newHarness().manager(t)

	if err := m.Initialize(nil); !errors.Is(err, ErrNoHostWindow) {
		t.Fatalf("expected ErrNoHostWindow, got %v", err)
	}
	if err := m.StartPreview(geometry.Size{Width: 10, Height: 10}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if err := m.ApplyPreviewedDimensions(); !errors.Is(err, ErrNotActive) {
		t.Fatalf("expected ErrNotActive, got %v", err)
	}
}

func TestManagerRejectsInvalidSize(t *testing.T) {
	h := newHarness()
	m := h.manager(t)
	if err := m.Initialize(testHost()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	for _, size := range []geometry.Size{{Width: 0, Height: 10}, {Width: 10, Height: -1}} {
		if err := m.StartPreview(size); !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("StartPreview(%+v): expected ErrInvalidSize, got %v", size, err)
		}
	}
	if m.Phase() != PhaseReady || h.overlay.shows != 0 {
		t.Fatalf("invalid size mutated state: phase=%v shows=%d", m.Phase(), h.overlay.shows)
	}
}

func TestManagerInitializeSameHostIsNoop(t *testing.T) {
	h := newHarness()
	m := h.manager(t)
	host := testHost()

	if err := m.Initialize(host); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	id := m.Snapshot().SessionID
	if err := m.Initialize(host); err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	if m.Snapshot().SessionID != id || len(h.factory.created) != 1 {
		t.Fatalf("same host created a new session")
	}

	other := &fakeHost{bounds: geometry.Rect{X: 0, Y: 0, Width: 400, Height: 300}}
	if err := m.Initialize(other); err != nil {
		t.Fatalf("initialize other: %v", err)
	}
	if m.Snapshot().SessionID == id {
		t.Fatalf("different host kept the old session")
	}
	if h.factory.created[0].cleanups != 1 {
		t.Fatalf("previous renderer not cleaned up")
	}
}

func TestManagerNestedCallRejectedAsBusy(t *testing.T) {
	h := newHarness()
	m := h.manager(t)
	if err := m.Initialize(testHost()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	var nested error
	var observed Phase
	m.Subscribe(func(e Event) {
		if e.Kind == PreviewStarted {
			observed = m.Phase()
			nested = m.StartPreview(geometry.Size{Width: 500, Height: 400})
		}
	})

	if err := m.StartPreview(geometry.Size{Width: 300, Height: 200}); err != nil {
		t.Fatalf("outer start: %v", err)
	}
	if !errors.Is(nested, ErrBusy) {
		t.Fatalf("expected nested ErrBusy, got %v", nested)
	}
	if observed != PhaseBusy {
		t.Fatalf("expected subscriber to observe busy phase, got %v", observed)
	}
	if got := m.Snapshot().Size; got != (geometry.Size{Width: 300, Height: 200}) {
		t.Fatalf("nested call leaked into session: %+v", got)
	}
	if m.Phase() != PhaseActive {
		t.Fatalf("expected active after outer call, got %v", m.Phase())
	}
}

func TestManagerRecoversRendererPanic(t *testing.T) {
	h := newHarness()
	h.factory.configure = func(r *fakeRenderer) { r.panicUpdate = true }
	m := h.manager(t)
	if err := m.Initialize(testHost()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	err := m.StartPreview(geometry.Size{Width: 300, Height: 200})
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if m.Phase() != PhaseReady {
		t.Fatalf("expected phase restored to ready, got %v", m.Phase())
	}
}

func TestManagerHostBoundsFailure(t *testing.T) {
	h := newHarness()
	m := h.manager(t)
	host := testHost()
	if err := m.Initialize(host); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	host.boundsErr = errors.New("window gone")
	if err := m.StartPreview(geometry.Size{Width: 300, Height: 200}); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if m.Phase() != PhaseReady || h.overlay.shows != 0 {
		t.Fatalf("failed start changed state: %v shows=%d", m.Phase(), h.overlay.shows)
	}
}

func TestManagerDegradesToOutline(t *testing.T) {
	h := newHarness()
	h.factory.unavailable[RendererThumbnail] = true
	m, err := NewManager(ManagerConfig{
		Factory:  h.factory,
		Overlay:  h.overlay,
		Geometry: testMonitors(),
		Renderer: RendererThumbnail,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if err := m.Initialize(testHost()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if got := m.Snapshot().Renderer; got != RendererOutline {
		t.Fatalf("expected outline fallback, got %v", got)
	}
	if h.factory.last().kind != RendererOutline {
		t.Fatalf("factory built %v", h.factory.last().kind)
	}
}

func TestManagerApplyKeepsSessionActive(t *testing.T) {
	h := newHarness()
	m := h.manager(t)
	host := testHost()
	if err := m.Initialize(host); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	var events []Event
	m.Subscribe(func(e Event) { events = append(events, e) })

	size := geometry.Size{Width: 1000, Height: 700}
	if err := m.StartPreview(size); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.ApplyPreviewedDimensions(); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(host.resized) != 1 || host.resized[0] != size {
		t.Fatalf("host resized to %+v, want %+v", host.resized, size)
	}
	if !m.Active() {
		t.Fatalf("apply ended the session")
	}
	if len(events) != 2 || events[1] != (Event{Kind: PreviewApplied, Width: 1000, Height: 700}) {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestManagerBindRendererKeepsSize(t *testing.T) {
	h := newHarness()
	m := h.manager(t)
	if err := m.Initialize(testHost()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	size := geometry.Size{Width: 300, Height: 200}
	if err := m.StartPreview(size); err != nil {
		t.Fatalf("start: %v", err)
	}
	old := h.factory.last()

	next := &fakeRenderer{kind: RendererSimulated}
	if err := m.BindRenderer(RendererSimulated, IndicatorPercent, next); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if old.cleanups != 1 {
		t.Fatalf("old renderer not cleaned up")
	}
	if next.lastVisual() != size || next.indicator != IndicatorPercent || next.host == nil {
		t.Fatalf("new renderer not primed: %+v", next)
	}
	if got := m.Snapshot(); got.Size != size || got.Renderer != RendererSimulated {
		t.Fatalf("unexpected snapshot %+v", got)
	}
}

func TestManagerSetStrategyReplaces(t *testing.T) {
	h := newHarness()
	m := h.manager(t)
	if err := m.Initialize(testHost()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := m.StartPreview(geometry.Size{Width: 300, Height: 200}); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := m.SetStrategy(placement.KindCenter); err != nil {
		t.Fatalf("set strategy: %v", err)
	}
	want := geometry.Rect{X: 810, Y: 440, Width: 300, Height: 200}
	if h.overlay.rect != want {
		t.Fatalf("overlay at %+v, want %+v", h.overlay.rect, want)
	}
}

func TestManagerRefreshFollowsHost(t *testing.T) {
	h := newHarness()
	m := h.manager(t)
	host := testHost()
	if err := m.Initialize(host); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	// Inactive refresh is a no-op.
	if err := m.Refresh(); err != nil || h.overlay.shows != 0 {
		t.Fatalf("refresh on inactive session: err=%v shows=%d", err, h.overlay.shows)
	}

	if err := m.StartPreview(geometry.Size{Width: 300, Height: 200}); err != nil {
		t.Fatalf("start: %v", err)
	}
	host.bounds.X = 200
	if err := m.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if h.overlay.rect.X != 1010 {
		t.Fatalf("expected overlay to follow host to x=1010, got %d", h.overlay.rect.X)
	}
}

func TestManagerCleanupWhileActiveEmitsStop(t *testing.T) {
	h := newHarness()
	m := h.manager(t)
	if err := m.Initialize(testHost()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := m.StartPreview(geometry.Size{Width: 300, Height: 200}); err != nil {
		t.Fatalf("start: %v", err)
	}

	var got []EventKind
	m.Subscribe(func(e Event) { got = append(got, e.Kind) })
	if err := m.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if len(got) != 1 || got[0] != PreviewStopped || h.overlay.visible {
		t.Fatalf("expected a stop event and hidden overlay, got %v visible=%v", got, h.overlay.visible)
	}
}
