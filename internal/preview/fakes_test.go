package preview

import (
	"errors"
	"testing"

	"github.com/1broseidon/sizepeek/internal/geometry"
	"github.com/1broseidon/sizepeek/internal/placement"
)

type fakeHost struct {
	bounds    geometry.Rect
	boundsErr error
	resized   []geometry.Size
}

func (h *fakeHost) Bounds() (geometry.Rect, error) {
	if h.boundsErr != nil {
		return geometry.Rect{}, h.boundsErr
	}
	return h.bounds, nil
}

func (h *fakeHost) Resize(size geometry.Size) error {
	h.resized = append(h.resized, size)
	h.bounds.Width, h.bounds.Height = size.Width, size.Height
	return nil
}

type fakeRenderer struct {
	kind        RendererKind
	host        HostWindow
	indicator   IndicatorKind
	visuals     []geometry.Size
	cleanups    int
	panicUpdate bool
	failInit    bool
}

func (r *fakeRenderer) Initialize(host HostWindow) error {
	if r.failInit {
		return errors.New("init failed")
	}
	r.host = host
	return nil
}

func (r *fakeRenderer) UpdateVisual(size geometry.Size) error {
	if r.panicUpdate {
		panic("renderer exploded")
	}
	r.visuals = append(r.visuals, size)
	return nil
}

func (r *fakeRenderer) SetIndicatorKind(kind IndicatorKind) { r.indicator = kind }
func (r *fakeRenderer) Cleanup()                           { r.cleanups++ }

func (r *fakeRenderer) lastVisual() geometry.Size {
	if len(r.visuals) == 0 {
		return geometry.Size{}
	}
	return r.visuals[len(r.visuals)-1]
}

type fakeFactory struct {
	created     []*fakeRenderer
	unavailable map[RendererKind]bool
	// configure runs on each renderer before it is returned.
	configure func(*fakeRenderer)
}

func (f *fakeFactory) Create(kind RendererKind) (Renderer, error) {
	if f.unavailable[kind] {
		return nil, errors.New("renderer not supported")
	}
	r := &fakeRenderer{kind: kind}
	if f.configure != nil {
		f.configure(r)
	}
	f.created = append(f.created, r)
	return r, nil
}

func (f *fakeFactory) last() *fakeRenderer {
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

type fakeOverlay struct {
	visible bool
	rect    geometry.Rect
	shows   int
	hides   int
	closed  bool
}

func (o *fakeOverlay) Show(rect geometry.Rect) error {
	o.visible = true
	o.rect = rect
	o.shows++
	return nil
}

func (o *fakeOverlay) Hide() error {
	o.visible = false
	o.hides++
	return nil
}

func (o *fakeOverlay) Close() { o.closed = true }

type fakeSettings struct {
	stored  Settings
	saved   []Settings
	loadErr error
}

func (s *fakeSettings) LoadPreviewSettings() (Settings, error) {
	if s.loadErr != nil {
		return Settings{}, s.loadErr
	}
	return s.stored, nil
}

func (s *fakeSettings) SavePreviewSettings(v Settings) error {
	s.saved = append(s.saved, v)
	s.stored = v
	return nil
}

func testMonitors() *geometry.Service {
	b := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	return geometry.NewService(geometry.StaticMonitors{{ID: "DP-1", Bounds: b, WorkArea: b, Scale: 1, Primary: true}}, nil)
}

func testHost() *fakeHost {
	return &fakeHost{bounds: geometry.Rect{X: 100, Y: 100, Width: 800, Height: 600}}
}

type harness struct {
	factory  *fakeFactory
	overlay  *fakeOverlay
	settings *fakeSettings
}

func newHarness() *harness {
	return &harness{
		factory:  &fakeFactory{unavailable: map[RendererKind]bool{}},
		overlay:  &fakeOverlay{},
		settings: &fakeSettings{},
	}
}

func (h *harness) manager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(ManagerConfig{
		Factory:   h.factory,
		Overlay:   h.overlay,
		Geometry:  testMonitors(),
		Renderer:  RendererOutline,
		Indicator: IndicatorPixels,
		Strategy:  placement.KindAdjacent,
		Placement: placement.DefaultOptions(),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func (h *harness) coordinator(t *testing.T) *Coordinator {
	t.Helper()
	c, err := NewCoordinator(CoordinatorConfig{
		Factory:   h.factory,
		Overlay:   h.overlay,
		Geometry:  testMonitors(),
		Settings:  h.settings,
		Renderer:  RendererOutline,
		Indicator: IndicatorPixels,
		Strategy:  placement.KindAdjacent,
		Placement: placement.DefaultOptions(),
	})
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	return c
}
