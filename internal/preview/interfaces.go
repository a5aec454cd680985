package preview

import "github.com/1broseidon/sizepeek/internal/geometry"

// HostWindow is the window whose resize is being previewed.
type HostWindow interface {
	// Bounds returns the current frame in desktop coordinates.
	Bounds() (geometry.Rect, error)
	// Resize commits a new size, keeping the window's origin.
	Resize(size geometry.Size) error
}

// Renderer draws preview content onto the overlay. Cleanup must be safe to call
// on a renderer that was never initialized.
type Renderer interface {
	Initialize(host HostWindow) error
	UpdateVisual(size geometry.Size) error
	SetIndicatorKind(kind IndicatorKind)
	Cleanup()
}

// RendererFactory builds renderers by kind.
type RendererFactory interface {
	Create(kind RendererKind) (Renderer, error)
}

// RendererFactoryFunc adapts a function to RendererFactory.
type RendererFactoryFunc func(kind RendererKind) (Renderer, error)

func (f RendererFactoryFunc) Create(kind RendererKind) (Renderer, error) { return f(kind) }

// Overlay is the surface that is positioned over the desktop while a preview is
// shown.
type Overlay interface {
	Show(rect geometry.Rect) error
	Hide() error
	Close()
}

// Settings is the persisted part of the preview configuration.
type Settings struct {
	Renderer  RendererKind
	Indicator IndicatorKind
	Mode      PreviewMode
}

// SettingsStore loads and saves Settings.
type SettingsStore interface {
	LoadPreviewSettings() (Settings, error)
	SavePreviewSettings(Settings) error
}
