package overlay

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/sizepeek/internal/preview"
)

// Factory builds renderers that all draw into one Surface.
type Factory struct {
	surface *Surface
	logger  *slog.Logger
}

var _ preview.RendererFactory = (*Factory)(nil)

func NewFactory(surface *Surface, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Factory{surface: surface, logger: logger}
}

// Create returns a renderer for kind. Unknown kinds are an error so the
// caller can fall back to the outline renderer.
func (f *Factory) Create(kind preview.RendererKind) (preview.Renderer, error) {
	if f.surface == nil {
		return nil, fmt.Errorf("renderer factory has no surface")
	}
	b := base{surface: f.surface, indicator: preview.IndicatorPixels}
	logger := f.logger.With("renderer", kind.String())

	switch kind {
	case preview.RendererOutline:
		return &outlineRenderer{base: b, logger: logger}, nil
	case preview.RendererSimplified:
		return &simplifiedRenderer{base: b}, nil
	case preview.RendererSimulated:
		return &simulatedRenderer{base: b}, nil
	case preview.RendererThumbnail:
		return &thumbnailRenderer{base: b, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported renderer %s", kind)
	}
}
