package overlay

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"golang.org/x/image/draw"

	"github.com/1broseidon/sizepeek/internal/geometry"
	"github.com/1broseidon/sizepeek/internal/platform"
	"github.com/1broseidon/sizepeek/internal/preview"
)

type titled interface {
	Title() string
}

type identified interface {
	ID() platform.WindowID
}

// base carries what every renderer shares: the surface, the host and the
// indicator kind.
type base struct {
	surface   *Surface
	host      preview.HostWindow
	indicator preview.IndicatorKind
}

func (b *base) Initialize(host preview.HostWindow) error {
	if host == nil {
		return preview.ErrNoHostWindow
	}
	b.host = host
	return nil
}

func (b *base) SetIndicatorKind(kind preview.IndicatorKind) { b.indicator = kind }

func (b *base) Cleanup() { b.host = nil }

// labelText formats the size indicator relative to the host's current size.
func (b *base) labelText(size geometry.Size) string {
	var hostSize geometry.Size
	if b.host != nil {
		if r, err := b.host.Bounds(); err == nil {
			hostSize = r.Size()
		}
	}
	return preview.FormatIndicator(b.indicator, size, hostSize)
}

func (b *base) hostTitle() string {
	if t, ok := b.host.(titled); ok {
		return t.Title()
	}
	return ""
}

func (b *base) ready(size geometry.Size) error {
	if b.host == nil {
		return preview.ErrNotInitialized
	}
	if !size.Valid() {
		return fmt.Errorf("%w: %dx%d", preview.ErrInvalidSize, size.Width, size.Height)
	}
	return nil
}

// drawSimplified fills the surface, frames it and centers the label.
func (b *base) drawSimplified(size geometry.Size) {
	st := b.surface.Style()
	b.surface.clearShape()
	b.surface.fill(st.Background)
	b.surface.fillRects(st.Border, frameRects(size, st.BorderThickness)...)
	if l, ok := layoutLabel(inner(size, st.BorderThickness), b.labelText(size), alignCenter); ok {
		b.surface.drawLabel(l)
	}
}

// outlineRenderer draws only a frame; the shape cut-out keeps the desktop
// visible through the middle.
type outlineRenderer struct {
	base
	logger *slog.Logger
	warned bool
}

func (r *outlineRenderer) UpdateVisual(size geometry.Size) error {
	if err := r.ready(size); err != nil {
		return err
	}
	st := r.surface.Style()
	frame := frameRects(size, st.BorderThickness)
	l, hasLabel := layoutLabel(inner(size, st.BorderThickness), r.labelText(size), alignTopLeft)

	visible := frame
	if hasLabel {
		visible = append(visible, l.Box)
	}
	if !r.surface.setShape(visible) {
		if !r.warned {
			r.logger.Info("outline drawn without shape cut-out")
			r.warned = true
		}
		r.drawSimplified(size)
		return nil
	}

	r.surface.fill(st.Border)
	if hasLabel {
		r.surface.drawLabel(l)
	}
	return nil
}

// simplifiedRenderer draws a filled box with the size label centered.
type simplifiedRenderer struct {
	base
}

func (r *simplifiedRenderer) UpdateVisual(size geometry.Size) error {
	if err := r.ready(size); err != nil {
		return err
	}
	r.drawSimplified(size)
	return nil
}

// simulatedRenderer draws a mock window: title bar with the host title and
// three buttons, and the size label in the body.
type simulatedRenderer struct {
	base
}

func (r *simulatedRenderer) UpdateVisual(size geometry.Size) error {
	if err := r.ready(size); err != nil {
		return err
	}
	st := r.surface.Style()
	c := layoutChrome(size, st.BorderThickness)

	r.surface.clearShape()
	r.surface.fill(st.Background)
	r.surface.fillRects(st.Border, frameRects(size, st.BorderThickness)...)
	if !c.TitleBar.Empty() {
		r.surface.fillRects(st.Border, c.TitleBar)
		r.surface.fillRects(st.Text, c.Buttons...)
		if x, y, text, ok := c.titleText(r.hostTitle()); ok {
			r.surface.drawText(x, y, text, st.Text, st.Border)
		}
	}
	if l, ok := layoutLabel(c.Body, r.labelText(size), alignCenter); ok {
		r.surface.drawLabel(l)
	}
	return nil
}

// thumbnailRenderer captures the host's pixels once on Initialize and draws
// them scaled to every previewed size. Without a capture it draws like the
// simplified renderer.
type thumbnailRenderer struct {
	base
	logger   *slog.Logger
	snapshot *xgraphics.Image
}

func (r *thumbnailRenderer) Initialize(host preview.HostWindow) error {
	if err := r.base.Initialize(host); err != nil {
		return err
	}
	r.release()

	id, ok := host.(identified)
	if !ok || r.surface.xu == nil {
		r.logger.Info("host cannot be captured, thumbnail falls back to a mock")
		return nil
	}
	img, err := xgraphics.NewDrawable(r.surface.xu, xproto.Drawable(id.ID()))
	if err != nil {
		r.logger.Warn("capture host window failed, thumbnail falls back to a mock", "window", uint32(id.ID()), "error", err)
		return nil
	}
	r.snapshot = img
	return nil
}

func (r *thumbnailRenderer) UpdateVisual(size geometry.Size) error {
	if err := r.ready(size); err != nil {
		return err
	}
	if r.snapshot == nil || !r.surface.created {
		r.drawSimplified(size)
		return nil
	}

	dst := xgraphics.New(r.surface.xu, image.Rect(0, 0, size.Width, size.Height))
	defer dst.Destroy()
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), r.snapshot, r.snapshot.Bounds(), draw.Src, nil)

	r.surface.clearShape()
	if err := dst.XSurfaceSet(r.surface.win); err != nil {
		r.logger.Warn("thumbnail surface failed", "error", err)
		r.drawSimplified(size)
		return nil
	}
	dst.XDraw()
	dst.XPaint(r.surface.win)

	st := r.surface.Style()
	r.surface.fillRects(st.Border, frameRects(size, st.BorderThickness)...)
	if l, ok := layoutLabel(inner(size, st.BorderThickness), r.labelText(size), alignCenter); ok {
		r.surface.drawLabel(l)
	}
	return nil
}

func (r *thumbnailRenderer) Cleanup() {
	r.release()
	r.base.Cleanup()
}

func (r *thumbnailRenderer) release() {
	if r.snapshot != nil {
		r.snapshot.Destroy()
		r.snapshot = nil
	}
}
