package overlay

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/sizepeek/internal/geometry"
	"github.com/1broseidon/sizepeek/internal/preview"
)

// Surface is the single override-redirect window a preview is drawn into.
// Renderers draw on it after the manager has shown it at the placed rectangle.
type Surface struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	style  Style
	logger *slog.Logger

	win  xproto.Window
	gc   xproto.Gcontext
	font xproto.Font

	created bool
	mapped  bool
	shaped  bool // a bounding shape is currently set
	noShape bool // SHAPE extension is unavailable
	noText  bool // no core font could be opened
	rect    geometry.Rect
}

var _ preview.Overlay = (*Surface)(nil)

// NewSurface prepares a surface on root. The window is created on first Show.
func NewSurface(xu *xgbutil.XUtil, root xproto.Window, style Style, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if style.BorderThickness < 1 {
		style.BorderThickness = BorderThickness
	}
	return &Surface{xu: xu, root: root, style: style, logger: logger}
}

// Style returns the colors the surface draws with.
func (s *Surface) Style() Style { return s.style }

// Size returns the size of the last shown rectangle.
func (s *Surface) Size() geometry.Size { return s.rect.Size() }

// Show moves the surface to rect, raises it and maps it.
func (s *Surface) Show(rect geometry.Rect) error {
	if rect.Empty() {
		return fmt.Errorf("overlay rect %dx%d is empty", rect.Width, rect.Height)
	}
	if err := s.ensure(); err != nil {
		return err
	}

	conn := s.xu.Conn()
	xproto.ConfigureWindow(
		conn,
		s.win,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(rect.X),
			uint32(rect.Y),
			uint32(rect.Width),
			uint32(rect.Height),
			xproto.StackModeAbove, // Keep on top
		},
	)
	if !s.mapped {
		if err := xproto.MapWindowChecked(conn, s.win).Check(); err != nil {
			return fmt.Errorf("map overlay: %w", err)
		}
		s.mapped = true
	}
	s.rect = rect
	return nil
}

// Hide unmaps the surface. Hiding an unmapped surface is a no-op.
func (s *Surface) Hide() error {
	if !s.created || !s.mapped {
		return nil
	}
	s.mapped = false
	if err := xproto.UnmapWindowChecked(s.xu.Conn(), s.win).Check(); err != nil {
		return fmt.Errorf("unmap overlay: %w", err)
	}
	return nil
}

// Close destroys the window and its drawing resources.
func (s *Surface) Close() {
	if !s.created {
		return
	}
	conn := s.xu.Conn()
	if s.gc != 0 {
		xproto.FreeGC(conn, s.gc)
	}
	if s.font != 0 {
		xproto.CloseFont(conn, s.font)
	}
	xproto.DestroyWindow(conn, s.win)

	s.win, s.gc, s.font = 0, 0, 0
	s.created, s.mapped, s.shaped = false, false, false
}

func (s *Surface) ensure() error {
	if s.created {
		return nil
	}
	if s.xu == nil {
		return fmt.Errorf("overlay has no X connection")
	}

	wid, err := s.createOverrideRedirectWindow()
	if err != nil {
		return fmt.Errorf("create overlay window: %w", err)
	}
	s.win = wid
	s.created = true

	if err := shape.Init(s.xu.Conn()); err != nil {
		s.noShape = true
		s.logger.Warn("SHAPE extension unavailable, outline previews are drawn opaque", "error", err)
	}
	if err := s.createGC(); err != nil {
		xproto.DestroyWindow(s.xu.Conn(), s.win)
		s.win, s.created = 0, false
		return fmt.Errorf("overlay graphics context: %w", err)
	}
	return nil
}

// createOverrideRedirectWindow creates a window that bypasses the window manager.
func (s *Surface) createOverrideRedirectWindow() (xproto.Window, error) {
	conn := s.xu.Conn()
	screen := s.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		s.root,
		0, 0, // x, y (set on Show)
		1, 1, // width, height (set on Show)
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect,
		// Value order follows the mask bit positions: back_pixel, override_redirect.
		[]uint32{s.style.Background, 1},
	).Check()
	if err != nil {
		return 0, err
	}
	return wid, nil
}

// createGC opens the first available core font and builds the drawing GC.
// Without a font the GC still draws rectangles and labels are skipped.
func (s *Surface) createGC() error {
	conn := s.xu.Conn()

	font, err := xproto.NewFontId(conn)
	if err != nil {
		return err
	}
	fontNames := []string{"fixed", "9x15", "8x13", "6x13"}
	opened := false
	for _, fontName := range fontNames {
		if xproto.OpenFontChecked(conn, font, uint16(len(fontName)), fontName).Check() == nil {
			opened = true
			break
		}
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		if opened {
			xproto.CloseFont(conn, font)
		}
		return err
	}

	mask := uint32(xproto.GcForeground | xproto.GcBackground | xproto.GcGraphicsExposures)
	values := []uint32{
		s.style.Text,       // foreground
		s.style.Background, // background
		0,                  // graphics_exposures=false
	}
	if opened {
		mask |= xproto.GcFont
		// GcFont sits between background and graphics_exposures in mask order.
		values = []uint32{s.style.Text, s.style.Background, uint32(font), 0}
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(s.win), mask, values).Check(); err != nil {
		if opened {
			xproto.CloseFont(conn, font)
		}
		return fmt.Errorf("create gc: %w", err)
	}

	s.gc = gc
	if opened {
		s.font = font
	} else {
		s.noText = true
		s.logger.Warn("no core font available, size labels disabled")
	}
	return nil
}

// fill paints the whole surface with color.
func (s *Surface) fill(color uint32) {
	if !s.created {
		return
	}
	conn := s.xu.Conn()
	xproto.ChangeWindowAttributes(conn, s.win, xproto.CwBackPixel, []uint32{color})
	xproto.ClearArea(conn, false, s.win, 0, 0, 0, 0)
}

func (s *Surface) fillRects(color uint32, rects ...geometry.Rect) {
	if !s.created || s.gc == 0 || len(rects) == 0 {
		return
	}
	conn := s.xu.Conn()
	xproto.ChangeGC(conn, s.gc, xproto.GcForeground, []uint32{color})
	xproto.PolyFillRectangle(conn, xproto.Drawable(s.win), s.gc, xRects(rects))
}

// drawText draws one line with its baseline origin at (x, y).
func (s *Surface) drawText(x, y int, text string, fg, bg uint32) {
	if !s.created || s.noText || text == "" {
		return
	}
	if len(text) > maxTextLen {
		text = text[:maxTextLen]
	}
	conn := s.xu.Conn()
	xproto.ChangeGC(conn, s.gc, xproto.GcForeground|xproto.GcBackground, []uint32{fg, bg})
	xproto.ImageText8(conn, byte(len(text)), xproto.Drawable(s.win), s.gc, int16(x), int16(y), text)
}

// drawLabel draws a label panel: background box plus text.
func (s *Surface) drawLabel(l label) {
	if s.noText {
		return
	}
	s.fillRects(s.style.Background, l.Box)
	x, y := l.baseline()
	s.drawText(x, y, l.Text, s.style.Text, s.style.Background)
}

// setShape restricts the visible window to rects. It reports false when the
// SHAPE extension is missing.
func (s *Surface) setShape(rects []geometry.Rect) bool {
	if !s.created || s.noShape {
		return false
	}
	shape.Rectangles(s.xu.Conn(), shape.SoSet, shape.SkBounding, xproto.ClipOrderingUnsorted, s.win, 0, 0, xRects(rects))
	s.shaped = true
	return true
}

// clearShape makes the whole window rectangle visible again.
func (s *Surface) clearShape() {
	if !s.created || s.noShape || !s.shaped {
		return
	}
	shape.Mask(s.xu.Conn(), shape.SoSet, shape.SkBounding, s.win, 0, 0, xproto.PixmapNone)
	s.shaped = false
}

func xRects(rects []geometry.Rect) []xproto.Rectangle {
	out := make([]xproto.Rectangle, 0, len(rects))
	for _, r := range rects {
		if r.Empty() {
			continue
		}
		out = append(out, xproto.Rectangle{X: int16(r.X), Y: int16(r.Y), Width: uint16(r.Width), Height: uint16(r.Height)})
	}
	return out
}
