package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/sizepeek/internal/geometry"
)

// WindowGeometry returns a window's client area in root coordinates.
func (c *Connection) WindowGeometry(windowID xproto.Window) (geometry.Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("failed to get geometry of window 0x%x: %w", windowID, err)
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("failed to translate coordinates of window 0x%x: %w", windowID, err)
	}

	return geometry.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Maximized windows ignore size requests under most window managers.
	c.unmaximizeWindow(windowID)

	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// ResizeWindow changes a window's size and keeps its current origin.
func (c *Connection) ResizeWindow(windowID xproto.Window, width, height int) error {
	rect, err := c.WindowGeometry(windowID)
	if err != nil {
		return err
	}
	// _NET_MOVERESIZE_WINDOW positions the frame, so step back by the decorations.
	left, _, top, _ := c.FrameExtents(windowID)
	return c.MoveResizeWindow(windowID, rect.X-left, rect.Y-top, width, height)
}

func (c *Connection) unmaximizeWindow(windowID xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state)
		}
	}
}

// FrameExtents returns the window decoration sizes, or zeros when unknown.
func (c *Connection) FrameExtents(windowID xproto.Window) (left, right, top, bottom int) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return 0, 0, 0, 0
	}
	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom)
}

// ActiveWindow returns the focused window.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// WatchGeometry calls fn whenever windowID is moved or resized. Callbacks run on
// the event loop goroutine. The returned function detaches the watch.
func (c *Connection) WatchGeometry(windowID xproto.Window, fn func()) (func(), error) {
	win := xwindow.New(c.XUtil, windowID)
	if err := win.Listen(xproto.EventMaskStructureNotify); err != nil {
		return nil, fmt.Errorf("failed to listen on window 0x%x: %w", windowID, err)
	}

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, _ xevent.ConfigureNotifyEvent) {
		fn()
	}).Connect(c.XUtil, windowID)

	return func() {
		xevent.Detach(c.XUtil, windowID)
	}, nil
}
