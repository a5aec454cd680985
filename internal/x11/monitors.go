package x11

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/sizepeek/internal/geometry"
)

// Monitor is one active RandR CRTC with its usable area and density.
type Monitor struct {
	ID       int
	Name     string
	Bounds   geometry.Rect
	WorkArea geometry.Rect
	MmWidth  uint32
	MmHeight uint32
	Primary  bool
	// DPI is Xft.dpi when the X resource database sets it, otherwise the
	// physical density of the output. Zero when neither is known.
	DPI float64
}

// GetMonitors retrieves all active monitors using XRandR. Work areas honour
// dock struts, falling back to _NET_WORKAREA.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primary = reply.Output
	}
	resourceDPI, hasResourceDPI := c.resourceDPI()

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		m := Monitor{
			ID:   i,
			Name: fmt.Sprintf("Monitor%d", i),
			Bounds: geometry.Rect{
				X:      int(crtcInfo.X),
				Y:      int(crtcInfo.Y),
				Width:  int(crtcInfo.Width),
				Height: int(crtcInfo.Height),
			},
		}
		for _, out := range crtcInfo.Outputs {
			if out == primary && primary != 0 {
				m.Primary = true
			}
		}
		if info, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			m.Name = string(info.Name)
			m.MmWidth, m.MmHeight = info.MmWidth, info.MmHeight
		}

		if hasResourceDPI {
			m.DPI = resourceDPI
		} else {
			m.DPI = physicalDPI(m.Bounds.Width, m.MmWidth)
		}
		m.WorkArea = m.Bounds
		monitors = append(monitors, m)
	}

	c.applyWorkAreas(monitors)
	return monitors, nil
}

func (c *Connection) applyWorkAreas(monitors []Monitor) {
	if len(monitors) == 0 {
		return
	}

	if struts, rootW, rootH, ok := c.dockStruts(); ok {
		for i := range monitors {
			monitors[i].WorkArea = workAreaFromStruts(monitors[i].Bounds, rootW, rootH, struts)
		}
		return
	}

	// Without dock struts, intersect each monitor with the desktop work area.
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}
	desktopIndex := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workArea) {
		desktopIndex = int(current)
	}
	wa := workArea[desktopIndex]
	desktop := geometry.Rect{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)}
	for i := range monitors {
		if area := monitors[i].Bounds.Intersect(desktop); !area.Empty() {
			monitors[i].WorkArea = area
		}
	}
}

// dockStruts collects the struts of every dock window. ok is false when no dock
// reserves any space.
func (c *Connection) dockStruts() (struts []ewmh.WmStrutPartial, rootW, rootH int, ok bool) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return nil, 0, 0, false
	}
	rootW, rootH = int(rootGeom.Width), int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, 0, 0, false
	}

	for _, windowID := range clients {
		if !c.isDock(windowID) {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			struts = append(struts, *sp)
			continue
		}
		// Some docks only set _NET_WM_STRUT.
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			struts = append(struts, fullWidthStrut(s, rootW, rootH))
		}
	}
	return struts, rootW, rootH, len(struts) > 0
}

func (c *Connection) isDock(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// fullWidthStrut expands a legacy strut to span the whole root edge.
func fullWidthStrut(s *ewmh.WmStrut, rootW, rootH int) ewmh.WmStrutPartial {
	return ewmh.WmStrutPartial{
		Left:       s.Left,
		Right:      s.Right,
		Top:        s.Top,
		Bottom:     s.Bottom,
		LeftEndY:   uint(rootH - 1),
		RightEndY:  uint(rootH - 1),
		TopEndX:    uint(rootW - 1),
		BottomEndX: uint(rootW - 1),
	}
}

// workAreaFromStruts shrinks bounds by every strut that overlaps it. Strut
// ranges are inclusive, as in _NET_WM_STRUT_PARTIAL.
func workAreaFromStruts(bounds geometry.Rect, rootW, rootH int, struts []ewmh.WmStrutPartial) geometry.Rect {
	var left, right, top, bottom int
	for _, sp := range struts {
		if sp.Top > 0 {
			r := geometry.Rect{X: int(sp.TopStartX), Y: 0, Width: int(sp.TopEndX) - int(sp.TopStartX) + 1, Height: int(sp.Top)}
			top = max(top, bounds.Intersect(r).Height)
		}
		if sp.Bottom > 0 {
			r := geometry.Rect{X: int(sp.BottomStartX), Y: rootH - int(sp.Bottom), Width: int(sp.BottomEndX) - int(sp.BottomStartX) + 1, Height: int(sp.Bottom)}
			bottom = max(bottom, bounds.Intersect(r).Height)
		}
		if sp.Left > 0 {
			r := geometry.Rect{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) - int(sp.LeftStartY) + 1}
			left = max(left, bounds.Intersect(r).Width)
		}
		if sp.Right > 0 {
			r := geometry.Rect{X: rootW - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY) - int(sp.RightStartY) + 1}
			right = max(right, bounds.Intersect(r).Width)
		}
	}

	return geometry.Rect{
		X:      bounds.X + left,
		Y:      bounds.Y + top,
		Width:  max(bounds.Width-left-right, 1),
		Height: max(bounds.Height-top-bottom, 1),
	}
}

// resourceDPI reads Xft.dpi from the root window's RESOURCE_MANAGER property.
func (c *Connection) resourceDPI() (float64, bool) {
	resources, err := xprop.PropValStr(xprop.GetProperty(c.XUtil, c.Root, "RESOURCE_MANAGER"))
	if err != nil {
		return 0, false
	}
	return parseXftDPI(resources)
}

// parseXftDPI extracts a positive Xft.dpi value from X resource database text.
func parseXftDPI(resources string) (float64, bool) {
	scanner := bufio.NewScanner(strings.NewReader(resources))
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found || strings.TrimSpace(key) != "Xft.dpi" {
			continue
		}
		dpi, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || dpi <= 0 {
			return 0, false
		}
		return dpi, true
	}
	return 0, false
}

// physicalDPI derives density from a pixel width and a physical width in mm.
func physicalDPI(widthPx int, widthMM uint32) float64 {
	if widthPx <= 0 || widthMM == 0 {
		return 0
	}
	return float64(widthPx) * 25.4 / float64(widthMM)
}
