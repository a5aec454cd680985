//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/sizepeek/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display ("" uses $DISPLAY).
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, err
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays ordered by CRTC index.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}
	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.ActiveWindow()
	if err != nil {
		return 0, fmt.Errorf("failed to read active window: %w", err)
	}
	if wid == 0 {
		return 0, fmt.Errorf("no active window")
	}
	return WindowID(wid), nil
}

// Window returns the title and geometry of windowID.
func (b *LinuxBackend) Window(windowID WindowID) (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, err
	}

	rect, err := conn.WindowGeometry(xproto.Window(windowID))
	if err != nil {
		return Window{}, err
	}
	return Window{
		ID:     windowID,
		Title:  conn.WindowTitle(xproto.Window(windowID)),
		Bounds: rect,
	}, nil
}

// Resize changes the window size and keeps its origin.
func (b *LinuxBackend) Resize(windowID WindowID, width, height int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.ResizeWindow(xproto.Window(windowID), width, height)
}

// WatchGeometry registers fn for ConfigureNotify on windowID.
func (b *LinuxBackend) WatchGeometry(windowID WindowID, fn func()) (func(), error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	return conn.WatchGeometry(xproto.Window(windowID), fn)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:      m.ID,
		Name:    m.Name,
		Bounds:  m.Bounds,
		Usable:  m.WorkArea,
		Primary: m.Primary,
		DPI:     m.DPI,
	}
}
