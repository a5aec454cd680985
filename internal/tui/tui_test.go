package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/sizepeek/internal/ipc"
)

type fakeController struct {
	updates   [][2]int
	renderers []string
	applied   int
	stopped   int
	failSet   bool
}

func (c *fakeController) Attach(windowID uint32) (*ipc.AttachData, error) {
	return &ipc.AttachData{WindowID: 0x42, Title: "editor", Width: 800, Height: 600}, nil
}

func (c *fakeController) Update(width, height int) (*ipc.PreviewData, error) {
	c.updates = append(c.updates, [2]int{width, height})
	return &ipc.PreviewData{Active: true, Width: width, Height: height, Placement: &ipc.RectData{X: 910, Y: 100}}, nil
}

func (c *fakeController) Stop() error  { c.stopped++; return nil }
func (c *fakeController) Apply() error { c.applied++; return nil }

func (c *fakeController) SetRenderer(kind string) error {
	if c.failSet {
		return errors.New("daemon error: unknown renderer")
	}
	c.renderers = append(c.renderers, kind)
	return nil
}

func (c *fakeController) SetIndicator(string) error { return nil }
func (c *fakeController) SetStrategy(string) error  { return nil }

func (c *fakeController) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{Renderer: "thumbnail", Indicator: "percent", Strategy: "snap"}, nil
}

func newAttached(t *testing.T, ctl *fakeController) *TUI {
	t.Helper()
	tui := New(ctl, 0, 0)
	if err := tui.attach(); err != nil {
		t.Fatalf("attach: %v", err)
	}
	return tui
}

func TestAttachSeedsState(t *testing.T) {
	tui := newAttached(t, &fakeController{})
	if tui.step != DefaultStep {
		t.Fatalf("step = %d", tui.step)
	}
	if tui.width != 800 || tui.height != 600 {
		t.Fatalf("size = %dx%d", tui.width, tui.height)
	}
	if rendererCycle[tui.renderer] != "thumbnail" || indicatorCycle[tui.indicator] != "percent" || strategyCycle[tui.strategy] != "snap" {
		t.Fatalf("kinds not seeded from status: %d %d %d", tui.renderer, tui.indicator, tui.strategy)
	}
}

func TestHandleInputResizes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [2]int
	}{
		{"right arrow", "\x1b[C", [2]int{810, 600}},
		{"left arrow", "\x1b[D", [2]int{790, 600}},
		{"shift up", "\x1b[1;2A", [2]int{800, 500}},
		{"vim keys", "llj", [2]int{820, 610}},
		{"big vim key", "H", [2]int{700, 600}},
		{"grow", "+", [2]int{880, 660}},
		{"shrink", "-", [2]int{727, 545}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := &fakeController{}
			tui := newAttached(t, ctl)
			if tui.handleInput([]byte(tt.input)) {
				t.Fatalf("input should not quit")
			}
			if len(ctl.updates) == 0 {
				t.Fatalf("no update sent")
			}
			if got := ctl.updates[len(ctl.updates)-1]; got != tt.want {
				t.Fatalf("last update = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleInputNeverGoesBelowOnePixel(t *testing.T) {
	ctl := &fakeController{}
	tui := newAttached(t, ctl)
	tui.width, tui.height = 5, 5
	tui.handleInput([]byte("hk"))
	if tui.width != 1 || tui.height != 1 {
		t.Fatalf("size = %dx%d", tui.width, tui.height)
	}
}

func TestHandleInputResetApplyQuit(t *testing.T) {
	ctl := &fakeController{}
	tui := newAttached(t, ctl)

	tui.handleInput([]byte("L0"))
	if got := ctl.updates[len(ctl.updates)-1]; got != [2]int{800, 600} {
		t.Fatalf("reset should restore the host size, got %v", got)
	}

	tui.handleInput([]byte("l\r"))
	if ctl.applied != 1 || !tui.applied {
		t.Fatalf("enter should apply")
	}
	if tui.host.Width != 810 {
		t.Fatalf("applied size should become the new reset size, got %d", tui.host.Width)
	}

	if !tui.handleInput([]byte("q")) {
		t.Fatalf("q should quit")
	}
	if !tui.handleInput([]byte{0x03}) {
		t.Fatalf("ctrl+c should quit")
	}
}

func TestHandleInputCyclesRenderer(t *testing.T) {
	ctl := &fakeController{}
	tui := newAttached(t, ctl)

	tui.handleInput([]byte("r"))
	if len(ctl.renderers) != 1 || ctl.renderers[0] != "simulated" {
		t.Fatalf("expected simulated after thumbnail, got %v", ctl.renderers)
	}
	if !strings.Contains(tui.renderStatus(), "renderer: simulated") {
		t.Fatalf("status = %q", tui.renderStatus())
	}

	ctl.failSet = true
	tui.handleInput([]byte("r"))
	if rendererCycle[tui.renderer] != "simulated" {
		t.Fatalf("failed switch must keep the current renderer")
	}
	if !strings.Contains(tui.renderStatus(), "Error") {
		t.Fatalf("expected error status, got %q", tui.renderStatus())
	}
}

func TestSketch(t *testing.T) {
	lines := sketch(800, 600, 400, 300, 40, 20)
	if len(lines) != 15 {
		t.Fatalf("expected 15 rows, got %d", len(lines))
	}
	if lines[0] != strings.Repeat("#", 20)+strings.Repeat(".", 20) {
		t.Fatalf("row 0 = %q", lines[0])
	}
	if lines[1] != "#"+strings.Repeat(".", 18)+"#"+strings.Repeat(".", 20) {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if lines[14] != strings.Repeat(".", 40) {
		t.Fatalf("row 14 = %q", lines[14])
	}
	if sketch(0, 600, 400, 300, 40, 20) != nil {
		t.Fatalf("empty host should not sketch")
	}
}

func TestTruncateANSI(t *testing.T) {
	got := truncateANSI(escRed+"abcdef"+escReset, 4)
	if visibleLength(got) != 4 {
		t.Fatalf("visible length = %d (%q)", visibleLength(got), got)
	}
	if truncateANSI("abc", 10) != "abc" {
		t.Fatalf("short text should pass through")
	}
}
