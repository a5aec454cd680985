// Package tui is an interactive terminal front end for dialing in a window
// size: arrow keys grow or shrink the preview and Enter applies it.
package tui

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/1broseidon/sizepeek/internal/ipc"
	"github.com/1broseidon/sizepeek/internal/placement"
	"github.com/1broseidon/sizepeek/internal/preview"
)

// Controller is the daemon surface the TUI drives. *ipc.Client implements it.
type Controller interface {
	Attach(windowID uint32) (*ipc.AttachData, error)
	Update(width, height int) (*ipc.PreviewData, error)
	Stop() error
	Apply() error
	SetRenderer(kind string) error
	SetIndicator(kind string) error
	SetStrategy(kind string) error
	GetStatus() (*ipc.StatusData, error)
}

var _ Controller = (*ipc.Client)(nil)

const (
	DefaultStep = 10
	minSize     = 1
)

var (
	rendererCycle  = []string{preview.RendererOutline.String(), preview.RendererThumbnail.String(), preview.RendererSimulated.String(), preview.RendererSimplified.String()}
	indicatorCycle = []string{preview.IndicatorPixels.String(), preview.IndicatorPixelsAndPercent.String(), preview.IndicatorPercent.String(), preview.IndicatorNone.String()}
	strategyCycle  = []string{placement.KindAdjacent.String(), placement.KindCenter.String(), placement.KindSnap.String(), placement.KindSmart.String()}
)

// TUI represents the terminal user interface state.
type TUI struct {
	ctl      Controller
	windowID uint32
	step     int

	// Preview state
	host      *ipc.AttachData
	width     int
	height    int
	last      *ipc.PreviewData
	applied   bool
	renderer  int
	indicator int
	strategy  int
	lastError string
	message   string

	// Terminal state
	oldState *term.State
	cols     int
	rows     int
}

// New creates a TUI for windowID (0 means the focused window). step is the
// pixel increment for arrow keys; shifted keys move ten times as far.
func New(ctl Controller, windowID uint32, step int) *TUI {
	if step <= 0 {
		step = DefaultStep
	}
	return &TUI{
		ctl:      ctl,
		windowID: windowID,
		step:     step,
	}
}

// Run starts the TUI main loop.
func (t *TUI) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("adjust requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	if err := t.attach(); err != nil {
		return err
	}

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	t.oldState = oldState
	defer t.restore()

	t.push()
	t.render()

	buf := make([]byte, 32)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return err
		}

		if t.handleInput(buf[:n]) {
			break
		}

		t.render()
	}

	return t.ctl.Stop()
}

func (t *TUI) restore() {
	if t.oldState != nil {
		term.Restore(int(os.Stdin.Fd()), t.oldState)
	}
	fmt.Print("\x1b[0m")   // reset
	fmt.Print("\x1b[?25h") // show cursor
	fmt.Print("\x1b[2J")   // clear screen
	fmt.Print("\x1b[H")    // home cursor
}

func (t *TUI) updateSize() {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		t.cols = 80
		t.rows = 24
		return
	}
	t.cols = w
	t.rows = h
}

// attach binds the host window and seeds the size from its current bounds.
func (t *TUI) attach() error {
	host, err := t.ctl.Attach(t.windowID)
	if err != nil {
		return err
	}
	t.host = host
	t.width = host.Width
	t.height = host.Height

	if st, err := t.ctl.GetStatus(); err == nil {
		t.renderer = indexOf(rendererCycle, st.Renderer)
		t.indicator = indexOf(indicatorCycle, st.Indicator)
		t.strategy = indexOf(strategyCycle, st.Strategy)
	}
	return nil
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return 0
}

// push sends the current size to the daemon.
func (t *TUI) push() {
	data, err := t.ctl.Update(t.width, t.height)
	if err != nil {
		t.lastError = err.Error()
		return
	}
	t.last = data
	t.lastError = ""
	t.applied = false
}

func (t *TUI) resize(dw, dh int) {
	t.width = max(minSize, t.width+dw)
	t.height = max(minSize, t.height+dh)
	t.push()
}

func (t *TUI) scale(num, den int) {
	t.width = max(minSize, t.width*num/den)
	t.height = max(minSize, t.height*num/den)
	t.push()
}

// cycle advances *idx through values and hands the new value to set.
func (t *TUI) cycle(idx *int, values []string, set func(string) error, what string) {
	next := (*idx + 1) % len(values)
	if err := set(values[next]); err != nil {
		t.lastError = err.Error()
		return
	}
	*idx = next
	t.lastError = ""
	t.message = fmt.Sprintf("%s: %s", what, values[next])
}

func (t *TUI) handleInput(input []byte) bool {
	if len(input) == 0 {
		return false
	}

	big := t.step * 10
	for len(input) > 0 {
		// Shifted arrows: ESC [ 1 ; 2 X
		if len(input) >= 6 && input[0] == 0x1b && input[1] == '[' && input[2] == '1' && input[3] == ';' && input[4] == '2' {
			t.arrow(input[5], big)
			input = input[6:]
			continue
		}
		if len(input) >= 3 && input[0] == 0x1b && input[1] == '[' {
			t.arrow(input[2], t.step)
			input = input[3:]
			continue
		}

		switch input[0] {
		case 'q', 0x1b: // q or Escape
			return true
		case 0x03: // Ctrl+C
			return true
		case 'h':
			t.resize(-t.step, 0)
		case 'l':
			t.resize(t.step, 0)
		case 'k':
			t.resize(0, -t.step)
		case 'j':
			t.resize(0, t.step)
		case 'H':
			t.resize(-big, 0)
		case 'L':
			t.resize(big, 0)
		case 'K':
			t.resize(0, -big)
		case 'J':
			t.resize(0, big)
		case '+', '=':
			t.scale(11, 10)
		case '-':
			t.scale(10, 11)
		case '0':
			if t.host != nil {
				t.width, t.height = t.host.Width, t.host.Height
				t.push()
			}
		case 'r':
			t.cycle(&t.renderer, rendererCycle, t.ctl.SetRenderer, "renderer")
		case 'i':
			t.cycle(&t.indicator, indicatorCycle, t.ctl.SetIndicator, "indicator")
		case 'p':
			t.cycle(&t.strategy, strategyCycle, t.ctl.SetStrategy, "strategy")
		case '\r', '\n':
			if err := t.ctl.Apply(); err != nil {
				t.lastError = err.Error()
			} else {
				t.applied = true
				t.message = fmt.Sprintf("applied %dx%d", t.width, t.height)
				if t.host != nil {
					t.host.Width, t.host.Height = t.width, t.height
				}
			}
		}

		input = input[1:]
	}

	return false
}

func (t *TUI) arrow(code byte, amount int) {
	switch code {
	case 'A': // Up arrow
		t.resize(0, -amount)
	case 'B': // Down arrow
		t.resize(0, amount)
	case 'C': // Right arrow
		t.resize(amount, 0)
	case 'D': // Left arrow
		t.resize(-amount, 0)
	}
}
