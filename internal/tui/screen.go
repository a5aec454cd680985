package tui

import (
	"fmt"
	"strings"
)

// ANSI escape codes
const (
	escClear      = "\x1b[2J"
	escHome       = "\x1b[H"
	escHideCursor = "\x1b[?25l"
	escBold       = "\x1b[1m"
	escDim        = "\x1b[2m"
	escReset      = "\x1b[0m"
	escCyan       = "\x1b[36m"
	escYellow     = "\x1b[33m"
	escRed        = "\x1b[31m"
	escGreen      = "\x1b[32m"
)

func (t *TUI) render() {
	t.updateSize()

	var sb strings.Builder

	sb.WriteString(escHideCursor)
	sb.WriteString(escReset)
	sb.WriteString(escClear)
	sb.WriteString(escHome)

	const (
		headerLines = 2 // title + divider
		infoLines   = 4
		footerLines = 3 // divider + status + footer
	)

	width := max(t.cols, 1)
	height := max(t.rows, 1)

	sb.WriteString(escBold)
	sb.WriteString(escCyan)
	sb.WriteString(centerText("sizepeek adjust", width))
	sb.WriteString(escReset)
	sb.WriteString("\r\n")
	sb.WriteString(strings.Repeat("─", width))
	sb.WriteString("\r\n")

	for _, line := range t.renderInfo() {
		sb.WriteString(truncateANSI(line, width))
		sb.WriteString("\r\n")
	}

	canvasHeight := height - headerLines - infoLines - footerLines
	if canvasHeight > 0 && t.host != nil {
		for _, line := range sketch(t.host.Width, t.host.Height, t.width, t.height, width-2, canvasHeight) {
			sb.WriteString(" ")
			sb.WriteString(line)
			sb.WriteString("\r\n")
		}
	}

	sb.WriteString(strings.Repeat("─", width))
	sb.WriteString("\r\n")
	sb.WriteString(truncateANSI(t.renderStatus(), width))
	sb.WriteString("\r\n")
	sb.WriteString(truncateANSI(t.renderFooter(), width))

	fmt.Print(sb.String())
}

func (t *TUI) renderInfo() []string {
	lines := make([]string, 0, 4)
	if t.host != nil {
		title := t.host.Title
		if title == "" {
			title = "(untitled)"
		}
		lines = append(lines, fmt.Sprintf("Window:   0x%x %s  %dx%d", t.host.WindowID, title, t.host.Width, t.host.Height))
	}
	size := fmt.Sprintf("Preview:  %s%dx%d%s", escYellow, t.width, t.height, escReset)
	if t.host != nil && t.host.Width > 0 && t.host.Height > 0 {
		size += fmt.Sprintf("  (%d%% x %d%%)", t.width*100/t.host.Width, t.height*100/t.host.Height)
	}
	lines = append(lines, size)
	if t.last != nil && t.last.Placement != nil {
		p := t.last.Placement
		lines = append(lines, fmt.Sprintf("Placed:   %d,%d", p.X, p.Y))
	} else {
		lines = append(lines, escDim+"Placed:   -"+escReset)
	}
	lines = append(lines, fmt.Sprintf("Renderer: %s%s%s  Indicator: %s%s%s  Strategy: %s%s%s",
		escCyan, rendererCycle[t.renderer], escReset,
		escCyan, indicatorCycle[t.indicator], escReset,
		escCyan, strategyCycle[t.strategy], escReset))
	return lines
}

func (t *TUI) renderStatus() string {
	if t.lastError != "" {
		return fmt.Sprintf("%sError: %s%s", escRed, t.lastError, escReset)
	}
	if t.message != "" {
		return escGreen + t.message + escReset
	}
	return ""
}

func (t *TUI) renderFooter() string {
	keys := []string{
		"←/→/h/l:width", "↑/↓/k/j:height", "shift:x10", "+/-:scale", "0:reset",
		"r:renderer", "i:indicator", "p:placement", "enter:apply", "q/esc:quit",
	}
	return escDim + strings.Join(keys, "  ") + escReset
}

// sketch draws the host (dots) and the previewed size (hashes) to scale, both
// anchored at the top-left, inside a cols x rows canvas. Terminal cells are
// about twice as tall as wide, so heights are halved.
func sketch(hostW, hostH, w, h, cols, rows int) []string {
	if cols < 2 || rows < 2 || hostW <= 0 || hostH <= 0 || w <= 0 || h <= 0 {
		return nil
	}
	maxW := max(hostW, w)
	maxH := max(hostH, h)
	scale := min(float64(cols)/float64(maxW), float64(rows)/(float64(maxH)/2))

	cells := func(v int, half bool) int {
		f := float64(v) * scale
		if half {
			f /= 2
		}
		return max(1, int(f+0.5))
	}
	hw, hh := cells(hostW, false), cells(hostH, true)
	pw, ph := cells(w, false), cells(h, true)

	outW := min(max(hw, pw), cols)
	outH := min(max(hh, ph), rows)
	grid := make([][]rune, outH)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", outW))
		for x := range grid[y] {
			if x < hw && y < hh {
				grid[y][x] = '.'
			}
			onEdge := x == 0 || y == 0 || x == pw-1 || y == ph-1
			if x < pw && y < ph && onEdge {
				grid[y][x] = '#'
			}
		}
	}

	lines := make([]string, outH)
	for y, row := range grid {
		lines[y] = strings.TrimRight(string(row), " ")
	}
	return lines
}

func centerText(text string, width int) string {
	visibleLen := visibleLength(text)
	if visibleLen >= width {
		return text
	}
	padding := (width - visibleLen) / 2
	return strings.Repeat(" ", padding) + text
}

// visibleLength returns the visible length of a string, ignoring ANSI codes.
func visibleLength(s string) int {
	inEscape := false
	length := 0
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		length++
	}
	return length
}

func truncateANSI(text string, width int) string {
	if width < 1 {
		return ""
	}
	if visibleLength(text) <= width {
		return text
	}

	var sb strings.Builder
	inEscape := false
	visible := 0
	for _, r := range text {
		if r == '\x1b' {
			inEscape = true
			sb.WriteRune(r)
			continue
		}
		if inEscape {
			sb.WriteRune(r)
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}

		if visible >= width-1 {
			break
		}
		sb.WriteRune(r)
		visible++
	}

	sb.WriteString("…")
	sb.WriteString(escReset)
	return sb.String()
}
