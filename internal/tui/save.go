package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/sizepeek/internal/config"
)

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // showing diff, awaiting confirm
	saveResult            // showing outcome message
)

type diffKind int

const (
	diffContext diffKind = iota
	diffRemoved
	diffAdded
)

type diffLine struct {
	kind diffKind
	text string
}

// SaveOverlay previews pending changes as a YAML diff, writes them on
// confirmation and asks a running daemon to reload.
type SaveOverlay struct {
	phase    savePhase
	diff     []diffLine
	err      error
	reloaded bool
	scroll   int
}

func (s SaveOverlay) Active() bool { return s.phase != saveHidden }

// Show opens the overlay with the diff between original and current.
func (s *SaveOverlay) Show(original, current *config.Config) {
	s.err = nil
	s.reloaded = false
	s.scroll = 0
	s.diff = diffConfigs(original, current)
	if len(s.diff) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	s.phase = savePreview
}

func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles input while the overlay is active. daemon may be nil when
// no daemon is running.
func (s SaveOverlay) Update(msg tea.Msg, path string, cfg *config.Config, daemon Daemon) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	switch s.phase {
	case savePreview:
		switch km.String() {
		case "esc":
			s.phase = saveHidden
		case "enter", "y":
			s.err = cfg.SaveTo(path)
			if s.err == nil && daemon != nil {
				s.reloaded = daemon.Reload() == nil
			}
			s.phase = saveResult
		case "up", "k":
			s.scroll = max(s.scroll-1, 0)
		case "down", "j":
			s.scroll++
		}
	case saveResult:
		s.phase = saveHidden
	}
	return s
}

func (s SaveOverlay) View(width, height int) string {
	switch s.phase {
	case savePreview:
		return s.viewPreview(width, height)
	case saveResult:
		return s.viewResult(width, height)
	}
	return ""
}

var (
	addStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rmStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	ctxStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	footStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

func (s SaveOverlay) viewPreview(areaW, areaH int) string {
	boxW := min(max(areaW-8, 30), 80)
	innerW := max(boxW-6, 10)
	visible := max(areaH-10, 3)

	off := min(s.scroll, max(len(s.diff)-visible, 0))
	end := min(off+visible, len(s.diff))

	lines := make([]string, 0, end-off)
	for _, dl := range s.diff[off:end] {
		t := dl.text
		if len(t) > innerW-2 {
			t = t[:innerW-2]
		}
		switch dl.kind {
		case diffAdded:
			lines = append(lines, addStyle.Render("+ "+t))
		case diffRemoved:
			lines = append(lines, rmStyle.Render("- "+t))
		default:
			lines = append(lines, ctxStyle.Render("  "+t))
		}
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Render("Save settings: pending changes")
	content := title + "\n\n" + strings.Join(lines, "\n") + "\n\n" + footStyle.Render("enter: save  esc: cancel  j/k: scroll")
	return lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, boxStyle.Width(boxW).Render(content))
}

func (s SaveOverlay) viewResult(areaW, areaH int) string {
	boxW := min(max(areaW-8, 30), 60)

	var msg string
	if s.err != nil {
		msg = rmStyle.Bold(true).Render("Error: " + s.err.Error())
	} else {
		msg = addStyle.Bold(true).Render("Settings saved")
		if s.reloaded {
			msg += "\n" + addStyle.Render("Daemon reloaded")
		}
	}

	content := msg + "\n\n" + footStyle.Render("press any key to dismiss")
	return lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, boxStyle.Width(boxW).Render(content))
}

// diffConfigs renders both configs as YAML and diffs them line by line,
// keeping two lines of context around each change.
func diffConfigs(original, current *config.Config) []diffLine {
	if original == nil || current == nil {
		return nil
	}
	a, err := yamlLines(original)
	if err != nil {
		return nil
	}
	b, err := yamlLines(current)
	if err != nil {
		return nil
	}
	return withContext(lcsDiff(a, b), 2)
}

func yamlLines(cfg *config.Config) ([]string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n"), nil
}

// lcsDiff computes a line diff from the longest common subsequence of a and b.
// Settings files are small, so the quadratic table is fine.
func lcsDiff(a, b []string) []diffLine {
	m, n := len(a), len(b)
	tbl := make([][]int, m+1)
	for i := range tbl {
		tbl[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if a[i] == b[j] {
				tbl[i][j] = tbl[i+1][j+1] + 1
			} else {
				tbl[i][j] = max(tbl[i+1][j], tbl[i][j+1])
			}
		}
	}

	var out []diffLine
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case a[i] == b[j]:
			out = append(out, diffLine{diffContext, a[i]})
			i++
			j++
		case tbl[i+1][j] >= tbl[i][j+1]:
			out = append(out, diffLine{diffRemoved, a[i]})
			i++
		default:
			out = append(out, diffLine{diffAdded, b[j]})
			j++
		}
	}
	for ; i < m; i++ {
		out = append(out, diffLine{diffRemoved, a[i]})
	}
	for ; j < n; j++ {
		out = append(out, diffLine{diffAdded, b[j]})
	}
	return out
}

// withContext keeps changed lines plus ctx lines around them, marking gaps
// with "...". It returns nil when nothing changed.
func withContext(lines []diffLine, ctx int) []diffLine {
	keep := make([]bool, len(lines))
	changed := false
	for i, l := range lines {
		if l.kind == diffContext {
			continue
		}
		changed = true
		for k := max(i-ctx, 0); k <= min(i+ctx, len(lines)-1); k++ {
			keep[k] = true
		}
	}
	if !changed {
		return nil
	}

	var out []diffLine
	gap := false
	for i, l := range lines {
		if !keep[i] {
			gap = true
			continue
		}
		if gap && len(out) > 0 {
			out = append(out, diffLine{diffContext, "..."})
		}
		gap = false
		out = append(out, l)
	}
	return out
}

// cloneConfig deep-copies cfg. Config holds only value fields.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	clone := *cfg
	return &clone
}
