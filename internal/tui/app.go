package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/sizepeek/internal/config"
	"github.com/1broseidon/sizepeek/internal/ipc"
)

// Daemon is what the settings editor needs from a running daemon.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	Reload() error
}

var _ Daemon = (*ipc.Client)(nil)

// model is the root bubbletea model of the settings editor.
type model struct {
	path   string
	cfg    *config.Config
	daemon Daemon
	status *ipc.StatusData

	activeTab Tab
	tabs      [tabCount]SectionTab

	original    *config.Config
	saveOverlay SaveOverlay

	width  int
	height int
}

// RunSettings opens the settings editor for res. daemon may be nil; when it
// is set and reachable, saving also reloads it.
func RunSettings(res *config.LoadResult, daemon Daemon) error {
	_, err := tea.NewProgram(newModel(res, daemon), tea.WithAltScreen()).Run()
	return err
}

func newModel(res *config.LoadResult, daemon Daemon) model {
	m := model{
		path:      res.Path,
		cfg:       res.Config,
		activeTab: TabPreview,
		original:  cloneConfig(res.Config),
	}
	if daemon != nil {
		if st, err := daemon.GetStatus(); err == nil {
			m.daemon = daemon
			m.status = st
		}
	}
	for t := Tab(0); t < tabCount; t++ {
		m.tabs[t] = NewSectionTab(t, m.cfg)
	}
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.resize(size)
		return m, nil
	}

	// The save overlay captures all input while visible.
	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		prev := m.saveOverlay.phase
		m.saveOverlay = m.saveOverlay.Update(msg, m.path, m.cfg, m.daemon)
		if prev == savePreview && m.saveOverlay.SaveSucceeded() {
			m.original = cloneConfig(m.cfg)
			m.refreshStatus()
		}
		return m, nil
	}

	km, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch km.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+s":
			m.saveOverlay.Show(m.original, m.cfg)
			return m, nil
		}
	}

	// A form in progress consumes every other key.
	if !m.tabs[m.activeTab].editing && isKey {
		switch km.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1", "2", "3", "4":
			m.activeTab = Tab(km.String()[0] - '1')
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
	return m, cmd
}

func (m *model) resize(size tea.WindowSizeMsg) {
	m.width = size.Width
	m.height = size.Height
	sub := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
	for t := range m.tabs {
		m.tabs[t], _ = m.tabs[t].Update(sub)
	}
}

func (m *model) refreshStatus() {
	if m.daemon == nil {
		return
	}
	if st, err := m.daemon.GetStatus(); err == nil {
		m.status = st
	}
}

// contentHeight is the height left for tab content: status bar, tab bar
// with its margin, and help bar take four lines.
func (m model) contentHeight() int {
	return max(m.height-4, 1)
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	used := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := max(m.height-used, 1)

	var content string
	if m.saveOverlay.Active() {
		content = m.saveOverlay.View(m.width, contentHeight)
	} else {
		content = m.tabs[m.activeTab].View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, statusBar, tabBar, content, helpBar)
}
