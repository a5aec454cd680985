package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/sizepeek/internal/ipc"
)

// Tab identifies a settings tab.
type Tab int

const (
	TabPreview Tab = iota
	TabPlacement
	TabOverlay
	TabLogging
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabPreview:
		return "Preview"
	case TabPlacement:
		return "Placement"
	case TabOverlay:
		return "Overlay"
	case TabLogging:
		return "Logging"
	default:
		return "?"
	}
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")
)

func renderTabBar(active Tab, width int) string {
	tabs := make([]string, 0, tabCount)
	for i := Tab(0); i < tabCount; i++ {
		label := fmt.Sprintf("%d:%s", i+1, i)
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, tabGap.Render())...)
	return tabBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// renderStatusBar shows whether the daemon is up and what it is previewing.
func renderStatusBar(status *ipc.StatusData, width int) string {
	var text string
	if status != nil {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " daemon connected", "renderer:" + status.Renderer, "strategy:" + status.Strategy}
		if status.Active {
			parts = append(parts, fmt.Sprintf("previewing %dx%d", status.Width, status.Height))
		}
		text = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		text = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(text)
}

func renderHelpBar(width int) string {
	help := "tab/shift-tab: switch tabs  1-4: jump to tab  e: edit  ctrl-s: save  q/ctrl-c: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
