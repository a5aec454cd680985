package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/sizepeek/internal/config"
)

// SectionTab shows one group of settings and edits them with a huh form.
type SectionTab struct {
	tab    Tab
	fields []field
	cfg    *config.Config

	width  int
	height int

	editing bool
	form    *huh.Form
	values  []string
}

// NewSectionTab creates the tab for one settings section.
func NewSectionTab(tab Tab, cfg *config.Config) SectionTab {
	return SectionTab{tab: tab, fields: sectionFields(tab), cfg: cfg}
}

func (s SectionTab) Update(msg tea.Msg) (SectionTab, tea.Cmd) {
	if s.editing {
		return s.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" && s.cfg != nil {
			s.startEditing()
			return s, s.form.Init()
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}
	return s, nil
}

func (s SectionTab) updateEditing(msg tea.Msg) (SectionTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			s.editing = false
			s.form = nil
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.applyForm()
		s.editing = false
		s.form = nil
		return s, nil
	}
	return s, cmd
}

func (s *SectionTab) startEditing() {
	// values must not grow after this point: the form holds pointers into it.
	s.values = make([]string, len(s.fields))
	inputs := make([]huh.Field, 0, len(s.fields))
	for i, f := range s.fields {
		s.values[i] = f.get(s.cfg)
		inputs = append(inputs, s.formField(f, &s.values[i]))
	}

	w := max(s.width-4, 40)
	s.form = huh.NewForm(huh.NewGroup(inputs...)).
		WithWidth(w).
		WithShowHelp(true).
		WithShowErrors(true)
	s.editing = true
}

func (s *SectionTab) formField(f field, value *string) huh.Field {
	if len(f.options) > 0 {
		return huh.NewSelect[string]().
			Key(f.key).
			Title(f.title).
			Description(f.desc).
			Options(huh.NewOptions(f.options...)...).
			Value(value)
	}
	cfg := s.cfg
	return huh.NewInput().
		Key(f.key).
		Title(f.title).
		Description(f.desc).
		Validate(func(v string) error {
			scratch := *cfg
			return f.set(&scratch, v)
		}).
		Value(value)
}

// applyForm stores every value that parses; the form validators already
// rejected the rest.
func (s *SectionTab) applyForm() {
	if s.cfg == nil {
		return
	}
	for i, f := range s.fields {
		_ = f.set(s.cfg, s.values[i])
	}
}

func (s SectionTab) View() string {
	if s.editing && s.form != nil {
		return s.viewEditing()
	}
	return s.viewDisplay()
}

func (s SectionTab) viewDisplay() string {
	if s.cfg == nil {
		style := lipgloss.NewStyle().
			Width(s.width).
			Height(s.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)
	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	lines := []string{""}
	for _, f := range s.fields {
		lines = append(lines, labelStyle.Render(f.title)+valueStyle.Render(displayOrDefault(f.get(s.cfg), "(unset)")))
	}
	lines = append(lines, "", dimStyle.Render("  Press 'e' to edit "+strings.ToLower(s.tab.String())+" settings"))

	return lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (s SectionTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing "+s.tab.String()+" Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	return lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2).
		Render(header + "\n\n" + s.form.View())
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
