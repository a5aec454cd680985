package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/sizepeek/internal/config"
	"github.com/1broseidon/sizepeek/internal/ipc"
)

type fakeDaemon struct {
	reloads int
	down    bool
}

func (d *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if d.down {
		return nil, errors.New("daemon not running")
	}
	return &ipc.StatusData{Renderer: "outline", Strategy: "adjacent"}, nil
}

func (d *fakeDaemon) Reload() error {
	d.reloads++
	return nil
}

func findField(t *testing.T, tab Tab, key string) field {
	t.Helper()
	for _, f := range sectionFields(tab) {
		if f.key == key {
			return f
		}
	}
	t.Fatalf("no field %q on %s", key, tab)
	return field{}
}

func TestFieldsSetAndValidate(t *testing.T) {
	tests := []struct {
		tab     Tab
		key     string
		value   string
		wantErr bool
	}{
		{TabPreview, "preview.renderer", "thumbnail", false},
		{TabPreview, "preview.renderer", "hologram", true},
		{TabPreview, "preview.indicator", "pixels-percent", false},
		{TabPreview, "preview.strategy", "snap", false},
		{TabPlacement, "preview.smart_delegate", "smart", true},
		{TabPlacement, "preview.smart_delegate", "center", false},
		{TabPlacement, "preview.snap_distance", "-1", true},
		{TabPlacement, "preview.snap_distance", "12", false},
		{TabPlacement, "preview.adjacent_threshold", "0", true},
		{TabPlacement, "preview.snap_threshold", "0.5", false},
		{TabOverlay, "overlay.border_thickness", "0", true},
		{TabOverlay, "overlay.color", "#ff0000", false},
		{TabOverlay, "overlay.background", "0x1000000", true},
		{TabLogging, "logging.file", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := config.DefaultConfig()
			f := findField(t, tt.tab, tt.key)
			err := f.set(cfg, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("set(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err == nil {
				if err := cfg.Validate(); err != nil {
					t.Fatalf("config invalid after set: %v", err)
				}
			}
		})
	}
}

func TestFieldsRoundTripDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	for tab := Tab(0); tab < tabCount; tab++ {
		for _, f := range sectionFields(tab) {
			if err := f.set(cfg, f.get(cfg)); err != nil {
				t.Fatalf("%s: default %q does not parse back: %v", f.key, f.get(cfg), err)
			}
		}
	}
	if *cfg != *config.DefaultConfig() {
		t.Fatalf("round trip changed the config")
	}
}

func TestColorFieldFormatsHex(t *testing.T) {
	cfg := config.DefaultConfig()
	f := findField(t, TabOverlay, "overlay.color")
	if err := f.set(cfg, "#00ff00"); err != nil {
		t.Fatal(err)
	}
	if got := f.get(cfg); got != "0x00ff00" {
		t.Fatalf("get = %q", got)
	}
}

func TestDiffConfigs(t *testing.T) {
	a := config.DefaultConfig()
	if diffConfigs(a, cloneConfig(a)) != nil {
		t.Fatalf("identical configs should not diff")
	}

	b := cloneConfig(a)
	b.Preview.Renderer = "simulated"
	lines := diffConfigs(a, b)

	var removed, added []string
	for _, l := range lines {
		switch l.kind {
		case diffRemoved:
			removed = append(removed, strings.TrimSpace(l.text))
		case diffAdded:
			added = append(added, strings.TrimSpace(l.text))
		}
	}
	if len(removed) != 1 || removed[0] != "renderer: outline" {
		t.Fatalf("removed = %v", removed)
	}
	if len(added) != 1 || added[0] != "renderer: simulated" {
		t.Fatalf("added = %v", added)
	}
	if len(lines) > 5 {
		t.Fatalf("expected at most two context lines on each side, got %d lines", len(lines))
	}
}

func TestWithContextMarksGaps(t *testing.T) {
	in := []diffLine{
		{diffRemoved, "a"},
		{diffContext, "b"},
		{diffContext, "c"},
		{diffContext, "d"},
		{diffAdded, "e"},
	}
	out := withContext(in, 0)
	if len(out) != 3 || out[1].text != "..." {
		t.Fatalf("out = %v", out)
	}
	if withContext([]diffLine{{diffContext, "x"}}, 2) != nil {
		t.Fatalf("no change should yield nil")
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m model, msg tea.Msg) model {
	next, _ := m.Update(msg)
	return next.(model)
}

func TestModelNavigation(t *testing.T) {
	res := &config.LoadResult{Path: filepath.Join(t.TempDir(), "config.yaml"), Config: config.DefaultConfig()}
	m := newModel(res, &fakeDaemon{down: true})
	if m.daemon != nil || m.status != nil {
		t.Fatalf("unreachable daemon should be dropped")
	}

	m = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = update(m, key("tab"))
	if m.activeTab != TabPlacement {
		t.Fatalf("tab = %s", m.activeTab)
	}
	m = update(m, key("4"))
	if m.activeTab != TabLogging {
		t.Fatalf("tab = %s", m.activeTab)
	}
	if !strings.Contains(m.View(), "daemon not running") {
		t.Fatalf("status bar should report the daemon as down")
	}
}

func TestModelSaveWritesAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	res := &config.LoadResult{Path: path, Config: config.DefaultConfig()}
	daemon := &fakeDaemon{}
	m := newModel(res, daemon)
	m = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m = update(m, key("ctrl+s"))
	if !m.saveOverlay.Active() || m.saveOverlay.err == nil {
		t.Fatalf("saving without changes should report an error")
	}
	m = update(m, key("esc"))

	m.cfg.Preview.Strategy = "center"
	m = update(m, key("ctrl+s"))
	if m.saveOverlay.phase != savePreview {
		t.Fatalf("expected diff preview, phase = %d", m.saveOverlay.phase)
	}
	m = update(m, key("enter"))
	if !m.saveOverlay.SaveSucceeded() {
		t.Fatalf("save failed: %v", m.saveOverlay.err)
	}
	if daemon.reloads != 1 {
		t.Fatalf("reloads = %d", daemon.reloads)
	}
	if m.original.Preview.Strategy != "center" {
		t.Fatalf("original snapshot should follow a successful save")
	}

	saved, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("load saved: %v", err)
	}
	if saved.Config.Preview.Strategy != "center" {
		t.Fatalf("saved strategy = %q", saved.Config.Preview.Strategy)
	}
}
