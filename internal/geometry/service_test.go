package geometry

import (
	"errors"
	"testing"
)

func monitor(id string, x, y, w, h int, primary bool) Monitor {
	b := Rect{X: x, Y: y, Width: w, Height: h}
	return Monitor{ID: id, Bounds: b, WorkArea: b, Scale: 1, Primary: primary}
}

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"overlap", Rect{0, 0, 100, 100}, Rect{50, 50, 100, 100}, Rect{50, 50, 50, 50}},
		{"contained", Rect{0, 0, 100, 100}, Rect{10, 10, 20, 20}, Rect{10, 10, 20, 20}},
		{"touching edges", Rect{0, 0, 100, 100}, Rect{100, 0, 50, 50}, Rect{}},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{-50, -50, 10, 10}, Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersect(tt.b); got != tt.want {
				t.Fatalf("Intersect(%+v, %+v) = %+v, want %+v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMonitorContainingWindowUsesCenter(t *testing.T) {
	monitors := []Monitor{
		monitor("left", 0, 0, 1920, 1080, true),
		monitor("right", 1920, 0, 2560, 1440, false),
	}

	// Mostly on the left monitor, but the center is on the right one.
	win := Rect{X: 1500, Y: 100, Width: 1000, Height: 400}
	got, ok := MonitorContainingWindow(win, monitors)
	if !ok || got.ID != "right" {
		t.Fatalf("expected right monitor, got %+v ok=%v", got, ok)
	}

	if _, ok := MonitorContainingWindow(Rect{X: -5000, Y: 0, Width: 10, Height: 10}, monitors); ok {
		t.Fatalf("expected no monitor for off-screen window")
	}
}

func TestBestMonitorForRectTieBreaks(t *testing.T) {
	a := monitor("a", 0, 0, 1000, 1000, false)
	b := monitor("b", 1000, 0, 1000, 1000, true)
	c := monitor("c", 2000, 0, 1000, 1000, false)

	// Straddles a and b evenly: primary wins.
	rect := Rect{X: 900, Y: 0, Width: 200, Height: 100}
	if got, _ := BestMonitorForRect(rect, []Monitor{a, b}); got.ID != "b" {
		t.Fatalf("expected primary monitor b, got %q", got.ID)
	}

	// Straddles b and c evenly when neither is primary: first enumerated wins.
	b.Primary = false
	rect = Rect{X: 1900, Y: 0, Width: 200, Height: 100}
	if got, _ := BestMonitorForRect(rect, []Monitor{a, b, c}); got.ID != "b" {
		t.Fatalf("expected first enumerated monitor b, got %q", got.ID)
	}

	// Larger overlap wins regardless of primary.
	rect = Rect{X: 1950, Y: 0, Width: 200, Height: 100}
	b.Primary = true
	if got, _ := BestMonitorForRect(rect, []Monitor{a, b, c}); got.ID != "c" {
		t.Fatalf("expected c with the larger overlap, got %q", got.ID)
	}

	if _, ok := BestMonitorForRect(Rect{X: -500, Y: -500, Width: 10, Height: 10}, []Monitor{a}); ok {
		t.Fatalf("expected no match for disjoint rect")
	}
}

func TestVisibilityUsesWorkArea(t *testing.T) {
	m := monitor("m", 0, 0, 1920, 1080, true)
	m.WorkArea = Rect{X: 0, Y: 0, Width: 1920, Height: 1040} // bottom panel
	monitors := []Monitor{m}

	inside := Rect{X: 100, Y: 100, Width: 300, Height: 200}
	if !FullyVisible(inside, monitors) {
		t.Fatalf("expected %+v to be fully visible", inside)
	}

	overPanel := Rect{X: 100, Y: 900, Width: 300, Height: 200}
	if FullyVisible(overPanel, monitors) {
		t.Fatalf("rect overlapping the panel should not be fully visible")
	}
	// 140 of 200 rows visible = 70%.
	if PartiallyVisible(overPanel, monitors, 0.8) {
		t.Fatalf("70%% visible rect passed an 80%% threshold")
	}
	if !PartiallyVisible(overPanel, monitors, 0.7) {
		t.Fatalf("70%% visible rect failed a 70%% threshold")
	}
}

func TestConstrainToScreen(t *testing.T) {
	monitors := []Monitor{
		monitor("left", 0, 0, 1920, 1080, true),
		monitor("right", 1920, 0, 1920, 1080, false),
	}

	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"already visible", Rect{100, 100, 300, 200}, Rect{100, 100, 300, 200}},
		{"past right edge", Rect{3700, 100, 300, 200}, Rect{3540, 100, 300, 200}},
		{"past bottom", Rect{100, 1000, 300, 200}, Rect{100, 880, 300, 200}},
		{"above top left", Rect{-100, -50, 300, 200}, Rect{0, 0, 300, 200}},
		{"fully off screen uses nearest", Rect{5000, 100, 300, 200}, Rect{3540, 100, 300, 200}},
		{"oversized pins top-left", Rect{100, 100, 2500, 1200}, Rect{0, 0, 2500, 1200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConstrainToScreen(tt.in, monitors); got != tt.want {
				t.Fatalf("ConstrainToScreen(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestConstrainToScreenEmptyListUsesDefault(t *testing.T) {
	got := ConstrainToScreen(Rect{X: 1900, Y: 1000, Width: 300, Height: 200}, nil)
	want := Rect{X: DefaultMonitorWidth - 300, Y: DefaultMonitorHeight - 200, Width: 300, Height: 200}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestEnumerateMonitorsNormalizes(t *testing.T) {
	src := StaticMonitors{
		{ID: "a", Bounds: Rect{0, 0, 1920, 1080}, Scale: 0},
		{ID: "empty", Bounds: Rect{}},
		{ID: "b", Bounds: Rect{1920, 0, 1920, 1080}, WorkArea: Rect{1920, 30, 1920, 1050}, Scale: 2},
	}
	svc := NewService(src, nil)

	got, err := svc.EnumerateMonitors()
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 monitors, got %d", len(got))
	}
	if got[0].Scale != 1.0 || got[0].WorkArea != got[0].Bounds {
		t.Fatalf("expected defaults applied to first monitor, got %+v", got[0])
	}
	if got[1].Scale != 2 || got[1].WorkArea.Y != 30 {
		t.Fatalf("expected second monitor untouched, got %+v", got[1])
	}
}

func TestMonitorsOrDefaultOnError(t *testing.T) {
	svc := NewService(MonitorSourceFunc(func() ([]Monitor, error) {
		return nil, errors.New("randr unavailable")
	}), nil)

	got := svc.MonitorsOrDefault()
	if len(got) != 1 || got[0] != DefaultMonitor() {
		t.Fatalf("expected default monitor, got %+v", got)
	}
}

func TestScaleFromDPI(t *testing.T) {
	tests := []struct {
		dpi  float64
		want float64
	}{
		{0, 1},
		{-10, 1},
		{96, 1},
		{120, 1.25},
		{144, 1.5},
		{192, 2},
		{108, 1.25},
	}
	for _, tt := range tests {
		if got := ScaleFromDPI(tt.dpi); got != tt.want {
			t.Errorf("ScaleFromDPI(%v) = %v, want %v", tt.dpi, got, tt.want)
		}
	}
}
