package overlay

import "github.com/1broseidon/sizepeek/internal/geometry"

// Default colors, matching the config defaults.
const (
	ColorBorder     = 0x3498db // Blue - preview frame and title bar
	ColorBackground = 0x1f2933 // Dark fill behind labels and mock bodies
	ColorText       = 0xf5f7fa // Light label text
)

// Border thickness in pixels
const BorderThickness = 4

const (
	labelPaddingX  = 10
	labelPaddingY  = 8
	lineHeight     = 16
	charWidth      = 7
	titleBarHeight = 24
	buttonSize     = 12
	buttonGap      = 6
	maxTextLen     = 255
)

// Style holds the colors and frame width every renderer draws with.
type Style struct {
	Border          uint32
	Background      uint32
	Text            uint32
	BorderThickness int
}

// DefaultStyle returns the built-in overlay colors.
func DefaultStyle() Style {
	return Style{
		Border:          ColorBorder,
		Background:      ColorBackground,
		Text:            ColorText,
		BorderThickness: BorderThickness,
	}
}

type labelAlign int

const (
	alignCenter labelAlign = iota
	alignTopLeft
)

// label is a text panel positioned in surface-local coordinates.
type label struct {
	Box  geometry.Rect
	Text string
}

// baseline returns the text origin inside the panel for ImageText8.
func (l label) baseline() (int, int) {
	return l.Box.X + labelPaddingX, l.Box.Y + labelPaddingY + lineHeight - 4
}

func textWidth(s string) int { return len(s) * charWidth }

// fitText shortens s to at most maxChars, marking the cut with "..." when
// there is room for it.
func fitText(s string, maxChars int) string {
	if maxChars > maxTextLen {
		maxChars = maxTextLen
	}
	if maxChars <= 0 {
		return ""
	}
	if len(s) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return s[:maxChars]
	}
	return s[:maxChars-3] + "..."
}

// layoutLabel places text inside area. ok is false when the text is empty or
// no single character fits.
func layoutLabel(area geometry.Rect, text string, align labelAlign) (label, bool) {
	if text == "" || area.Empty() {
		return label{}, false
	}
	height := lineHeight + 2*labelPaddingY
	if height > area.Height {
		return label{}, false
	}
	text = fitText(text, (area.Width-2*labelPaddingX)/charWidth)
	if text == "" {
		return label{}, false
	}
	width := textWidth(text) + 2*labelPaddingX

	x, y := area.X, area.Y
	if align == alignCenter {
		x += (area.Width - width) / 2
		y += (area.Height - height) / 2
	}
	return label{Box: geometry.Rect{X: x, Y: y, Width: width, Height: height}, Text: text}, true
}

// frameRects returns the edges of a frame of the given thickness drawn just
// inside size. A frame too thick for the size collapses to one full rectangle.
func frameRects(size geometry.Size, thickness int) []geometry.Rect {
	w, h := size.Width, size.Height
	if w <= 0 || h <= 0 {
		return nil
	}
	if thickness < 1 {
		thickness = 1
	}
	if 2*thickness >= w || 2*thickness >= h {
		return []geometry.Rect{{Width: w, Height: h}}
	}
	return []geometry.Rect{
		{X: 0, Y: 0, Width: w, Height: thickness},
		{X: 0, Y: h - thickness, Width: w, Height: thickness},
		{X: 0, Y: thickness, Width: thickness, Height: h - 2*thickness},
		{X: w - thickness, Y: thickness, Width: thickness, Height: h - 2*thickness},
	}
}

// inner returns the area enclosed by a frame of the given thickness.
func inner(size geometry.Size, thickness int) geometry.Rect {
	r := geometry.Rect{X: thickness, Y: thickness, Width: size.Width - 2*thickness, Height: size.Height - 2*thickness}
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}

// chrome is the mock window decoration drawn by the simulated renderer.
type chrome struct {
	TitleBar geometry.Rect
	Buttons  []geometry.Rect
	Body     geometry.Rect
}

// layoutChrome splits size into a title bar with three buttons on the right
// and the body below it. Windows shorter than two title bars get no title bar.
func layoutChrome(size geometry.Size, thickness int) chrome {
	body := inner(size, thickness)
	if body.Height < 2*titleBarHeight || body.Width < 3*(buttonSize+buttonGap)+buttonGap {
		return chrome{Body: body}
	}

	bar := geometry.Rect{X: body.X, Y: body.Y, Width: body.Width, Height: titleBarHeight}
	buttons := make([]geometry.Rect, 0, 3)
	x := bar.Right() - buttonGap - buttonSize
	y := bar.Y + (titleBarHeight-buttonSize)/2
	for range 3 {
		buttons = append(buttons, geometry.Rect{X: x, Y: y, Width: buttonSize, Height: buttonSize})
		x -= buttonSize + buttonGap
	}

	body.Y += titleBarHeight
	body.Height -= titleBarHeight
	return chrome{TitleBar: bar, Buttons: buttons, Body: body}
}

// titleArea is the part of the title bar left of the buttons.
func (c chrome) titleArea() geometry.Rect {
	if c.TitleBar.Empty() {
		return geometry.Rect{}
	}
	right := c.TitleBar.Right()
	if n := len(c.Buttons); n > 0 {
		right = c.Buttons[n-1].X - buttonGap
	}
	return geometry.Rect{X: c.TitleBar.X, Y: c.TitleBar.Y, Width: right - c.TitleBar.X, Height: c.TitleBar.Height}
}

// titleText returns the baseline origin and fitted title for the title bar.
func (c chrome) titleText(title string) (x, y int, text string, ok bool) {
	area := c.titleArea()
	if area.Empty() || title == "" {
		return 0, 0, "", false
	}
	text = fitText(title, (area.Width-labelPaddingX)/charWidth)
	if text == "" {
		return 0, 0, "", false
	}
	return area.X + labelPaddingX, area.Y + (area.Height+lineHeight)/2 - 4, text, true
}
