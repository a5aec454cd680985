package mcp

// SizeInput is the input for preview_start and preview_update.
type SizeInput struct {
	Width  int `json:"width" jsonschema:"Previewed window width in pixels"`
	Height int `json:"height" jsonschema:"Previewed window height in pixels"`
}

// PreviewOutput describes the preview after a start or update.
type PreviewOutput struct {
	Active    bool   `json:"active"`
	SessionID string `json:"session_id,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

// EmptyInput is used by tools without arguments.
type EmptyInput struct{}

// AttachInput is the input for attach_window.
type AttachInput struct {
	WindowID uint32 `json:"window_id,omitempty" jsonschema:"X11 window id to preview. Omit to use the focused window."`
}

// AttachOutput describes the attached host window.
type AttachOutput struct {
	WindowID uint32 `json:"window_id"`
	Title    string `json:"title,omitempty"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// RendererInput is the input for set_renderer.
type RendererInput struct {
	Renderer string `json:"renderer" jsonschema:"One of outline, thumbnail, simulated, simplified"`
}

// IndicatorInput is the input for set_indicator.
type IndicatorInput struct {
	Indicator string `json:"indicator" jsonschema:"One of none, pixels, pixels-percent, percent"`
}

// StrategyInput is the input for set_strategy.
type StrategyInput struct {
	Strategy string `json:"strategy" jsonschema:"One of adjacent, center, snap, smart"`
}

// StatusOutput is the output for preview_status.
type StatusOutput struct {
	Active     bool   `json:"active"`
	HostWindow uint32 `json:"host_window,omitempty"`
	Renderer   string `json:"renderer"`
	Indicator  string `json:"indicator"`
	Strategy   string `json:"strategy"`
	Phase      string `json:"phase,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Report     string `json:"report"`
}

// Monitor describes one display for list_monitors.
type Monitor struct {
	ID       string  `json:"id"`
	Primary  bool    `json:"primary"`
	Scale    float64 `json:"scale"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	WorkArea string  `json:"work_area"`
}

// MonitorsOutput is the output for list_monitors.
type MonitorsOutput struct {
	Monitors []Monitor `json:"monitors"`
}
