package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandAttach       CommandType = "ATTACH"
	CommandStart        CommandType = "START"
	CommandUpdate       CommandType = "UPDATE"
	CommandStop         CommandType = "STOP"
	CommandApply        CommandType = "APPLY"
	CommandStatus       CommandType = "STATUS"
	CommandGetMonitors  CommandType = "GET_MONITORS"
	CommandSetRenderer  CommandType = "SET_RENDERER"
	CommandSetIndicator CommandType = "SET_INDICATOR"
	CommandSetStrategy  CommandType = "SET_STRATEGY"
	CommandReload       CommandType = "RELOAD"
	CommandSaveSettings CommandType = "SAVE_SETTINGS"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// AttachPayload selects the host window. Zero means the focused window.
type AttachPayload struct {
	WindowID uint32 `json:"window_id,omitempty"`
}

// SizePayload carries the previewed dimensions for START and UPDATE.
type SizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// KindPayload names a renderer, indicator or strategy.
type KindPayload struct {
	Value string `json:"value"`
}

// AttachData is returned by ATTACH.
type AttachData struct {
	WindowID uint32 `json:"window_id"`
	Title    string `json:"title,omitempty"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// RectData is a rectangle in desktop coordinates.
type RectData struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// StatusData represents the data returned by STATUS
type StatusData struct {
	Initialized   bool      `json:"initialized"`
	Active        bool      `json:"active"`
	HostWindow    uint32    `json:"host_window,omitempty"`
	Renderer      string    `json:"renderer"`
	Indicator     string    `json:"indicator"`
	Strategy      string    `json:"strategy"`
	Phase         string    `json:"phase,omitempty"`
	SessionID     string    `json:"session_id,omitempty"`
	Width         int       `json:"width,omitempty"`
	Height        int       `json:"height,omitempty"`
	Placement     *RectData `json:"placement,omitempty"`
	Report        string    `json:"report"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	DaemonRunning bool      `json:"daemon_running"`
}

// PreviewData is returned by commands that change the preview.
type PreviewData struct {
	Active    bool      `json:"active"`
	SessionID string    `json:"session_id,omitempty"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Placement *RectData `json:"placement,omitempty"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID       string   `json:"id"`
	Primary  bool     `json:"primary"`
	Scale    float64  `json:"scale"`
	Bounds   RectData `json:"bounds"`
	WorkArea RectData `json:"work_area"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
