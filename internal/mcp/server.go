package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/sizepeek/internal/ipc"
)

const (
	ServerName    = "sizepeek"
	ServerVersion = "0.1.0"
)

// Daemon is the IPC surface the tools call. *ipc.Client implements it.
type Daemon interface {
	Attach(windowID uint32) (*ipc.AttachData, error)
	Start(width, height int) (*ipc.PreviewData, error)
	Update(width, height int) (*ipc.PreviewData, error)
	Stop() error
	Apply() error
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	SetRenderer(kind string) error
	SetIndicator(kind string) error
	SetStrategy(kind string) error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server exposing resize previews to agents.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards tool calls to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		daemon: daemon,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "preview_start",
		Description: "Show a preview of the host window resized to width x height. The preview is placed next to the window without covering it. Attaches the focused window if none is attached.",
	}, s.handleStart)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "preview_update",
		Description: "Move and resize the visible preview to width x height. Starts a preview when none is visible.",
	}, s.handleUpdate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "preview_stop",
		Description: "Hide the preview. Succeeds when no preview is visible.",
	}, s.handleStop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "preview_apply",
		Description: "Resize the host window to the previewed dimensions. The preview stays visible until preview_stop.",
	}, s.handleApply)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "preview_status",
		Description: "Report the preview state: attached window, renderer, indicator, strategy, current size and a diagnostic report.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List monitors with their bounds, usable work area and DPI scale.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_renderer",
		Description: "Choose how the preview is drawn: outline, thumbnail, simulated or simplified.",
	}, s.handleSetRenderer)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_indicator",
		Description: "Choose the dimension label: none, pixels, pixels-percent or percent.",
	}, s.handleSetIndicator)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_strategy",
		Description: "Choose where the preview is placed: adjacent, center, snap or smart.",
	}, s.handleSetStrategy)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "attach_window",
		Description: "Attach the preview to an X11 window by id, or to the focused window when window_id is omitted.",
	}, s.handleAttach)
}
