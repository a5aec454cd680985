package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/sizepeek/internal/geometry"
	"github.com/1broseidon/sizepeek/internal/placement"
	"github.com/1broseidon/sizepeek/internal/platform"
	"github.com/1broseidon/sizepeek/internal/preview"
	"github.com/1broseidon/sizepeek/internal/runtimepath"
)

// Engine is the preview coordinator surface driven over IPC.
type Engine interface {
	StartPreview(size geometry.Size) bool
	UpdatePreview(size geometry.Size) bool
	StopPreview() bool
	ApplyPreviewedDimensions() bool
	SetRendererKind(kind preview.RendererKind) bool
	SetIndicatorKind(kind preview.IndicatorKind) bool
	SetStrategyKind(kind placement.Kind) bool
	SaveToSettings() bool
	Status() preview.Status
	DiagnoseState() string
	Err() error
}

// Hosts tracks the attached host window.
type Hosts interface {
	Host() *platform.HostWindow
	Attach(windowID platform.WindowID) (*platform.HostWindow, error)
	AttachActive() (*platform.HostWindow, error)
}

// Runner executes fn on the goroutine that owns the engine.
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// ServerConfig wires a Server to the daemon.
type ServerConfig struct {
	// SocketPath defaults to runtimepath.SocketPath().
	SocketPath string
	Engine     Engine
	Hosts      Hosts
	Geometry   *geometry.Service
	Loop       Runner
	// Reload re-reads the configuration. It runs on the loop.
	Reload func() error
	// Timeout bounds how long a request waits for the loop.
	Timeout time.Duration
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	engine       Engine
	hosts        Hosts
	geo          *geometry.Service
	loop         Runner
	reload       func() error
	timeout      time.Duration
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil || cfg.Loop == nil {
		return nil, errors.New("ipc server requires an engine and a loop")
	}
	socketPath := cfg.SocketPath
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		engine:     cfg.Engine,
		hosts:      cfg.Hosts,
		geo:        cfg.Geometry,
		loop:       cfg.Loop,
		reload:     cfg.Reload,
		timeout:    timeout,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// Run starts the server and stops it when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * s.timeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandAttach:
		return s.handleAttach(req.Payload)
	case CommandStart:
		return s.handleSize(req.Payload, "start", s.engine.StartPreview)
	case CommandUpdate:
		return s.handleSize(req.Payload, "update", s.engine.UpdatePreview)
	case CommandStop:
		return s.handleSimple("stop", s.engine.StopPreview)
	case CommandApply:
		return s.handleSimple("apply", s.engine.ApplyPreviewedDimensions)
	case CommandStatus:
		return s.handleStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandSetRenderer:
		return s.handleKind(req.Payload, "renderer", func(v string) error {
			kind, err := preview.ParseRendererKind(v)
			if err != nil {
				return err
			}
			return s.check("set renderer", s.engine.SetRendererKind(kind))
		})
	case CommandSetIndicator:
		return s.handleKind(req.Payload, "indicator", func(v string) error {
			kind, err := preview.ParseIndicatorKind(v)
			if err != nil {
				return err
			}
			return s.check("set indicator", s.engine.SetIndicatorKind(kind))
		})
	case CommandSetStrategy:
		return s.handleKind(req.Payload, "strategy", func(v string) error {
			kind, err := placement.ParseKind(v)
			if err != nil {
				return err
			}
			return s.check("set strategy", s.engine.SetStrategyKind(kind))
		})
	case CommandReload:
		return s.handleReload()
	case CommandSaveSettings:
		return s.handleSimple("save settings", s.engine.SaveToSettings)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// do runs fn on the loop and returns its error. fn is skipped if the loop
// reaches it after the request timed out.
func (s *Server) do(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var result error
	if err := s.loop.Do(ctx, func() {
		if ctx.Err() != nil {
			return
		}
		result = fn()
	}); err != nil {
		return fmt.Errorf("daemon busy: %w", err)
	}
	return result
}

// check turns a false engine result into the engine's recorded error.
func (s *Server) check(op string, ok bool) error {
	if ok {
		return nil
	}
	if err := s.engine.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%s failed", op)
}

// ensureHost attaches the focused window when nothing is attached yet.
func (s *Server) ensureHost() error {
	if s.hosts == nil || s.hosts.Host() != nil {
		return nil
	}
	if _, err := s.hosts.AttachActive(); err != nil {
		return fmt.Errorf("no host window attached: %w", err)
	}
	return nil
}

func (s *Server) handleAttach(payload json.RawMessage) *Response {
	if s.hosts == nil {
		return NewErrorResponse("attach is not supported by this daemon")
	}
	var req AttachPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid attach payload: %v", err))
		}
	}

	var data AttachData
	err := s.do(func() error {
		var (
			host *platform.HostWindow
			err  error
		)
		if req.WindowID == 0 {
			host, err = s.hosts.AttachActive()
		} else {
			host, err = s.hosts.Attach(platform.WindowID(req.WindowID))
		}
		if err != nil {
			return err
		}
		bounds, err := host.Bounds()
		if err != nil {
			return err
		}
		data = AttachData{
			WindowID: uint32(host.ID()),
			Title:    host.Title(),
			X:        bounds.X,
			Y:        bounds.Y,
			Width:    bounds.Width,
			Height:   bounds.Height,
		}
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to attach: %v", err))
	}

	log.Printf("IPC: Attached window 0x%x", data.WindowID)
	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleSize(payload json.RawMessage, op string, call func(geometry.Size) bool) *Response {
	var req SizePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid %s payload: %v", op, err))
	}

	var data PreviewData
	err := s.do(func() error {
		if err := s.ensureHost(); err != nil {
			return err
		}
		if err := s.check(op, call(geometry.Size{Width: req.Width, Height: req.Height})); err != nil {
			return err
		}
		data = previewData(s.engine.Status())
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to %s preview: %v", op, err))
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleSimple(op string, call func() bool) *Response {
	err := s.do(func() error {
		return s.check(op, call())
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to %s: %v", op, err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleKind(payload json.RawMessage, what string, apply func(string) error) *Response {
	var req KindPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid %s payload: %v", what, err))
	}
	if req.Value == "" {
		return NewErrorResponse(fmt.Sprintf("%s value is required", what))
	}

	if err := s.do(func() error { return apply(req.Value) }); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to set %s: %v", what, err))
	}

	log.Printf("IPC: %s set to %s", what, req.Value)
	resp, _ := NewOKResponse(nil)
	return resp
}

// handleStatus returns current daemon status
func (s *Server) handleStatus() *Response {
	var data StatusData
	err := s.do(func() error {
		st := s.engine.Status()
		data = StatusData{
			Initialized:   st.Initialized,
			Active:        st.Active,
			Renderer:      st.Renderer.String(),
			Indicator:     st.Indicator.String(),
			Strategy:      st.Strategy.String(),
			Report:        s.engine.DiagnoseState(),
			UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
			DaemonRunning: true,
		}
		if s.hosts != nil {
			if host := s.hosts.Host(); host != nil {
				data.HostWindow = uint32(host.ID())
			}
		}
		if st.Initialized {
			data.Phase = st.Session.Phase.String()
			p := previewData(st)
			data.SessionID = p.SessionID
			data.Width = p.Width
			data.Height = p.Height
			data.Placement = p.Placement
		}
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}

	resp, _ := NewOKResponse(data)
	return resp
}

// handleGetMonitors returns information about all monitors
func (s *Server) handleGetMonitors() *Response {
	if s.geo == nil {
		return NewErrorResponse("monitor enumeration is not available")
	}

	var monitors []geometry.Monitor
	err := s.do(func() error {
		var err error
		monitors, err = s.geo.EnumerateMonitors()
		return err
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}
	if len(monitors) == 0 {
		monitors = []geometry.Monitor{geometry.DefaultMonitor()}
	}

	monitorInfos := make([]MonitorInfo, len(monitors))
	for i, m := range monitors {
		monitorInfos[i] = MonitorInfo{
			ID:       m.ID,
			Primary:  m.Primary,
			Scale:    m.Scale,
			Bounds:   rectData(m.Bounds),
			WorkArea: rectData(m.Usable()),
		}
	}

	resp, _ := NewOKResponse(MonitorsData{Monitors: monitorInfos})
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")
	if s.reload == nil {
		return NewErrorResponse("reload is not supported by this daemon")
	}

	if err := s.do(s.reload); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	log.Println("IPC: Config reloaded successfully")
	resp, _ := NewOKResponse(nil)
	return resp
}

func previewData(st preview.Status) PreviewData {
	data := PreviewData{
		Active:    st.Active,
		SessionID: st.Session.SessionID,
	}
	if st.Session.Size.Valid() {
		data.Width = st.Session.Size.Width
		data.Height = st.Session.Size.Height
		r := rectData(st.Session.Placement)
		data.Placement = &r
	}
	return data
}

func rectData(r geometry.Rect) RectData {
	return RectData{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
