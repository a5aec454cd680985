package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/sizepeek/internal/ipc"
)

func textResult(format string, args ...any) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func validateSize(in SizeInput) error {
	if in.Width <= 0 || in.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", in.Width, in.Height)
	}
	return nil
}

func previewOutput(data *ipc.PreviewData) PreviewOutput {
	out := PreviewOutput{
		Active:    data.Active,
		SessionID: data.SessionID,
		Width:     data.Width,
		Height:    data.Height,
	}
	if data.Placement != nil {
		out.X = data.Placement.X
		out.Y = data.Placement.Y
	}
	return out
}

func (s *Server) handleStart(_ context.Context, _ *mcpsdk.CallToolRequest, args SizeInput) (*mcpsdk.CallToolResult, PreviewOutput, error) {
	if err := validateSize(args); err != nil {
		return nil, PreviewOutput{}, err
	}
	data, err := s.daemon.Start(args.Width, args.Height)
	if err != nil {
		s.logger.Warn("preview_start failed", "width", args.Width, "height", args.Height, "error", err)
		return nil, PreviewOutput{}, err
	}
	out := previewOutput(data)
	s.logger.Info("preview started", "width", out.Width, "height", out.Height, "x", out.X, "y", out.Y)
	return textResult("Previewing %dx%d at %d,%d", out.Width, out.Height, out.X, out.Y), out, nil
}

func (s *Server) handleUpdate(_ context.Context, _ *mcpsdk.CallToolRequest, args SizeInput) (*mcpsdk.CallToolResult, PreviewOutput, error) {
	if err := validateSize(args); err != nil {
		return nil, PreviewOutput{}, err
	}
	data, err := s.daemon.Update(args.Width, args.Height)
	if err != nil {
		s.logger.Warn("preview_update failed", "width", args.Width, "height", args.Height, "error", err)
		return nil, PreviewOutput{}, err
	}
	out := previewOutput(data)
	return textResult("Previewing %dx%d at %d,%d", out.Width, out.Height, out.X, out.Y), out, nil
}

func (s *Server) handleStop(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.daemon.Stop(); err != nil {
		return nil, nil, err
	}
	return textResult("Preview hidden"), nil, nil
}

func (s *Server) handleApply(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.daemon.Apply(); err != nil {
		s.logger.Warn("preview_apply failed", "error", err)
		return nil, nil, err
	}
	s.logger.Info("previewed size applied")
	return textResult("Host window resized to the previewed size"), nil, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	out := StatusOutput{
		Active:     st.Active,
		HostWindow: st.HostWindow,
		Renderer:   st.Renderer,
		Indicator:  st.Indicator,
		Strategy:   st.Strategy,
		Phase:      st.Phase,
		Width:      st.Width,
		Height:     st.Height,
		Report:     st.Report,
	}
	return textResult("%s", strings.TrimRight(st.Report, "\n")), out, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, MonitorsOutput, error) {
	data, err := s.daemon.GetMonitors()
	if err != nil {
		return nil, MonitorsOutput{}, err
	}

	out := MonitorsOutput{Monitors: make([]Monitor, 0, len(data.Monitors))}
	var b strings.Builder
	for _, m := range data.Monitors {
		wa := m.WorkArea
		mon := Monitor{
			ID:       m.ID,
			Primary:  m.Primary,
			Scale:    m.Scale,
			X:        m.Bounds.X,
			Y:        m.Bounds.Y,
			Width:    m.Bounds.Width,
			Height:   m.Bounds.Height,
			WorkArea: fmt.Sprintf("%dx%d+%d+%d", wa.Width, wa.Height, wa.X, wa.Y),
		}
		out.Monitors = append(out.Monitors, mon)

		primary := ""
		if mon.Primary {
			primary = " (primary)"
		}
		fmt.Fprintf(&b, "%s%s: %dx%d+%d+%d scale %.2f, work area %s\n",
			mon.ID, primary, mon.Width, mon.Height, mon.X, mon.Y, mon.Scale, mon.WorkArea)
	}
	return textResult("%s", strings.TrimRight(b.String(), "\n")), out, nil
}

func (s *Server) handleSetRenderer(_ context.Context, _ *mcpsdk.CallToolRequest, args RendererInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.daemon.SetRenderer(args.Renderer); err != nil {
		return nil, nil, err
	}
	return textResult("Renderer set to %s", args.Renderer), nil, nil
}

func (s *Server) handleSetIndicator(_ context.Context, _ *mcpsdk.CallToolRequest, args IndicatorInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.daemon.SetIndicator(args.Indicator); err != nil {
		return nil, nil, err
	}
	return textResult("Indicator set to %s", args.Indicator), nil, nil
}

func (s *Server) handleSetStrategy(_ context.Context, _ *mcpsdk.CallToolRequest, args StrategyInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.daemon.SetStrategy(args.Strategy); err != nil {
		return nil, nil, err
	}
	return textResult("Placement strategy set to %s", args.Strategy), nil, nil
}

func (s *Server) handleAttach(_ context.Context, _ *mcpsdk.CallToolRequest, args AttachInput) (*mcpsdk.CallToolResult, AttachOutput, error) {
	data, err := s.daemon.Attach(args.WindowID)
	if err != nil {
		return nil, AttachOutput{}, err
	}
	out := AttachOutput{
		WindowID: data.WindowID,
		Title:    data.Title,
		X:        data.X,
		Y:        data.Y,
		Width:    data.Width,
		Height:   data.Height,
	}
	s.logger.Info("attached window", "window_id", out.WindowID, "title", out.Title)
	return textResult("Attached window 0x%x %q (%dx%d)", out.WindowID, out.Title, out.Width, out.Height), out, nil
}
