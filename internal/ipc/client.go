package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/sizepeek/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with an optional payload and decodes the reply into out
// when out is non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Attach binds the preview to windowID, or to the focused window when it is 0.
func (c *Client) Attach(windowID uint32) (*AttachData, error) {
	var data AttachData
	if err := c.call(CommandAttach, AttachPayload{WindowID: windowID}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Start shows the preview at width x height.
func (c *Client) Start(width, height int) (*PreviewData, error) {
	var data PreviewData
	if err := c.call(CommandStart, SizePayload{Width: width, Height: height}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Update moves the preview to width x height, starting it if needed.
func (c *Client) Update(width, height int) (*PreviewData, error) {
	var data PreviewData
	if err := c.call(CommandUpdate, SizePayload{Width: width, Height: height}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Stop hides the preview.
func (c *Client) Stop() error {
	return c.call(CommandStop, nil, nil)
}

// Apply resizes the host window to the previewed size.
func (c *Client) Apply() error {
	return c.call(CommandApply, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	var monitors MonitorsData
	if err := c.call(CommandGetMonitors, nil, &monitors); err != nil {
		return nil, err
	}
	return &monitors, nil
}

// SetRenderer switches the renderer kind.
func (c *Client) SetRenderer(kind string) error {
	return c.call(CommandSetRenderer, KindPayload{Value: kind}, nil)
}

// SetIndicator switches the dimension indicator.
func (c *Client) SetIndicator(kind string) error {
	return c.call(CommandSetIndicator, KindPayload{Value: kind}, nil)
}

// SetStrategy switches the placement strategy.
func (c *Client) SetStrategy(kind string) error {
	return c.call(CommandSetStrategy, KindPayload{Value: kind}, nil)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// SaveSettings persists the current renderer and indicator.
func (c *Client) SaveSettings() error {
	return c.call(CommandSaveSettings, nil, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
