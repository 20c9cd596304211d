package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/zonetile/internal/layout"
	"github.com/1broseidon/zonetile/internal/runtimepath"
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

// Ping checks if the daemon is responding and returns its uptime.
func (c *Client) Ping() (*PingData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandPing})
	if err != nil {
		return nil, err
	}

	var data PingData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse ping data: %w", err)
	}

	return &data, nil
}

// Status retrieves the full layout state.
func (c *Client) Status() (*layout.Status, error) {
	resp, err := c.sendRequest(&Request{Command: CommandStatus})
	if err != nil {
		return nil, err
	}

	var st layout.Status
	if err := json.Unmarshal(resp.Data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &st, nil
}

// Do performs a directional layout action. Window 0 targets the focused
// window.
func (c *Client) Do(action, direction string, window uint32) error {
	payload, err := json.Marshal(DoPayload{
		Action:    action,
		Direction: direction,
		Window:    window,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal do payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandDo, Payload: payload})
	return err
}

// Rebalance redistributes windows across each display's regions.
func (c *Client) Rebalance() error {
	_, err := c.sendRequest(&Request{Command: CommandRebalance})
	return err
}

// SaveLayout persists the current layout under name ("" = default).
func (c *Client) SaveLayout(name string) error {
	payload, err := json.Marshal(LayoutPayload{Name: name})
	if err != nil {
		return fmt.Errorf("failed to marshal save payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandSave, Payload: payload})
	return err
}

// RestoreLayout applies a stored layout ("" = default).
func (c *Client) RestoreLayout(name string) error {
	payload, err := json.Marshal(LayoutPayload{Name: name})
	if err != nil {
		return fmt.Errorf("failed to marshal restore payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandRestore, Payload: payload})
	return err
}

// ListLayouts retrieves the stored layout names.
func (c *Client) ListLayouts() ([]string, error) {
	resp, err := c.sendRequest(&Request{Command: CommandLayouts})
	if err != nil {
		return nil, err
	}

	var data LayoutsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse layouts data: %w", err)
	}

	return data.Layouts, nil
}

// Reload asks the daemon to re-read its configuration.
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}
