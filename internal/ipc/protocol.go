package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing      CommandType = "PING"
	CommandStatus    CommandType = "STATUS"
	CommandDo        CommandType = "DO"
	CommandRebalance CommandType = "REBALANCE"
	CommandSave      CommandType = "SAVE"
	CommandRestore   CommandType = "RESTORE"
	CommandLayouts   CommandType = "LAYOUTS"
	CommandReload    CommandType = "RELOAD"
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

// PingData is returned by PING.
type PingData struct {
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// DoPayload carries a directional action. Window 0 targets the window the
// host currently reports focused.
type DoPayload struct {
	Action    string `json:"action"`
	Direction string `json:"direction"`
	Window    uint32 `json:"window,omitempty"`
}

// LayoutPayload names a stored layout for SAVE and RESTORE.
type LayoutPayload struct {
	Name string `json:"name,omitempty"`
}

// LayoutsData lists the stored layout keys.
type LayoutsData struct {
	Layouts []string `json:"layouts"`
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
