// Package mcp exposes the layout daemon to MCP clients as a small set of
// typed tools. The server talks to the daemon over the same IPC socket the
// CLI uses; it holds no layout state of its own.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/layout"
)

const (
	ServerName    = "zonetile"
	ServerVersion = "0.1.0"
)

// daemonClient is the slice of the IPC client the tools consume.
type daemonClient interface {
	Status() (*layout.Status, error)
	Do(action, direction string, window uint32) error
	Rebalance() error
	SaveLayout(name string) error
	RestoreLayout(name string) error
	ListLayouts() ([]string, error)
}

var _ daemonClient = (*ipc.Client)(nil)

// Server is the MCP server for layout control.
type Server struct {
	mcpServer *mcpsdk.Server
	client    daemonClient
}

// NewServer creates an MCP server backed by the given IPC client. The
// daemon does not need to be running yet; each tool call dials fresh and
// reports a connection failure as a tool error.
func NewServer(client *ipc.Client) *Server {
	s := &Server{client: client}

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
		Name:        "get_layout",
		Description: "Get the current layout: every display, its regions, and the windows in each region in layout order, plus the focused window id.",
	}, s.handleGetLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "do_action",
		Description: "Perform a directional layout action. 'move' relocates the window one step in the direction, 'focus' shifts input focus, 'swap' exchanges the window with its neighbor. Acts on the focused window unless a window id is given.",
	}, s.handleDoAction)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "rebalance",
		Description: "Redistribute every window evenly across its display's regions, preserving layout order.",
	}, s.handleRebalance)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_layout",
		Description: "Save the current region membership under a name (default: 'default') so it can be restored later.",
	}, s.handleSaveLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_layout",
		Description: "Restore a previously saved layout by name (default: 'default'). Windows that no longer exist are dropped; new windows are adopted into default regions.",
	}, s.handleRestoreLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List the names of all saved layouts.",
	}, s.handleListLayouts)
}
