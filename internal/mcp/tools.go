package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/zonetile/internal/layout"
	"github.com/1broseidon/zonetile/internal/state"
)

func (s *Server) handleGetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args GetLayoutInput) (*mcpsdk.CallToolResult, GetLayoutOutput, error) {
	status, err := s.client.Status()
	if err != nil {
		return nil, GetLayoutOutput{}, fmt.Errorf("failed to get layout: %w", err)
	}
	return nil, GetLayoutOutput{
		Displays: status.Displays,
		Focused:  status.Focused,
		Dragging: status.Dragging,
	}, nil
}

func (s *Server) handleDoAction(_ context.Context, _ *mcpsdk.CallToolRequest, args DoActionInput) (*mcpsdk.CallToolResult, DoActionOutput, error) {
	// Validate here so a bad argument fails with a parse error instead of
	// a daemon round trip.
	if _, err := layout.ParseAction(args.Action); err != nil {
		return nil, DoActionOutput{}, err
	}
	if _, err := layout.ParseDirection(args.Direction); err != nil {
		return nil, DoActionOutput{}, err
	}

	if err := s.client.Do(args.Action, args.Direction, args.Window); err != nil {
		return nil, DoActionOutput{}, fmt.Errorf("failed to perform action: %w", err)
	}
	return nil, DoActionOutput{
		Action:    args.Action,
		Direction: args.Direction,
		Window:    args.Window,
	}, nil
}

func (s *Server) handleRebalance(_ context.Context, _ *mcpsdk.CallToolRequest, args RebalanceInput) (*mcpsdk.CallToolResult, RebalanceOutput, error) {
	if err := s.client.Rebalance(); err != nil {
		return nil, RebalanceOutput{}, fmt.Errorf("failed to rebalance: %w", err)
	}
	return nil, RebalanceOutput{Rebalanced: true}, nil
}

func (s *Server) handleSaveLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args SaveLayoutInput) (*mcpsdk.CallToolResult, SaveLayoutOutput, error) {
	name := args.Name
	if name == "" {
		name = state.DefaultKey
	}
	if err := s.client.SaveLayout(name); err != nil {
		return nil, SaveLayoutOutput{}, fmt.Errorf("failed to save layout: %w", err)
	}
	return nil, SaveLayoutOutput{Layout: name}, nil
}

func (s *Server) handleRestoreLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args RestoreLayoutInput) (*mcpsdk.CallToolResult, RestoreLayoutOutput, error) {
	name := args.Name
	if name == "" {
		name = state.DefaultKey
	}
	if err := s.client.RestoreLayout(name); err != nil {
		return nil, RestoreLayoutOutput{}, fmt.Errorf("failed to restore layout: %w", err)
	}
	return nil, RestoreLayoutOutput{Layout: name}, nil
}

func (s *Server) handleListLayouts(_ context.Context, _ *mcpsdk.CallToolRequest, args ListLayoutsInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	layouts, err := s.client.ListLayouts()
	if err != nil {
		return nil, ListLayoutsOutput{}, fmt.Errorf("failed to list layouts: %w", err)
	}
	return nil, ListLayoutsOutput{Layouts: layouts}, nil
}
