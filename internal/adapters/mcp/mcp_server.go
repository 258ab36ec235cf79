// Package mcp exposes the Coordinator's command/query surface over the
// Model Context Protocol, standing in for "an external UI shell issues
// commands through the Coordinator" the way the CLI and TUI shells do
// in-process.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kodeflow/tempod/internal/coordinator"
	"github.com/kodeflow/tempod/internal/ports"
)

// Server implements the MCP server using mark3labs/mcp-go, adapting its
// tool calls onto *coordinator.Coordinator.
type Server struct {
	co     *coordinator.Coordinator
	server *server.MCPServer
	cancel context.CancelFunc
}

// NewServer wires an MCP server over co. Call Start to serve over stdio.
func NewServer(co *coordinator.Coordinator) *Server {
	s := &Server{co: co}
	s.server = server.NewMCPServer(
		"time_tracker",
		"1.0.0",
		server.WithLogging(),
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.server.AddTool(mcp.NewTool(
		"get_current_activity",
		mcp.WithDescription("Get the in-progress activity segment and the current pomodoro phase"),
	), s.handleGetCurrentActivity)

	s.server.AddTool(mcp.NewTool(
		"start_pomodoro",
		mcp.WithDescription("Start a new pomodoro work session"),
		mcp.WithString("project_id", mcp.Description("Optional project id to associate with the session")),
	), s.handleStartPomodoro)

	s.server.AddTool(mcp.NewTool(
		"pause_pomodoro",
		mcp.WithDescription("Pause the active pomodoro phase"),
	), s.handlePausePomodoro)

	s.server.AddTool(mcp.NewTool(
		"resume_pomodoro",
		mcp.WithDescription("Resume a paused pomodoro phase"),
	), s.handleResumePomodoro)

	s.server.AddTool(mcp.NewTool(
		"stop_pomodoro",
		mcp.WithDescription("Stop the active pomodoro session early"),
	), s.handleStopPomodoro)

	s.server.AddTool(mcp.NewTool(
		"list_projects",
		mcp.WithDescription("List projects"),
		mcp.WithString("include_archived", mcp.Description("Include archived projects: true or false")),
	), s.handleListProjects)

	s.server.AddTool(mcp.NewTool(
		"create_project",
		mcp.WithDescription("Create a new project"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("description", mcp.Description("Project description")),
		mcp.WithString("color", mcp.Description("Project color, e.g. a hex code")),
	), s.handleCreateProject)

	s.server.AddTool(mcp.NewTool(
		"get_productivity_stats",
		mcp.WithDescription("Get aggregated productivity stats over a date range"),
		mcp.WithString("start", mcp.Required(), mcp.Description("RFC3339 start time")),
		mcp.WithString("end", mcp.Required(), mcp.Description("RFC3339 end time")),
	), s.handleGetProductivityStats)
}

// Start serves the MCP protocol over stdio until the process is killed.
func (s *Server) Start(ctx context.Context) error {
	_, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return server.ServeStdio(s.server)
}

// Stop releases Start's context; the underlying stdio transport exits when
// stdin closes.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *Server) handleGetCurrentActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	activity, err := s.co.GetCurrentActivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current activity: %w", err)
	}
	snap, err := s.co.GetCurrentPomodoro(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current pomodoro: %w", err)
	}

	result := map[string]any{
		"activity": activity,
		"pomodoro": map[string]any{
			"state":     snap.State.String(),
			"session":   snap.Session,
			"remaining": snap.Remaining.String(),
		},
	}
	return textResult(result)
}

func (s *Server) handleStartPomodoro(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var projectID *int64
	if raw := request.GetString("project_id", ""); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return mcp.NewToolResultError("project_id must be an integer: " + err.Error()), nil
		}
		projectID = &id
	}
	if err := s.co.StartPomodoro(context.Background(), projectID, nil); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start pomodoro: %v", err)), nil
	}
	return textResult(map[string]any{"ok": true})
}

func (s *Server) handlePausePomodoro(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.co.PausePomodoro(context.Background()); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to pause pomodoro: %v", err)), nil
	}
	return textResult(map[string]any{"ok": true})
}

func (s *Server) handleResumePomodoro(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.co.ResumePomodoro(context.Background()); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to resume pomodoro: %v", err)), nil
	}
	return textResult(map[string]any{"ok": true})
}

func (s *Server) handleStopPomodoro(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.co.StopPomodoro(context.Background()); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to stop pomodoro: %v", err)), nil
	}
	return textResult(map[string]any{"ok": true})
}

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	includeArchived, err := strconv.ParseBool(request.GetString("include_archived", "false"))
	if err != nil {
		return mcp.NewToolResultError("include_archived must be true or false: " + err.Error()), nil
	}
	projects, err := s.co.GetProjects(ctx, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return textResult(projects)
}

func (s *Server) handleCreateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required: " + err.Error()), nil
	}
	description := request.GetString("description", "")
	color := request.GetString("color", "")

	p, err := s.co.CreateProject(ctx, name, description, color)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create project: %v", err)), nil
	}
	return textResult(p)
}

func (s *Server) handleGetProductivityStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := request.RequireString("start")
	if err != nil {
		return mcp.NewToolResultError("start is required: " + err.Error()), nil
	}
	end, err := request.RequireString("end")
	if err != nil {
		return mcp.NewToolResultError("end is required: " + err.Error()), nil
	}

	r, err := parseRange(start, end)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	stats, err := s.co.GetProductivityStats(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to get productivity stats: %w", err)
	}
	return textResult(stats)
}

func parseRange(start, end string) (ports.TimeRange, error) {
	startTime, err := parseTime(start)
	if err != nil {
		return ports.TimeRange{}, fmt.Errorf("invalid start: %w", err)
	}
	endTime, err := parseTime(end)
	if err != nil {
		return ports.TimeRange{}, fmt.Errorf("invalid end: %w", err)
	}
	return ports.TimeRange{Start: startTime, End: endTime}, nil
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func textResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
