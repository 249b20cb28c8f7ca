package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sharyyoru/medical-crm/internal/repository"
	"github.com/sharyyoru/medical-crm/internal/services"
)

const searchLimit = 20

// Server exposes read-only CRM views as MCP tools for the staff assistant.
type Server struct {
	mcpServer *server.MCPServer
	repo      repository.Repository
	workflows *services.WorkflowService
}

// NewServer creates the MCP tool server.
func NewServer(repo repository.Repository, workflows *services.WorkflowService) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Medical CRM",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		repo:      repo,
		workflows: workflows,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"search_patients",
			mcp.WithDescription("Search patients by name or email"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Name or email fragment to search for")),
		),
		s.handleSearchPatients,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_workflows",
			mcp.WithDescription("List the configured stage-change automations"),
		),
		s.handleListWorkflows,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"upcoming_appointments",
			mcp.WithDescription("List appointments starting within the next N days"),
			mcp.WithNumber("days", mcp.Description("Window size in days (default 7)")),
		),
		s.handleUpcomingAppointments,
	)
}

func (s *Server) handleSearchPatients(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("Missing required parameter: query"), nil
	}

	patients, err := s.repo.ListPatients(ctx, query, searchLimit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search patients: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(patients)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries, err := s.workflows.ListSummaries(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list workflows: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(summaries)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleUpcomingAppointments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := 7.0
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		if d, ok := args["days"].(float64); ok && d > 0 {
			days = d
		}
	}

	from := time.Now()
	to := from.Add(time.Duration(days) * 24 * time.Hour)
	appointments, err := s.repo.ListAppointments(ctx, from, to)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list appointments: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(appointments)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MountHTTPHandlers wires the SSE transport for /mcp onto the mux.
func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
