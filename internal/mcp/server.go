package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"sentra/backend/internal/services"
	"sentra/backend/pkg/models"
)

// Server exposes the audit operations as MCP tools so agent tooling can
// audit its own workflow steps.
type Server struct {
	mcpServer    *server.MCPServer
	auditService *services.AuditService
}

func NewServer(auditService *services.AuditService) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Sentra Workflow Auditor",
			"1.0.0",
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
		auditService: auditService,
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
			"analyze_step",
			mcp.WithDescription("Assess the risk of a single workflow step"),
			mcp.WithString("step", mcp.Required(), mcp.Description("The workflow step to assess")),
			mcp.WithBoolean("use_mock", mcp.Description("Answer from the static table instead of the model backend")),
		),
		s.handleAnalyzeStep,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"fix_step",
			mcp.WithDescription("Rewrite a workflow step to lower its risk"),
			mcp.WithString("step", mcp.Required(), mcp.Description("The workflow step to rewrite")),
			mcp.WithString("risk", mcp.Description("The step's current risk level")),
			mcp.WithString("recommendation", mcp.Description("The step's current recommendation")),
			mcp.WithString("reason", mcp.Description("The rationale behind the current assessment")),
			mcp.WithBoolean("use_mock", mcp.Description("Answer from the static table instead of the model backend")),
		),
		s.handleFixStep,
	)
}

func (s *Server) handleAnalyzeStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	// Same blank-step rule as the REST surface: a whitespace-only step would
	// be skipped by AnalyzeWorkflow and leave nothing to return.
	step, ok := args["step"].(string)
	if !ok || strings.TrimSpace(step) == "" {
		return mcp.NewToolResultError("Missing required parameter: step"), nil
	}
	useMock, _ := args["use_mock"].(bool)

	results, err := s.auditService.AnalyzeWorkflow(ctx, models.WorkflowRequest{
		Steps:   []string{step},
		UseMock: useMock,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to analyze step: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(results[0])
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleFixStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	step, ok := args["step"].(string)
	if !ok || strings.TrimSpace(step) == "" {
		return mcp.NewToolResultError("Missing required parameter: step"), nil
	}
	risk, _ := args["risk"].(string)
	recommendation, _ := args["recommendation"].(string)
	reason, _ := args["reason"].(string)
	useMock, _ := args["use_mock"].(bool)

	result, err := s.auditService.FixStep(ctx, models.FixStepRequest{
		Step:           step,
		Risk:           risk,
		Recommendation: recommendation,
		Reason:         reason,
		UseMock:        useMock,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fix step: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
