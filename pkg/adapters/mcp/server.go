package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/statesim"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps a simulation Engine and exposes it as an MCP Server.
// The engine mutates in place, so all tool handlers share one mutex.
type Server struct {
	mu        sync.Mutex
	engine    *statesim.Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance around a loaded engine.
func NewServer(engine *statesim.Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("statesim-mcp", strings.TrimSpace(statesim.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: machine_state
	s.mcpServer.AddTool(mcp.NewTool("machine_state",
		mcp.WithDescription("Get the current machine state, context, available events and history."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.snapshotResult(), nil
	})

	// TOOL: machine_send
	s.mcpServer.AddTool(mcp.NewTool("machine_send",
		mcp.WithDescription("Send an event to the machine with an optional JSON input payload."),
		mcp.WithString("event", mcp.Required(), mcp.Description("Event name to apply")),
		mcp.WithString("input", mcp.Description("JSON value passed to the transition action as 'input' (optional)")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		event, err := request.RequireString("event")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var input any
		if raw := request.GetString("input", ""); raw != "" {
			if err := json.Unmarshal([]byte(raw), &input); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid input payload: %v", err)), nil
			}
		}

		s.mu.Lock()
		err = s.engine.Send(event, input)
		s.mu.Unlock()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("send failed: %v", err)), nil
		}
		return s.snapshotResult(), nil
	})

	// TOOL: machine_undo
	s.mcpServer.AddTool(mcp.NewTool("machine_undo",
		mcp.WithDescription("Undo the most recent transition."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.mu.Lock()
		s.engine.Undo()
		s.mu.Unlock()
		return s.snapshotResult(), nil
	})

	// TOOL: machine_reset
	s.mcpServer.AddTool(mcp.NewTool("machine_reset",
		mcp.WithDescription("Reset the machine to its initial state."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.mu.Lock()
		s.engine.Reset()
		s.mu.Unlock()
		return s.snapshotResult(), nil
	})

	// TOOL: machine_graph
	s.mcpServer.AddTool(mcp.NewTool("machine_graph",
		mcp.WithDescription("Get the Mermaid diagram source for the machine with current highlights."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.mu.Lock()
		snap := s.engine.State()
		s.mu.Unlock()
		return mcp.NewToolResultText(snap.DiagramSource), nil
	})
}

func (s *Server) snapshotResult() *mcp.CallToolResult {
	s.mu.Lock()
	snap := s.engine.State()
	s.mu.Unlock()

	jsonBytes, err := json.Marshal(snap)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal failed: %v", err))
	}
	return mcp.NewToolResultText(string(jsonBytes))
}

func (s *Server) registerResources() {
	// EXPOSE: statesim://state
	s.mcpServer.AddResource(mcp.NewResource("statesim://state", "Current Machine Snapshot",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		s.mu.Lock()
		snap := s.engine.State()
		s.mu.Unlock()

		jsonBytes, err := json.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "statesim://state",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: statesim://diagram
	s.mcpServer.AddResource(mcp.NewResource("statesim://diagram", "Mermaid Diagram Source",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		s.mu.Lock()
		snap := s.engine.State()
		s.mu.Unlock()

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "statesim://diagram",
				MIMEType: "text/plain",
				Text:     snap.DiagramSource,
			},
		}, nil
	})
}
