// Package mcp exposes the browser facade as a web_* tool surface for MCP
// clients over stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"webdeck/internal/browser"
	"webdeck/internal/config"
	"webdeck/internal/journal"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Tool is one web_* operation. InputSchema returns a JSON schema document;
// Execute returns either a rendered page (string) or a JSON-serializable
// payload.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// Server wires the MCP runtime, the Rod browser facade, and the activity
// journal. The browser is not started here; the first tool that needs a
// live page starts it.
type Server struct {
	cfg       config.Config
	browser   *browser.Browser
	journal   *journal.Journal
	tools     map[string]Tool
	mcpServer *mcpserver.MCPServer
}

// NewServer constructs the webdeck MCP server and registers all tools.
func NewServer(cfg config.Config, b *browser.Browser, jr *journal.Journal) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		browser: b,
		journal: jr,
		tools:   make(map[string]Tool),
		mcpServer: mcpserver.NewMCPServer(
			cfg.Server.Name,
			cfg.Server.Version,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithLogging(),
			mcpserver.WithRecovery(),
		),
	}
	s.registerTools()
	return s, nil
}

// Start serves MCP over stdio, the transport clients default to.
func (s *Server) Start(ctx context.Context) error {
	return mcpserver.NewStdioServer(s.mcpServer).Listen(ctx, os.Stdin, os.Stdout)
}

// StartSSE serves the same tool surface over HTTP server-sent events and
// shuts down cleanly when ctx is canceled.
func (s *Server) StartSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sse := mcpserver.NewSSEServer(s.mcpServer, mcpserver.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sse.SSEHandler())
	mux.Handle("/message", sse.MessageHandler())
	srv := &http.Server{Addr: addr, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		defer close(serveErr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		log.Printf("SSE server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// ExecuteTool dispatches to a registered tool without going through a
// transport. Tests and embedders use this path.
func (s *Server) ExecuteTool(name string, args map[string]interface{}) (interface{}, error) {
	tool, ok := s.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool.Execute(context.Background(), args)
}

// registerTools installs the seven page-action tools, which mutate the page
// and return the re-rendered view, and the three read-only session views.
func (s *Server) registerTools() {
	for _, tool := range []Tool{
		&GotoTool{browser: s.browser},
		&SearchTool{browser: s.browser},
		&ClickTool{browser: s.browser},
		&FillTool{browser: s.browser},
		&SelectOptionTool{browser: s.browser},
		&ScrollTool{browser: s.browser},
		&BackTool{browser: s.browser},
		&PageStateTool{browser: s.browser},
		&ReadContentTool{browser: s.browser},
		&JournalTool{journal: s.journal},
	} {
		s.addTool(tool)
	}
}

func (s *Server) addTool(tool Tool) {
	s.tools[tool.Name()] = tool

	schema, err := json.Marshal(tool.InputSchema())
	if err != nil {
		schema = []byte(`{"type":"object"}`)
	}
	s.mcpServer.AddTool(
		mcp.NewToolWithRawSchema(tool.Name(), tool.Description(), schema),
		s.wrapTool(tool),
	)
}

// wrapTool adapts a Tool to the mcp-go handler signature. String results are
// rendered pages and pass through verbatim; everything else is serialized to
// JSON so the client always gets exactly one text content block. Tool errors
// become IsError results rather than protocol errors.
func (s *Server) wrapTool(tool Tool) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]interface{}{}
		}

		result, err := tool.Execute(ctx, args)
		if err != nil {
			return textResult(fmt.Sprintf("tool %s failed: %v", tool.Name(), err), true), nil
		}
		if page, ok := result.(string); ok {
			return textResult(page, false), nil
		}
		return textResult(string(marshalToolPayload(tool.Name(), result)), false), nil
	}
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
		IsError: isError,
	}
}

// marshalToolPayload encodes a tool result, degrading to an error payload
// that is itself guaranteed to encode.
func marshalToolPayload(toolName string, result interface{}) []byte {
	payload, err := json.Marshal(result)
	if err == nil {
		return payload
	}

	fallback, ferr := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   fmt.Sprintf("tool %s result not serializable: %v", toolName, err),
	})
	if ferr != nil {
		return []byte(fmt.Sprintf(`{"success":false,"error":"tool %s result encoding failed"}`, toolName))
	}
	return fallback
}
