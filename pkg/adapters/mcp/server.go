package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/internal/presentation/graph"
	"github.com/aretw0/lattice/internal/validator"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/registry"
)

// Engine is the subset of *lattice.Engine exposed as MCP tools.
type Engine interface {
	Registry() *registry.Registry
	ExtractTexts(ctx context.Context, source string) ([]string, error)
	LoadIntoTree(ctx context.Context, source string, opts domain.ImportOptions) (*domain.Tree, error)
	Convert(ctx context.Context, source, destination string, opts domain.ImportOptions) (*domain.Tree, error)
}

var _ Engine = (*lattice.Engine)(nil)

// Server wraps the Lattice Engine and exposes it as an MCP Server.
// Tools take file paths local to the server process.
type Server struct {
	engine    Engine
	importOpt domain.ImportOptions
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithImportOptions sets the options used by the convert tool.
func WithImportOptions(opts domain.ImportOptions) Option {
	return func(s *Server) {
		s.importOpt = opts
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		importOpt: domain.DefaultImportOptions(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("lattice-mcp", strings.TrimSpace(lattice.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_formats",
		mcp.WithDescription("List the board formats and file extensions lattice can read and write."),
	), s.handleFormats)

	s.mcpServer.AddTool(mcp.NewTool("extract_texts",
		mcp.WithDescription("List every translatable text of a board set, in traversal order."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the board set (.gridset, .sps, .spb)")),
	), s.handleExtract)

	s.mcpServer.AddTool(mcp.NewTool("validate_board",
		mcp.WithDescription("Report duplicate ids, grid conflicts, dangling navigation and unreachable pages."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the board set")),
	), s.handleValidate)

	s.mcpServer.AddTool(mcp.NewTool("navigation_graph",
		mcp.WithDescription("Render the page navigation graph as a Mermaid flowchart."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the board set")),
	), s.handleGraph)

	s.mcpServer.AddTool(mcp.NewTool("convert_board",
		mcp.WithDescription("Convert a board set to the format implied by the destination extension."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Path of the board set to read")),
		mcp.WithString("destination", mcp.Required(), mcp.Description("Path to write")),
	), s.handleConvert)
}

func (s *Server) formats() []map[string]any {
	reg := s.engine.Registry()
	var out []map[string]any
	for _, name := range reg.Formats() {
		if conv, err := reg.ForFormat(name); err == nil {
			out = append(out, map[string]any{"format": name, "extensions": conv.Extensions()})
		}
	}
	return out
}

func (s *Server) handleFormats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.formats())
}

func (s *Server) handleExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	texts, err := s.engine.ExtractTexts(ctx, path)
	if err != nil {
		return s.toolError("extract failed", err), nil
	}
	return jsonResult(texts)
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tree, err := s.engine.LoadIntoTree(ctx, path, domain.ImportOptions{})
	if err != nil {
		return s.toolError("load failed", err), nil
	}
	report := validator.Validate(tree)
	return jsonResult(map[string]any{
		"valid":  report.OK(),
		"issues": report.Issues,
	})
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tree, err := s.engine.LoadIntoTree(ctx, path, domain.ImportOptions{})
	if err != nil {
		return s.toolError("load failed", err), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(tree, nil)), nil
}

func (s *Server) handleConvert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dest, err := request.RequireString("destination")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tree, err := s.engine.Convert(ctx, source, dest, s.importOpt)
	if err != nil {
		return s.toolError("convert failed", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("wrote %s (%d pages, %d buttons)", dest, len(tree.Pages), tree.CountButtons())), nil
}

func (s *Server) toolError(msg string, err error) *mcp.CallToolResult {
	s.logger.Warn("MCP tool failed", "msg", msg, "err", err)
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", msg, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("lattice://formats", "Supported board formats",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.formats())
		if err != nil {
			return nil, fmt.Errorf("failed to encode formats: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "lattice://formats",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
