// Package mcp exposes impactscope's engine as MCP tools, so an AI
// agent can query test impact without shelling out to the CLI.
// Grounded on `hargabyte-cortex/internal/mcp`'s own Server/New/
// registerTool structure, rebuilt over internal/engine instead of a
// scan-and-store graph.
package mcp

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/scopeforge/impactscope/internal/config"
	"github.com/scopeforge/impactscope/internal/engine"
)

// Server wraps the MCP server with impactscope-specific tools bound to
// one open Engine.
type Server struct {
	mcpServer    *server.MCPServer
	engine       *engine.Engine
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration.
type Config struct {
	SolutionPath string
	Tools        []string // which tools to expose (empty = all)
	Timeout      time.Duration
}

// DefaultTools is the default set of tools to expose.
var DefaultTools = []string{
	"ix_analyze_solution", "ix_find_tests", "ix_coverage_map",
	"ix_analyze_diff", "ix_select_tests", "ix_trace", "ix_cache_status",
}

// AllTools lists every available tool; currently identical to
// DefaultTools since impactscope's tool surface has no optional extras.
var AllTools = DefaultTools

// New opens the engine for solutionPath and registers the requested
// tools.
func New(ctx context.Context, cfg Config) (*Server, error) {
	appCfg, err := config.Load(".")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	eng, err := engine.Open(ctx, cfg.SolutionPath, appCfg)
	if err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}

	mcpServer := server.NewMCPServer(
		"impactscope",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		engine:       eng,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}
	for _, name := range toolsToRegister {
		if err := s.registerTool(name); err != nil {
			eng.Close()
			return nil, fmt.Errorf("register tool %s: %w", name, err)
		}
		s.tools[name] = true
	}

	return s, nil
}

func (s *Server) registerTool(name string) error {
	switch name {
	case "ix_analyze_solution":
		return s.registerAnalyzeSolutionTool()
	case "ix_find_tests":
		return s.registerFindTestsTool()
	case "ix_coverage_map":
		return s.registerCoverageMapTool()
	case "ix_analyze_diff":
		return s.registerAnalyzeDiffTool()
	case "ix_select_tests":
		return s.registerSelectTestsTool()
	case "ix_trace":
		return s.registerTraceTool()
	case "ix_cache_status":
		return s.registerCacheStatusTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport.
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()
		if elapsed > s.timeout {
			s.Close()
			os.Exit(0)
		}
	}
}

func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Close releases the underlying engine.
func (s *Server) Close() error {
	if s.engine != nil {
		return s.engine.Close()
	}
	return nil
}

// ListTools returns every registered tool name.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.tools))
	for t := range s.tools {
		out = append(out, t)
	}
	return out
}

// toolResultError builds a standard MCP error result from err.
func toolResultError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}
