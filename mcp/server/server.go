// Package server serves the construction tools over MCP.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mark3labs/assetkit-go/client"
	"github.com/mark3labs/assetkit-go/keypair"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Server wraps an MCP server whose tools compose, sign and encode
// transactions with the handles in a keyring.
type Server struct {
	mcpServer *mcpserver.MCPServer
	client    *client.Client
	keys      *keypair.Keyring
	config    *Config
	logger    *slog.Logger
	tools     []mcpproto.Tool
}

// NewServer creates a Server and registers every construction tool.
func NewServer(c *client.Client, keys *keypair.Keyring, config *Config, logger *slog.Logger) (*Server, error) {
	if c == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if keys == nil {
		return nil, fmt.Errorf("keyring cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcpServer: mcpserver.NewMCPServer(config.Name, config.Version, mcpserver.WithToolCapabilities(false)),
		client:    c,
		keys:      keys,
		config:    config,
		logger:    logger,
	}
	s.registerTools()
	return s, nil
}

func (s *Server) addTool(tool mcpproto.Tool, handler mcpserver.ToolHandlerFunc) {
	s.tools = append(s.tools, tool)
	s.mcpServer.AddTool(tool, handler)
}

// Tools returns the registered tool definitions in registration order.
func (s *Server) Tools() []mcpproto.Tool {
	out := make([]mcpproto.Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

// Handler returns the streamable HTTP handler of the MCP server.
func (s *Server) Handler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcpServer)
}

// Start serves MCP over HTTP on addr.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting MCP server", "addr", addr, "tools", len(s.tools), "signers", s.keys.Len())
	return http.ListenAndServe(addr, s.Handler())
}

// GetMCPServer returns the underlying MCP server (for advanced usage)
func (s *Server) GetMCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}
