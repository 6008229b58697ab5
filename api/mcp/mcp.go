// Package mcp exposes the conversation classifier, campus mapper and
// knowledge base retrieval as MCP (Model Context Protocol) tools, so
// operators can inspect how a conversation would be routed.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/leadline/pkg/retrieval"
	"github.com/papercomputeco/leadline/pkg/utils"
)

type Config struct {
	// Retrieval backs the retrieve_context tool. Optional; the tool is not
	// registered without it.
	Retrieval *retrieval.Client

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the conversation tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "leadline",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	s.mcpServer = mcpServer
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	if c.Noop {
		// no tools when MCP capabilities are disabled
		return s, nil
	}

	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        classifyToolName,
		Description: classifyDescription,
	}, s.handleClassify)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        campusToolName,
		Description: campusDescription,
	}, s.handleInferCampus)

	if c.Retrieval != nil {
		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        retrieveToolName,
			Description: retrieveDescription,
		}, s.handleRetrieve)
	}

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// errorResult wraps msg as a tool-level error the client can show.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

// jsonResult returns output serialized as text alongside the structured
// content, for clients that only read text blocks.
func jsonResult(raw []byte) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(raw)},
		},
	}
}
