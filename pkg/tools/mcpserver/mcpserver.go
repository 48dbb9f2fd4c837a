// Package mcpserver serves a toolbox over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/germanamz/ultima/pkg/tools/toolbox"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// MCPServer exposes tools to MCP clients.
type MCPServer struct {
	server *mcp.Server
	log    *zap.Logger
}

// New creates a server that identifies itself with name and version.
func New(name, version string, log *zap.Logger) *MCPServer {
	if log == nil {
		log = zap.NewNop()
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	return &MCPServer{server: server, log: log}
}

// Register adds tools to the server.
func (s *MCPServer) Register(tools ...toolbox.Tool) {
	for _, t := range tools {
		s.server.AddTool(toSDKTool(t), s.toSDKHandler(t))
	}
}

// RegisterToolBox adds every tool of tb.
func (s *MCPServer) RegisterToolBox(tb *toolbox.ToolBox) {
	s.Register(tb.Tools()...)
}

// Serve reads requests from in and writes responses to out until ctx is
// cancelled or the transport closes.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	transport := &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}

	return s.run(ctx, transport)
}

// ServeStdio serves over the process's stdin and stdout.
func (s *MCPServer) ServeStdio(ctx context.Context) error {
	return s.run(ctx, &mcp.StdioTransport{})
}

func (s *MCPServer) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

func toSDKTool(t toolbox.Tool) *mcp.Tool {
	schema := t.InputSchema
	if schema == nil {
		schema = json.RawMessage(`{"type":"object"}`)
	}

	return &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: schema,
	}
}

func (s *MCPServer) toSDKHandler(t toolbox.Tool) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if args == nil {
			args = json.RawMessage("{}")
		}

		start := time.Now()
		result, err := t.Handler(ctx, args)
		s.log.Info("tool call",
			zap.String("tool", t.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)

		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result}},
		}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
