// Package tools exposes the engine's operations as callable tools.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/ultima/pkg/tools/toolbox]: Tool type and ToolBox registry for listing and calling tools
//   - [github.com/germanamz/ultima/pkg/tools/mcpserver]: MCP server that serves a ToolBox over the Model Context Protocol
//
// mcpserver is a thin wrapper around the official MCP Go SDK
// (github.com/modelcontextprotocol/go-sdk).
package tools
