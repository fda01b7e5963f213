package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewPortlintMCPServer creates a new MCP server with the portlint tools
// registered. dumpbinPath configures the binary-introspection tool; when
// empty, the checks that need it are skipped.
func NewPortlintMCPServer(dumpbinPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"portlint",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, dumpbinPath)

	return s
}
