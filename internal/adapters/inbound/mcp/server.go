package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewSitegateMCPServer creates a new MCP server with all sitegate tools and
// resources registered. The projectPath is the root of the site source tree.
func NewSitegateMCPServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"sitegate",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath)
	registerResources(s, projectPath)

	return s
}
