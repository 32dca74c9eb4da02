package cli

import (
	mcpadapter "github.com/sitegate/sitegate/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the sitegate MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(root))
	return cmd
}

func newMCPServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start sitegate MCP server (stdio)",
		Long:  "Start the sitegate MCP server using stdio transport. Assistants can run gates, search the site and inspect the policy.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mcpadapter.NewSitegateMCPServer(root.path)
			return server.ServeStdio(s)
		},
	}
}
