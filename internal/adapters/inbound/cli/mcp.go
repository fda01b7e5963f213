package cli

import (
	mcpadapter "github.com/portlint/portlint/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the portlint MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	var dumpbinPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start portlint MCP server (stdio)",
		Long:  "Start the portlint MCP server using stdio transport. This lets AI coding assistants validate staged packages and query the policy catalog.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mcpadapter.NewPortlintMCPServer(dumpbinPath)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&dumpbinPath, "dumpbin", "", "Path to the binary-introspection tool")

	return cmd
}
