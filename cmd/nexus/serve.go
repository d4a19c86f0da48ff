package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	nexusserver "github.com/HendryAvila/nexus/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := nexusserver.New(a.svc())
			a.c.Logger().Info("serving MCP over stdio", "workspace", a.c.Settings().Workspace, "version", nexusserver.Version)

			// The stdio server handles SIGINT and SIGTERM itself.
			return server.ServeStdio(s)
		},
	}
}
