package cli

import (
	mcpadapter "github.com/policyguard/policyguard/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the PolicyGuard MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(flags))
	return cmd
}

func newMCPServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start PolicyGuard MCP server (stdio)",
		Long:  "Start the PolicyGuard MCP server using stdio transport. This allows AI assistants to run scans and read scan history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			s := mcpadapter.NewPolicyGuardMCPServer(mcpadapter.Deps{
				Runner:     a.gate,
				Loader:     a.loader,
				History:    a.history,
				Violations: a.violations,
				Runs:       a.runs,
			})
			return server.ServeStdio(s)
		},
	}
}
