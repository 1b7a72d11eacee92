package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/policyguard/policyguard/internal/application"
	"github.com/policyguard/policyguard/internal/domain"
)

// Deps are the services the MCP tools and resources call into.
type Deps struct {
	Runner     application.Submitter
	Loader     domain.CandidateLoader
	History    *application.HistoryService
	Violations *application.ViolationService
	Runs       domain.RunStore
}

// NewPolicyGuardMCPServer creates a new MCP server with all PolicyGuard tools
// and resources registered.
func NewPolicyGuardMCPServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"policyguard",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, deps)
	registerResources(s, deps)

	return s
}
