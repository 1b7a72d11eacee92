package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/policyguard/policyguard/internal/domain"
)

const (
	historyURI = "policyguard://history"
	lastRunURI = "policyguard://last-run"
)

// registerResources registers all PolicyGuard MCP resources on the given
// server.
func registerResources(s *server.MCPServer, deps Deps) {
	// 1. policyguard://history - last known scan history
	s.AddResource(
		mcplib.NewResource(
			historyURI,
			"Scan History",
			mcplib.WithResourceDescription("Last known scan history, newest first. Does not contact the service."),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(deps),
	)

	// 2. policyguard://last-run - last successful scan
	s.AddResource(
		mcplib.NewResource(
			lastRunURI,
			"Last Run",
			mcplib.WithResourceDescription("Inputs, summary and violations of the last successful scan"),
			mcplib.WithMIMEType("application/json"),
		),
		handleLastRunResource(deps),
	)
}

func handleHistoryResource(deps Deps) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		entries := deps.History.Entries()
		if entries == nil {
			entries = []domain.HistoryEntry{}
		}
		return jsonContents(historyURI, entries)
	}
}

var errNoRunRecorded = errors.New("no successful scan recorded yet")

func handleLastRunResource(deps Deps) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		rec, err := deps.Runs.Load()
		if err != nil {
			return nil, fmt.Errorf("loading last run: %w", err)
		}
		if rec == nil {
			return nil, errNoRunRecorded
		}
		return jsonContents(lastRunURI, rec)
	}
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
