package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/policyguard/policyguard/internal/application"
	"github.com/policyguard/policyguard/internal/domain"
)

// registerTools registers all PolicyGuard MCP tools on the given server.
func registerTools(s *server.MCPServer, deps Deps) {
	// 1. policyguard_scan
	s.AddTool(
		mcplib.NewTool("policyguard_scan",
			mcplib.WithDescription("Upload a policy PDF and an employee CSV, run the compliance evaluation and return the summary and violations as JSON"),
			mcplib.WithString("policy",
				mcplib.Required(),
				mcplib.Description("Path to the policy document (PDF)"),
			),
			mcplib.WithString("dataset",
				mcplib.Required(),
				mcplib.Description("Path to the employee dataset (CSV)"),
			),
		),
		handleScan(deps),
	)

	// 2. policyguard_validate
	s.AddTool(
		mcplib.NewTool("policyguard_validate",
			mcplib.WithDescription("Check locally whether files would be accepted as policy or dataset, without contacting the service"),
			mcplib.WithString("policy", mcplib.Description("Path to a candidate policy document")),
			mcplib.WithString("dataset", mcplib.Description("Path to a candidate dataset")),
		),
		handleValidate(deps),
	)

	// 3. policyguard_history
	s.AddTool(
		mcplib.NewTool("policyguard_history",
			mcplib.WithDescription("Return past scans, newest first. Falls back to the last known list if the service is unreachable."),
			mcplib.WithBoolean("refresh", mcplib.Description("Fetch from the service first (default: true)")),
			mcplib.WithNumber("limit", mcplib.Description("Return at most this many entries")),
		),
		handleHistory(deps),
	)

	// 4. policyguard_trend
	s.AddTool(
		mcplib.NewTool("policyguard_trend",
			mcplib.WithDescription("Compare the violation counts of the two newest scans: up, down or flat"),
		),
		handleTrend(deps),
	)

	// 5. policyguard_violations
	s.AddTool(
		mcplib.NewTool("policyguard_violations",
			mcplib.WithDescription("List every violation the service has recorded across scans, newest first"),
			mcplib.WithString("record", mcplib.Description("Only return violations of this employee record")),
		),
		handleViolations(deps),
	)
}

func handleScan(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		policy, err := request.RequireString("policy")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		dataset, err := request.RequireString("dataset")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		policy, _ = filepath.Abs(policy)
		dataset, _ = filepath.Abs(dataset)

		req, err := application.PrepareRequest(deps.Loader, policy, dataset)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		res, err := deps.Runner.Submit(ctx, req)
		if err != nil {
			return errorResult(fmt.Sprintf("scan failed: %v", err)), nil
		}

		out := scanOutput{RunResult: res}
		if res.HistoryErr != nil {
			out.Warning = res.HistoryErr.Error()
		}
		return jsonResult(out)
	}
}

type scanOutput struct {
	*application.RunResult
	Warning string `json:"warning,omitempty"`
}

type validation struct {
	Path      string `json:"path"`
	Accepted  bool   `json:"accepted"`
	MediaType string `json:"media_type,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func handleValidate(deps Deps) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := request.GetArguments()
		policy, _ := args["policy"].(string)
		dataset, _ := args["dataset"].(string)
		if policy == "" && dataset == "" {
			return errorResult("nothing to validate: pass policy and/or dataset"), nil
		}

		out := make(map[string]validation)
		check := func(path string, kind domain.Kind) {
			if path == "" {
				return
			}
			v := validation{Path: path}
			c, err := deps.Loader.Load(path)
			if err == nil {
				v.MediaType = c.MediaType
				err = domain.ValidateCandidate(c, kind)
			}
			var ve *domain.ValidationError
			switch {
			case errors.As(err, &ve):
				v.Reason = ve.Reason
			case err != nil:
				v.Reason = err.Error()
			default:
				v.Accepted = true
			}
			out[string(kind)] = v
		}
		check(policy, domain.KindPolicy)
		check(dataset, domain.KindDataset)

		return jsonResult(out)
	}
}

func handleHistory(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := request.GetArguments()
		refresh := true
		if v, ok := args["refresh"].(bool); ok {
			refresh = v
		}

		var (
			entries []domain.HistoryEntry
			warning string
		)
		if refresh {
			var err error
			entries, err = deps.History.Refresh(ctx)
			if err != nil {
				warning = err.Error()
			}
		} else {
			entries = deps.History.Entries()
		}

		if limit, ok := args["limit"].(float64); ok && limit > 0 && int(limit) < len(entries) {
			entries = entries[:int(limit)]
		}
		if entries == nil {
			entries = []domain.HistoryEntry{}
		}

		return jsonResult(historyOutput{Entries: entries, Warning: warning})
	}
}

func handleViolations(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		record, _ := request.GetArguments()["record"].(string)
		violations, err := deps.Violations.List(ctx, record)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(violations)
	}
}

type historyOutput struct {
	Entries []domain.HistoryEntry `json:"entries"`
	Warning string                `json:"warning,omitempty"`
}

func handleTrend(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		_, err := deps.History.Refresh(ctx)
		trend, ok := deps.History.Trend()
		if !ok {
			return textResult("Not enough history to compute a trend."), nil
		}
		out := trendOutput{Trend: trend, Label: trend.Label()}
		if err != nil {
			out.Warning = err.Error()
		}
		return jsonResult(out)
	}
}

type trendOutput struct {
	domain.Trend
	Label   string `json:"label"`
	Warning string `json:"warning,omitempty"`
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
