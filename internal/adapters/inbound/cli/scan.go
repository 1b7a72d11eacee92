package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/policyguard/policyguard/internal/adapters/outbound/tui"
	"github.com/policyguard/policyguard/internal/application"
)

func newScanCmd(flags *globalFlags) *cobra.Command {
	var (
		policyPath  string
		datasetPath string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a compliance scan",
		Long:  "Upload a policy PDF and an employee CSV, evaluate the dataset against the policy's rules and print the compliance score.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			paths, err := absPaths(policyPath, datasetPath)
			if err != nil {
				return err
			}
			req, err := application.PrepareRequest(a.loader, paths[0], paths[1])
			if err != nil {
				return err
			}

			res, err := a.gate.Submit(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			return renderResult(cmd, a, res, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&policyPath, "policy", "", "Policy document (PDF)")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Employee dataset (CSV)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")
	_ = cmd.MarkFlagRequired("policy")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func renderResult(cmd *cobra.Command, a *app, res *application.RunResult, jsonOutput bool) error {
	warnHistory(cmd, res.HistoryErr)
	if jsonOutput {
		return renderJSON(cmd, res)
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, tui.RenderSummary(res.Summary, res.Violations))
	fmt.Fprintln(out)
	fmt.Fprint(out, tui.RenderHistory(a.history.Entries()))
	fmt.Fprintln(out)
	fmt.Fprint(out, tui.RenderTrend(a.history.Trend()))
	return nil
}
