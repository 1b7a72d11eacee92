package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/policyguard/policyguard/internal/adapters/outbound/tui"
	"github.com/policyguard/policyguard/internal/domain"
)

type trendJSON struct {
	Available bool `json:"available"`
	domain.Trend
	Label string `json:"label"`
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	var (
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past scans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			entries, err := a.history.Refresh(cmd.Context())
			warnHistory(cmd, err)
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			if jsonOutput {
				return renderJSON(cmd, entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output history as JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many entries (0 = all)")
	return cmd
}

func newTrendCmd(flags *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Compare the violations of the two newest scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			_, err = a.history.Refresh(cmd.Context())
			warnHistory(cmd, err)
			trend, ok := a.history.Trend()

			if jsonOutput {
				return renderJSON(cmd, trendJSON{Available: ok, Trend: trend, Label: trend.Label()})
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderTrend(trend, ok))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output trend as JSON")
	return cmd
}
