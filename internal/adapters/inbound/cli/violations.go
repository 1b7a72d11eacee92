package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/policyguard/policyguard/internal/adapters/outbound/tui"
)

func newViolationsCmd(flags *globalFlags) *cobra.Command {
	var (
		recordID   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "violations",
		Short: "List every recorded violation, newest first",
		Long:  "Fetch all violations the compliance service has recorded across scans. Use --record to show a single employee record.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			violations, err := a.violations.List(cmd.Context(), recordID)
			if err != nil {
				return err
			}

			if jsonOutput {
				return renderJSON(cmd, violations)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderViolations(violations))
			return nil
		},
	}

	cmd.Flags().StringVar(&recordID, "record", "", "Only show violations of this record (employee ID)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output violations as JSON")
	return cmd
}
