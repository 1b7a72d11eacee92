package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/policyguard/policyguard/internal/application"
)

func newRerunCmd(flags *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "rerun",
		Short: "Repeat the last successful scan",
		Long:  "Read the policy and dataset of the last successful scan from disk again and run the full scan with them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			res, err := application.NewRerunService(a.runs, a.loader, a.gate).Rerun(cmd.Context())
			if err != nil {
				return fmt.Errorf("rerun failed: %w", err)
			}
			return renderResult(cmd, a, res, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")
	return cmd
}
