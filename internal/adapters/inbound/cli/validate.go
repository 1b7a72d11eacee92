package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/policyguard/policyguard/internal/adapters/outbound/loader"
	"github.com/policyguard/policyguard/internal/domain"
)

func newValidateCmd() *cobra.Command {
	var (
		policyPath  string
		datasetPath string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check input files locally without contacting the service",
		Long:  "Check that a policy file is a PDF and a dataset file is a CSV, using the same rules a scan applies before uploading.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if policyPath == "" && datasetPath == "" {
				return errors.New("nothing to validate: pass --policy and/or --dataset")
			}

			l := loader.New()
			var errs []error
			check := func(path string, kind domain.Kind) {
				if path == "" {
					return
				}
				c, err := l.Load(path)
				if err == nil {
					err = domain.ValidateCandidate(c, kind)
				}
				if err != nil {
					errs = append(errs, err)
					fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", path, err)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s accepted as %s (%s)\n", path, kind, c.MediaType)
			}
			check(policyPath, domain.KindPolicy)
			check(datasetPath, domain.KindDataset)

			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVar(&policyPath, "policy", "", "Policy document to check")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Dataset to check")
	return cmd
}
