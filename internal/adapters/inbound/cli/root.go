package cli

import "github.com/spf13/cobra"

var (
	version = "dev"
	commit  = "none"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	serverURL  string
	userID     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "policyguard",
		Short:         "Check employee datasets against written policy",
		Long:          "PolicyGuard uploads a policy PDF and an employee CSV to a compliance service, runs the evaluation and reports a compliance score with its trend over time.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file or directory holding .policyguard.yaml (default: working directory)")
	pf.StringVar(&flags.serverURL, "server", "", "Compliance service base URL (overrides server_url)")
	pf.StringVar(&flags.userID, "user", "", "User whose history is shown (overrides user_id)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newScanCmd(flags))
	cmd.AddCommand(newRerunCmd(flags))
	cmd.AddCommand(newHistoryCmd(flags))
	cmd.AddCommand(newTrendCmd(flags))
	cmd.AddCommand(newViolationsCmd(flags))
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newWatchCmd(flags))
	cmd.AddCommand(newMCPCmd(flags))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
