package cli

import (
	"github.com/spf13/cobra"

	"github.com/sitegate/sitegate/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	path string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "sitegate",
		Short: "Governance gates and tiered search for documentation sites",
		Long: "Sitegate scans a website source tree for forbidden terms, unknown reference keys and hardcoded URLs,\n" +
			"honours inline waivers, writes audit evidence, and ranks site search results by content tier.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loadDotEnv(opts.path)
			logging.Init(logging.Config{
				Level:  envOrDefault("SITEGATE_LOG_LEVEL", "info"),
				Format: envOrDefault("SITEGATE_LOG_FORMAT", "auto"),
				Out:    cmd.ErrOrStderr(),
			})
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.path, "path", ".", "Project root to scan")

	cmd.AddCommand(newVersionCmd())
	for _, g := range gateCommands {
		cmd.AddCommand(newGateCmd(opts, g.gate, g.short))
	}
	cmd.AddCommand(newAllCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newRouteCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newInitCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
