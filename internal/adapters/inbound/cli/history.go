package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitegate/sitegate/internal/adapters/outbound/history"
	"github.com/sitegate/sitegate/internal/adapters/outbound/tui"
	"github.com/sitegate/sitegate/internal/domain"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		gateName   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded gate runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var g domain.Gate
			if gateName != "" {
				var ok bool
				if g, ok = domain.ParseGate(gateName); !ok {
					return fmt.Errorf("unknown gate %q (valid: terms, refs, urls)", gateName)
				}
			}

			entries, err := history.New().Load(root.path)
			if err != nil {
				return err
			}
			entries = history.Filter(entries, g)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&gateName, "gate", "", "Only show runs of this gate")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
