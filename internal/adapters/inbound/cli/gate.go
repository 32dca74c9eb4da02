package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sitegate/sitegate/internal/adapters/outbound/config"
	"github.com/sitegate/sitegate/internal/adapters/outbound/evidence"
	"github.com/sitegate/sitegate/internal/adapters/outbound/gitinfo"
	"github.com/sitegate/sitegate/internal/adapters/outbound/history"
	"github.com/sitegate/sitegate/internal/adapters/outbound/metrics"
	"github.com/sitegate/sitegate/internal/adapters/outbound/scanner"
	"github.com/sitegate/sitegate/internal/adapters/outbound/tui"
	"github.com/sitegate/sitegate/internal/application"
	"github.com/sitegate/sitegate/internal/domain"
)

var gateCommands = []struct {
	gate  domain.Gate
	short string
}{
	{domain.GateTerms, "Check content for forbidden terms"},
	{domain.GateRefs, "Check reference keys against the source of truth"},
	{domain.GateURLs, "Check for hardcoded URLs outside the link registry"},
}

// newGateService wires the gate service with evidence output and, when a
// bucket is configured, evidence upload.
func newGateService(opts GateOptions) (*application.GateService, error) {
	svc := application.NewGateService(
		scanner.New(),
		config.New(),
		config.NewReferences(),
		gitinfo.New(),
		history.New(),
	).WithEvidence(evidence.New(), metrics.New())

	if opts.Upload.Bucket != "" {
		up, err := evidence.NewS3Uploader(opts.Upload)
		if err != nil {
			return nil, fmt.Errorf("configuring evidence upload: %w", err)
		}
		svc = svc.WithUploader(up)
	}
	return svc, nil
}

func newGateCmd(root *rootOptions, g domain.Gate, short string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   string(g),
		Short: short,
		Long: fmt.Sprintf("Run the %s gate. %s=true blocks on actionable hits; otherwise the gate runs in shadow mode and only warns.",
			g, strictVar(g)),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := gateOptionsFromEnv()
			svc, err := newGateService(opts)
			if err != nil {
				return err
			}

			report, err := svc.Run(cmd.Context(), opts.Request(root.path, g))
			if report != nil {
				if perr := printReports(cmd.OutOrStdout(), jsonOutput, opts.Verbose, report); perr != nil {
					return perr
				}
			}
			if err != nil {
				return fmt.Errorf("%s gate: %w", g, err)
			}
			return exitError(report)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	return cmd
}

func newAllCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run every gate in order",
		Long:  "Run the terms, refs and urls gates with one run id. The exit status is the highest of the three.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := gateOptionsFromEnv()
			svc, err := newGateService(opts)
			if err != nil {
				return err
			}

			reqs := make([]application.GateRequest, 0, len(domain.AllGates))
			for _, g := range domain.AllGates {
				reqs = append(reqs, opts.Request(root.path, g))
			}

			reports, err := svc.RunAll(cmd.Context(), reqs)
			if perr := printReports(cmd.OutOrStdout(), jsonOutput, opts.Verbose, reports...); perr != nil {
				return perr
			}
			if err != nil {
				return err
			}
			return exitError(reports...)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the reports as a JSON array")
	return cmd
}

func printReports(w io.Writer, jsonOutput, verbose bool, reports ...*domain.ScanReport) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		return enc.Encode(reports)
	}
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprint(w, tui.RenderGateReport(r, verbose))
	}
	return nil
}

// exitError converts failing reports into an error carrying the exit status.
func exitError(reports ...*domain.ScanReport) error {
	code := application.ExitCode(reports...)
	if code == 0 {
		return nil
	}
	var failed []domain.Gate
	for _, r := range reports {
		if r.Verdict == domain.VerdictFail {
			failed = append(failed, r.Gate)
		}
	}
	msg := fmt.Sprintf("gate failed: %v", failed)
	if len(failed) == 1 && failed[0] == domain.GateURLs {
		msg = "broken/hardcoded links found"
	}
	return &domain.ExitError{Code: code, Message: msg}
}
