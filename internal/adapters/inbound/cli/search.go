package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitegate/sitegate/internal/adapters/outbound/cache"
	"github.com/sitegate/sitegate/internal/adapters/outbound/config"
	"github.com/sitegate/sitegate/internal/adapters/outbound/searchindex"
	"github.com/sitegate/sitegate/internal/adapters/outbound/tui"
	"github.com/sitegate/sitegate/internal/application"
	"github.com/sitegate/sitegate/internal/domain/search"
)

func newSearchService(projectPath string, reindex bool) (*application.SearchService, error) {
	policy, err := config.New().Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading policy: %w", err)
	}
	store := cache.New()
	if reindex {
		if err := store.Invalidate(projectPath); err != nil {
			return nil, fmt.Errorf("dropping search index cache: %w", err)
		}
	}
	idx := searchindex.New(projectPath, policy.Search.ContentRoots, policy.ExcludeDirs).WithCache(store)
	return application.NewSearchService(idx, search.TableFromPolicy(policy), policy.Search.BuildPrefixes), nil
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	var (
		jsonOutput bool
		limit      int
		reindex    bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search site content, ranked by content tier",
		Long:  "Index the site's markdown and built HTML, then list matches with authoritative tiers first.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSearchService(root.path, reindex)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			results, err := svc.WithLimit(limit).Query(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderSearchResults(query, results))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results (0 for all)")
	cmd.Flags().BoolVar(&reindex, "reindex", false, "Drop the cached index and extract every page again")
	return cmd
}

type routeOutput struct {
	URL   string `json:"url"`
	Route string `json:"route"`
	Tier  int    `json:"tier"`
}

func newRouteCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "route <url>",
		Short: "Show the normalised route and tier of a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSearchService(root.path, false)
			if err != nil {
				return err
			}
			route, tier := svc.Route(args[0])

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(routeOutput{URL: args[0], Route: route, Tier: tier})
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRoute(args[0], route, tier))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
