package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sitegate/sitegate/internal/adapters/outbound/cache"
	"github.com/sitegate/sitegate/internal/adapters/outbound/config"
	"github.com/sitegate/sitegate/internal/adapters/outbound/gitinfo"
	"github.com/sitegate/sitegate/internal/adapters/outbound/history"
	"github.com/sitegate/sitegate/internal/adapters/outbound/scanner"
	"github.com/sitegate/sitegate/internal/adapters/outbound/searchindex"
	"github.com/sitegate/sitegate/internal/application"
	"github.com/sitegate/sitegate/internal/domain"
	"github.com/sitegate/sitegate/internal/domain/search"
)

// registerTools registers all sitegate MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	searcher := &searcher{projectPath: projectPath}

	// 1. sitegate_run_gate
	s.AddTool(
		mcplib.NewTool("sitegate_run_gate",
			mcplib.WithDescription("Runs one governance gate (terms, refs or urls) and returns the scan report as JSON"),
			mcplib.WithString("gate",
				mcplib.Required(),
				mcplib.Description("Gate to run: terms, refs or urls"),
			),
			mcplib.WithBoolean("strict", mcplib.Description("Report FAIL instead of WARN on actionable hits")),
		),
		handleRunGate(projectPath),
	)

	// 2. sitegate_search
	s.AddTool(
		mcplib.NewTool("sitegate_search",
			mcplib.WithDescription("Searches site content and returns results ranked by content tier, most authoritative first"),
			mcplib.WithString("query",
				mcplib.Required(),
				mcplib.Description("Search terms"),
			),
			mcplib.WithNumber("limit", mcplib.Description("Maximum number of results (default 10)")),
		),
		handleSearch(searcher),
	)

	// 3. sitegate_route
	s.AddTool(
		mcplib.NewTool("sitegate_route",
			mcplib.WithDescription("Returns the normalised route and content tier of a URL or build path"),
			mcplib.WithString("url",
				mcplib.Required(),
				mcplib.Description("URL, route or build artifact path"),
			),
		),
		handleRoute(searcher),
	)
}

// searcher keeps one search service per server so the index is built once
// and a newer query supersedes an older one.
type searcher struct {
	projectPath string

	mu  sync.Mutex
	svc *application.SearchService
}

func (s *searcher) service() (*application.SearchService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.svc != nil {
		return s.svc, nil
	}
	policy, err := config.New().Load(s.projectPath)
	if err != nil {
		return nil, err
	}
	idx := searchindex.New(s.projectPath, policy.Search.ContentRoots, policy.ExcludeDirs).WithCache(cache.New())
	s.svc = application.NewSearchService(idx, search.TableFromPolicy(policy), policy.Search.BuildPrefixes)
	return s.svc, nil
}

func handleRunGate(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		name, err := request.RequireString("gate")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		g, ok := domain.ParseGate(name)
		if !ok {
			return errorResult(fmt.Sprintf("unknown gate %q (valid: terms, refs, urls)", name)), nil
		}
		strict, _ := request.GetArguments()["strict"].(bool)

		svc := application.NewGateService(
			scanner.New(),
			config.New(),
			config.NewReferences(),
			gitinfo.New(),
			history.New(),
		)
		report, err := svc.Run(ctx, application.GateRequest{
			ProjectPath: projectPath,
			Gate:        g,
			Mode:        domain.ModeFor(strict),
		})
		if err != nil {
			return errorResult(fmt.Sprintf("%s gate failed: %v", g, err)), nil
		}
		return jsonResult(report)
	}
}

func handleSearch(s *searcher) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		limit := 10
		if n, ok := request.GetArguments()["limit"].(float64); ok && n >= 0 {
			limit = int(n)
		}

		svc, err := s.service()
		if err != nil {
			return errorResult(fmt.Sprintf("loading policy: %v", err)), nil
		}
		results, err := svc.Query(ctx, query)
		if err != nil {
			return errorResult(fmt.Sprintf("search failed: %v", err)), nil
		}
		if limit > 0 && len(results) > limit {
			results = results[:limit]
		}
		return jsonResult(results)
	}
}

func handleRoute(s *searcher) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		svc, err := s.service()
		if err != nil {
			return errorResult(fmt.Sprintf("loading policy: %v", err)), nil
		}
		route, tier := svc.Route(url)
		return jsonResult(map[string]any{"url": url, "route": route, "tier": tier})
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
