package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sitegate/sitegate/internal/adapters/outbound/config"
	"github.com/sitegate/sitegate/internal/adapters/outbound/history"
	"github.com/sitegate/sitegate/internal/domain/search"
)

const (
	policyURI  = "sitegate://policy"
	tiersURI   = "sitegate://tiers"
	historyURI = "sitegate://history"
)

// registerResources registers all sitegate MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	s.AddResource(
		mcplib.NewResource(
			policyURI,
			"Policy",
			mcplib.WithResourceDescription("Effective gate policy: defaults overlaid with .sitegate.yaml"),
			mcplib.WithMIMEType("application/json"),
		),
		handlePolicyResource(projectPath),
	)

	s.AddResource(
		mcplib.NewResource(
			tiersURI,
			"Tier Table",
			mcplib.WithResourceDescription("Route prefixes and the content tier each one ranks at"),
			mcplib.WithMIMEType("application/json"),
		),
		handleTiersResource(projectPath),
	)

	s.AddResource(
		mcplib.NewResource(
			historyURI,
			"Run History",
			mcplib.WithResourceDescription("Recorded gate runs, oldest first"),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(projectPath),
	)
}

func handlePolicyResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		policy, err := config.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading policy: %w", err)
		}
		return jsonContents(policyURI, policy)
	}
}

func handleTiersResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		policy, err := config.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading policy: %w", err)
		}
		return jsonContents(tiersURI, search.TableFromPolicy(policy))
	}
}

func handleHistoryResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		entries, err := history.New().Load(projectPath)
		if err != nil {
			return nil, err
		}
		return jsonContents(historyURI, entries)
	}
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
