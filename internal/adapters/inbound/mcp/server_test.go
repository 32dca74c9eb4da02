package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpadapter "github.com/sitegate/sitegate/internal/adapters/inbound/mcp"
	"github.com/sitegate/sitegate/internal/domain"
)

const fixtureDir = "../../../../testdata/site"

func copyFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.CopyFS(dir, os.DirFS(fixtureDir)))
	return dir
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcplib.CallToolResult {
	t.Helper()
	tool, ok := s.ListTools()[name]
	require.True(t, ok, "tool %q should be registered", name)

	req := mcplib.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNewSitegateMCPServer(t *testing.T) {
	s := mcpadapter.NewSitegateMCPServer(".")
	require.NotNil(t, s)
}

func TestMCPServerHasTools(t *testing.T) {
	s := mcpadapter.NewSitegateMCPServer(".")
	tools := s.ListTools()
	require.NotNil(t, tools)

	expectedTools := []string{"sitegate_run_gate", "sitegate_search", "sitegate_route"}
	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}
	assert.Len(t, tools, len(expectedTools))
}

func TestRunGateTool(t *testing.T) {
	s := mcpadapter.NewSitegateMCPServer(copyFixture(t))

	res := callTool(t, s, "sitegate_run_gate", map[string]any{"gate": "terms", "strict": true})
	require.False(t, res.IsError, text(t, res))

	var report domain.ScanReport
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &report))
	assert.Equal(t, domain.GateTerms, report.Gate)
	assert.Equal(t, domain.ModeStrict, report.Mode)
	assert.Equal(t, domain.VerdictFail, report.Verdict)
	assert.Equal(t, 1, report.Summary.Actionable)
}

func TestRunGateTool_UnknownGate(t *testing.T) {
	s := mcpadapter.NewSitegateMCPServer(fixtureDir)

	res := callTool(t, s, "sitegate_run_gate", map[string]any{"gate": "spelling"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "unknown gate")
}

func TestRunGateTool_MissingArgument(t *testing.T) {
	s := mcpadapter.NewSitegateMCPServer(fixtureDir)

	res := callTool(t, s, "sitegate_run_gate", map[string]any{})
	assert.True(t, res.IsError)
}

func TestSearchTool(t *testing.T) {
	s := mcpadapter.NewSitegateMCPServer(copyFixture(t))

	res := callTool(t, s, "sitegate_search", map[string]any{"query": "anchoring", "limit": float64(2)})
	require.False(t, res.IsError, text(t, res))

	var results []domain.RankedResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "/", results[0].Route)
	assert.Equal(t, 1, results[1].Tier)
}

func TestRouteTool(t *testing.T) {
	s := mcpadapter.NewSitegateMCPServer(copyFixture(t))

	res := callTool(t, s, "sitegate_route", map[string]any{"url": "https://example.com/governance/overview/?ref=nav"})
	require.False(t, res.IsError, text(t, res))

	var out struct {
		Route string `json:"route"`
		Tier  int    `json:"tier"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, "/governance/overview", out.Route)
	assert.Equal(t, 1, out.Tier)
}
