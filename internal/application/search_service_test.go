package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sitegate/sitegate/internal/adapters/outbound/searchindex"
	"github.com/sitegate/sitegate/internal/application"
	"github.com/sitegate/sitegate/internal/domain"
	"github.com/sitegate/sitegate/internal/domain/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndex struct {
	mu        sync.Mutex
	initErr   error
	searchErr error
	initCalls int
	results   []domain.SearchResult
	block     chan struct{}
	entered   chan struct{}
	lastCtx   context.Context
}

func (s *stubIndex) Init(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initCalls++
	return s.initErr
}

func (s *stubIndex) Search(ctx context.Context, _ string) ([]domain.SearchResult, error) {
	s.mu.Lock()
	s.lastCtx = ctx
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.results, s.searchErr
}

func f(v float64) *float64 { return &v }

func TestSearchService_RanksByTier(t *testing.T) {
	idx := &stubIndex{results: []domain.SearchResult{
		{URL: "/blog/post-1", Score: f(0.5)},
		{URL: "/server/app/governance/overview.html", Score: f(0.1)},
		{URL: "/random-page", Score: f(0.9)},
	}}
	table := search.TierTable{Entries: []domain.TierEntry{{Route: "/governance", Tier: 1}, {Route: "/blog", Tier: 2}}, Default: 2}
	svc := application.NewSearchService(idx, table, domain.DefaultBuildPrefixes)

	got, err := svc.Query(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "/governance/overview", got[0].Route)
	assert.Equal(t, "/random-page", got[1].Route)
	assert.Equal(t, "/blog/post-1", got[2].Route)

	_, err = svc.Query(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, 1, idx.initCalls, "index initialised once")
}

func TestSearchService_ReleasesQueryContext(t *testing.T) {
	idx := &stubIndex{results: []domain.SearchResult{{URL: "/docs/a"}}}
	svc := application.NewSearchService(idx, search.DefaultTierTable(), nil)

	ctx := context.Background()
	_, err := svc.Query(ctx, "anything")
	require.NoError(t, err)

	idx.mu.Lock()
	qctx := idx.lastCtx
	idx.mu.Unlock()
	require.NotNil(t, qctx)
	assert.ErrorIs(t, qctx.Err(), context.Canceled, "query context is released on return")
	assert.NoError(t, ctx.Err())
}

func TestSearchService_Limit(t *testing.T) {
	idx := &stubIndex{results: []domain.SearchResult{{URL: "/a"}, {URL: "/b"}, {URL: "/c"}}}
	svc := application.NewSearchService(idx, search.DefaultTierTable(), nil).WithLimit(2)

	got, err := svc.Query(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchService_EmptyQuerySkipsIndex(t *testing.T) {
	idx := &stubIndex{}
	svc := application.NewSearchService(idx, search.DefaultTierTable(), nil)

	got, err := svc.Query(context.Background(), "   ")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 0, idx.initCalls)
}

func TestSearchService_InitFailureDegrades(t *testing.T) {
	idx := &stubIndex{initErr: errors.New("index offline")}
	var diags []application.Diagnostic
	svc := application.NewSearchService(idx, search.DefaultTierTable(), nil).
		WithDiagnostics(func(d application.Diagnostic) { diags = append(diags, d) })

	got, err := svc.Query(context.Background(), "anchoring")
	require.NoError(t, err)
	assert.Empty(t, got)
	require.Len(t, diags, 1)
	assert.Equal(t, "init", diags[0].Op)
	assert.Equal(t, "anchoring", diags[0].Query)

	idx.initErr = nil
	_, err = svc.Query(context.Background(), "anchoring")
	require.NoError(t, err)
	assert.Equal(t, 2, idx.initCalls, "failed init is retried")
}

func TestSearchService_SearchFailureDegrades(t *testing.T) {
	idx := &stubIndex{searchErr: errors.New("boom")}
	var diags []application.Diagnostic
	svc := application.NewSearchService(idx, search.DefaultTierTable(), nil).
		WithDiagnostics(func(d application.Diagnostic) { diags = append(diags, d) })

	got, err := svc.Query(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, got)
	require.Len(t, diags, 1)
	assert.Equal(t, "search", diags[0].Op)
}

func TestSearchService_NewerQuerySupersedes(t *testing.T) {
	idx := &stubIndex{
		block:   make(chan struct{}),
		entered: make(chan struct{}, 2),
		results: []domain.SearchResult{{URL: "/a"}},
	}
	svc := application.NewSearchService(idx, search.DefaultTierTable(), nil)

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Query(context.Background(), "fir")
		firstErr <- err
	}()
	<-idx.entered

	type outcome struct {
		results []domain.RankedResult
		err     error
	}
	second := make(chan outcome, 1)
	go func() {
		r, err := svc.Query(context.Background(), "first")
		second <- outcome{r, err}
	}()

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, application.ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("first query was not cancelled")
	}

	<-idx.entered
	close(idx.block)

	select {
	case got := <-second:
		require.NoError(t, got.err)
		assert.Len(t, got.results, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("second query did not finish")
	}
}

func TestSearchService_CallerCancel(t *testing.T) {
	idx := &stubIndex{block: make(chan struct{})}
	svc := application.NewSearchService(idx, search.DefaultTierTable(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Query(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchService_Route(t *testing.T) {
	svc := application.NewSearchService(&stubIndex{}, search.DefaultTierTable(), domain.DefaultBuildPrefixes)

	route, tier := svc.Route("/server/app/governance/overview.html")
	assert.Equal(t, "/governance/overview", route)
	assert.Equal(t, 1, tier)
}

func TestSearchService_WithLocalIndex(t *testing.T) {
	policy := domain.DefaultPolicy()
	idx := searchindex.New(fixtureDir, policy.Search.ContentRoots, policy.ExcludeDirs)
	svc := application.NewSearchService(idx, search.TableFromPolicy(policy), policy.Search.BuildPrefixes)

	got, err := svc.Query(context.Background(), "anchoring")
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, "/", got[0].Route)
	assert.Equal(t, 1, got[1].Tier)
	assert.Equal(t, 1, got[2].Tier)
	assert.Equal(t, "/blog/post-1", got[3].Route)
	assert.Equal(t, 3, got[3].Tier)

	routes := []string{got[1].Route, got[2].Route}
	assert.ElementsMatch(t, []string{"/governance/overview", "/specification/core"}, routes)
}
