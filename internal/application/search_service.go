package application

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sitegate/sitegate/internal/domain"
	"github.com/sitegate/sitegate/internal/domain/search"
)

// ErrSuperseded is returned for a query that a newer query replaced
// before its results arrived.
var ErrSuperseded = errors.New("search superseded by a newer query")

// Diagnostic describes a search backend failure that was degraded to an
// empty result.
type Diagnostic struct {
	Op    string // "init" or "search"
	Query string
	Err   error
}

// SearchService queries a SearchIndex and re-ranks results by tier. The
// most recent query wins: starting a query cancels the one in flight.
type SearchService struct {
	index    domain.SearchIndex
	table    search.TierTable
	prefixes []string
	limit    int
	onError  func(Diagnostic)

	initMu sync.Mutex
	ready  bool

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewSearchService(index domain.SearchIndex, table search.TierTable, buildPrefixes []string) *SearchService {
	return &SearchService{index: index, table: table, prefixes: buildPrefixes}
}

// WithLimit caps the number of ranked results; 0 means unlimited.
func (s *SearchService) WithLimit(n int) *SearchService {
	s.limit = n
	return s
}

// WithDiagnostics registers a callback for degraded backend failures.
func (s *SearchService) WithDiagnostics(fn func(Diagnostic)) *SearchService {
	s.onError = fn
	return s
}

// Query returns ranked results for q. Backend failures yield an empty
// result and a diagnostic, never an error. The error is ErrSuperseded when
// a newer query started meanwhile, or the caller's context error.
func (s *SearchService) Query(ctx context.Context, q string) ([]domain.RankedResult, error) {
	qctx, seq := s.begin(ctx)
	defer s.finish(seq)

	q = strings.TrimSpace(q)
	if q == "" {
		return []domain.RankedResult{}, nil
	}

	if err := s.ensureInit(qctx); err != nil {
		if s.superseded(seq) {
			return nil, ErrSuperseded
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.report(Diagnostic{Op: "init", Query: q, Err: err})
		return []domain.RankedResult{}, nil
	}

	results, err := s.index.Search(qctx, q)
	if s.superseded(seq) {
		return nil, ErrSuperseded
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.report(Diagnostic{Op: "search", Query: q, Err: err})
		return []domain.RankedResult{}, nil
	}

	ranked := search.Rank(results, s.table, s.prefixes)
	if s.limit > 0 && len(ranked) > s.limit {
		ranked = ranked[:s.limit]
	}
	return ranked, nil
}

// Route returns the normalised route and tier of url.
func (s *SearchService) Route(url string) (string, int) {
	route := search.NormalizeRoute(url, s.prefixes)
	return route, s.table.TierFor(route)
}

// begin cancels the in-flight query and registers a new one.
func (s *SearchService) begin(ctx context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	qctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.seq++
	return qctx, s.seq
}

// finish releases the query context unless a newer query already owns it.
func (s *SearchService) finish(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == s.seq && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *SearchService) superseded(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq != s.seq
}

func (s *SearchService) ensureInit(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.ready {
		return nil
	}
	if err := s.index.Init(ctx); err != nil {
		return err
	}
	s.ready = true
	return nil
}

func (s *SearchService) report(d Diagnostic) {
	log.Warn().Err(d.Err).Str("op", d.Op).Str("query", d.Query).Msg("search degraded to empty results")
	if s.onError != nil {
		s.onError(d)
	}
}
