// Package search maps search result URLs to site routes and re-ranks
// results by editorial tier.
package search

import (
	"net/url"
	"sort"
	"strings"

	"github.com/sitegate/sitegate/internal/domain"
)

// TierTable assigns a priority tier to routes. Lower tiers rank first.
type TierTable struct {
	Entries []domain.TierEntry `json:"entries"`
	Default int                `json:"default"`
}

// TableFromPolicy builds the tier table configured in p.
func TableFromPolicy(p domain.Policy) TierTable {
	return TierTable{
		Entries: p.Search.Tiers,
		Default: p.EffectiveDefaultTier(),
	}
}

// DefaultTierTable returns the built-in tier table.
func DefaultTierTable() TierTable {
	return TableFromPolicy(domain.DefaultPolicy())
}

// TierFor returns the tier of route: an exact entry first, then the longest
// entry that is a path prefix of route, then the default. The root entry
// only matches exactly.
func (t TierTable) TierFor(route string) int {
	best, bestLen := t.Default, -1
	for _, e := range t.Entries {
		if e.Route == route {
			return e.Tier
		}
		if e.Route == "/" {
			continue
		}
		prefix := strings.TrimSuffix(e.Route, "/") + "/"
		if strings.HasPrefix(route, prefix) && len(prefix) > bestLen {
			best, bestLen = e.Tier, len(prefix)
		}
	}
	return best
}

// NormalizeRoute turns an engine-native URL or build artifact path into the
// logical site route. The result always starts with "/".
func NormalizeRoute(raw string, buildPrefixes []string) string {
	p := strings.TrimSpace(raw)
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.ReplaceAll(p, "\\", "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	for _, prefix := range buildPrefixes {
		prefix = strings.TrimSuffix(prefix, "/")
		if prefix == "" {
			continue
		}
		if p == prefix {
			p = "/"
			break
		}
		if strings.HasPrefix(p, prefix+"/") {
			p = p[len(prefix):]
			break
		}
	}

	for _, ext := range []string{".html", ".htm"} {
		p = strings.TrimSuffix(p, ext)
	}
	if p == "/index" {
		p = "/"
	}
	p = strings.TrimSuffix(p, "/index")
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return p
}

// Rank annotates results with route and tier and sorts them by tier
// ascending, then score descending. Equal elements keep their input order.
// An absent score ranks as 0. The input slice is not modified.
func Rank(results []domain.SearchResult, table TierTable, buildPrefixes []string) []domain.RankedResult {
	ranked := make([]domain.RankedResult, 0, len(results))
	for _, r := range results {
		route := NormalizeRoute(r.URL, buildPrefixes)
		ranked = append(ranked, domain.RankedResult{
			SearchResult: r,
			Route:        route,
			Tier:         table.TierFor(route),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Tier != ranked[j].Tier {
			return ranked[i].Tier < ranked[j].Tier
		}
		return scoreOf(ranked[i].SearchResult) > scoreOf(ranked[j].SearchResult)
	})
	return ranked
}

func scoreOf(r domain.SearchResult) float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}
