package gate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/fatih/camelcase"

	"github.com/sitegate/sitegate/internal/domain"
	"github.com/sitegate/sitegate/internal/domain/waiver"
)

// RuleUnknownRefKey is the rule id of a reference key missing from the source of truth.
const RuleUnknownRefKey = "refs/unknown-key"

// RefChecker flags reference keys used in content that the source of truth does not define.
type RefChecker struct {
	usage  *regexp.Regexp
	known  map[string]string
	groups map[string]bool
	keys   []string
}

// NewRefChecker compiles the usage pattern. Every capture group that
// participates in a match is treated as a key.
func NewRefChecker(usagePattern string, known map[string]string) (*RefChecker, error) {
	if usagePattern == "" {
		usagePattern = domain.DefaultRefUsagePattern
	}
	re, err := regexp.Compile(usagePattern)
	if err != nil {
		return nil, fmt.Errorf("compiling refs usage pattern: %w", err)
	}
	keys := make([]string, 0, len(known))
	groups := make(map[string]bool)
	for k := range known {
		keys = append(keys, k)
		for i := strings.LastIndexByte(k, '.'); i > 0; i = strings.LastIndexByte(k[:i], '.') {
			groups[k[:i]] = true
		}
	}
	sort.Strings(keys)
	return &RefChecker{usage: re, known: known, groups: groups, keys: keys}, nil
}

// Defined reports whether key names a reference or an object of references.
func (c *RefChecker) Defined(key string) bool {
	if _, ok := c.known[key]; ok {
		return true
	}
	return c.groups[key]
}

// ExtractKeys returns the reference keys used on line, in order of appearance.
func (c *RefChecker) ExtractKeys(line string) []string {
	var keys []string
	for _, m := range c.usage.FindAllStringSubmatch(line, -1) {
		for _, g := range m[1:] {
			if g != "" {
				keys = append(keys, g)
				break
			}
		}
	}
	return keys
}

// ScanLines reports each unknown key at most once per line.
func (c *RefChecker) ScanLines(file string, lines []string, w *waiver.Resolver) []domain.Hit {
	var hits []domain.Hit
	for idx, line := range lines {
		seen := make(map[string]bool)
		for _, key := range c.ExtractKeys(line) {
			if seen[key] || c.Defined(key) {
				continue
			}
			seen[key] = true
			hit := domain.Hit{
				RuleID:      RuleUnknownRefKey,
				Severity:    domain.SeverityForbidden,
				Description: fmt.Sprintf("reference key %q is not defined in the source of truth", key),
				File:        file,
				Line:        idx + 1,
				Match:       key,
				Snippet:     snippet(line),
			}
			if s := c.Suggest(key); s != "" {
				hit.Suggestion = fmt.Sprintf("did you mean %q?", s)
			}
			hits = append(hits, applyWaiver(hit, lines, idx, w))
		}
	}
	return hits
}

// Suggest returns the known key sharing the most camel-case words with key.
func (c *RefChecker) Suggest(key string) string {
	for _, k := range c.keys {
		if strings.EqualFold(k, key) {
			return k
		}
	}

	want := keyWords(key)
	if len(want) == 0 {
		return ""
	}

	best, bestScore := "", 0.0
	for _, k := range c.keys {
		have := keyWords(k)
		shared := 0
		for w := range want {
			if have[w] {
				shared++
			}
		}
		if shared == 0 {
			continue
		}
		score := float64(shared) / float64(len(want)+len(have)-shared)
		if score > bestScore {
			best, bestScore = k, score
		}
	}
	return best
}

func keyWords(key string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range camelcase.Split(key) {
		w = strings.ToLower(strings.Trim(w, "._-"))
		if w == "" {
			continue
		}
		words[w] = true
	}
	return words
}
