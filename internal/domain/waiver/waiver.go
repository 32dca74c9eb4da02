// Package waiver parses inline waiver annotations and resolves their reason codes.
package waiver

import (
	"strings"

	"github.com/sitegate/sitegate/internal/domain"
)

// Annotation is a syntactically valid waiver marker found on a line.
type Annotation struct {
	Line   int    // 1-based line number carrying the marker
	Reason string // raw reason text, possibly empty
	Code   string // resolved canonical reason code
}

// Resolver finds waiver annotations and maps their reasons to canonical codes.
type Resolver struct {
	marker   string
	codes    map[string]bool
	synonyms []domain.ReasonSynonym
}

// NewResolver builds a Resolver from the waiver section of a policy.
func NewResolver(p domain.WaiverPolicy) *Resolver {
	marker := p.Marker
	if marker == "" {
		marker = domain.DefaultWaiverMarker
	}
	reasons := p.Reasons
	if len(reasons) == 0 {
		reasons = domain.DefaultReasonCodes
	}
	synonyms := p.Synonyms
	if synonyms == nil {
		synonyms = domain.DefaultReasonSynonyms
	}

	codes := make(map[string]bool, len(reasons))
	for _, r := range reasons {
		codes[r] = true
	}
	return &Resolver{marker: marker, codes: codes, synonyms: synonyms}
}

// Marker returns the waiver token this resolver looks for.
func (r *Resolver) Marker() string { return r.marker }

// Find returns the waiver covering lines[idx], checking the line itself
// before the line immediately above it.
func (r *Resolver) Find(lines []string, idx int) (Annotation, bool) {
	if idx < 0 || idx >= len(lines) {
		return Annotation{}, false
	}
	if reason, ok := r.Parse(lines[idx]); ok {
		return Annotation{Line: idx + 1, Reason: reason, Code: r.ResolveCode(reason)}, true
	}
	if idx > 0 {
		if reason, ok := r.Parse(lines[idx-1]); ok {
			return Annotation{Line: idx, Reason: reason, Code: r.ResolveCode(reason)}, true
		}
	}
	return Annotation{}, false
}

// Parse reports whether line carries a valid marker and returns its reason text.
// Accepted forms: `marker`, `marker(reason)`, `marker: reason`, `marker reason`.
func (r *Resolver) Parse(line string) (string, bool) {
	rest := line
	for {
		i := strings.Index(rest, r.marker)
		if i < 0 {
			return "", false
		}
		after := rest[i+len(r.marker):]
		if reason, ok := parseTail(after); ok {
			return reason, true
		}
		rest = after
	}
}

func parseTail(after string) (string, bool) {
	if after == "" {
		return "", true
	}
	switch after[0] {
	case '(':
		end := strings.IndexByte(after, ')')
		if end < 0 {
			return "", false
		}
		return strings.TrimSpace(after[1:end]), true
	case ':':
		return cleanReason(after[1:]), true
	case ' ', '\t':
		return cleanReason(after), true
	default:
		return "", false
	}
}

var commentClosers = []string{"*/", "-->", "}"}

func cleanReason(s string) string {
	s = strings.TrimSpace(s)
	for _, c := range commentClosers {
		if i := strings.Index(s, c); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

// ResolveCode maps a free-text or canonical reason to a canonical code.
// Exact canonical match wins, then the first synonym contained in the text,
// otherwise UNSPECIFIED.
func (r *Resolver) ResolveCode(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.ReasonUnspecified
	}

	normalized := strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_").Replace(reason))
	if r.codes[normalized] {
		return normalized
	}

	lower := strings.ToLower(reason)
	for _, s := range r.synonyms {
		if strings.Contains(lower, strings.ToLower(s.Match)) {
			return s.Code
		}
	}
	return domain.ReasonUnspecified
}
