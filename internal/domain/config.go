package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Canonical waiver reason codes.
const (
	ReasonExternalStandard  = "EXTERNAL_STANDARD"
	ReasonHistoricalContext = "HISTORICAL_CONTEXT"
	ReasonQuotedSource      = "QUOTED_SOURCE"
	ReasonLegalRequirement  = "LEGAL_REQUIREMENT"
	ReasonTestFixture       = "TEST_FIXTURE"
	ReasonMigrationPending  = "MIGRATION_PENDING"
	ReasonUnspecified       = "UNSPECIFIED"
)

// DefaultWaiverMarker is the inline token that starts a waiver annotation.
const DefaultWaiverMarker = "sitegate:allow"

// Policy holds project-level configuration loaded from .sitegate.yaml.
type Policy struct {
	Roots       []string     `yaml:"roots"        json:"roots,omitempty"`
	Extensions  []string     `yaml:"extensions"   json:"extensions,omitempty"`
	ExcludeDirs []string     `yaml:"exclude_dirs" json:"exclude_dirs,omitempty"`
	Waiver      WaiverPolicy `yaml:"waiver"       json:"waiver"`
	Terms       TermsPolicy  `yaml:"terms"        json:"terms"`
	Refs        RefsPolicy   `yaml:"refs"         json:"refs"`
	URLs        URLsPolicy   `yaml:"urls"         json:"urls"`
	Search      SearchPolicy `yaml:"search"       json:"search"`
}

// WaiverPolicy configures waiver markers and reason-code resolution.
type WaiverPolicy struct {
	Marker   string          `yaml:"marker"   json:"marker,omitempty"`
	Reasons  []string        `yaml:"reasons"  json:"reasons,omitempty"`
	Synonyms []ReasonSynonym `yaml:"synonyms" json:"synonyms,omitempty"`
}

// ReasonSynonym maps free-text containing Match to Code. Order matters: first match wins.
type ReasonSynonym struct {
	Match string `yaml:"match" json:"match"`
	Code  string `yaml:"code"  json:"code"`
}

// TermsPolicy lists forbidden patterns for the terms gate.
type TermsPolicy struct {
	Rules []PatternRule `yaml:"rules" json:"rules,omitempty"`
}

// RefsPolicy configures the reference-key gate.
type RefsPolicy struct {
	Source       string `yaml:"source"        json:"source,omitempty"`
	UsagePattern string `yaml:"usage_pattern" json:"usage_pattern,omitempty"`
}

// URLsPolicy configures the hardcoded-URL gate.
type URLsPolicy struct {
	Hosts      []string `yaml:"hosts"       json:"hosts,omitempty"`
	AllowFiles []string `yaml:"allow_files" json:"allow_files,omitempty"`
}

// SearchPolicy configures the local index and the tier table.
type SearchPolicy struct {
	ContentRoots  []string    `yaml:"content_roots"  json:"content_roots,omitempty"`
	BuildPrefixes []string    `yaml:"build_prefixes" json:"build_prefixes,omitempty"`
	DefaultTier   *int        `yaml:"default_tier"   json:"default_tier,omitempty"`
	Tiers         []TierEntry `yaml:"tiers"          json:"tiers,omitempty"`
}

// TierEntry assigns a tier to a route and everything beneath it.
type TierEntry struct {
	Route string `yaml:"route" json:"route"`
	Tier  int    `yaml:"tier"  json:"tier"`
}

// DefaultReasonCodes is the canonical waiver vocabulary.
var DefaultReasonCodes = []string{
	ReasonExternalStandard,
	ReasonHistoricalContext,
	ReasonQuotedSource,
	ReasonLegalRequirement,
	ReasonTestFixture,
	ReasonMigrationPending,
	ReasonUnspecified,
}

// DefaultReasonSynonyms maps common free-text waiver reasons to canonical codes.
var DefaultReasonSynonyms = []ReasonSynonym{
	{Match: "external standard", Code: ReasonExternalStandard},
	{Match: "third-party spec", Code: ReasonExternalStandard},
	{Match: "rfc", Code: ReasonExternalStandard},
	{Match: "w3c", Code: ReasonExternalStandard},
	{Match: "historical", Code: ReasonHistoricalContext},
	{Match: "legacy", Code: ReasonHistoricalContext},
	{Match: "changelog", Code: ReasonHistoricalContext},
	{Match: "quote", Code: ReasonQuotedSource},
	{Match: "citation", Code: ReasonQuotedSource},
	{Match: "legal", Code: ReasonLegalRequirement},
	{Match: "regulat", Code: ReasonLegalRequirement},
	{Match: "fixture", Code: ReasonTestFixture},
	{Match: "test", Code: ReasonTestFixture},
	{Match: "migration", Code: ReasonMigrationPending},
	{Match: "pending", Code: ReasonMigrationPending},
}

// DefaultExcludeDirs are directory names never descended into.
var DefaultExcludeDirs = []string{
	"node_modules", ".next", ".git", ".turbo", ".vercel",
	"dist", "build", "out", "coverage", "vendor", ".sitegate",
}

// DefaultExtensions are the file extensions a gate reads.
var DefaultExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".md", ".mdx", ".json", ".html", ".yaml", ".yml",
}

// DefaultTermRules is the built-in forbidden-pattern pack.
func DefaultTermRules() []PatternRule {
	return []PatternRule{
		{
			ID: "terms/whitelist", Pattern: `\bwhite-?list(s|ed|ing)?\b`, IgnoreCase: true,
			Description: `use "allowlist"`, Severity: SeverityWaivable,
		},
		{
			ID: "terms/blacklist", Pattern: `\bblack-?list(s|ed|ing)?\b`, IgnoreCase: true,
			Description: `use "denylist"`, Severity: SeverityWaivable,
		},
		{
			ID: "urls/insecure-http", Pattern: `http://(?:www\.)?[a-z0-9][a-z0-9.-]*\.[a-z]{2,}`,
			IgnoreCase: true, Description: "non-canonical insecure URL", Severity: SeverityWaivable,
		},
		{
			ID: "jsonld/marketing-type", Pattern: `"@type"\s*:\s*"(Product|Offer|AggregateRating)"`,
			Description: "forbidden JSON-LD type for specification pages", Severity: SeverityForbidden,
		},
	}
}

// DefaultRefUsagePattern matches `refs.someKey` and `getRef("someKey")` usages.
// Keys may be dotted paths into nested objects, e.g. `refs.social.x`.
const DefaultRefUsagePattern = `(?:\brefs\.([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)|\bgetRef\(\s*["']([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)["']\s*\))`

// DefaultBuildPrefixes are the build-output path prefixes stripped from search result URLs.
var DefaultBuildPrefixes = []string{
	"/.next/server/app",
	"/_next/server/app",
	"/.next/server/pages",
	"/server/app",
	"/server/pages",
}

const defaultTier = 2

// DefaultTiers is the editorial priority table for site search.
var DefaultTiers = []TierEntry{
	{Route: "/", Tier: 0},
	{Route: "/specification", Tier: 1},
	{Route: "/architecture", Tier: 1},
	{Route: "/governance", Tier: 1},
	{Route: "/modules", Tier: 1},
	{Route: "/compliance", Tier: 1},
	{Route: "/docs", Tier: 2},
	{Route: "/standards", Tier: 3},
	{Route: "/blog", Tier: 3},
}

// DefaultPolicy returns the configuration used when no .sitegate.yaml exists.
func DefaultPolicy() Policy {
	dt := defaultTier
	return Policy{
		Roots:       []string{"src", "content", "app", "public"},
		Extensions:  append([]string(nil), DefaultExtensions...),
		ExcludeDirs: append([]string(nil), DefaultExcludeDirs...),
		Waiver: WaiverPolicy{
			Marker:   DefaultWaiverMarker,
			Reasons:  append([]string(nil), DefaultReasonCodes...),
			Synonyms: append([]ReasonSynonym(nil), DefaultReasonSynonyms...),
		},
		Terms: TermsPolicy{Rules: DefaultTermRules()},
		Refs: RefsPolicy{
			Source:       "src/config/references.jsonc",
			UsagePattern: DefaultRefUsagePattern,
		},
		URLs: URLsPolicy{
			Hosts:      []string{"github.com", "npmjs.com", "discord.gg", "x.com", "twitter.com"},
			AllowFiles: []string{"src/config/*", "*.jsonc"},
		},
		Search: SearchPolicy{
			ContentRoots:  []string{"content", ".next/server/app"},
			BuildPrefixes: append([]string(nil), DefaultBuildPrefixes...),
			DefaultTier:   &dt,
			Tiers:         append([]TierEntry(nil), DefaultTiers...),
		},
	}
}

// Target returns the scan target described by the policy.
func (p Policy) Target() ScanTarget {
	return ScanTarget{Roots: p.Roots, Extensions: p.Extensions, ExcludeDirs: p.ExcludeDirs}
}

// EffectiveDefaultTier returns the configured default tier or the built-in one.
func (p Policy) EffectiveDefaultTier() int {
	if p.Search.DefaultTier != nil {
		return *p.Search.DefaultTier
	}
	return defaultTier
}

// Validate checks the policy for invalid values and returns a descriptive error.
func (p Policy) Validate() error {
	for _, ext := range p.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}

	if strings.ContainsAny(p.Waiver.Marker, " \t") {
		return fmt.Errorf("waiver.marker %q must not contain whitespace", p.Waiver.Marker)
	}

	codes := make(map[string]bool, len(p.Waiver.Reasons))
	for _, r := range p.Waiver.Reasons {
		if r == "" || strings.ToUpper(r) != r {
			return fmt.Errorf("waiver reason %q must be a non-empty upper-case code", r)
		}
		codes[r] = true
	}
	for i, s := range p.Waiver.Synonyms {
		if s.Match == "" {
			return fmt.Errorf("waiver.synonyms[%d].match must not be empty", i)
		}
		if len(codes) > 0 && !codes[s.Code] {
			return fmt.Errorf("waiver.synonyms[%d].code %q is not a configured reason", i, s.Code)
		}
	}

	seen := make(map[string]bool, len(p.Terms.Rules))
	for i, r := range p.Terms.Rules {
		if r.ID == "" {
			return fmt.Errorf("terms.rules[%d].id must not be empty", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate rule id %q in terms.rules", r.ID)
		}
		seen[r.ID] = true
		if r.Pattern == "" {
			return fmt.Errorf("terms.rules[%d] (%s) has an empty pattern", i, r.ID)
		}
		if r.Severity != "" && r.Severity != SeverityForbidden && r.Severity != SeverityWaivable {
			return fmt.Errorf("terms.rules[%d] (%s) has unknown severity %q (valid: forbidden, waivable)", i, r.ID, r.Severity)
		}
		if !r.Literal {
			if _, err := regexp.Compile(r.Pattern); err != nil {
				return fmt.Errorf("terms.rules[%d] (%s) has an invalid pattern: %w", i, r.ID, err)
			}
		}
	}

	if p.Refs.UsagePattern != "" {
		re, err := regexp.Compile(p.Refs.UsagePattern)
		if err != nil {
			return fmt.Errorf("refs.usage_pattern is invalid: %w", err)
		}
		if re.NumSubexp() == 0 {
			return fmt.Errorf("refs.usage_pattern must capture the key in a group")
		}
	}

	for _, h := range p.URLs.Hosts {
		if h == "" || strings.Contains(h, "/") {
			return fmt.Errorf("urls.hosts entry %q must be a bare host name", h)
		}
	}

	routes := make(map[string]bool, len(p.Search.Tiers))
	for i, t := range p.Search.Tiers {
		if !strings.HasPrefix(t.Route, "/") {
			return fmt.Errorf("search.tiers[%d].route %q must start with /", i, t.Route)
		}
		if routes[t.Route] {
			return fmt.Errorf("duplicate route %q in search.tiers", t.Route)
		}
		routes[t.Route] = true
		if t.Tier < 0 {
			return fmt.Errorf("search.tiers[%d].tier must be >= 0 (got %d)", i, t.Tier)
		}
	}
	if p.Search.DefaultTier != nil && *p.Search.DefaultTier < 0 {
		return fmt.Errorf("search.default_tier must be >= 0 (got %d)", *p.Search.DefaultTier)
	}

	return nil
}
