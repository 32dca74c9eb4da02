package gate

import (
	"path"
	"regexp"
	"strings"

	"github.com/IGLOU-EU/go-wildcard/v2"

	"github.com/sitegate/sitegate/internal/domain"
	"github.com/sitegate/sitegate/internal/domain/rules"
)

// RuleHardcodedURL is the rule id of an absolute URL to a known external host.
const RuleHardcodedURL = "urls/hardcoded-host"

// URLChecker finds hardcoded absolute URLs to known hosts outside allow-listed files.
type URLChecker struct {
	rule  *rules.Compiled
	allow []string
}

// NewURLChecker builds the host matcher. Subdomains of a listed host match
// too; a host must end at a path, port, query or non-host character.
func NewURLChecker(hosts, allowFiles []string) *URLChecker {
	quoted := make([]string, 0, len(hosts))
	for _, h := range hosts {
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(h)))
	}
	pattern := `(?P<match>https?://(?:[a-z0-9-]+\.)*(?:` + strings.Join(quoted, "|") + `)(?:[/?#:][^\s"'<>)\]` + "`" + `]*)?)` +
		`\.?(?:$|[^a-z0-9._-])`
	if len(quoted) == 0 {
		pattern = `\z.\A`
	}

	return &URLChecker{
		rule: rules.MustCompile(domain.PatternRule{
			ID:          RuleHardcodedURL,
			Pattern:     pattern,
			IgnoreCase:  true,
			Description: "hardcoded external URL; reference it through the link configuration",
			Severity:    domain.SeverityWaivable,
		}),
		allow: allowFiles,
	}
}

// Rule returns the compiled host rule.
func (c *URLChecker) Rule() *rules.Compiled { return c.rule }

// Allowed reports whether file is an allow-listed configuration file. Globs
// are matched against the slash-separated relative path and the base name.
func (c *URLChecker) Allowed(file string) bool {
	p := strings.TrimPrefix(path.Clean(strings.ReplaceAll(file, "\\", "/")), "./")
	base := path.Base(p)
	for _, pattern := range c.allow {
		if wildcard.Match(pattern, p) || wildcard.Match(pattern, base) {
			return true
		}
	}
	return false
}
