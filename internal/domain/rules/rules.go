// Package rules compiles pattern rules into line matchers.
package rules

import (
	"fmt"
	"regexp"

	"github.com/sitegate/sitegate/internal/domain"
)

// Compiled is a PatternRule ready for matching.
type Compiled struct {
	domain.PatternRule
	re    *regexp.Regexp
	group int
}

// Compile turns a PatternRule into a Compiled matcher.
func Compile(r domain.PatternRule) (*Compiled, error) {
	expr := r.Pattern
	if r.Literal {
		expr = regexp.QuoteMeta(expr)
	}
	if r.IgnoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", r.ID, err)
	}
	if r.Severity == "" {
		r.Severity = domain.SeverityWaivable
	}
	return &Compiled{PatternRule: r, re: re, group: re.SubexpIndex("match")}, nil
}

// CompileAll compiles every rule, failing on the first invalid one.
func CompileAll(rs []domain.PatternRule) ([]*Compiled, error) {
	out := make([]*Compiled, 0, len(rs))
	for _, r := range rs {
		c, err := Compile(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// FirstMatch returns the first match of the rule on line. A group named
// "match" narrows the reported text to that group.
func (c *Compiled) FirstMatch(line string) (string, bool) {
	loc := c.re.FindStringSubmatchIndex(line)
	if loc == nil {
		return "", false
	}
	if c.group > 0 && loc[2*c.group] >= 0 {
		return line[loc[2*c.group]:loc[2*c.group+1]], true
	}
	return line[loc[0]:loc[1]], true
}

// MustCompile is Compile for rules known to be valid.
func MustCompile(r domain.PatternRule) *Compiled {
	c, err := Compile(r)
	if err != nil {
		panic(err)
	}
	return c
}
