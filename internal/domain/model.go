package domain

import "time"

// Mode is the enforcement level of a gate run.
type Mode string

const (
	ModeStrict Mode = "strict"
	ModeShadow Mode = "shadow"
)

// ModeFor maps a strict flag to its Mode.
func ModeFor(strict bool) Mode {
	if strict {
		return ModeStrict
	}
	return ModeShadow
}

// Verdict is the final outcome of a gate run.
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictWarn Verdict = "WARN"
	VerdictFail Verdict = "FAIL"
)

// Gate names one of the governance gate variants.
type Gate string

const (
	GateTerms Gate = "terms"
	GateRefs  Gate = "refs"
	GateURLs  Gate = "urls"
)

// AllGates lists the gate variants in the order `sitegate all` runs them.
var AllGates = []Gate{GateTerms, GateRefs, GateURLs}

// ParseGate returns the Gate named by s.
func ParseGate(s string) (Gate, bool) {
	for _, g := range AllGates {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}

// Severity classes for pattern rules.
const (
	SeverityForbidden = "forbidden"
	SeverityWaivable  = "waivable"
)

// PatternRule is a forbidden pattern checked against every scanned line.
type PatternRule struct {
	ID          string `yaml:"id"          json:"id"`
	Pattern     string `yaml:"pattern"     json:"pattern"`
	Literal     bool   `yaml:"literal"     json:"literal,omitempty"`
	IgnoreCase  bool   `yaml:"ignore_case" json:"ignore_case,omitempty"`
	Description string `yaml:"description" json:"description"`
	Severity    string `yaml:"severity"    json:"severity"`
}

// ScanTarget describes which files a gate reads.
type ScanTarget struct {
	Roots       []string `json:"roots"`
	Extensions  []string `json:"extensions"`
	ExcludeDirs []string `json:"excludeDirs"`
}

// SourceFile is one scanned file split into lines.
type SourceFile struct {
	Path  string
	Lines []string
}

// WalkResult holds every file read for a run.
type WalkResult struct {
	RootPath   string
	Files      []SourceFile
	TreeDigest string
}

// Hit is one match of a rule against one line of one file.
type Hit struct {
	RuleID       string `json:"ruleId"`
	Severity     string `json:"severity,omitempty"`
	Description  string `json:"description,omitempty"`
	File         string `json:"file"`
	Line         int    `json:"line"`
	Match        string `json:"match"`
	Snippet      string `json:"snippet"`
	Waived       bool   `json:"waived"`
	WaiverLine   int    `json:"waiverLine,omitempty"`
	WaiverReason string `json:"waiverReason,omitempty"`
	ReasonCode   string `json:"reasonCode,omitempty"`
	Suggestion   string `json:"suggestion,omitempty"`
}

// Summary holds aggregate counts for a run.
type Summary struct {
	FilesScanned int `json:"filesScanned"`
	TotalHits    int `json:"totalHits"`
	Actionable   int `json:"actionable"`
	Waived       int `json:"waived"`
}

// ScanReport is the outcome of one gate run and the evidence JSON document.
type ScanReport struct {
	Gate             Gate           `json:"gate"`
	RunID            string         `json:"runId"`
	Timestamp        time.Time      `json:"timestamp"`
	Mode             Mode           `json:"mode"`
	CommitHash       string         `json:"commitHash,omitempty"`
	Branch           string         `json:"branch,omitempty"`
	TreeDigest       string         `json:"treeDigest,omitempty"`
	Summary          Summary        `json:"summary"`
	WaiverBreakdown  map[string]int `json:"waiverBreakdown"`
	SeverityCounts   map[string]int `json:"severityCounts,omitempty"`
	ActionableItems  []Hit          `json:"actionableItems"`
	WaivedItems      []Hit          `json:"waivedItems"`
	Verdict          Verdict        `json:"verdict"`
	EvidenceFiles    []string       `json:"evidenceFiles,omitempty"`
	EvidenceUploaded bool           `json:"evidenceUploaded,omitempty"`
}

// AllHits returns actionable then waived hits.
func (r *ScanReport) AllHits() []Hit {
	all := make([]Hit, 0, len(r.ActionableItems)+len(r.WaivedItems))
	all = append(all, r.ActionableItems...)
	all = append(all, r.WaivedItems...)
	return all
}

// RunEntry is one line of the run history.
type RunEntry struct {
	RunID      string    `json:"runId"`
	Gate       Gate      `json:"gate"`
	Timestamp  time.Time `json:"timestamp"`
	Mode       Mode      `json:"mode"`
	Verdict    Verdict   `json:"verdict"`
	Actionable int       `json:"actionable"`
	Waived     int       `json:"waived"`
	CommitHash string    `json:"commitHash,omitempty"`
	Branch     string    `json:"branch,omitempty"`
}

// EntryFor summarises a report as a history entry.
func EntryFor(r *ScanReport) RunEntry {
	return RunEntry{
		RunID:      r.RunID,
		Gate:       r.Gate,
		Timestamp:  r.Timestamp,
		Mode:       r.Mode,
		Verdict:    r.Verdict,
		Actionable: r.Summary.Actionable,
		Waived:     r.Summary.Waived,
		CommitHash: r.CommitHash,
		Branch:     r.Branch,
	}
}

// SearchResult is one raw result handed back by a search index.
type SearchResult struct {
	URL     string   `json:"url"`
	Title   string   `json:"title,omitempty"`
	Excerpt string   `json:"excerpt,omitempty"`
	Score   *float64 `json:"score,omitempty"`
}

// RankedResult is a search result annotated with its route and tier.
type RankedResult struct {
	SearchResult
	Route string `json:"route"`
	Tier  int    `json:"tier"`
}
