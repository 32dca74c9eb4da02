package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sitegate/sitegate/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseGate(t *testing.T) {
	for _, g := range domain.AllGates {
		got, ok := domain.ParseGate(string(g))
		assert.True(t, ok)
		assert.Equal(t, g, got)
	}
	_, ok := domain.ParseGate("spelling")
	assert.False(t, ok)
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, domain.ModeStrict, domain.ModeFor(true))
	assert.Equal(t, domain.ModeShadow, domain.ModeFor(false))
}

func TestScanReport_AllHits(t *testing.T) {
	r := &domain.ScanReport{
		ActionableItems: []domain.Hit{{RuleID: "a"}},
		WaivedItems:     []domain.Hit{{RuleID: "b", Waived: true}},
	}
	all := r.AllHits()
	assert.Len(t, all, 2)
	assert.Equal(t, "a", all[0].RuleID)
	assert.Equal(t, "b", all[1].RuleID)
}

func TestEntryFor(t *testing.T) {
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	e := domain.EntryFor(&domain.ScanReport{
		Gate: domain.GateURLs, RunID: "r", Timestamp: ts, Mode: domain.ModeStrict,
		Verdict: domain.VerdictFail, CommitHash: "abc", Branch: "main",
		Summary: domain.Summary{Actionable: 3, Waived: 1},
	})
	assert.Equal(t, domain.RunEntry{
		RunID: "r", Gate: domain.GateURLs, Timestamp: ts, Mode: domain.ModeStrict,
		Verdict: domain.VerdictFail, Actionable: 3, Waived: 1, CommitHash: "abc", Branch: "main",
	}, e)
}

func TestConfigError_IsErrConfig(t *testing.T) {
	err := fmt.Errorf("loading: %w", &domain.ConfigError{Source: "refs", Err: errors.New("missing")})
	assert.True(t, errors.Is(err, domain.ErrConfig))
	assert.Contains(t, err.Error(), "refs: missing")
}

func TestExitError(t *testing.T) {
	e := &domain.ExitError{Code: 2}
	assert.Equal(t, 2, e.ExitCode())
	assert.Equal(t, "exit status 2", e.Error())
	assert.Equal(t, "links", (&domain.ExitError{Code: 2, Message: "links"}).Error())
}
