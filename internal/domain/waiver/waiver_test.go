package waiver_test

import (
	"testing"

	"github.com/sitegate/sitegate/internal/domain"
	"github.com/sitegate/sitegate/internal/domain/waiver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver() *waiver.Resolver {
	return waiver.NewResolver(domain.DefaultPolicy().Waiver)
}

func TestParse_Forms(t *testing.T) {
	r := newResolver()

	tests := []struct {
		line   string
		ok     bool
		reason string
	}{
		{"// sitegate:allow", true, ""},
		{"// sitegate:allow(EXTERNAL_STANDARD)", true, "EXTERNAL_STANDARD"},
		{"// sitegate:allow: External standard wording", true, "External standard wording"},
		{"<!-- sitegate:allow quoted from the charter -->", true, "quoted from the charter"},
		{"{/* sitegate:allow legacy name */}", true, "legacy name"},
		{"// sitegate:allowed", false, ""},
		{"// sitegate:allow(unterminated", false, ""},
		{"no marker here", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			reason, ok := r.Parse(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestParse_SkipsInvalidOccurrence(t *testing.T) {
	r := newResolver()
	reason, ok := r.Parse("sitegate:allowed but sitegate:allow(TEST_FIXTURE)")
	require.True(t, ok)
	assert.Equal(t, "TEST_FIXTURE", reason)
}

func TestFind_SameLineBeatsPreviousLine(t *testing.T) {
	r := newResolver()
	lines := []string{
		"// sitegate:allow(LEGAL_REQUIREMENT)",
		"whitelist entry // sitegate:allow(QUOTED_SOURCE)",
	}

	a, ok := r.Find(lines, 1)
	require.True(t, ok)
	assert.Equal(t, 2, a.Line)
	assert.Equal(t, domain.ReasonQuotedSource, a.Code)
}

func TestFind_PreviousLine(t *testing.T) {
	r := newResolver()
	lines := []string{
		"// sitegate:allow historical naming",
		"the whitelist API",
	}

	a, ok := r.Find(lines, 1)
	require.True(t, ok)
	assert.Equal(t, 1, a.Line)
	assert.Equal(t, domain.ReasonHistoricalContext, a.Code)
}

func TestFind_TwoLinesAboveDoesNotCount(t *testing.T) {
	r := newResolver()
	lines := []string{
		"// sitegate:allow",
		"",
		"the whitelist API",
	}

	_, ok := r.Find(lines, 2)
	assert.False(t, ok)
}

func TestFind_FirstLineHasNoPrevious(t *testing.T) {
	r := newResolver()
	_, ok := r.Find([]string{"whitelist"}, 0)
	assert.False(t, ok)
}

func TestResolveCode(t *testing.T) {
	r := newResolver()

	assert.Equal(t, domain.ReasonExternalStandard, r.ResolveCode("EXTERNAL_STANDARD"))
	assert.Equal(t, domain.ReasonExternalStandard, r.ResolveCode("external-standard"))
	assert.Equal(t, domain.ReasonExternalStandard, r.ResolveCode("External standard (W3C vocabulary)"))
	assert.Equal(t, domain.ReasonTestFixture, r.ResolveCode("used by a fixture"))
	assert.Equal(t, domain.ReasonUnspecified, r.ResolveCode("because I said so"))
	assert.Equal(t, domain.ReasonUnspecified, r.ResolveCode(""))
}

func TestResolveCode_FirstSynonymWins(t *testing.T) {
	r := waiver.NewResolver(domain.WaiverPolicy{
		Reasons: []string{"A", "B", domain.ReasonUnspecified},
		Synonyms: []domain.ReasonSynonym{
			{Match: "alpha", Code: "A"},
			{Match: "beta", Code: "B"},
		},
	})
	assert.Equal(t, "A", r.ResolveCode("beta then alpha"))
}

func TestResolveCode_Deterministic(t *testing.T) {
	r := newResolver()
	first := r.ResolveCode("legacy migration pending")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.ResolveCode("legacy migration pending"))
	}
	assert.Equal(t, domain.ReasonHistoricalContext, first)
}

func TestNewResolver_CustomMarker(t *testing.T) {
	r := waiver.NewResolver(domain.WaiverPolicy{Marker: "gov-waiver"})
	assert.Equal(t, "gov-waiver", r.Marker())

	_, ok := r.Parse("// gov-waiver: quote")
	assert.True(t, ok)
	_, ok = r.Parse("// sitegate:allow")
	assert.False(t, ok)
}
