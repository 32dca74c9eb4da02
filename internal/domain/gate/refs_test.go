package gate_test

import (
	"testing"

	"github.com/sitegate/sitegate/internal/domain"
	"github.com/sitegate/sitegate/internal/domain/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var knownRefs = map[string]string{
	"specRepo":      "https://github.com/example/spec",
	"governanceDoc": "https://example.org/governance",
	"discordInvite": "https://discord.gg/example",
}

func TestRefChecker_ExtractKeys(t *testing.T) {
	c, err := gate.NewRefChecker("", knownRefs)
	require.NoError(t, err)

	keys := c.ExtractKeys(`<a href={refs.specRepo}>repo</a> {getRef("discordInvite")} {getRef('specRepoo')}`)
	assert.Equal(t, []string{"specRepo", "discordInvite", "specRepoo"}, keys)
}

func TestRefChecker_FlagsUnknownKeys(t *testing.T) {
	c, err := gate.NewRefChecker("", knownRefs)
	require.NoError(t, err)

	lines := []string{
		`<Link href={refs.specRepo} />`,
		`<Link href={refs.governanceDocs} /> <Link href={refs.governanceDocs} />`,
	}
	hits := c.ScanLines("src/app/page.tsx", lines, resolver())

	require.Len(t, hits, 1, "repeated unknown key on one line is reported once")
	assert.Equal(t, gate.RuleUnknownRefKey, hits[0].RuleID)
	assert.Equal(t, "governanceDocs", hits[0].Match)
	assert.Equal(t, 2, hits[0].Line)
	assert.Equal(t, `did you mean "governanceDoc"?`, hits[0].Suggestion)
	assert.False(t, hits[0].Waived)
}

func TestRefChecker_WaivedKey(t *testing.T) {
	c, err := gate.NewRefChecker("", knownRefs)
	require.NoError(t, err)

	lines := []string{
		`{/* sitegate:allow migration pending */}`,
		`<Link href={refs.roadmapPage} />`,
	}
	hits := c.ScanLines("page.tsx", lines, resolver())

	require.Len(t, hits, 1)
	assert.True(t, hits[0].Waived)
	assert.Equal(t, domain.ReasonMigrationPending, hits[0].ReasonCode)
}

func TestRefChecker_Suggest(t *testing.T) {
	c, err := gate.NewRefChecker("", knownRefs)
	require.NoError(t, err)

	assert.Equal(t, "specRepo", c.Suggest("SPECREPO"))
	assert.Equal(t, "discordInvite", c.Suggest("discordLink"))
	assert.Equal(t, "", c.Suggest("unrelatedThing"))
}

func TestRefChecker_CustomPattern(t *testing.T) {
	c, err := gate.NewRefChecker(`LINKS\[["'](\w+)["']\]`, knownRefs)
	require.NoError(t, err)

	assert.Equal(t, []string{"specRepo"}, c.ExtractKeys(`LINKS["specRepo"]`))
}

func TestRefChecker_InvalidPattern(t *testing.T) {
	_, err := gate.NewRefChecker(`(`, knownRefs)
	assert.Error(t, err)
}

func TestRefChecker_NestedKeys(t *testing.T) {
	c, err := gate.NewRefChecker("", map[string]string{
		"social.x":      "https://x.com/example",
		"social.github": "https://github.com/example",
		"specRepo":      "https://github.com/example/spec",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"social.x", "social.typo"},
		c.ExtractKeys(`<a href={refs.social.x}>x</a> {getRef("social.typo")}`))
	assert.True(t, c.Defined("social.x"))
	assert.True(t, c.Defined("social"), "an object of references is defined")
	assert.False(t, c.Defined("social.typo"))
	assert.False(t, c.Defined("soc"))

	lines := []string{
		`<a href={refs.social.x}>x</a>`,
		`<a href={getRef("social.typo")}>y</a>`,
		`{Object.keys(refs.social).length} links. See refs.specRepo.`,
	}
	hits := c.ScanLines("page.tsx", lines, resolver())

	require.Len(t, hits, 1)
	assert.Equal(t, "social.typo", hits[0].Match)
	assert.Equal(t, 2, hits[0].Line)
}
