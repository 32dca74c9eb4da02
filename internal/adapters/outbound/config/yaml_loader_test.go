package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	appconfig "github.com/sitegate/sitegate/internal/adapters/outbound/config"
	"github.com/sitegate/sitegate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sitegate.yaml"), []byte(content), 0644))
}

func TestYAMLLoader_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	policy, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPolicy(), policy)
}

func TestYAMLLoader_EmptyFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")

	policy, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPolicy(), policy)
}

func TestYAMLLoader_SectionsOverlayDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
roots: [docs]
urls:
  hosts: [gitlab.com]
search:
  default_tier: 4
`)

	policy, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, policy.Roots)
	assert.Equal(t, []string{"gitlab.com"}, policy.URLs.Hosts)
	assert.Equal(t, 4, policy.EffectiveDefaultTier())
	assert.Equal(t, domain.DefaultPolicy().Terms, policy.Terms, "untouched sections keep defaults")
	assert.Equal(t, domain.DefaultWaiverMarker, policy.Waiver.Marker)
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{{{invalid yaml`)

	_, err := appconfig.New().Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .sitegate.yaml")
	assert.True(t, errors.Is(err, domain.ErrConfig))
}

func TestYAMLLoader_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "rootz: [src]\n")

	_, err := appconfig.New().Load(dir)
	assert.Error(t, err)
}

func TestYAMLLoader_ValidationError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
terms:
  rules:
    - id: broken
      pattern: "("
`)

	_, err := appconfig.New().Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid .sitegate.yaml")
}

func TestTemplate_LoadsBackAsDefaults(t *testing.T) {
	dir := t.TempDir()
	data, err := appconfig.Template()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, appconfig.FileName), data, 0644))

	policy, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPolicy(), policy)
}
