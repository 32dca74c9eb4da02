package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sitegate/sitegate/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the project policy file read from the project root.
const FileName = ".sitegate.yaml"

// YAMLLoader implements domain.PolicyLoader by reading .sitegate.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .sitegate.yaml from projectPath. A missing or empty file yields
// DefaultPolicy; sections present in the file replace the defaults.
func (l *YAMLLoader) Load(projectPath string) (domain.Policy, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultPolicy(), nil
		}
		return domain.Policy{}, &domain.ConfigError{Source: FileName, Err: err}
	}

	policy := domain.DefaultPolicy()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&policy); err != nil && !errors.Is(err, io.EOF) {
		return domain.Policy{}, &domain.ConfigError{Source: "parsing " + FileName, Err: err}
	}

	if err := policy.Validate(); err != nil {
		return domain.Policy{}, &domain.ConfigError{Source: "invalid " + FileName, Err: err}
	}
	return policy, nil
}

// Marshal renders p as YAML.
func Marshal(p domain.Policy) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encoding policy: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Template returns the commented default policy written by `sitegate init`.
func Template() ([]byte, error) {
	body, err := Marshal(domain.DefaultPolicy())
	if err != nil {
		return nil, err
	}
	header := "# sitegate policy\n" +
		"# Sections left out fall back to the built-in defaults shown here.\n" +
		"# Waive a single hit inline with `" + domain.DefaultWaiverMarker + "(REASON_CODE)` on the\n" +
		"# offending line or the line above it.\n\n"
	return append([]byte(header), body...), nil
}
