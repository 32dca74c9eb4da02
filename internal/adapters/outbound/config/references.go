package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/sitegate/sitegate/internal/domain"
)

// JSONCReferences implements domain.ReferenceLoader for a JSONC object of
// reference key to URL. Nested objects contribute dotted keys, and an object
// with a string "url" field also counts as a key on its own.
type JSONCReferences struct{}

// NewReferences creates a JSONCReferences loader.
func NewReferences() *JSONCReferences { return &JSONCReferences{} }

// LoadReferences parses the source of truth at path. A missing, unreadable
// or malformed file is a *domain.ConfigError.
func (JSONCReferences) LoadReferences(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.ConfigError{Source: path, Err: errors.New("reference source of truth not found")}
		}
		return nil, &domain.ConfigError{Source: path, Err: err}
	}

	refs, err := ParseReferences(data)
	if err != nil {
		return nil, &domain.ConfigError{Source: path, Err: err}
	}
	return refs, nil
}

// ParseReferences strips JSONC comments and trailing commas and flattens the
// top-level object.
func ParseReferences(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("parsing references: %w", err)
	}
	if raw == nil {
		return nil, errors.New("parsing references: top level must be an object")
	}

	refs := make(map[string]string, len(raw))
	flatten("", raw, refs)
	if len(refs) == 0 {
		return nil, errors.New("parsing references: no reference keys defined")
	}
	return refs, nil
}

func flatten(prefix string, obj map[string]any, out map[string]string) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := obj[k].(type) {
		case string:
			out[key] = v
		case map[string]any:
			if u, ok := v["url"].(string); ok {
				out[key] = u
			}
			flatten(key, v, out)
		default:
			out[key] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
}
