package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// toJSON turns a YAML document into JSON so one strict decoder handles both
// formats. Files without a .yaml/.yml extension pass through untouched.
func toJSON(path string, data []byte) (out []byte, format string, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return data, "json", nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, "yaml", fmt.Errorf("yaml: %w", err)
	}
	out, err = json.Marshal(stringKeys(doc))
	if err != nil {
		return nil, "yaml", fmt.Errorf("yaml to json: %w", err)
	}
	return out, "yaml", nil
}

// stringKeys rewrites non-string map keys (e.g. `10: x`) in place.
func stringKeys(v any) any {
	switch n := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(n))
		for k, val := range n {
			m[fmt.Sprint(k)] = stringKeys(val)
		}
		return m
	case map[string]any:
		for k, val := range n {
			n[k] = stringKeys(val)
		}
		return n
	case []any:
		for i, val := range n {
			n[i] = stringKeys(val)
		}
		return n
	}
	return v
}

// duration parses a Go duration string for field. Blank means def; an
// explicit zero is kept.
func duration(field, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", field, raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", field)
	}
	return d, nil
}
