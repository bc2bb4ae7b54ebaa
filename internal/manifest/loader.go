package manifest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// bundled is the catalog shipped inside the binary. Load() falls back to it
// when no external manifest path is given.
//
//go:embed manifest.yaml
var bundled []byte

// Load parses and validates the bundled catalog.
func Load() (*Manifest, error) {
	return Parse(bundled, ".yaml")
}

// Parse parses a catalog from bytes and enforces the load-time invariants.
// ext is the file extension (".yaml", ".yml", ".json") used as a format
// hint; empty = detect from content (leading "{" means JSON).
func Parse(data []byte, ext string) (*Manifest, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == "" {
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			ext = ".json"
		} else {
			ext = ".yaml"
		}
	}

	var m Manifest
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, &Error{reason: fmt.Sprintf("parse manifest json: %v", err)}
		}
	case ".yaml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, &Error{reason: fmt.Sprintf("parse manifest yaml: %v", err)}
		}
	default:
		return nil, &Error{reason: fmt.Sprintf("unsupported manifest format: %s", ext)}
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	m.applyDefaults()
	return &m, nil
}
