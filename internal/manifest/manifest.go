// Package manifest holds the catalog of known windtrader-java validator
// versions and which of them is the latest.
//
// The catalog is data, not code: a YAML (or JSON) document with a
// `latestVersion` key and a `validators` list. A copy of the bundled
// catalog ships inside the binary; callers can point at an external file
// instead.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultVersion is the validator version used when a caller passes an
// empty version string.
const DefaultVersion = "0.1.1"

// DefaultMinimumRuntime is the advisory minimum Java major version assumed
// when a catalog entry omits minimumRuntimeVersion.
const DefaultMinimumRuntime = 21

// ValidatorSpec identifies one validator version and how to invoke it.
// Immutable once loaded.
type ValidatorSpec struct {
	// Version is the unique key within a manifest. Versions are opaque
	// strings matched exactly; no semver comparison happens anywhere.
	Version string `json:"version" yaml:"version"`

	// Artifact is an opaque handle resolved by the artifact collaborator
	// (for released validators, the jar file name on GitHub Releases).
	Artifact string `json:"artifact" yaml:"artifact"`

	// MinimumRuntimeVersion is the advisory minimum Java major version.
	// Surfaced in listings, never enforced.
	MinimumRuntimeVersion int `json:"minimumRuntimeVersion,omitempty" yaml:"minimumRuntimeVersion,omitempty"`

	// ExtraArgs are appended to the validator invocation after the
	// subcommand, in order.
	ExtraArgs []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// Manifest is the ordered catalog of validator versions.
type Manifest struct {
	LatestVersion string          `json:"latestVersion" yaml:"latestVersion"`
	Validators    []ValidatorSpec `json:"validators" yaml:"validators"`
}

// Get returns the spec for the given version.
func (m *Manifest) Get(version string) (ValidatorSpec, error) {
	for _, v := range m.Validators {
		if v.Version == version {
			return v, nil
		}
	}
	return ValidatorSpec{}, &Error{reason: fmt.Sprintf("validator version not found in manifest: %s", version)}
}

// Versions returns every catalog version in catalog order.
func (m *Manifest) Versions() []string {
	out := make([]string, 0, len(m.Validators))
	for _, v := range m.Validators {
		out = append(out, v.Version)
	}
	return out
}

// OrderedVersionsLatestFirst returns every catalog version exactly once,
// with LatestVersion moved to the front and the rest keeping their catalog
// order. The orchestrator depends on this ordering, so it is a stable
// partition rather than a sort.
func (m *Manifest) OrderedVersionsLatestFirst() []string {
	out := make([]string, 0, len(m.Validators))
	out = append(out, m.LatestVersion)
	for _, v := range m.Validators {
		if v.Version != m.LatestVersion {
			out = append(out, v.Version)
		}
	}
	return out
}

// validate checks the load-time invariants: a latest version must be named,
// versions must be unique, and the latest version must exist in the list.
func (m *Manifest) validate() error {
	if m.LatestVersion == "" {
		return &Error{reason: "manifest has no latestVersion"}
	}
	if len(m.Validators) == 0 {
		return &Error{reason: "manifest has no validators"}
	}
	seen := make(map[string]bool, len(m.Validators))
	for _, v := range m.Validators {
		if v.Version == "" {
			return &Error{reason: "manifest entry has empty version"}
		}
		if seen[v.Version] {
			return &Error{reason: fmt.Sprintf("duplicate validator version in manifest: %s", v.Version)}
		}
		seen[v.Version] = true
	}
	if !seen[m.LatestVersion] {
		return &Error{reason: fmt.Sprintf("latestVersion %s not present in validators", m.LatestVersion)}
	}
	return nil
}

// applyDefaults fills per-entry defaults after parsing.
func (m *Manifest) applyDefaults() {
	for i := range m.Validators {
		if m.Validators[i].MinimumRuntimeVersion == 0 {
			m.Validators[i].MinimumRuntimeVersion = DefaultMinimumRuntime
		}
	}
}

// LoadFromPath reads and validates a catalog file (YAML or JSON).
func LoadFromPath(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}
