package manifest

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testdataPath(name string) string {
	_, f, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(f), "testdata", name)
}

func TestLoad_Bundled(t *testing.T) {
	m, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.LatestVersion == "" {
		t.Error("bundled catalog has no latest version")
	}
	if _, err := m.Get(m.LatestVersion); err != nil {
		t.Errorf("latest version not resolvable: %v", err)
	}
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
latestVersion: "2.0"
validators:
  - version: "2.0"
    artifact: "wt-2.0.jar"
  - version: "1.0"
    artifact: "wt-1.0.jar"
    minimumRuntimeVersion: 17
    args: ["--strict"]
`)
	m, err := Parse(data, ".yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := &Manifest{
		LatestVersion: "2.0",
		Validators: []ValidatorSpec{
			{Version: "2.0", Artifact: "wt-2.0.jar", MinimumRuntimeVersion: 21},
			{Version: "1.0", Artifact: "wt-1.0.jar", MinimumRuntimeVersion: 17, ExtraArgs: []string{"--strict"}},
		},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_JSONDetected(t *testing.T) {
	data := []byte(`{"latestVersion":"1.0","validators":[{"version":"1.0","artifact":"wt-1.0.jar"}]}`)
	m, err := Parse(data, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.LatestVersion != "1.0" {
		t.Errorf("latest = %q, want 1.0", m.LatestVersion)
	}
	if m.Validators[0].MinimumRuntimeVersion != DefaultMinimumRuntime {
		t.Errorf("minimum runtime = %d, want default %d", m.Validators[0].MinimumRuntimeVersion, DefaultMinimumRuntime)
	}
}

func TestParse_Invariants(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing latest", `validators: [{version: "1.0", artifact: "a.jar"}]`},
		{"no validators", `latestVersion: "1.0"`},
		{"duplicate version", `
latestVersion: "1.0"
validators:
  - {version: "1.0", artifact: "a.jar"}
  - {version: "1.0", artifact: "b.jar"}
`},
		{"latest absent", `
latestVersion: "3.0"
validators:
  - {version: "1.0", artifact: "a.jar"}
`},
		{"empty version", `
latestVersion: "1.0"
validators:
  - {version: "", artifact: "a.jar"}
  - {version: "1.0", artifact: "b.jar"}
`},
		{"bad yaml", "latestVersion: [unclosed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data), ".yaml")
			if err == nil {
				t.Fatal("Parse succeeded, want manifest error")
			}
			if !IsManifestError(err) {
				t.Errorf("error is not a manifest error: %v", err)
			}
		})
	}
}

func TestOrderedVersionsLatestFirst(t *testing.T) {
	m := &Manifest{
		LatestVersion: "2.0",
		Validators: []ValidatorSpec{
			{Version: "0.9"},
			{Version: "1.0"},
			{Version: "2.0"},
			{Version: "1.5"},
		},
	}
	got := m.OrderedVersionsLatestFirst()
	want := []string{"2.0", "0.9", "1.0", "1.5"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ordering mismatch (-want +got):\n%s", diff)
	}

	// Each version exactly once, latest at index 0, remainder stable.
	seen := map[string]int{}
	for _, v := range got {
		seen[v]++
	}
	for _, v := range m.Validators {
		if seen[v.Version] != 1 {
			t.Errorf("version %s appears %d times", v.Version, seen[v.Version])
		}
	}
	if got[0] != m.LatestVersion {
		t.Errorf("index 0 = %s, want %s", got[0], m.LatestVersion)
	}
}

func TestOrderedVersionsLatestFirst_LatestAlreadyFirst(t *testing.T) {
	m := &Manifest{
		LatestVersion: "2.0",
		Validators:    []ValidatorSpec{{Version: "2.0"}, {Version: "1.0"}},
	}
	got := m.OrderedVersionsLatestFirst()
	if diff := cmp.Diff([]string{"2.0", "1.0"}, got); diff != "" {
		t.Errorf("ordering mismatch (-want +got):\n%s", diff)
	}
}

func TestGet_Unknown(t *testing.T) {
	m := &Manifest{LatestVersion: "1.0", Validators: []ValidatorSpec{{Version: "1.0"}}}
	_, err := m.Get("9.9")
	if err == nil {
		t.Fatal("Get succeeded for unknown version")
	}
	if !IsManifestError(err) {
		t.Errorf("error is not a manifest error: %v", err)
	}
	if !strings.Contains(err.Error(), "9.9") {
		t.Errorf("error does not name the version: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	m, err := LoadFromPath(testdataPath("catalog.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if m.LatestVersion != "0.2.0" {
		t.Errorf("latest = %q, want 0.2.0", m.LatestVersion)
	}
	if len(m.Validators) != 3 {
		t.Errorf("got %d validators, want 3", len(m.Validators))
	}
}

func TestLoadFromPath_Missing(t *testing.T) {
	if _, err := LoadFromPath(testdataPath("nope.yaml")); err == nil {
		t.Fatal("LoadFromPath succeeded for missing file")
	}
}
