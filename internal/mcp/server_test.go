package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"windtrader/internal/compat"
	"windtrader/internal/invoke"
	"windtrader/internal/manifest"
)

// fakeRunner scripts invocation results per version; documents containing
// "BAD" are rejected with exit 2.
type fakeRunner struct {
	lastSubcommand string
}

func (f *fakeRunner) run(sub, document string, spec manifest.ValidatorSpec) (invoke.Result, error) {
	f.lastSubcommand = sub
	if strings.Contains(document, "BAD") {
		return invoke.Result{Version: spec.Version, ExitCode: 2, Stderr: "syntax error", Duration: time.Millisecond}, nil
	}
	return invoke.Result{Version: spec.Version, Succeeded: true, Stdout: "ok", Duration: time.Millisecond}, nil
}

func (f *fakeRunner) Check(_ context.Context, document string, spec manifest.ValidatorSpec) (invoke.Result, error) {
	return f.run("check", document, spec)
}

func (f *fakeRunner) Echo(_ context.Context, document string, spec manifest.ValidatorSpec) (invoke.Result, error) {
	return f.run("echo", document, spec)
}

func testCatalog() *manifest.Manifest {
	return &manifest.Manifest{
		LatestVersion: "2.0",
		Validators: []manifest.ValidatorSpec{
			{Version: "2.0", MinimumRuntimeVersion: 21},
			{Version: "1.0", MinimumRuntimeVersion: 17},
		},
	}
}

func newTestServer(t *testing.T) (*Server, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{}
	load := func() (*manifest.Manifest, error) { return testCatalog(), nil }
	orc := compat.NewOrchestrator(runner)
	orc.LoadManifest = load
	return NewServer(runner, orc, load), runner
}

func TestListVersions(t *testing.T) {
	srv, _ := newTestServer(t)
	_, out, err := srv.handleListVersions(context.Background(), nil, struct{}{})
	if err != nil {
		t.Fatalf("list_versions: %v", err)
	}
	want := listVersionsOutput{
		Latest: "2.0",
		Versions: []catalogVersion{
			{Version: "2.0", MinimumRuntimeVersion: 21},
			{Version: "1.0", MinimumRuntimeVersion: 17},
		},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckDocument_DefaultsToLatest(t *testing.T) {
	srv, runner := newTestServer(t)
	_, out, err := srv.handleCheckDocument(context.Background(), nil, checkDocumentInput{Text: "package P;"})
	if err != nil {
		t.Fatalf("check_document: %v", err)
	}
	if !out.OK || out.Version != "2.0" || out.ExitCode != 0 {
		t.Errorf("output = %+v, want ok on latest", out)
	}
	if runner.lastSubcommand != "check" {
		t.Errorf("subcommand = %q, want check", runner.lastSubcommand)
	}
}

func TestCheckDocument_InvalidSurfacesExitCode(t *testing.T) {
	srv, _ := newTestServer(t)
	_, out, err := srv.handleCheckDocument(context.Background(), nil, checkDocumentInput{Text: "BAD", Version: "1.0"})
	if err != nil {
		t.Fatalf("a rejected document is a result, not a tool error: %v", err)
	}
	if out.OK || out.ExitCode != 2 || out.Version != "1.0" {
		t.Errorf("output = %+v, want exit 2 on 1.0", out)
	}
	if out.Stderr != "syntax error" {
		t.Errorf("stderr = %q", out.Stderr)
	}
}

func TestCheckDocument_UnknownVersion(t *testing.T) {
	srv, _ := newTestServer(t)
	_, _, err := srv.handleCheckDocument(context.Background(), nil, checkDocumentInput{Text: "x", Version: "9.9"})
	if err == nil {
		t.Fatal("check_document succeeded for unknown version")
	}
}

func TestEchoDocument(t *testing.T) {
	srv, runner := newTestServer(t)
	_, out, err := srv.handleEchoDocument(context.Background(), nil, checkDocumentInput{Text: "package P;"})
	if err != nil {
		t.Fatalf("echo_document: %v", err)
	}
	if runner.lastSubcommand != "echo" {
		t.Errorf("subcommand = %q, want echo", runner.lastSubcommand)
	}
	if !out.OK {
		t.Errorf("output = %+v, want ok", out)
	}
}

func TestCompatibilityReport(t *testing.T) {
	srv, _ := newTestServer(t)
	_, out, err := srv.handleCompatibilityReport(context.Background(), nil, compatibilityReportInput{Text: "package P;"})
	if err != nil {
		t.Fatalf("compatibility_report: %v", err)
	}
	if out.Status != string(compat.StatusValidLatest) {
		t.Errorf("status = %s, want %s", out.Status, compat.StatusValidLatest)
	}
	if diff := cmp.Diff([]string{"2.0", "1.0"}, out.CompatibleVersions); diff != "" {
		t.Errorf("compatible mismatch (-want +got):\n%s", diff)
	}
}

func TestWatchParent_StopsOnCancel(t *testing.T) {
	old := parentPollInterval
	parentPollInterval = 10 * time.Millisecond
	t.Cleanup(func() { parentPollInterval = old })

	ctx, cancel := context.WithCancel(context.Background())
	fired := make(chan struct{}, 1)
	WatchParent(ctx, func() { fired <- struct{}{} })

	// The parent is alive for the whole test, so the watchdog must stay
	// quiet and exit on cancel.
	select {
	case <-fired:
		t.Fatal("watchdog fired while the parent is alive")
	case <-time.After(50 * time.Millisecond):
	}
	cancel()
}
