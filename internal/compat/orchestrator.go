package compat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"windtrader/internal/invoke"
	"windtrader/internal/logging"
	"windtrader/internal/manifest"
)

// maxDiagnostic bounds the per-version diagnostic text carried in a report.
const maxDiagnostic = 500

// Invoker runs one validator version against one document. Implemented by
// invoke.Runner; faked in tests.
type Invoker interface {
	Check(ctx context.Context, document string, spec manifest.ValidatorSpec) (invoke.Result, error)
}

// Orchestrator evaluates a document against every catalog version,
// latest first, strictly sequentially: each invocation completes before
// the next begins, and an invoker failure for one version never aborts the
// rest of the run.
type Orchestrator struct {
	// LoadManifest supplies the catalog. Nil means the bundled catalog.
	LoadManifest func() (*manifest.Manifest, error)

	// Invoker runs individual validator versions.
	Invoker Invoker

	log *slog.Logger
}

// NewOrchestrator returns an Orchestrator using the given invoker and the
// bundled catalog.
func NewOrchestrator(inv Invoker) *Orchestrator {
	return &Orchestrator{Invoker: inv, log: logging.New("compat")}
}

// Report runs the document against every catalog version and reduces the
// outcomes into a single report. It returns an error only when the catalog
// itself cannot be loaded; per-version failures are folded into the report.
func (o *Orchestrator) Report(ctx context.Context, document string) (*Report, error) {
	m, err := o.loadManifest()
	if err != nil {
		return nil, err
	}

	rep := &Report{
		LatestVersion:        m.LatestVersion,
		CompatibleVersions:   []string{},
		IncompatibleVersions: map[string]string{},
		InvokerErrors:        map[string]string{},
	}

	for _, ver := range m.OrderedVersionsLatestFirst() {
		spec, err := m.Get(ver)
		if err != nil {
			// Unreachable for a validated manifest, but fold it like any
			// other per-version failure rather than aborting the run.
			rep.InvokerErrors[ver] = err.Error()
			continue
		}

		res, err := o.Invoker.Check(ctx, document, spec)
		if err != nil {
			o.logger().Warn("validator invocation failed", "version", ver, "err", err)
			rep.InvokerErrors[ver] = err.Error()
			continue
		}

		if res.Succeeded {
			rep.CompatibleVersions = append(rep.CompatibleVersions, ver)
			continue
		}
		rep.IncompatibleVersions[ver] = diagnostic(res)
	}

	rep.classify()
	o.logger().Debug("compatibility report assembled",
		"status", rep.Status,
		"compatible", len(rep.CompatibleVersions),
		"incompatible", len(rep.IncompatibleVersions),
		"invoker_errors", len(rep.InvokerErrors))
	return rep, nil
}

func (o *Orchestrator) loadManifest() (*manifest.Manifest, error) {
	if o.LoadManifest != nil {
		return o.LoadManifest()
	}
	return manifest.Load()
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.log == nil {
		o.log = logging.New("compat")
	}
	return o.log
}

// diagnostic reduces a failed invocation to a short, single-line
// description: the first non-empty stderr line, bounded, or the exit code
// when the validator said nothing.
func diagnostic(res invoke.Result) string {
	text := strings.TrimSpace(res.Stderr)
	if text == "" {
		return fmt.Sprintf("exit code %d", res.ExitCode)
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if len(text) > maxDiagnostic {
		text = text[:maxDiagnostic]
	}
	return text
}
