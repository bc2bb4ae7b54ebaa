package compat

import (
	"context"
	"strings"
)

// Validate runs the document against exactly one catalog version,
// bypassing the orchestrator. Any nonzero exit code becomes a
// *DocumentInvalidError; invocation-infrastructure failures surface as
// invoke errors unchanged.
func (o *Orchestrator) Validate(ctx context.Context, document, version string) error {
	m, err := o.loadManifest()
	if err != nil {
		return err
	}
	spec, err := m.Get(version)
	if err != nil {
		return err
	}
	res, err := o.Invoker.Check(ctx, document, spec)
	if err != nil {
		return err
	}
	if res.Succeeded {
		return nil
	}
	return &DocumentInvalidError{version: version, diagnostic: strings.TrimSpace(res.Stderr)}
}

// ValidateLatest runs Validate against the catalog's latest version.
func (o *Orchestrator) ValidateLatest(ctx context.Context, document string) error {
	m, err := o.loadManifest()
	if err != nil {
		return err
	}
	return o.Validate(ctx, document, m.LatestVersion)
}

// ValidateWithCompatibility validates against the whole catalog and maps
// the report onto the error taxonomy: nil for a document the latest
// validator accepts, a typed error otherwise.
func (o *Orchestrator) ValidateWithCompatibility(ctx context.Context, document string) error {
	rep, err := o.Report(ctx, document)
	if err != nil {
		return err
	}
	switch rep.Status {
	case StatusValidLatest:
		return nil
	case StatusValidOldOnly:
		compatible := make([]string, 0, len(rep.CompatibleVersions))
		compatible = append(compatible, rep.CompatibleVersions...)
		return &InvalidOnLatestButValidOnOlderError{latest: rep.LatestVersion, compatibleVersions: compatible}
	case StatusValidatorError:
		invokerErrors := make(map[string]string, len(rep.InvokerErrors))
		for k, v := range rep.InvokerErrors {
			invokerErrors[k] = v
		}
		return &ValidatorInfrastructureError{invokerErrors: invokerErrors}
	default:
		return &InvalidForAllVersionsError{latest: rep.LatestVersion}
	}
}
