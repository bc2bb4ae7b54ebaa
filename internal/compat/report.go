// Package compat drives the validator across every catalog version and
// reduces the per-version outcomes into a single compatibility verdict.
package compat

// Status classifies the aggregate outcome of one document against the full
// catalog.
type Status string

const (
	// StatusValidLatest: the latest validator accepted the document.
	StatusValidLatest Status = "valid_latest"

	// StatusValidOldOnly: at least one older validator accepted the
	// document, but the latest did not.
	StatusValidOldOnly Status = "valid_old_only"

	// StatusInvalidAll: at least one validator ran and reported invalid
	// syntax, and none accepted the document.
	StatusInvalidAll Status = "invalid_all"

	// StatusValidatorError: every attempted validator failed to even run;
	// none produced a parse verdict.
	StatusValidatorError Status = "validator_error"
)

// Report is the aggregate outcome of one document against the full
// manifest. Built once per validation call; treat as immutable.
type Report struct {
	// LatestVersion is the catalog's designated latest validator.
	LatestVersion string `json:"latest_version"`

	// Status is the overall verdict.
	Status Status `json:"status"`

	// CompatibleVersions lists the versions that accepted the document,
	// in evaluation (latest-first) order.
	CompatibleVersions []string `json:"compatible_versions"`

	// IncompatibleVersions maps version -> truncated diagnostic for
	// versions that ran but rejected the document.
	IncompatibleVersions map[string]string `json:"incompatible_versions"`

	// InvokerErrors maps version -> error description for versions whose
	// invocation itself failed (missing jar, timeout, missing runtime).
	InvokerErrors map[string]string `json:"invoker_errors"`
}

// classify applies the status precedence. The order is deliberate: a
// genuinely invalid document must stay distinguishable from broken
// validator infrastructure, because callers remediate those differently.
func (r *Report) classify() {
	switch {
	case contains(r.CompatibleVersions, r.LatestVersion):
		r.Status = StatusValidLatest
	case len(r.CompatibleVersions) > 0:
		r.Status = StatusValidOldOnly
	case len(r.InvokerErrors) > 0 && len(r.IncompatibleVersions) == 0:
		r.Status = StatusValidatorError
	default:
		r.Status = StatusInvalidAll
	}
}

func contains(versions []string, v string) bool {
	for _, s := range versions {
		if s == v {
			return true
		}
	}
	return false
}
