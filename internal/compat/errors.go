package compat

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DocumentInvalidError reports that the validator rejected the document for
// one requested version, whatever the nonzero exit code was. Callers who
// need the parse-failure / runtime-failure split use the compatibility
// path instead.
type DocumentInvalidError struct {
	version    string
	diagnostic string
}

func (e *DocumentInvalidError) Error() string {
	if e.diagnostic == "" {
		return fmt.Sprintf("invalid document for validator %s", e.version)
	}
	return fmt.Sprintf("invalid document for validator %s: %s", e.version, e.diagnostic)
}

// Version returns the validator version that rejected the document.
func (e *DocumentInvalidError) Version() string { return e.version }

// InvalidOnLatestButValidOnOlderError reports that the document is rejected
// by the latest validator but accepted by at least one older version — a
// migration case, not a plain syntax error.
type InvalidOnLatestButValidOnOlderError struct {
	latest             string
	compatibleVersions []string
}

func (e *InvalidOnLatestButValidOnOlderError) Error() string {
	return fmt.Sprintf("invalid on latest validator (%s), but valid on older version(s): %s",
		e.latest, strings.Join(e.compatibleVersions, ", "))
}

// Latest returns the latest validator version.
func (e *InvalidOnLatestButValidOnOlderError) Latest() string { return e.latest }

// CompatibleVersions returns the older versions that accepted the
// document, in evaluation order.
func (e *InvalidOnLatestButValidOnOlderError) CompatibleVersions() []string {
	return append([]string(nil), e.compatibleVersions...)
}

// InvalidForAllVersionsError reports that no catalog version accepted the
// document.
type InvalidForAllVersionsError struct {
	latest string
}

func (e *InvalidForAllVersionsError) Error() string {
	return fmt.Sprintf("invalid document for all catalog validator versions (latest=%s)", e.latest)
}

// Latest returns the latest validator version.
func (e *InvalidForAllVersionsError) Latest() string { return e.latest }

// ValidatorInfrastructureError reports that every attempted validator
// failed to even run, so no parse verdict exists.
type ValidatorInfrastructureError struct {
	invokerErrors map[string]string
}

func (e *ValidatorInfrastructureError) Error() string {
	versions := make([]string, 0, len(e.invokerErrors))
	for v := range e.invokerErrors {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	parts := make([]string, 0, len(versions))
	for _, v := range versions {
		parts = append(parts, fmt.Sprintf("%s: %s", v, e.invokerErrors[v]))
	}
	return "validator runtime error(s): " + strings.Join(parts, "; ")
}

// InvokerErrors returns the per-version error descriptions.
func (e *ValidatorInfrastructureError) InvokerErrors() map[string]string {
	out := make(map[string]string, len(e.invokerErrors))
	for k, v := range e.invokerErrors {
		out[k] = v
	}
	return out
}

// IsDocumentInvalid reports whether err is a single-version rejection.
func IsDocumentInvalid(err error) bool {
	var de *DocumentInvalidError
	return errors.As(err, &de)
}

// IsInvalidOnLatestButValidOnOlder reports whether err is the migration
// case: rejected by latest, accepted by an older version.
func IsInvalidOnLatestButValidOnOlder(err error) bool {
	var oe *InvalidOnLatestButValidOnOlderError
	return errors.As(err, &oe)
}

// IsInvalidForAllVersions reports whether err means no version accepted
// the document.
func IsInvalidForAllVersions(err error) bool {
	var ae *InvalidForAllVersionsError
	return errors.As(err, &ae)
}

// IsInfrastructureError reports whether err means the validator
// infrastructure is broken rather than the document being invalid.
func IsInfrastructureError(err error) bool {
	var ve *ValidatorInfrastructureError
	return errors.As(err, &ve)
}
