package manifest

import "errors"

// Error reports a malformed or inconsistent catalog. It is fatal: the
// orchestrator surfaces it immediately and never retries.
type Error struct {
	reason string
}

func (e *Error) Error() string { return "manifest: " + e.reason }

// IsManifestError reports whether err is a catalog load/validation error.
func IsManifestError(err error) bool {
	var me *Error
	return errors.As(err, &me)
}
