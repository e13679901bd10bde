// Package validation holds validated-input boundary types: values that
// cannot be constructed in an invalid state, so downstream code never
// re-checks them.
package validation

import (
	"strings"

	dserrors "github.com/airlift-sh/airlift/internal/errors"
)

// LicenseKey is a non-empty licensing credential destined for the remote
// process environment. Constructing it is the deploy orchestrator's
// fail-fast guard: an empty key aborts the run before any remote file is
// written, so a config file with a blank secret can never be generated.
type LicenseKey struct {
	value string
}

// NewLicenseKey validates and wraps the credential. envName is only used
// to build the error message.
func NewLicenseKey(value, envName string) (LicenseKey, error) {
	if strings.TrimSpace(value) == "" {
		return LicenseKey{}, dserrors.UserError{
			Message:    "required license key is empty",
			Details:    "refusing to deploy: the generated process descriptor would embed an empty credential",
			Suggestion: "Export " + envName + " (or set deploy.license_key_env to the right variable) and retry",
		}
	}
	return LicenseKey{value: value}, nil
}

// Reveal returns the raw key for embedding into the rendered descriptor.
func (k LicenseKey) Reveal() string { return k.value }

// String keeps the key out of accidental log output.
func (k LicenseKey) String() string { return "[REDACTED]" }
