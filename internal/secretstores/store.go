// Package secretstores defines the write-side abstraction over remote
// secret/variable stores and its backends. A store exposes exactly two
// mutations — set-secret and set-variable — both of which overwrite any
// prior value, so re-running a sync is idempotent.
package secretstores

import "context"

// Store is a remote secret/variable store.
//
// Implementations must be safe for sequential use from a single sync run;
// airlift never issues concurrent mutations. Secrets are write-only from
// the client's perspective: there is no read-back or drift verification,
// success is judged by the call outcome alone.
type Store interface {
	// Name returns the configured store name (the key under stores: in
	// airlift.yaml), used in logs and error messages.
	Name() string

	// SetSecret writes a secret body under name, overwriting any
	// existing value.
	SetSecret(ctx context.Context, name string, value []byte) error

	// SetVariable writes a non-secret configuration value under name,
	// overwriting any existing value.
	SetVariable(ctx context.Context, name, value string) error

	// Validate checks connectivity and authentication before a run.
	Validate(ctx context.Context) error

	// Capabilities reports what the backend supports.
	Capabilities() Capabilities
}

// Capabilities describes a backend's feature surface.
type Capabilities struct {
	// NativeVariables is true when the backend has a distinct variable
	// store (GitHub Actions variables, SSM String parameters). Backends
	// without one emulate variables as labeled secrets.
	NativeVariables bool

	// RequiresAuth is false only for the in-memory store.
	RequiresAuth bool

	// AuthMethods lists how the backend authenticates ("cli", "token",
	// "iam", "service-account", "managed-identity").
	AuthMethods []string
}

// AuthError indicates the store rejected our credentials.
type AuthError struct {
	Store   string
	Message string
}

func (e AuthError) Error() string {
	return "authentication failed for store " + e.Store + ": " + e.Message
}

// ValidationError indicates a request or configuration was invalid.
type ValidationError struct {
	Store   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Store == "" {
		return "validation failed: " + e.Message
	}
	return "validation failed for store " + e.Store + ": " + e.Message
}
