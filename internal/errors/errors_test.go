package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/airlift-sh/airlift/internal/errors"
)

func TestUserError(t *testing.T) {
	t.Parallel()

	t.Run("message with suggestion", func(t *testing.T) {
		t.Parallel()

		err := dserrors.UserError{
			Message:    "Cannot read env file .env",
			Suggestion: "Check the --file path",
		}
		assert.Contains(t, err.Error(), "Cannot read env file .env")
		assert.Contains(t, err.Error(), "Check the --file path")
	})

	t.Run("falls back to wrapped error", func(t *testing.T) {
		t.Parallel()

		inner := stderrors.New("permission denied")
		err := dserrors.UserError{Err: inner}
		assert.Contains(t, err.Error(), "permission denied")
		assert.ErrorIs(t, err, inner)
	})

	t.Run("details are included", func(t *testing.T) {
		t.Parallel()

		err := dserrors.UserError{Message: "boom", Details: "stderr output here"}
		assert.Contains(t, err.Error(), "stderr output here")
	})
}

func TestConfigError(t *testing.T) {
	t.Parallel()

	err := dserrors.ConfigError{
		Field:      "type",
		Value:      "vault",
		Message:    "unknown store type",
		Suggestion: "Supported types: github, aws, gcp, azure, memory",
	}
	assert.Contains(t, err.Error(), "field 'type'")
	assert.Contains(t, err.Error(), "vault")
	assert.Contains(t, err.Error(), "unknown store type")
	assert.Contains(t, err.Error(), "Supported types")
}

func TestCommandError(t *testing.T) {
	t.Parallel()

	err := dserrors.CommandError{
		Command:  "gh secret set TOKEN",
		ExitCode: 1,
		Message:  "HTTP 401: Bad credentials",
	}
	assert.Contains(t, err.Error(), "gh secret set TOKEN")
	assert.Contains(t, err.Error(), "exit code: 1")
	assert.Contains(t, err.Error(), "HTTP 401")
}

func TestStoreErrorSuggestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		store string
		err   error
		want  string
	}{
		{
			name:  "github auth",
			store: "github",
			err:   stderrors.New("HTTP 401: authentication required"),
			want:  "gh auth login",
		},
		{
			name:  "github missing repo",
			store: "github",
			err:   stderrors.New("HTTP 404: Not Found"),
			want:  "owner/name",
		},
		{
			name:  "aws access denied",
			store: "aws",
			err:   stderrors.New("AccessDenied: not authorized"),
			want:  "PutSecretValue",
		},
		{
			name:  "gcp permission",
			store: "gcp",
			err:   stderrors.New("rpc error: code = PermissionDenied"),
			want:  "secretmanager.versions.add",
		},
		{
			name:  "azure credentials",
			store: "azure",
			err:   stderrors.New("AADSTS700016: application not found"),
			want:  "az login",
		},
		{
			name:  "generic timeout",
			store: "memory",
			err:   stderrors.New("request timeout"),
			want:  "timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := dserrors.StoreError(tt.store, "set secret", tt.err)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestWrapCommandNotFound(t *testing.T) {
	t.Parallel()

	err := dserrors.WrapCommandNotFound("gh", stderrors.New("executable file not found"))
	assert.Contains(t, err.Error(), "cli.github.com")

	err = dserrors.WrapCommandNotFound("somethingelse", stderrors.New("not found"))
	assert.Contains(t, err.Error(), "somethingelse")
}
