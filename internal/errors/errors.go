package errors

import (
	"fmt"
	"strings"
)

// UserError is an error meant to be read by the operator, with enough
// context to fix the problem without reading source code.
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError reports a problem in airlift.yaml.
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// CommandError reports a failed external command, local or remote.
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// StoreError wraps a secret-store failure with a store-specific
// recovery suggestion.
func StoreError(store string, operation string, err error) error {
	return UserError{
		Message:    fmt.Sprintf("%s store error during %s", store, operation),
		Suggestion: storeSuggestion(store, err),
		Err:        err,
	}
}

func storeSuggestion(store string, err error) string {
	errStr := err.Error()

	switch store {
	case "github":
		if strings.Contains(errStr, "not logged") || strings.Contains(errStr, "authentication") || strings.Contains(errStr, "HTTP 401") {
			return "Run 'gh auth login' or set GH_TOKEN, then retry"
		}
		if strings.Contains(errStr, "HTTP 404") {
			return "Check the 'repo' setting in airlift.yaml (owner/name) and that the token can access it"
		}
		if strings.Contains(errStr, "command not found") || strings.Contains(errStr, "executable file not found") {
			return "Install the GitHub CLI: https://cli.github.com/"
		}

	case "aws":
		if strings.Contains(errStr, "credentials") || strings.Contains(errStr, "authorization") {
			return "Configure AWS credentials: 'aws configure' or set AWS_PROFILE"
		}
		if strings.Contains(errStr, "AccessDenied") {
			return "Check IAM permissions for secretsmanager:PutSecretValue and ssm:PutParameter"
		}
		if strings.Contains(errStr, "ThrottlingException") {
			return "AWS rate limit exceeded. Wait a moment and try again"
		}

	case "gcp":
		if strings.Contains(errStr, "PermissionDenied") || strings.Contains(errStr, "403") {
			return "Check IAM permissions for secretmanager.versions.add on the project"
		}
		if strings.Contains(errStr, "could not find default credentials") {
			return "Run 'gcloud auth application-default login' or set service_account_key_path"
		}

	case "azure":
		if strings.Contains(errStr, "AADSTS") || strings.Contains(errStr, "401") {
			return "Check the Azure credentials (tenant_id, client_id, client_secret) or run 'az login'"
		}
		if strings.Contains(errStr, "Forbidden") {
			return "Grant the identity 'Set' permission on the Key Vault secrets"
		}
	}

	if strings.Contains(errStr, "timeout") {
		return "The operation timed out. Check your network connection and try again"
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return "Unable to connect. Check your network and store configuration"
	}

	return ""
}

// WrapCommandNotFound decorates a missing-tool error with an install hint.
func WrapCommandNotFound(command string, err error) error {
	suggestions := map[string]string{
		"gh":      "Install the GitHub CLI from https://cli.github.com/",
		"ssh":     "Install an OpenSSH client (usually the openssh-client package)",
		"git":     "Install Git from https://git-scm.com/",
		"python3": "Install Python 3 on the remote host",
		"pm2":     "Install pm2 on the remote host: npm install -g pm2",
		"crontab": "Install cron on the remote host (cronie or cron package)",
	}

	suggestion := suggestions[command]
	if suggestion == "" {
		suggestion = fmt.Sprintf("Make sure '%s' is installed and in your PATH", command)
	}

	return CommandError{
		Command:    command,
		Message:    "command not found",
		Suggestion: suggestion,
	}
}
