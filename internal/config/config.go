// Package config loads and validates airlift.yaml.
package config

import (
	"os"

	dserrors "github.com/airlift-sh/airlift/internal/errors"
	"github.com/airlift-sh/airlift/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration shared across commands.
type Config struct {
	Path       string
	Logger     *logging.Logger
	Debug      bool
	Definition *Definition
}

// Definition is the airlift.yaml structure.
type Definition struct {
	Version int                    `yaml:"version"`
	Stores  map[string]StoreConfig `yaml:"stores"`
	Deploy  *DeployConfig          `yaml:"deploy,omitempty"`
}

// StoreConfig is one entry under stores:. Everything besides type is
// backend-specific and passed through inline.
type StoreConfig struct {
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:",inline"`
}

// DeployConfig describes the remote host and project being provisioned.
type DeployConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port,omitempty"`
	User          string `yaml:"user"`
	KeyPath       string `yaml:"key_path,omitempty"`
	Project       string `yaml:"project"`
	LicenseKeyEnv string `yaml:"license_key_env,omitempty"`
	Python        string `yaml:"python,omitempty"`
	AppScript     string `yaml:"app_script,omitempty"`
	Requirements  string `yaml:"requirements,omitempty"`
	Source        string `yaml:"source,omitempty"`
}

// Load reads, schema-validates and parses the configuration file.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return dserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create airlift.yaml or pass --config with the right path",
			}
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	if err := validateSchema(data); err != nil {
		return err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters",
		}
	}

	applyDeployDefaults(def.Deploy)

	c.Definition = &def
	return nil
}

func applyDeployDefaults(d *DeployConfig) {
	if d == nil {
		return
	}
	if d.Port == 0 {
		d.Port = 22
	}
	if d.LicenseKeyEnv == "" {
		d.LicenseKeyEnv = "NEW_RELIC_LICENSE_KEY"
	}
	if d.Python == "" {
		d.Python = "python3"
	}
	if d.AppScript == "" {
		d.AppScript = "main.py"
	}
	if d.Requirements == "" {
		d.Requirements = "requirements.txt"
	}
	if d.Source == "" {
		d.Source = "."
	}
}

// GetStore returns the named store configuration.
func (c *Config) GetStore(name string) (StoreConfig, error) {
	if c.Definition == nil {
		return StoreConfig{}, dserrors.UserError{
			Message:    "Configuration not loaded",
			Suggestion: "This is an internal error. Please report it",
		}
	}

	store, ok := c.Definition.Stores[name]
	if !ok {
		return StoreConfig{}, dserrors.ConfigError{
			Field:      "store",
			Value:      name,
			Message:    "store not found in configuration",
			Suggestion: "Add it under stores: in " + c.Path,
		}
	}
	return store, nil
}

// DefaultStore returns the sole configured store name, or an error when
// the choice is ambiguous and --store is required.
func (c *Config) DefaultStore() (string, error) {
	if c.Definition == nil || len(c.Definition.Stores) == 0 {
		return "", dserrors.ConfigError{
			Field:      "stores",
			Message:    "no stores configured",
			Suggestion: "Add at least one store under stores: in " + c.Path,
		}
	}
	if len(c.Definition.Stores) > 1 {
		return "", dserrors.ConfigError{
			Field:      "stores",
			Message:    "multiple stores configured",
			Suggestion: "Pass --store to pick one",
		}
	}
	for name := range c.Definition.Stores {
		return name, nil
	}
	return "", nil // unreachable
}
