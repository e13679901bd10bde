package config

import (
	"strings"

	dserrors "github.com/airlift-sh/airlift/internal/errors"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// configSchema is the structural contract for airlift.yaml, checked
// before the typed unmarshal so misconfigurations fail with field paths
// instead of zero values.
const configSchema = `{
  "type": "object",
  "required": ["version"],
  "properties": {
    "version": {"type": "integer", "enum": [0]},
    "stores": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["type"],
        "properties": {
          "type": {"type": "string"}
        }
      }
    },
    "deploy": {
      "type": "object",
      "required": ["host", "user", "project"],
      "properties": {
        "host": {"type": "string", "minLength": 1},
        "port": {"type": "integer", "minimum": 1, "maximum": 65535},
        "user": {"type": "string", "minLength": 1},
        "key_path": {"type": "string"},
        "project": {"type": "string", "pattern": "^[A-Za-z0-9._-]+$"},
        "license_key_env": {"type": "string"},
        "python": {"type": "string"},
        "app_script": {"type": "string"},
        "requirements": {"type": "string"},
        "source": {"type": "string"}
      }
    }
  }
}`

// validateSchema checks the raw YAML document against configSchema.
// yaml.v3 decodes mappings as map[string]interface{}, which the schema
// loader accepts directly.
func validateSchema(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters",
		}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return dserrors.ConfigError{
			Message:    "schema validation failed: " + err.Error(),
			Suggestion: "Check the airlift.yaml structure against the documented format",
		}
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return dserrors.ConfigError{
			Message:    "configuration does not match the expected structure: " + strings.Join(problems, "; "),
			Suggestion: "Fix the listed fields in airlift.yaml",
		}
	}
	return nil
}
