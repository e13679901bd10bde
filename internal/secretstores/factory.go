package secretstores

import (
	"fmt"

	dserrors "github.com/airlift-sh/airlift/internal/errors"
	"github.com/airlift-sh/airlift/internal/logging"
)

// New constructs a store from its configured type name. The configMap is
// the inline remainder of the store's YAML block.
func New(name, storeType string, configMap map[string]interface{}, logger *logging.Logger) (Store, error) {
	switch storeType {
	case "github":
		return NewGitHubStore(name, configMap, logger)
	case "aws", "aws-secretsmanager":
		return NewAWSStore(name, configMap, logger)
	case "gcp", "gcp-secretmanager":
		return NewGCPStore(name, configMap, logger)
	case "azure", "azure-keyvault":
		return NewAzureStore(name, configMap, logger)
	case "memory":
		return NewMemoryStore(name), nil
	default:
		return nil, dserrors.ConfigError{
			Field:      "type",
			Value:      storeType,
			Message:    fmt.Sprintf("unknown store type for '%s'", name),
			Suggestion: "Supported types: github, aws, gcp, azure, memory",
		}
	}
}

// Registry holds constructed stores by name for one run.
type Registry struct {
	stores map[string]Store
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]Store)}
}

// Register adds a store. Re-registering a name replaces the prior entry.
func (r *Registry) Register(store Store) {
	r.stores[store.Name()] = store
}

// Get looks up a store by name.
func (r *Registry) Get(name string) (Store, error) {
	store, ok := r.stores[name]
	if !ok {
		return nil, dserrors.ConfigError{
			Field:      "store",
			Value:      name,
			Message:    "store not configured",
			Suggestion: "Add it under stores: in airlift.yaml or pass --store with a configured name",
		}
	}
	return store, nil
}

// Names returns the registered store names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	return names
}
