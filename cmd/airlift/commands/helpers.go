package commands

import (
	"github.com/airlift-sh/airlift/internal/config"
	"github.com/airlift-sh/airlift/internal/secretstores"
)

// buildRegistry constructs every configured store, for the commands that
// enumerate them (doctor, stores). Construction is cheap; clients are
// lazy about network work until Validate or the first set.
func buildRegistry(cfg *config.Config) (*secretstores.Registry, error) {
	registry := secretstores.NewRegistry()

	for name, sc := range cfg.Definition.Stores {
		store, err := secretstores.New(name, sc.Type, sc.Config, cfg.Logger)
		if err != nil {
			return nil, err
		}
		registry.Register(store)
	}
	return registry, nil
}

// buildStore constructs only the store a run is scoped to: the --store
// flag when given, otherwise the sole configured store. Unrelated store
// entries are never touched, so a misconfigured sibling cannot block a
// scoped sync.
func buildStore(cfg *config.Config, flag string) (secretstores.Store, error) {
	name := flag
	if name == "" {
		var err error
		name, err = cfg.DefaultStore()
		if err != nil {
			return nil, err
		}
	}

	sc, err := cfg.GetStore(name)
	if err != nil {
		return nil, err
	}
	return secretstores.New(name, sc.Type, sc.Config, cfg.Logger)
}
