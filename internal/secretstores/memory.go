package secretstores

import (
	"context"
	"sync"
)

// MemoryStore keeps secrets and variables in process memory. It backs
// --dry-run and the test suites; nothing leaves the process.
type MemoryStore struct {
	name string

	mu        sync.Mutex
	secrets   map[string][]byte
	variables map[string]string
	failures  map[string]error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(name string) *MemoryStore {
	return &MemoryStore{
		name:      name,
		secrets:   make(map[string][]byte),
		variables: make(map[string]string),
		failures:  make(map[string]error),
	}
}

// Name returns the store name.
func (m *MemoryStore) Name() string { return m.name }

// SetSecret stores a copy of value under name.
func (m *MemoryStore) SetSecret(ctx context.Context, name string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failures[name]; ok {
		return err
	}
	m.secrets[name] = append([]byte(nil), value...)
	return nil
}

// SetVariable stores value under name.
func (m *MemoryStore) SetVariable(ctx context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failures[name]; ok {
		return err
	}
	m.variables[name] = value
	return nil
}

// Validate always succeeds.
func (m *MemoryStore) Validate(ctx context.Context) error { return nil }

// Capabilities reports the in-memory feature surface.
func (m *MemoryStore) Capabilities() Capabilities {
	return Capabilities{
		NativeVariables: true,
		RequiresAuth:    false,
		AuthMethods:     []string{},
	}
}

// Secret returns the stored secret body and whether it exists.
func (m *MemoryStore) Secret(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.secrets[name]
	return v, ok
}

// Variable returns the stored variable and whether it exists.
func (m *MemoryStore) Variable(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.variables[name]
	return v, ok
}

// SecretCount reports how many distinct secrets have been set.
func (m *MemoryStore) SecretCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.secrets)
}

// VariableCount reports how many distinct variables have been set.
func (m *MemoryStore) VariableCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.variables)
}

// FailWith makes future sets of name return err, for failure-path tests.
func (m *MemoryStore) FailWith(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[name] = err
}
