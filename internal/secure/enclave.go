// Package secure holds secret bytes in memguard-protected memory between
// reading them from disk and handing them to a store. File-sourced secrets
// (TLS keys, service-account files) can be large and long-lived relative to
// a sync run, so they are kept encrypted at rest in memory.
package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned when opening a buffer after Destroy.
var ErrDestroyed = errors.New("secure buffer already destroyed")

// Buffer wraps a memguard.Enclave: the data is encrypted in memory and
// mlocked where the platform allows it.
type Buffer struct {
	enclave   *memguard.Enclave
	mu        sync.RWMutex
	destroyed bool
}

// NewBuffer copies data into a protected region. The caller should zero
// its own copy afterwards.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{enclave: memguard.NewEnclave(data)}
}

// Open decrypts the buffer. The caller must Destroy() the returned
// LockedBuffer when done so the plaintext is wiped.
func (b *Buffer) Open() (*memguard.LockedBuffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed {
		return nil, ErrDestroyed
	}
	return b.enclave.Open()
}

// Destroy prevents further use. Idempotent. The encrypted enclave itself
// is safe to leave for the garbage collector; call memguard.Purge() at
// process exit for a full wipe.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return
	}
	b.enclave = nil
	b.destroyed = true
}
