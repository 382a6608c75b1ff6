package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"adrop/internal/adrop"
)

// MemoryVault is an in-memory implementation of the Vault interface.
// It stores all blobs in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name  string
	blobs map[string][]byte // transfer ID -> ciphertext
	mu    sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:  name,
		blobs: make(map[string][]byte),
	}
}

// Put stores a blob under the given transfer ID.
func (m *MemoryVault) Put(id string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read blob: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[id] = data
	return nil
}

// Get retrieves the blob for a transfer ID.
func (m *MemoryVault) Get(id string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[id]
	if !ok {
		return fmt.Errorf("blob not found: %s", id)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}

	return nil
}

// Delete removes the blob for a transfer ID. Missing blobs are ignored.
func (m *MemoryVault) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, id)
	return nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryVault implements adrop.Vault
var _ adrop.Vault = (*MemoryVault)(nil)
