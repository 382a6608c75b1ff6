package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"adrop/internal/adrop"
)

// FileSystemVault is a filesystem-based implementation of the Vault
// interface. Blobs are stored as files named by transfer ID under
// <root>/blobs. Transfer IDs are UUIDs, so names never escape the directory.
type FileSystemVault struct {
	name    string
	root    string
	blobDir string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	blobDir := filepath.Join(root, "blobs")

	if err := os.MkdirAll(blobDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}

	return &FileSystemVault{
		name:    name,
		root:    root,
		blobDir: blobDir,
	}, nil
}

// Put stores a blob under the given transfer ID. The blob is written to a
// temp file and renamed into place so a partial write is never visible.
func (v *FileSystemVault) Put(id string, r io.Reader, size int64) error {
	destPath := filepath.Join(v.blobDir, id)

	tmp, err := os.CreateTemp(v.blobDir, id+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != size {
		os.Remove(tmpPath)
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move blob into place: %w", err)
	}

	return nil
}

// Get retrieves the blob for a transfer ID and writes it to w.
func (v *FileSystemVault) Get(id string, w io.Writer) error {
	srcPath := filepath.Join(v.blobDir, id)

	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("blob not found: %s", id)
		}
		return fmt.Errorf("failed to open blob: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read blob: %w", err)
	}

	return nil
}

// Delete removes the blob for a transfer ID. Missing blobs are ignored.
func (v *FileSystemVault) Delete(id string) error {
	err := os.Remove(filepath.Join(v.blobDir, id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup() error {
	info, err := os.Stat(v.blobDir)
	if err != nil {
		return fmt.Errorf("vault blob directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault blob path is not a directory: %s", v.blobDir)
	}
	return nil
}

// Compile-time check that FileSystemVault implements adrop.Vault
var _ adrop.Vault = (*FileSystemVault)(nil)
