package adrop

import "io"

// Vault provides an interface for ciphertext blob storage backends.
// Blobs are keyed by transfer ID. Operations use io.Reader/io.Writer for
// streaming so large files are not held in memory by the backend.
type Vault interface {
	// Put stores a blob under the given transfer ID.
	// size is the number of bytes that will be read from r.
	Put(id string, r io.Reader, size int64) error

	// Get retrieves the blob for a transfer ID and writes it to w.
	Get(id string, w io.Writer) error

	// Delete removes the blob for a transfer ID. Deleting a missing blob
	// is not an error.
	Delete(id string) error

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
