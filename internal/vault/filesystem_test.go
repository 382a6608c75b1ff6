package vault

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFSVault(t *testing.T) *FileSystemVault {
	t.Helper()
	v, err := NewFileSystemVault("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault failed: %v", err)
	}
	return v
}

func TestFileSystemVaultPutGet(t *testing.T) {
	v := newTestFSVault(t)

	data := []byte("ciphertext blob")
	if err := v.Put("t-1", bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var buf bytes.Buffer
	if err := v.Get("t-1", &buf); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Errorf("retrieved blob does not match stored blob")
	}
}

func TestFileSystemVaultOverwrite(t *testing.T) {
	v := newTestFSVault(t)

	first := []byte("first version")
	if err := v.Put("t-1", bytes.NewReader(first), int64(len(first))); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	second := []byte("second version, longer than the first")
	if err := v.Put("t-1", bytes.NewReader(second), int64(len(second))); err != nil {
		t.Fatalf("overwriting Put failed: %v", err)
	}

	var buf bytes.Buffer
	if err := v.Get("t-1", &buf); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), second) {
		t.Errorf("expected second version, got %q", buf.String())
	}
}

func TestFileSystemVaultSizeMismatch(t *testing.T) {
	v := newTestFSVault(t)

	if err := v.Put("t-1", strings.NewReader("short"), 100); err == nil {
		t.Fatal("expected size mismatch error")
	}

	// No blob file and no temp file left behind.
	entries, err := os.ReadDir(filepath.Join(v.root, "blobs"))
	if err != nil {
		t.Fatalf("reading blob dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty blob dir after failed Put, found %d entries", len(entries))
	}
}

func TestFileSystemVaultGetMissing(t *testing.T) {
	v := newTestFSVault(t)

	var buf bytes.Buffer
	err := v.Get("t-404", &buf)
	if err == nil {
		t.Fatal("expected error for missing blob")
	}
	if !strings.Contains(err.Error(), "blob not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFileSystemVaultDelete(t *testing.T) {
	v := newTestFSVault(t)

	data := []byte("data")
	if err := v.Put("t-1", bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := v.Delete("t-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var buf bytes.Buffer
	if err := v.Get("t-1", &buf); err == nil {
		t.Error("expected Get to fail after Delete")
	}

	// Deleting a missing blob is not an error.
	if err := v.Delete("t-1"); err != nil {
		t.Errorf("Delete of missing blob failed: %v", err)
	}
}

func TestFileSystemVaultValidateSetup(t *testing.T) {
	v := newTestFSVault(t)

	if err := v.ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup failed: %v", err)
	}

	t.Run("missing blob dir", func(t *testing.T) {
		if err := os.RemoveAll(v.blobDir); err != nil {
			t.Fatalf("removing blob dir: %v", err)
		}
		if err := v.ValidateSetup(); err == nil {
			t.Error("expected ValidateSetup to fail with missing blob dir")
		}
	})
}
