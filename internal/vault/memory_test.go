package vault

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestMemoryVaultPutGet(t *testing.T) {
	v := NewMemoryVault("test")

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

func TestMemoryVaultSizeMismatch(t *testing.T) {
	v := NewMemoryVault("test")

	err := v.Put("t-1", strings.NewReader("short"), 100)
	if err == nil {
		t.Fatal("expected size mismatch error")
	}

	// A failed put stores nothing.
	var buf bytes.Buffer
	if err := v.Get("t-1", &buf); err == nil {
		t.Error("expected Get to fail after rejected Put")
	}
}

func TestMemoryVaultGetMissing(t *testing.T) {
	v := NewMemoryVault("test")

	var buf bytes.Buffer
	if err := v.Get("t-404", &buf); err == nil {
		t.Error("expected error for missing blob")
	}
}

func TestMemoryVaultDelete(t *testing.T) {
	v := NewMemoryVault("test")

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

func TestMemoryVaultConcurrentAccess(t *testing.T) {
	v := NewMemoryVault("test")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			data := bytes.Repeat([]byte{byte(i)}, 64)
			if err := v.Put(id, bytes.NewReader(data), 64); err != nil {
				t.Errorf("Put %s failed: %v", id, err)
				return
			}
			var buf bytes.Buffer
			if err := v.Get(id, &buf); err != nil {
				t.Errorf("Get %s failed: %v", id, err)
			}
		}(i)
	}
	wg.Wait()
}
