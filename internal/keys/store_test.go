package keys

import (
	"errors"
	"strings"
	"testing"

	"adrop/internal/adrop"
	"adrop/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	return NewStore(db, "test-master-passphrase", testutil.FixedClock())
}

func TestStoreGenerateAndStore(t *testing.T) {
	store := newTestStore(t)

	pub, err := store.GenerateAndStore("alice")
	if err != nil {
		t.Fatalf("GenerateAndStore failed: %v", err)
	}
	if pub == nil {
		t.Fatal("expected a public key")
	}

	t.Run("second generation is refused", func(t *testing.T) {
		_, err := store.GenerateAndStore("alice")
		if !errors.Is(err, adrop.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("public key round trips through storage", func(t *testing.T) {
		got, err := store.GetPublicKey("alice")
		if err != nil {
			t.Fatalf("GetPublicKey failed: %v", err)
		}
		if !got.Equal(pub) {
			t.Errorf("stored public key differs from generated one")
		}
	})

	t.Run("private key matches public key", func(t *testing.T) {
		priv, err := store.GetPrivateKey("alice")
		if err != nil {
			t.Fatalf("GetPrivateKey failed: %v", err)
		}
		if !priv.PublicKey.Equal(pub) {
			t.Errorf("private key does not match stored public key")
		}
	})
}

func TestStoreUnknownIdentity(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetPublicKey("nobody"); !errors.Is(err, adrop.ErrNotFound) {
		t.Errorf("GetPublicKey: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetPrivateKey("nobody"); !errors.Is(err, adrop.ErrNotFound) {
		t.Errorf("GetPrivateKey: expected ErrNotFound, got %v", err)
	}
}

func TestStoreWrongMasterPassphrase(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	clock := testutil.FixedClock()

	store := NewStore(db, "the right passphrase", clock)
	if _, err := store.GenerateAndStore("alice"); err != nil {
		t.Fatalf("GenerateAndStore failed: %v", err)
	}

	// A store opened with a different master passphrase can still serve
	// public keys but cannot unseal private ones.
	wrong := NewStore(db, "a different passphrase", clock)

	if _, err := wrong.GetPublicKey("alice"); err != nil {
		t.Errorf("GetPublicKey should not need the passphrase, got %v", err)
	}

	_, err := wrong.GetPrivateKey("alice")
	if err == nil {
		t.Fatal("GetPrivateKey succeeded with wrong master passphrase")
	}
	if !strings.Contains(err.Error(), "unsealing private key") {
		t.Errorf("unexpected error: %v", err)
	}
}
