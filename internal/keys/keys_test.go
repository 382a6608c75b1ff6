package keys

import (
	"bytes"
	"crypto/rsa"
	"sync"
	"testing"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

// testKeypair generates one RSA key and shares it across tests; generation
// is too slow to repeat per test.
func testKeypair(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		var err error
		testKey, err = Generate()
		if err != nil {
			t.Fatalf("generating test key: %v", err)
		}
	})
	return testKey
}

func TestGenerate(t *testing.T) {
	priv := testKeypair(t)

	if priv.N.BitLen() != KeyBits {
		t.Errorf("expected %d-bit modulus, got %d", KeyBits, priv.N.BitLen())
	}
	if err := priv.Validate(); err != nil {
		t.Errorf("generated key fails validation: %v", err)
	}
}

func TestPublicKeyRoundTrip(t *testing.T) {
	priv := testKeypair(t)

	encoded := EncodePublicKey(&priv.PublicKey)
	if !bytes.Contains(encoded, []byte("RSA PUBLIC KEY")) {
		t.Errorf("encoded public key missing PEM header: %s", encoded)
	}

	decoded, err := DecodePublicKey(encoded)
	if err != nil {
		t.Fatalf("DecodePublicKey failed: %v", err)
	}
	if !decoded.Equal(&priv.PublicKey) {
		t.Errorf("decoded public key differs from original")
	}
}

func TestPrivateKeyRoundTrip(t *testing.T) {
	priv := testKeypair(t)

	encoded := EncodePrivateKey(priv)
	decoded, err := DecodePrivateKey(encoded)
	if err != nil {
		t.Fatalf("DecodePrivateKey failed: %v", err)
	}
	if !decoded.Equal(priv) {
		t.Errorf("decoded private key differs from original")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not PEM", []byte("definitely not a key")},
		{"wrong block type", []byte("-----BEGIN CERTIFICATE-----\nYWJj\n-----END CERTIFICATE-----\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePublicKey(tt.data); err == nil {
				t.Errorf("DecodePublicKey accepted %s", tt.name)
			}
			if _, err := DecodePrivateKey(tt.data); err == nil {
				t.Errorf("DecodePrivateKey accepted %s", tt.name)
			}
		})
	}
}

func TestSealOpenPrivateKey(t *testing.T) {
	priv := testKeypair(t)
	pemData := EncodePrivateKey(priv)

	sealed, err := sealPrivateKey(pemData, "correct horse")
	if err != nil {
		t.Fatalf("sealPrivateKey failed: %v", err)
	}
	if bytes.Contains(sealed, pemData[:64]) {
		t.Errorf("sealed blob contains plaintext PEM")
	}

	opened, err := openPrivateKey(sealed, "correct horse")
	if err != nil {
		t.Fatalf("openPrivateKey failed: %v", err)
	}
	if !bytes.Equal(opened, pemData) {
		t.Errorf("opened PEM differs from original")
	}

	t.Run("wrong passphrase", func(t *testing.T) {
		if _, err := openPrivateKey(sealed, "battery staple"); err == nil {
			t.Errorf("openPrivateKey succeeded with wrong passphrase")
		}
	})
}
