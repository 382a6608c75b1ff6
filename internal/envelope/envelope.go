// Package envelope implements envelope encryption for shared files:
// the plaintext is encrypted with a fresh AES-256-GCM data key, and the
// data key is wrapped with RSA-OAEP under the recipient's public key.
// Only the holder of the matching private key can recover the data key
// and hence the plaintext.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"
)

// KeySize is the AES data key size in bytes (AES-256).
const KeySize = 32

// ErrEncrypt is returned when sealing fails. Wrapped errors carry the
// failure stage but never key or plaintext material.
var ErrEncrypt = errors.New("encryption failed")

// ErrDecrypt is returned for every unseal failure. It deliberately does
// not distinguish a wrong key from corrupted data, so callers cannot be
// used as a padding or tamper oracle.
var ErrDecrypt = errors.New("decryption failed")

// Envelope is the sealed bundle persisted for a transfer.
type Envelope struct {
	WrappedKey []byte // data key encrypted with RSA-OAEP(SHA-256)
	Nonce      []byte // AES-GCM nonce, fresh per seal
	Ciphertext []byte // AES-GCM output, includes the auth tag
}

// Seal encrypts plaintext for the holder of the private key matching pub.
// A fresh random data key and nonce are generated on every call; the data
// key is never derived from any input.
func Seal(plaintext []byte, pub *rsa.PublicKey) (*Envelope, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: no public key", ErrEncrypt)
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("%w: generating data key", ErrEncrypt)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: initializing cipher", ErrEncrypt)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: initializing GCM", ErrEncrypt)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: generating nonce", ErrEncrypt)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, key, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: wrapping data key", ErrEncrypt)
	}

	return &Envelope{
		WrappedKey: wrapped,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, nil
}

// Unseal recovers the plaintext from env using priv. Every failure path
// returns the bare ErrDecrypt: unwrap failure, nonce length mismatch, and
// auth tag verification are indistinguishable to the caller. The OAEP and
// GCM checks are constant-time in the underlying primitives.
func Unseal(env *Envelope, priv *rsa.PrivateKey) ([]byte, error) {
	if env == nil || priv == nil {
		return nil, ErrDecrypt
	}

	key, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, env.WrappedKey, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	if len(key) != KeySize {
		return nil, ErrDecrypt
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrDecrypt
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrDecrypt
	}
	if len(env.Nonce) != gcm.NonceSize() {
		return nil, ErrDecrypt
	}

	plaintext, err := gcm.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
