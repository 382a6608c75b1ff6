package adrop

import "crypto/rsa"

// KeyStore manages one long-lived RSA keypair per identity.
// The store performs no authorization: GetPrivateKey must only be called
// from the requesting identity's own decrypt path.
type KeyStore interface {
	// GenerateAndStore creates and persists a fresh keypair for identity.
	// Fails with ErrValidation if the identity already has one; a keypair
	// is never regenerated, since that would orphan existing envelopes.
	GenerateAndStore(identity string) (*rsa.PublicKey, error)

	// GetPublicKey returns the identity's public key.
	// Fails with ErrNotFound if the identity has no stored keypair.
	GetPublicKey(identity string) (*rsa.PublicKey, error)

	// GetPrivateKey returns the identity's decrypted private key.
	// Fails with ErrNotFound if the identity has no stored keypair.
	GetPrivateKey(identity string) (*rsa.PrivateKey, error)
}
