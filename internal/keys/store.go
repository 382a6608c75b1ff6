package keys

import (
	"crypto/rsa"
	"fmt"

	"adrop/internal/adrop"
	"adrop/internal/model"
)

// Store persists keypairs through the database and implements
// adrop.KeyStore. Private keys are sealed with the master passphrase
// before they touch the database and unsealed on every read; nothing is
// cached across requests.
type Store struct {
	db         adrop.Database
	passphrase string
	clock      adrop.Clock
}

var _ adrop.KeyStore = (*Store)(nil)

// NewStore creates a key store backed by db. passphrase is the server
// master passphrase used for at-rest encryption of private keys.
func NewStore(db adrop.Database, passphrase string, clock adrop.Clock) *Store {
	return &Store{db: db, passphrase: passphrase, clock: clock}
}

// GenerateAndStore creates a fresh keypair for identity and persists it.
// An identity's keypair is created exactly once; a second call fails with
// ErrValidation rather than regenerating, since regeneration would orphan
// every envelope sealed under the old key.
func (s *Store) GenerateAndStore(identity string) (*rsa.PublicKey, error) {
	existing, err := s.db.FindKeypair(identity)
	if err != nil {
		return nil, fmt.Errorf("checking for existing keypair: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: identity already has a keypair", adrop.ErrValidation)
	}

	priv, err := Generate()
	if err != nil {
		return nil, err
	}

	sealed, err := sealPrivateKey(EncodePrivateKey(priv), s.passphrase)
	if err != nil {
		return nil, fmt.Errorf("sealing private key: %w", err)
	}

	kp := &model.Keypair{
		Identity:   identity,
		PublicKey:  EncodePublicKey(&priv.PublicKey),
		PrivateKey: sealed,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.db.CreateKeypair(kp); err != nil {
		// Storage failed after generation: the caller must not assume keys exist.
		return nil, fmt.Errorf("storing keypair: %w", err)
	}

	return &priv.PublicKey, nil
}

// GetPublicKey returns the identity's public key.
func (s *Store) GetPublicKey(identity string) (*rsa.PublicKey, error) {
	kp, err := s.db.FindKeypair(identity)
	if err != nil {
		return nil, fmt.Errorf("finding keypair: %w", err)
	}
	if kp == nil {
		return nil, fmt.Errorf("%w: no keypair for identity", adrop.ErrNotFound)
	}
	pub, err := DecodePublicKey(kp.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("decoding stored public key: %w", err)
	}
	return pub, nil
}

// GetPrivateKey returns the identity's private key, unsealed with the
// master passphrase. The store does no authorization; callers must only
// fetch the requesting identity's own key.
func (s *Store) GetPrivateKey(identity string) (*rsa.PrivateKey, error) {
	kp, err := s.db.FindKeypair(identity)
	if err != nil {
		return nil, fmt.Errorf("finding keypair: %w", err)
	}
	if kp == nil {
		return nil, fmt.Errorf("%w: no keypair for identity", adrop.ErrNotFound)
	}

	pemData, err := openPrivateKey(kp.PrivateKey, s.passphrase)
	if err != nil {
		return nil, fmt.Errorf("unsealing private key: %w", err)
	}
	priv, err := DecodePrivateKey(pemData)
	if err != nil {
		return nil, fmt.Errorf("decoding stored private key: %w", err)
	}
	return priv, nil
}
