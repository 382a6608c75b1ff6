// Package keys manages per-identity RSA keypairs: generation, PEM
// serialization, and persistence. Private keys are encrypted at rest with
// an age scrypt passphrase so a copy of the database alone does not
// expose them.
package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// KeyBits is the RSA modulus size. 2048 bits is the minimum accepted
// security margin for long-lived keys here.
const KeyBits = 2048

const (
	publicPEMType  = "RSA PUBLIC KEY"
	privatePEMType = "RSA PRIVATE KEY"
)

// ErrKeyGeneration is returned when keypair generation itself fails.
// Persistence failures after generation are reported separately so the
// caller knows no keys were stored.
var ErrKeyGeneration = errors.New("key generation failed")

// Generate produces a fresh RSA keypair from the system's secure random source.
func Generate() (*rsa.PrivateKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	return priv, nil
}

// EncodePublicKey serializes a public key as PKCS#1 PEM.
func EncodePublicKey(pub *rsa.PublicKey) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  publicPEMType,
		Bytes: x509.MarshalPKCS1PublicKey(pub),
	})
}

// DecodePublicKey parses a PKCS#1 PEM public key.
func DecodePublicKey(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != publicPEMType {
		return nil, fmt.Errorf("no %s PEM block found", publicPEMType)
	}
	pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	return pub, nil
}

// EncodePrivateKey serializes a private key as PKCS#1 PEM.
func EncodePrivateKey(priv *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  privatePEMType,
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	})
}

// DecodePrivateKey parses a PKCS#1 PEM private key.
func DecodePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != privatePEMType {
		return nil, fmt.Errorf("no %s PEM block found", privatePEMType)
	}
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return priv, nil
}
