package model

import "time"

// Transfer status values. A transfer starts as Pending and moves to Accepted
// exactly once; there is no reverse transition. Expiration is not a stored
// status; it is checked against ExpiresAt on every operation.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

// Keypair holds one identity's long-lived RSA keypair.
// PublicKey is a plaintext PKCS#1 PEM blob. PrivateKey is the PKCS#1 PEM
// blob encrypted at rest under the server master passphrase.
type Keypair struct {
	Identity   string // Opaque identity ID (owns the keypair)
	PublicKey  []byte // PEM, stored in plaintext
	PrivateKey []byte // PEM, age-encrypted with the master passphrase
	CreatedAt  time.Time
}

// Transfer represents one owner→recipient file-sharing act.
// The ciphertext itself lives in the vault keyed by ID; the row carries
// only the envelope's wrapped key and nonce.
type Transfer struct {
	ID           string // UUID
	OwnerID      string // Sender identity
	RecipientID  string // Recipient identity
	FileName     string // Original filename
	Size         int64  // Plaintext size in bytes
	WrappedKey   []byte // AES key encrypted under the recipient's public key
	Nonce        []byte // AES-GCM nonce
	PasswordHash string // argon2id encoded hash of the access password
	ExpiresAt    time.Time
	Status       string // StatusPending or StatusAccepted
	CreatedAt    time.Time
}
