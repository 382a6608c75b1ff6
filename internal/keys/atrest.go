package keys

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
)

// sealPrivateKey encrypts a private key PEM blob with age's scrypt-based
// passphrase encryption for storage in the database.
func sealPrivateKey(pemData []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(pemData); err != nil {
		return nil, fmt.Errorf("writing encrypted private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encrypted private key: %w", err)
	}

	return buf.Bytes(), nil
}

// openPrivateKey decrypts a private key blob produced by sealPrivateKey.
// Fails if the passphrase is incorrect.
func openPrivateKey(blob []byte, passphrase string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(blob), identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting private key: %w", err)
	}

	pemData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted private key: %w", err)
	}
	return pemData, nil
}
