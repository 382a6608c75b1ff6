package adrop

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"adrop/internal/envelope"
	"adrop/internal/model"
	"adrop/internal/password"
)

// ShareService is the orchestration layer that coordinates the key store,
// envelope engine, database, and vault to perform file-sharing operations.
// It owns the transfer lifecycle: Pending until a successful password-gated
// accept, then Accepted until expiry.
type ShareService struct {
	database   Database
	vault      Vault
	keys       KeyStore
	logger     Logger
	clock      Clock
	idgen      IDGenerator
	hashParams password.Params
}

// NewShareService creates a new ShareService with the provided dependencies.
func NewShareService(database Database, vault Vault, keys KeyStore, logger Logger, clock Clock, idgen IDGenerator, hashParams password.Params) *ShareService {
	return &ShareService{
		database:   database,
		vault:      vault,
		keys:       keys,
		logger:     logger,
		clock:      clock,
		idgen:      idgen,
		hashParams: hashParams,
	}
}

// RegisterIdentity creates and stores a keypair for a new identity.
func (s *ShareService) RegisterIdentity(identity string) error {
	if identity == "" {
		return fmt.Errorf("%w: identity must not be empty", ErrValidation)
	}
	if _, err := s.keys.GenerateAndStore(identity); err != nil {
		return err
	}
	s.logger.Info("identity registered", "identity", identity)
	return nil
}

// CreateTransfer seals content for recipientID and persists a pending
// transfer gated by pw and expiresAt. Returns the new transfer ID.
//
// The ciphertext is uploaded to the vault before the database row is
// written; if the row write fails the blob is removed again, so a partial
// transfer is never observable.
func (s *ShareService) CreateTransfer(ownerID, recipientID string, content []byte, filename, pw string, expiresAt time.Time) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("%w: filename must not be empty", ErrValidation)
	}
	if !expiresAt.After(s.clock.Now()) {
		return "", fmt.Errorf("%w: expiration must be in the future", ErrValidation)
	}

	pub, err := s.keys.GetPublicKey(recipientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%w: recipient has no public key", ErrValidation)
		}
		return "", fmt.Errorf("fetching recipient public key: %w", err)
	}

	env, err := envelope.Seal(content, pub)
	if err != nil {
		return "", fmt.Errorf("sealing content: %w", err)
	}

	hash, err := password.Hash(pw, s.hashParams)
	if err != nil {
		return "", fmt.Errorf("hashing access password: %w", err)
	}

	id := s.idgen.New()

	if err := s.vault.Put(id, bytes.NewReader(env.Ciphertext), int64(len(env.Ciphertext))); err != nil {
		return "", fmt.Errorf("storing ciphertext: %w", err)
	}

	tr := &model.Transfer{
		ID:           id,
		OwnerID:      ownerID,
		RecipientID:  recipientID,
		FileName:     filename,
		Size:         int64(len(content)),
		WrappedKey:   env.WrappedKey,
		Nonce:        env.Nonce,
		PasswordHash: hash,
		ExpiresAt:    expiresAt,
		Status:       model.StatusPending,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.database.CreateTransfer(tr); err != nil {
		if delErr := s.vault.Delete(id); delErr != nil {
			s.logger.Warn("orphaned ciphertext blob", "transfer", id, "error", delErr)
		}
		return "", fmt.Errorf("recording transfer: %w", err)
	}

	s.logger.Info("transfer created",
		"transfer", id, "owner", ownerID, "recipient", recipientID,
		"file", filename, "expires_at", expiresAt.UTC().Format(time.RFC3339))
	return id, nil
}

// Accept is the recipient's one-time, password-gated authorization of a
// transfer. The password check and the Pending to Accepted transition form
// a single gate; there is no way to verify the password without accepting.
//
// Errors, in check order: ErrNotFound (missing, or not addressed to
// requesterID), ErrExpired, ErrAlreadyAccepted, ErrInvalidPassword.
func (s *ShareService) Accept(transferID, requesterID, pw string) error {
	tr, err := s.loadForRecipient(transferID, requesterID)
	if err != nil {
		return err
	}
	if tr.Status == model.StatusAccepted {
		return ErrAlreadyAccepted
	}

	ok, err := password.Verify(pw, tr.PasswordHash)
	if err != nil {
		return fmt.Errorf("verifying access password: %w", err)
	}
	if !ok {
		s.logger.Debug("accept rejected", "transfer", transferID)
		return ErrInvalidPassword
	}

	// Single-row compare-and-set: of two racing accepts, exactly one
	// observes the pending row and wins.
	updated, err := s.database.MarkTransferAccepted(transferID)
	if err != nil {
		return fmt.Errorf("accepting transfer: %w", err)
	}
	if !updated {
		return ErrAlreadyAccepted
	}

	s.logger.Info("transfer accepted", "transfer", transferID, "recipient", requesterID)
	return nil
}

// AuthorizeRetrieval checks that requesterID may download the transfer and
// returns its sealed envelope and original filename. Retrieval is
// repeatable: acceptance, not download, is the single-use action.
func (s *ShareService) AuthorizeRetrieval(transferID, requesterID string) (*envelope.Envelope, string, error) {
	tr, err := s.loadForRecipient(transferID, requesterID)
	if err != nil {
		return nil, "", err
	}
	if tr.Status != model.StatusAccepted {
		return nil, "", ErrNotAccepted
	}

	var buf bytes.Buffer
	if err := s.vault.Get(tr.ID, &buf); err != nil {
		return nil, "", fmt.Errorf("fetching ciphertext: %w", err)
	}

	env := &envelope.Envelope{
		WrappedKey: tr.WrappedKey,
		Nonce:      tr.Nonce,
		Ciphertext: buf.Bytes(),
	}
	return env, tr.FileName, nil
}

// Download composes AuthorizeRetrieval with decryption under the
// requester's own private key, returning the plaintext and filename.
func (s *ShareService) Download(transferID, requesterID string) ([]byte, string, error) {
	env, filename, err := s.AuthorizeRetrieval(transferID, requesterID)
	if err != nil {
		return nil, "", err
	}

	priv, err := s.keys.GetPrivateKey(requesterID)
	if err != nil {
		return nil, "", fmt.Errorf("fetching private key: %w", err)
	}

	plaintext, err := envelope.Unseal(env, priv)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("transfer downloaded", "transfer", transferID, "recipient", requesterID)
	return plaintext, filename, nil
}

// PurgeExpired deletes transfers past their deadline along with their
// vault blobs. Returns the number of transfers purged.
func (s *ShareService) PurgeExpired() (int, error) {
	ids, err := s.database.DeleteTransfersExpiredBefore(s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("deleting expired transfers: %w", err)
	}

	for _, id := range ids {
		if err := s.vault.Delete(id); err != nil {
			// Row is already gone; an orphaned blob is unreadable without
			// its wrapped key, so log and continue.
			s.logger.Warn("deleting expired blob", "transfer", id, "error", err)
		}
	}

	if len(ids) > 0 {
		s.logger.Info("expired transfers purged", "count", len(ids))
	}
	return len(ids), nil
}

// loadForRecipient fetches a transfer scoped to its recipient and applies
// the expiration overlay. Both checks read the same row snapshot.
func (s *ShareService) loadForRecipient(transferID, requesterID string) (*model.Transfer, error) {
	tr, err := s.database.FindTransferForRecipient(transferID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("finding transfer: %w", err)
	}
	if tr == nil {
		return nil, ErrNotFound
	}
	if !s.clock.Now().Before(tr.ExpiresAt) {
		return nil, ErrExpired
	}
	return tr, nil
}
