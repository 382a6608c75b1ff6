package adrop

import (
	"time"

	"adrop/internal/model"
)

// Database provides an interface for metadata storage operations.
// Find methods return nil (not an error) when no row matches; the service
// layer translates that into the proper error kind.
type Database interface {
	// Keypair operations

	// CreateKeypair persists a new keypair. Fails if the identity
	// already has one (primary key conflict).
	CreateKeypair(kp *model.Keypair) error

	// FindKeypair returns the keypair for an identity, or nil if none.
	FindKeypair(identity string) (*model.Keypair, error)

	// Transfer operations

	// CreateTransfer persists a new transfer record.
	CreateTransfer(tr *model.Transfer) error

	// FindTransferForRecipient returns the transfer with the given ID
	// only if recipientID is its recorded recipient; nil otherwise.
	// A missing transfer and someone else's transfer are indistinguishable.
	FindTransferForRecipient(id, recipientID string) (*model.Transfer, error)

	// MarkTransferAccepted transitions a transfer from pending to accepted
	// as a single atomic compare-and-set. Returns false if the transfer
	// was not pending (already accepted, or gone).
	MarkTransferAccepted(id string) (bool, error)

	// ListTransfersBySender returns transfers sent by ownerID, newest
	// first, along with the total count for pagination.
	ListTransfersBySender(ownerID string, limit, offset int) ([]*model.Transfer, int64, error)

	// ListTransfersForRecipient returns transfers addressed to recipientID
	// with the given status, newest first, along with the total count.
	ListTransfersForRecipient(recipientID, status string, limit, offset int) ([]*model.Transfer, int64, error)

	// DeleteTransfersExpiredBefore removes transfers whose deadline is at
	// or before cutoff and returns their IDs so the caller can clean up
	// vault blobs.
	DeleteTransfersExpiredBefore(cutoff time.Time) ([]string, error)

	// Close closes the database connection.
	Close() error
}
