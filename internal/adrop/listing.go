package adrop

import (
	"fmt"
	"time"

	"adrop/internal/model"
)

const defaultPageSize = 10

// TransferSummary is the metadata view of a transfer exposed by the
// listing operations. It never includes key material or the password hash.
type TransferSummary struct {
	ID          string
	OwnerID     string
	RecipientID string
	FileName    string
	Size        int64
	Status      string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// ListSent returns transfers created by ownerID, newest first, with the
// total count for pagination.
func (s *ShareService) ListSent(ownerID string, limit, offset int) ([]*TransferSummary, int64, error) {
	limit, offset = normalizePage(limit, offset)
	transfers, total, err := s.database.ListTransfersBySender(ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing sent transfers: %w", err)
	}
	return summarize(transfers), total, nil
}

// ListReceived returns accepted transfers addressed to recipientID.
func (s *ShareService) ListReceived(recipientID string, limit, offset int) ([]*TransferSummary, int64, error) {
	limit, offset = normalizePage(limit, offset)
	transfers, total, err := s.database.ListTransfersForRecipient(recipientID, model.StatusAccepted, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing received transfers: %w", err)
	}
	return summarize(transfers), total, nil
}

// ListPendingReceived returns transfers addressed to recipientID that are
// still awaiting acceptance.
func (s *ShareService) ListPendingReceived(recipientID string, limit, offset int) ([]*TransferSummary, int64, error) {
	limit, offset = normalizePage(limit, offset)
	transfers, total, err := s.database.ListTransfersForRecipient(recipientID, model.StatusPending, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing pending transfers: %w", err)
	}
	return summarize(transfers), total, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func summarize(transfers []*model.Transfer) []*TransferSummary {
	result := make([]*TransferSummary, len(transfers))
	for i, tr := range transfers {
		result[i] = &TransferSummary{
			ID:          tr.ID,
			OwnerID:     tr.OwnerID,
			RecipientID: tr.RecipientID,
			FileName:    tr.FileName,
			Size:        tr.Size,
			Status:      tr.Status,
			ExpiresAt:   tr.ExpiresAt,
			CreatedAt:   tr.CreatedAt,
		}
	}
	return result
}
