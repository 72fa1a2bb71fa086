package port

import (
	"context"

	"github.com/stockroomhq/stockroom/internal/core/domain"
)

// DistributionJournal is the append-only log of distribution transactions.
// No update or delete is exposed; records are immutable once written.
type DistributionJournal interface {
	// Append persists a new record, domain.ErrDuplicateRecord on id collision.
	Append(ctx context.Context, rec domain.DistributionRecord) error

	// ListByProduct returns records for one product, creation time ascending.
	// Each call issues a fresh read and may be repeated without side effects.
	ListByProduct(ctx context.Context, productID string) ([]domain.DistributionRecord, error)

	// ListAll returns every record, creation time ascending.
	ListAll(ctx context.Context) ([]domain.DistributionRecord, error)
}
