package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom/internal/core/domain"
	"github.com/stockroomhq/stockroom/internal/port"
)

// compensationAttempts bounds the retries of the credit that undoes an
// orphaned debit when the journal append fails.
const compensationAttempts = 3

// LedgerService is the only entry point for recording a distribution. It
// keeps the product store and the distribution journal from diverging:
// quantity always equals initial stock minus the sum of committed records.
//
// Commit strategy: the stock is debited first through the store's atomic
// conditional adjustment, then the record is appended to the journal. If the
// append fails the debit is compensated by crediting the stock back. The
// debit-first order is deliberate: the conditional adjust is the one
// collaborator that can enforce non-negativity atomically, so a record is
// never appended for stock that was not actually reserved.
type LedgerService struct {
	store   port.ProductStore
	journal port.DistributionJournal
	guard   port.RequestGuard
	feed    port.Notifier

	locks   sync.Map // productID -> *sync.Mutex
	pending sync.Map // productID -> int, credit still owed after a failed compensation
}

func NewLedgerService(store port.ProductStore, journal port.DistributionJournal, guard port.RequestGuard, feed port.Notifier) *LedgerService {
	return &LedgerService{
		store:   store,
		journal: journal,
		guard:   guard,
		feed:    feed,
	}
}

// DistributeInput carries a distribute intent plus provenance metadata.
// RequestID is optional; when set, replays of the same request are rejected
// with domain.ErrDuplicateRequest instead of double-debiting.
type DistributeInput struct {
	RequestID     string
	ProductID     string
	DistributedTo string
	Quantity      int
	Description   string
	CreatedBy     string
	CreatedByName string
}

func (in DistributeInput) validate() error {
	if in.ProductID == "" {
		return fmt.Errorf("%w: product id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.DistributedTo) == "" {
		return fmt.Errorf("%w: receiver name is required", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be greater than 0", domain.ErrInvalidInput)
	}
	return nil
}

// Distribute validates the intent against current stock, debits the product
// and appends a journal record, as one logical transaction.
func (s *LedgerService) Distribute(ctx context.Context, in DistributeInput) (*domain.DistributionRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	committed := false
	if in.RequestID != "" {
		key := "distribute:" + in.RequestID
		ok, err := s.guard.Acquire(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, domain.ErrDuplicateRequest
		}
		// The id is only burned by a committed record. If the attempt fails
		// short of that, free it so a corrected resubmission is not rejected
		// as a replay.
		defer func() {
			if !committed {
				_ = s.guard.Release(ctx, key)
			}
		}()
	}

	// Serialize writers per product so the read-check-debit sequence is
	// atomic with respect to other distribute calls. Different products
	// proceed in parallel.
	mu := s.lockFor(in.ProductID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.settlePending(ctx, in.ProductID); err != nil {
		return nil, err
	}

	product, err := s.store.Get(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	if in.Quantity > product.Quantity {
		return nil, &domain.InsufficientStockError{
			ProductID: in.ProductID,
			Requested: in.Quantity,
			Available: product.Quantity,
		}
	}

	rec := domain.DistributionRecord{
		ID:                  newRecordID(),
		ProductID:           product.ID,
		ProductName:         product.Name,
		DistributedTo:       strings.TrimSpace(in.DistributedTo),
		DistributedQuantity: in.Quantity,
		Description:         in.Description,
		CreatedAt:           time.Now(),
		CreatedBy:           in.CreatedBy,
		CreatedByName:       in.CreatedByName,
	}

	// Debit first; the store re-checks non-negativity atomically in case it
	// is shared with another process.
	if _, err := s.store.AdjustQuantity(ctx, in.ProductID, -in.Quantity); err != nil {
		return nil, err
	}

	if err := s.journal.Append(ctx, rec); err != nil {
		// Compensate the debit so the orphaned reservation is not leaked.
		if rbErr := s.compensate(ctx, in.ProductID, in.Quantity); rbErr != nil {
			return nil, fmt.Errorf("append failed (%v) and compensation failed: %w", err, rbErr)
		}
		if errors.Is(err, domain.ErrDuplicateRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("append record: %w", err)
	}
	committed = true

	s.feed.Notify(domain.TopicProducts)
	s.feed.Notify(domain.TopicDistributions)

	return &rec, nil
}

// compensate credits qty back after a failed append, retrying transient store
// failures. If every attempt fails the credit is parked and settled by the
// next distribute call for the product, so the ledger still converges.
func (s *LedgerService) compensate(ctx context.Context, productID string, qty int) error {
	var err error
	for attempt := 0; attempt < compensationAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 20 * time.Millisecond)
		}
		if _, err = s.store.AdjustQuantity(ctx, productID, qty); err == nil {
			return nil
		}
	}

	owed := qty
	if v, ok := s.pending.Load(productID); ok {
		owed += v.(int)
	}
	s.pending.Store(productID, owed)
	return err
}

// settlePending replays any credit owed to the product before new debits are
// taken. Called under the product lock.
func (s *LedgerService) settlePending(ctx context.Context, productID string) error {
	v, ok := s.pending.Load(productID)
	if !ok {
		return nil
	}
	if _, err := s.store.AdjustQuantity(ctx, productID, v.(int)); err != nil {
		return fmt.Errorf("settle owed credit: %w", err)
	}
	s.pending.Delete(productID)
	return nil
}

// CurrentAvailability returns the product's live quantity.
func (s *LedgerService) CurrentAvailability(ctx context.Context, productID string) (int, error) {
	product, err := s.store.Get(ctx, productID)
	if err != nil {
		return 0, err
	}
	return product.Quantity, nil
}

// ListDistributions returns the journal for one product, oldest first.
func (s *LedgerService) ListDistributions(ctx context.Context, productID string) ([]domain.DistributionRecord, error) {
	if _, err := s.store.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.journal.ListByProduct(ctx, productID)
}

// ListAllDistributions returns the full journal, oldest first.
func (s *LedgerService) ListAllDistributions(ctx context.Context) ([]domain.DistributionRecord, error) {
	return s.journal.ListAll(ctx)
}

func (s *LedgerService) lockFor(productID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(productID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// newRecordID keeps the timestamp prefix for ordering and adds a random
// suffix so records minted in the same nanosecond never share an id.
func newRecordID() string {
	return fmt.Sprintf("DP-%d-%s", time.Now().UnixNano(), uuid.New().String()[:8])
}
