package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/stockroomhq/stockroom/internal/core/domain"
)

// MemoryAdapter is an in-process implementation of the product store, the
// distribution journal, the user repository and the request guard. It backs
// tests and the standalone dev mode where no MySQL is available.
type MemoryAdapter struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	journal  []domain.DistributionRecord
	seen     map[string]bool
	users    map[string]domain.User
	claimed  map[string]bool
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		products: make(map[string]domain.Product),
		seen:     make(map[string]bool),
		users:    make(map[string]domain.User),
		claimed:  make(map[string]bool),
	}
}

func (m *MemoryAdapter) Get(ctx context.Context, productID string) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (m *MemoryAdapter) List(ctx context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}

func (m *MemoryAdapter) Create(ctx context.Context, p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[p.ID]; ok {
		return domain.ErrDuplicateRecord
	}
	m.products[p.ID] = p
	return nil
}

func (m *MemoryAdapter) UpdateDetails(ctx context.Context, p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.products[p.ID]
	if !ok {
		return domain.ErrProductNotFound
	}

	// Quantity is owned by AdjustQuantity; keep the stored value.
	p.Quantity = current.Quantity
	p.CreatedAt = current.CreatedAt
	p.CreatedBy = current.CreatedBy
	m.products[p.ID] = p
	return nil
}

func (m *MemoryAdapter) Delete(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[productID]; !ok {
		return domain.ErrProductNotFound
	}
	delete(m.products, productID)
	return nil
}

func (m *MemoryAdapter) AdjustQuantity(ctx context.Context, productID string, delta int) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if p.Quantity+delta < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID: productID,
			Requested: -delta,
			Available: p.Quantity,
		}
	}

	p.Quantity += delta
	m.products[productID] = p
	return &p, nil
}

func (m *MemoryAdapter) Append(ctx context.Context, rec domain.DistributionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seen[rec.ID] {
		return domain.ErrDuplicateRecord
	}
	m.seen[rec.ID] = true
	m.journal = append(m.journal, rec)
	return nil
}

func (m *MemoryAdapter) ListByProduct(ctx context.Context, productID string) ([]domain.DistributionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []domain.DistributionRecord
	for _, rec := range m.journal {
		if rec.ProductID == productID {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (m *MemoryAdapter) ListAll(ctx context.Context) ([]domain.DistributionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]domain.DistributionRecord, len(m.journal))
	copy(records, m.journal)
	return records, nil
}

func (m *MemoryAdapter) CreateUser(ctx context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.Email]; ok {
		return domain.ErrEmailTaken
	}
	m.users[u.Email] = u
	return nil
}

func (m *MemoryAdapter) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryAdapter) CountUsers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

func (m *MemoryAdapter) Acquire(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.claimed[key] {
		return false, nil
	}
	m.claimed[key] = true
	return true, nil
}

func (m *MemoryAdapter) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.claimed, key)
	return nil
}
