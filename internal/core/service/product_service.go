package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stockroomhq/stockroom/internal/core/domain"
	"github.com/stockroomhq/stockroom/internal/port"
)

// ProductService owns product lifecycle outside the ledger: create, list,
// metadata updates and admin deletion. Quantity never changes here after
// creation; that path belongs to LedgerService.
type ProductService struct {
	store port.ProductStore
	feed  port.Notifier
}

func NewProductService(store port.ProductStore, feed port.Notifier) *ProductService {
	return &ProductService{store: store, feed: feed}
}

type CreateProductInput struct {
	Name        string
	Description string
	Category    string
	Status      domain.ProductStatus
	Quantity    int
	CreatedBy   string
}

func (in CreateProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: product name is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Category) == "" {
		return fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, in.Status)
	}
	if in.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", domain.ErrInvalidInput)
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := domain.Product{
		ID:          fmt.Sprintf("NP-%d", time.Now().UnixMilli()),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    in.Category,
		Status:      in.Status,
		Quantity:    in.Quantity,
		CreatedAt:   time.Now(),
		CreatedBy:   in.CreatedBy,
	}

	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.feed.Notify(domain.TopicProducts)
	return &p, nil
}

func (s *ProductService) Get(ctx context.Context, productID string) (*domain.Product, error) {
	return s.store.Get(ctx, productID)
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.store.List(ctx)
}

type UpdateProductInput struct {
	Name        string
	Description string
	Category    string
	Status      domain.ProductStatus
}

// Update replaces descriptive metadata. The stored quantity is preserved
// unconditionally.
func (s *ProductService) Update(ctx context.Context, productID string, in UpdateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: product name is required", domain.ErrInvalidInput)
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, in.Status)
	}

	current, err := s.store.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Name = strings.TrimSpace(in.Name)
	updated.Description = in.Description
	updated.Category = in.Category
	updated.Status = in.Status

	if err := s.store.UpdateDetails(ctx, updated); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.feed.Notify(domain.TopicProducts)
	return &updated, nil
}

func (s *ProductService) Delete(ctx context.Context, productID string) error {
	if err := s.store.Delete(ctx, productID); err != nil {
		return err
	}
	s.feed.Notify(domain.TopicProducts)
	return nil
}
