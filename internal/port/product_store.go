package port

import (
	"context"

	"github.com/stockroomhq/stockroom/internal/core/domain"
)

type ProductStore interface {
	// Get retrieves a product by id, domain.ErrProductNotFound when unknown.
	Get(ctx context.Context, productID string) (*domain.Product, error)

	// List returns all products, creation time ascending.
	List(ctx context.Context) ([]domain.Product, error)

	// Create persists a new product.
	Create(ctx context.Context, p domain.Product) error

	// UpdateDetails updates descriptive metadata only. Quantity is never
	// touched here; AdjustQuantity is the sole mutation path for it.
	UpdateDetails(ctx context.Context, p domain.Product) error

	// Delete removes a product (admin action, outside the ledger engine).
	Delete(ctx context.Context, productID string) error

	// AdjustQuantity atomically applies quantity += delta and returns the
	// product after the adjustment. Fails with domain.InsufficientStockError
	// if the result would be negative, leaving state unchanged.
	AdjustQuantity(ctx context.Context, productID string, delta int) (*domain.Product, error)
}
