package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stockroomhq/stockroom/internal/core/domain"
)

func TestCreateProduct(t *testing.T) {
	backend := newMockLedgerBackend()
	notifier := &mockNotifier{}
	svc := NewProductService(backend, notifier)

	p, err := svc.Create(context.Background(), CreateProductInput{
		Name:      "  Laptop  ",
		Category:  "Electronics",
		Status:    domain.ProductStatusInStock,
		Quantity:  50,
		CreatedBy: "u-1",
	})
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}

	if p.ID == "" {
		t.Error("expected a generated id")
	}
	if p.Name != "Laptop" {
		t.Errorf("expected trimmed name, got %q", p.Name)
	}
	if p.Quantity != 50 {
		t.Errorf("expected quantity 50, got %d", p.Quantity)
	}
	if p.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if notifier.count(domain.TopicProducts) != 1 {
		t.Error("expected a products notify")
	}
}

func TestCreateProduct_Invalid(t *testing.T) {
	backend := newMockLedgerBackend()
	svc := NewProductService(backend, &mockNotifier{})

	cases := []struct {
		name string
		in   CreateProductInput
	}{
		{"empty name", CreateProductInput{Category: "Books", Status: domain.ProductStatusInStock}},
		{"empty category", CreateProductInput{Name: "Book", Status: domain.ProductStatusInStock}},
		{"bad status", CreateProductInput{Name: "Book", Category: "Books", Status: "Unknown"}},
		{"negative quantity", CreateProductInput{Name: "Book", Category: "Books", Status: domain.ProductStatusInStock, Quantity: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.in)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got: %v", err)
			}
		})
	}
}

func TestUpdateProduct_PreservesQuantity(t *testing.T) {
	backend := newMockLedgerBackend()
	backend.addProduct("P1", 40)
	notifier := &mockNotifier{}
	svc := NewProductService(backend, notifier)

	updated, err := svc.Update(context.Background(), "P1", UpdateProductInput{
		Name:        "Renamed",
		Description: "new description",
		Category:    "Furniture",
		Status:      domain.ProductStatusDiscontinued,
	})
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}

	if updated.Name != "Renamed" || updated.Status != domain.ProductStatusDiscontinued {
		t.Errorf("metadata not updated: %+v", updated)
	}
	if updated.Quantity != 40 {
		t.Errorf("update must not touch quantity: got %d", updated.Quantity)
	}
}

func TestUpdateProduct_NotFound(t *testing.T) {
	backend := newMockLedgerBackend()
	svc := NewProductService(backend, &mockNotifier{})

	_, err := svc.Update(context.Background(), "missing", UpdateProductInput{
		Name:     "x",
		Category: "Books",
		Status:   domain.ProductStatusInStock,
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got: %v", err)
	}
}
