package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stockroomhq/stockroom/internal/core/domain"
)

func testProduct(id string, quantity int) domain.Product {
	return domain.Product{
		ID:        id,
		Name:      "product " + id,
		Category:  "Electronics",
		Status:    domain.ProductStatusInStock,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
}

func TestMemoryAdjustQuantity(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	if err := m.Create(ctx, testProduct("P1", 10)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	p, err := m.AdjustQuantity(ctx, "P1", -4)
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if p.Quantity != 6 {
		t.Errorf("expected 6, got %d", p.Quantity)
	}

	_, err = m.AdjustQuantity(ctx, "P1", -7)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got: %v", err)
	}
	if stockErr.Available != 6 {
		t.Errorf("expected available 6, got %d", stockErr.Available)
	}

	p, _ = m.Get(ctx, "P1")
	if p.Quantity != 6 {
		t.Errorf("expected quantity unchanged at 6, got %d", p.Quantity)
	}
}

func TestMemoryAdjustQuantity_Concurrent(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	if err := m.Create(ctx, testProduct("P1", 50)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.AdjustQuantity(ctx, "P1", -1)
		}()
	}
	wg.Wait()

	p, _ := m.Get(ctx, "P1")
	if p.Quantity != 0 {
		t.Errorf("expected 0, got %d", p.Quantity)
	}
}

func TestMemoryUpdateDetails_PreservesQuantity(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	if err := m.Create(ctx, testProduct("P1", 30)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated := testProduct("P1", 999)
	updated.Name = "renamed"
	if err := m.UpdateDetails(ctx, updated); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	p, _ := m.Get(ctx, "P1")
	if p.Name != "renamed" {
		t.Errorf("expected renamed, got %q", p.Name)
	}
	if p.Quantity != 30 {
		t.Errorf("update must not change quantity: got %d", p.Quantity)
	}
}

func TestMemoryAppend_Duplicate(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	rec := domain.DistributionRecord{ID: "DP-1", ProductID: "P1", DistributedTo: "Acme", DistributedQuantity: 1}
	if err := m.Append(ctx, rec); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := m.Append(ctx, rec); !errors.Is(err, domain.ErrDuplicateRecord) {
		t.Errorf("expected ErrDuplicateRecord, got: %v", err)
	}

	records, _ := m.ListByProduct(ctx, "P1")
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
}

func TestMemoryGuard_AcquireRelease(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	if ok, err := m.Acquire(ctx, "req-1"); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if ok, _ := m.Acquire(ctx, "req-1"); ok {
		t.Error("expected second acquire to fail")
	}

	if err := m.Release(ctx, "req-1"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if ok, _ := m.Acquire(ctx, "req-1"); !ok {
		t.Error("expected acquire to succeed after release")
	}
}

func TestMemoryList_SortedByCreation(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"c", "a", "b"} {
		p := testProduct(id, 1)
		p.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := m.Create(ctx, p); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	products, _ := m.List(ctx)
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	want := []string{"c", "a", "b"}
	for i, p := range products {
		if p.ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], p.ID)
		}
	}
}
