package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom/internal/adapter/feed"
	"github.com/stockroomhq/stockroom/internal/adapter/storage"
	"github.com/stockroomhq/stockroom/internal/core/domain"
	"github.com/stockroomhq/stockroom/internal/core/service"
)

const (
	initialStock  = 20
	totalRequests = 50
)

// Hammers the ledger with concurrent distribute calls for one product and
// verifies that stock is never overdrawn: successes * quantity must equal
// initial stock minus the final quantity, and the journal must match.
func main() {
	ctx := context.Background()

	store := storage.NewMemoryAdapter()
	notifier := feed.NewSnapshotNotifier(store, store, feed.NewMemoryFeed(), 256)
	notifier.Start(2)
	defer notifier.Close()

	product := domain.Product{
		ID:        "NP-stress",
		Name:      "stress item",
		Category:  "Electronics",
		Status:    domain.ProductStatusInStock,
		Quantity:  initialStock,
		CreatedAt: time.Now(),
	}
	if err := store.Create(ctx, product); err != nil {
		log.Fatalf("failed to create product: %v", err)
	}

	ledger := service.NewLedgerService(store, store, store, notifier)

	var successCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			_, err := ledger.Distribute(ctx, service.DistributeInput{
				RequestID:     uuid.New().String(),
				ProductID:     product.ID,
				DistributedTo: fmt.Sprintf("recipient-%d", n),
				Quantity:      1,
				CreatedBy:     "stress",
				CreatedByName: "stress tool",
			})
			if err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	remaining, err := ledger.CurrentAvailability(ctx, product.ID)
	if err != nil {
		log.Fatalf("failed to read availability: %v", err)
	}
	records, err := ledger.ListDistributions(ctx, product.ID)
	if err != nil {
		log.Fatalf("failed to list journal: %v", err)
	}

	fmt.Printf("requests:   %d in %v\n", totalRequests, elapsed)
	fmt.Printf("successes:  %d\n", successCount.Load())
	fmt.Printf("rejected:   %d\n", failCount.Load())
	fmt.Printf("remaining:  %d\n", remaining)
	fmt.Printf("journal:    %d records\n", len(records))

	if int(successCount.Load()) != initialStock || remaining != 0 {
		log.Fatalf("INVARIANT VIOLATED: %d successes, %d remaining", successCount.Load(), remaining)
	}
	if len(records) != initialStock {
		log.Fatalf("INVARIANT VIOLATED: journal has %d records, want %d", len(records), initialStock)
	}
	fmt.Println("invariants hold")
}
