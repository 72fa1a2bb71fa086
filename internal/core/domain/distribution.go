package domain

import "time"

// DistributionRecord is one entry in the append-only distribution journal.
// Records are immutable once written; the product's current quantity is its
// initial quantity minus the sum of all committed records against it.
type DistributionRecord struct {
	ID                  string    `json:"id"`
	ProductID           string    `json:"productId"`
	ProductName         string    `json:"productName"`
	DistributedTo       string    `json:"distributedTo"`
	DistributedQuantity int       `json:"distributedQuantity"`
	Description         string    `json:"description"`
	CreatedAt           time.Time `json:"createdAt"`
	CreatedBy           string    `json:"createdBy"`
	CreatedByName       string    `json:"createdByName"`
}
