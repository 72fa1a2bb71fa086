package domain

import "time"

type ProductStatus string

const (
	ProductStatusInStock      ProductStatus = "In Stock"
	ProductStatusOutOfStock   ProductStatus = "Out of Stock"
	ProductStatusDiscontinued ProductStatus = "Discontinued"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusInStock, ProductStatusOutOfStock, ProductStatusDiscontinued:
		return true
	}
	return false
}

type Product struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Status      ProductStatus `json:"status"`
	Quantity    int           `json:"quantity"`
	CreatedAt   time.Time     `json:"createdAt"`
	CreatedBy   string        `json:"createdBy"`
}
