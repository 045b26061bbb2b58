package domain

import "fmt"

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
	ProductStatusDamaged  ProductStatus = "DAMAGED"
)

// ParseProductStatus converts a raw string into a ProductStatus,
// rejecting values outside the closed set.
func ParseProductStatus(s string) (ProductStatus, error) {
	switch ProductStatus(s) {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDamaged:
		return ProductStatus(s), nil
	}
	return "", fmt.Errorf("unknown product status %q", s)
}

// Rentable reports whether new bookings may be taken for the product.
// This is the coarse check; date availability is a separate question.
func (s ProductStatus) Rentable() bool {
	return s == ProductStatusActive
}

// Product is the catalog entry a rental claims. Pricing fields are the
// defaults quoted to the renter; the quote is snapshotted onto the order.
type Product struct {
	ID               int32         `json:"id"`
	Name             string        `json:"name"`
	PricePerDayCents int32         `json:"price_per_day_cents"`
	DepositCents     int32         `json:"deposit_cents"`
	Status           ProductStatus `json:"status"`
	CreatedAt        string        `json:"created_at"`
}
