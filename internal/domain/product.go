package domain

import "time"

type Category string

const (
	CategorySUV    Category = "SUV"
	CategorySedan  Category = "Sedan"
	CategoryPickup Category = "Pickup"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySUV, CategorySedan, CategoryPickup:
		return true
	}
	return false
}

// Product is a catalog record. Price is in the smallest currency unit.
// Stock is only ever mutated by order placement, via a conditional
// decrement at the storage layer.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Category    Category  `json:"category"`
	Location    string    `json:"location"`
	ImageURL    string    `json:"imageUrl"`
	SellerID    string    `json:"sellerId"`
	Stock       int       `json:"stock"`
	Featured    bool      `json:"isFeatured"`
	Deleted     bool      `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
