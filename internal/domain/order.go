package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// CanTransition reports whether from -> to is a legal lifecycle step.
// Delivered and cancelled are terminal.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// LineItem snapshots the product price at order time; it is never
// re-derived from the current catalog price.
type LineItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

type Order struct {
	ID              string     `json:"id"`
	BuyerID         string     `json:"buyerId"`
	Items           []LineItem `json:"items"`
	TotalPrice      int64      `json:"totalPrice"`
	Status          Status     `json:"status"`
	ShippingAddress string     `json:"shippingAddress"`
	CreatedAt       time.Time  `json:"createdAt"`
	Deleted         bool       `json:"-"`
}

// UserRef carries the display fields of a buyer or seller.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ProductView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       int64   `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Description string  `json:"description"`
	Seller      UserRef `json:"seller"`
}

type OrderLine struct {
	Product  ProductView `json:"product"`
	Quantity int         `json:"quantity"`
	Price    int64       `json:"price"`
}

// OrderView is the order representation returned to clients, with buyer
// and product references expanded to display fields.
type OrderView struct {
	ID              string      `json:"id"`
	Buyer           UserRef     `json:"buyer"`
	Products        []OrderLine `json:"products"`
	TotalPrice      int64       `json:"totalPrice"`
	Status          Status      `json:"status"`
	ShippingAddress string      `json:"shippingAddress"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// SellerIDs returns the distinct sellers whose products appear in the
// order, in line order.
func (v *OrderView) SellerIDs() []string {
	seen := make(map[string]bool, len(v.Products))
	var ids []string
	for _, line := range v.Products {
		id := line.Product.Seller.ID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
