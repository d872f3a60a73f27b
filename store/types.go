// Package store holds the storefront side of the sample domain: the shapes orders
// have when they arrive from the shop API.
package store

// OrderStatus is a custom type for type-safe status handling.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPaid      OrderStatus = "Paid"
	StatusShipped   OrderStatus = "Shipped"
	StatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCancelled:
		return true
	default:
		return false
	}
}

// Address is a postal address as typed by the customer.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// Customer represents the user placing orders.
// Referrer may point back to a customer already in the graph.
type Customer struct {
	ID       int64     `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Address  *Address  `json:"address"`
	IsActive bool      `json:"is_active"`
	Referrer *Customer `json:"referrer,omitempty"`
}

// OrderItem is a product line. UnitPrice is the textual price sent by the shop.
type OrderItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// Order represents a transaction made by a customer.
// The shipping address arrives flattened.
type Order struct {
	ID                   int64             `json:"id"`
	Number               string            `json:"number"`
	Customer             *Customer         `json:"customer"`
	Status               OrderStatus       `json:"status"`
	Items                []OrderItem       `json:"items"`
	OrderedAt            string            `json:"ordered_at"`
	ShippingAddressLine1 string            `json:"shipping_address_line1"`
	ShippingAddressCity  string            `json:"shipping_address_city"`
	Tags                 map[string]string `json:"tags,omitempty"`
	Notes                []string          `json:"notes,omitempty"`
}

// Category is a self-referencing product category tree.
type Category struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	Parent        *Category  `json:"-"`
	SubCategories []Category `json:"sub_categories"`
}
