// Package warehouse holds the fulfilment side of the sample domain: the shapes the
// warehouse keeps after orders are mapped in from the storefront.
package warehouse

import (
	"time"
)

// Status is the warehouse order state.
type Status int

const (
	StatusPending Status = iota + 1
	StatusPaid
	StatusShipped
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusPaid:
		return "Paid"
	case StatusShipped:
		return "Shipped"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Address represents a physical or billing/shipping address.
type Address struct {
	Line1      string
	Line2      string
	City       string
	PostalCode string
}

// Customer represents a store customer/user.
type Customer struct {
	ID       uint
	Email    string
	FullName string
	Address  Address
	IsActive bool
	Referrer *Customer

	passwordHash string
}

// PasswordHash is read-only for mappers.
func (c *Customer) PasswordHash() string { return c.passwordHash }

// OrderItem is a line item within an order.
type OrderItem struct {
	ProductID uint
	Name      string
	Quantity  int32
	UnitPrice float64
}

// Order represents a customer's purchase as stored by the warehouse.
type Order struct {
	ID              uint
	Reference       string `map:"Number"`
	Customer        *Customer
	Status          Status
	Items           []*OrderItem
	OrderedAt       time.Time
	ShippingAddress Address
	Tags            map[string]string
	Notes           []string
	Internal        string `map:"-"`

	currency string
}

// Currency is a property backed by an unexported field.
func (o *Order) Currency() string { return o.currency }

// SetCurrency makes Currency writable for mappers.
func (o *Order) SetCurrency(currency string) { o.currency = currency }

// CategoryDto is the flat transfer shape of a category tree.
type CategoryDto struct {
	ID            int
	Name          string
	SubCategories []CategoryDto
}

// Money can only be built through NewMoney.
type Money struct {
	amount   int64
	currency string
}

func NewMoney(amount int64, currency string) Money {
	return Money{amount: amount, currency: currency}
}

func (m Money) Amount() int64    { return m.amount }
func (m Money) Currency() string { return m.currency }
