package entities

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from s to next.
// Allowed edges: PENDING -> PAID -> DELIVERED, cancellation from any
// non-terminal state. DELIVERED and CANCELLED are terminal.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusCancelled
	case StatusPaid:
		return next == StatusDelivered || next == StatusCancelled
	default:
		return false
	}
}

type Order struct {
	ID             string
	TotalAmount    float64
	TotalItems     int
	Status         OrderStatus
	Paid           bool
	PaidAt         *time.Time
	StripeChargeID string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Items   []OrderItem
	Receipt *OrderReceipt
}

type OrderItem struct {
	ProductID string
	// Price is the unit price snapshotted from the catalog at creation
	// time, never re-read afterwards.
	Price    float64
	Quantity int
	// Name is attached from the catalog at response time and is not
	// persisted with the item.
	Name string
}

type OrderReceipt struct {
	ReceiptURL string
	CreatedAt  time.Time
}

// NewOrderItem is a requested (productID, quantity) pair before prices
// are resolved against the catalog.
type NewOrderItem struct {
	ProductID string
	Quantity  int
}

type OrderFilter struct {
	Status *OrderStatus
	Page   int
	Limit  int
}

type OrderPage struct {
	Data []Order
	Meta PageMeta
}

type PageMeta struct {
	Total    int64
	Page     int
	LastPage int
}

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderRejected is the single client-facing failure for order
	// creation, the underlying cause is only logged.
	ErrOrderRejected     = errors.New("order rejected")
	ErrInvalidTransition = errors.New("invalid status transition")
)
