package repo

import (
	"database/sql"
	"time"

	"github.com/microshop/orders-service/internal/entities"
)

type Order struct {
	ID             string         `db:"id"`
	TotalAmount    float64        `db:"total_amount"`
	TotalItems     int            `db:"total_items"`
	Status         string         `db:"status"`
	Paid           bool           `db:"paid"`
	PaidAt         sql.NullTime   `db:"paid_at"`
	StripeChargeID sql.NullString `db:"stripe_charge_id"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type OrderItem struct {
	OrderID   string  `db:"order_id"`
	ProductID string  `db:"product_id"`
	Price     float64 `db:"price"`
	Quantity  int     `db:"quantity"`
}

type OrderReceipt struct {
	OrderID    string    `db:"order_id"`
	ReceiptURL string    `db:"receipt_url"`
	CreatedAt  time.Time `db:"created_at"`
}

func ItemToEntity(i OrderItem) entities.OrderItem {
	return entities.OrderItem{
		ProductID: i.ProductID,
		Price:     i.Price,
		Quantity:  i.Quantity,
	}
}

func OrderToEntity(o Order, items []OrderItem, receipt *OrderReceipt) entities.Order {
	order := entities.Order{
		ID:             o.ID,
		TotalAmount:    o.TotalAmount,
		TotalItems:     o.TotalItems,
		Status:         entities.OrderStatus(o.Status),
		Paid:           o.Paid,
		PaidAt:         nullTimeToPtr(o.PaidAt),
		StripeChargeID: nullStringToString(o.StripeChargeID),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}

	if len(items) > 0 {
		order.Items = make([]entities.OrderItem, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, ItemToEntity(it))
		}
	}

	if receipt != nil {
		order.Receipt = &entities.OrderReceipt{
			ReceiptURL: receipt.ReceiptURL,
			CreatedAt:  receipt.CreatedAt,
		}
	}

	return order
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time
		return &t
	}
	return nil
}
