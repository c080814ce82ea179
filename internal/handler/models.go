package handler

import (
	"time"

	"github.com/microshop/orders-service/internal/entities"
)

// CreateOrderRequest is the inbound body for order creation.
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PAID DELIVERED CANCELLED"`
}

// PaymentConfirmationEvent is the payment.succeeded payload consumed from
// kafka.
type PaymentConfirmationEvent struct {
	OrderID         string `json:"order_id" validate:"required"`
	StripePaymentID string `json:"stripe_payment_id" validate:"required"`
	ReceiptURL      string `json:"receipt_url" validate:"required,url"`
}

// Order is the API representation of an order.
type Order struct {
	ID             string      `json:"id"`
	TotalAmount    float64     `json:"total_amount"`
	TotalItems     int         `json:"total_items"`
	Status         string      `json:"status"`
	Paid           bool        `json:"paid"`
	PaidAt         *time.Time  `json:"paid_at,omitempty"`
	StripeChargeID string      `json:"stripe_charge_id,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Items          []OrderItem `json:"items,omitempty"`
	Receipt        *Receipt    `json:"receipt,omitempty"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Receipt struct {
	ReceiptURL string    `json:"receipt_url"`
	CreatedAt  time.Time `json:"created_at"`
}

type OrderPage struct {
	Data []Order  `json:"data"`
	Meta PageMeta `json:"meta"`
}

type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	LastPage int   `json:"last_page"`
}

func ItemEntityToJSON(i entities.OrderItem) OrderItem {
	return OrderItem{
		ProductID: i.ProductID,
		Name:      i.Name,
		Price:     i.Price,
		Quantity:  i.Quantity,
	}
}

func OrderEntityToJSON(o entities.Order) Order {
	order := Order{
		ID:             o.ID,
		TotalAmount:    o.TotalAmount,
		TotalItems:     o.TotalItems,
		Status:         string(o.Status),
		Paid:           o.Paid,
		PaidAt:         o.PaidAt,
		StripeChargeID: o.StripeChargeID,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}

	if len(o.Items) > 0 {
		order.Items = make([]OrderItem, 0, len(o.Items))
		for _, it := range o.Items {
			order.Items = append(order.Items, ItemEntityToJSON(it))
		}
	}

	if o.Receipt != nil {
		order.Receipt = &Receipt{
			ReceiptURL: o.Receipt.ReceiptURL,
			CreatedAt:  o.Receipt.CreatedAt,
		}
	}

	return order
}

func OrderPageToJSON(p entities.OrderPage) OrderPage {
	data := make([]Order, 0, len(p.Data))
	for _, o := range p.Data {
		data = append(data, OrderEntityToJSON(o))
	}
	return OrderPage{
		Data: data,
		Meta: PageMeta{
			Total:    p.Meta.Total,
			Page:     p.Meta.Page,
			LastPage: p.Meta.LastPage,
		},
	}
}

func ItemsRequestToEntity(items []OrderItemRequest) []entities.NewOrderItem {
	result := make([]entities.NewOrderItem, 0, len(items))
	for _, it := range items {
		result = append(result, entities.NewOrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return result
}

func ConfirmationEventToEntity(e PaymentConfirmationEvent) entities.PaymentConfirmation {
	return entities.PaymentConfirmation{
		OrderID:         e.OrderID,
		StripePaymentID: e.StripePaymentID,
		ReceiptURL:      e.ReceiptURL,
	}
}
