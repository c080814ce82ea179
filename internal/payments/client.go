package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/microshop/orders-service/internal/entities"
)

type Requester interface {
	Request(ctx context.Context, topic string, payload any) ([]byte, error)
}

// Client opens payment sessions against the external payment service over
// the message bus. It never mutates local order state, marking an order
// paid happens only when the payment.succeeded event arrives.
type Client struct {
	logger   *slog.Logger
	bus      Requester
	topic    string
	currency string
}

func New(logger *slog.Logger, bus Requester, topic, currency string) *Client {
	return &Client{
		logger:   logger.With(slog.String("client", "payments")),
		bus:      bus,
		topic:    topic,
		currency: currency,
	}
}

type sessionItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type sessionRequest struct {
	OrderID  string        `json:"orderId"`
	Currency string        `json:"currency"`
	Items    []sessionItem `json:"items"`
}

// CreateSession requests a payment session for a fully materialized order
// (item names already enriched) and returns the session descriptor
// verbatim.
func (c *Client) CreateSession(ctx context.Context, order entities.Order) (json.RawMessage, error) {
	req := sessionRequest{
		OrderID:  order.ID,
		Currency: c.currency,
		Items:    make([]sessionItem, 0, len(order.Items)),
	}
	for _, it := range order.Items {
		req.Items = append(req.Items, sessionItem{
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}

	data, err := c.bus.Request(ctx, c.topic, req)
	if err != nil {
		return nil, fmt.Errorf("payments: create session: %w", err)
	}

	c.logger.Debug("payment session created", slog.String("order_id", order.ID))
	return json.RawMessage(data), nil
}
