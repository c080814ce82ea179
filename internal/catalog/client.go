package catalog

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

// Client validates product ids against the external catalog service over
// the message bus.
type Client struct {
	logger *slog.Logger
	bus    Requester
	topic  string
}

func New(logger *slog.Logger, bus Requester, topic string) *Client {
	return &Client{
		logger: logger.With(slog.String("client", "catalog")),
		bus:    bus,
		topic:  topic,
	}
}

type productPayload struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ValidateProducts resolves every id to an authoritative catalog record.
// The call fails as a whole on timeout, remote error or an unresolvable
// id, callers never proceed on partial product data.
func (c *Client) ValidateProducts(ctx context.Context, ids []string) ([]entities.Product, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("catalog: no product ids to validate")
	}

	data, err := c.bus.Request(ctx, c.topic, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog: validate products: %w", err)
	}

	var payload []productPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("catalog: malformed response: %w", err)
	}

	products := make([]entities.Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, entities.Product{
			ID:    p.ID,
			Name:  p.Name,
			Price: p.Price,
		})
	}

	c.logger.Debug("products validated", slog.Int("count", len(products)))
	return products, nil
}
