package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/microshop/orders-service/internal/entities"
	"github.com/microshop/orders-service/pkg/trm"

	"github.com/google/uuid"
)

type OrderRepo interface {
	CreateOrder(ctx context.Context, o entities.Order) error
	CreateItems(ctx context.Context, orderID string, items []entities.OrderItem) error
	GetOrderByID(ctx context.Context, orderID string) (entities.Order, error)
	ListOrders(ctx context.Context, status *entities.OrderStatus, offset, limit uint64) ([]entities.Order, error)
	CountOrders(ctx context.Context, status *entities.OrderStatus) (int64, error)
	UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) error
	MarkPaid(ctx context.Context, orderID, stripeChargeID string, paidAt time.Time) error
	CreateReceipt(ctx context.Context, orderID, receiptURL string) error
}

type ProductValidator interface {
	ValidateProducts(ctx context.Context, ids []string) ([]entities.Product, error)
}

type PaymentsGateway interface {
	CreateSession(ctx context.Context, order entities.Order) (json.RawMessage, error)
}

type orderService struct {
	logger    *slog.Logger
	txManager trm.Manager
	repo      OrderRepo
	catalog   ProductValidator
	payments  PaymentsGateway
}

func NewOrderService(logger *slog.Logger, txManager trm.Manager, repo OrderRepo, catalog ProductValidator, payments PaymentsGateway) *orderService {
	return &orderService{
		logger:    logger.With(slog.String("service", "order")),
		txManager: txManager,
		repo:      repo,
		catalog:   catalog,
		payments:  payments,
	}
}

// CreateOrder validates the requested products against the catalog,
// snapshots their prices, computes totals and persists the order with its
// items in one transaction. Every failure is collapsed into
// ErrOrderRejected towards the caller, the cause is only logged.
func (s *orderService) CreateOrder(ctx context.Context, items []entities.NewOrderItem) (entities.Order, error) {
	order, err := s.createOrder(ctx, items)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create order", slog.Any("error", err))
		return entities.Order{}, entities.ErrOrderRejected
	}
	return order, nil
}

func (s *orderService) createOrder(ctx context.Context, items []entities.NewOrderItem) (entities.Order, error) {
	if len(items) == 0 {
		return entities.Order{}, fmt.Errorf("order has no items")
	}

	products, err := s.catalog.ValidateProducts(ctx, distinctProductIDs(items))
	if err != nil {
		return entities.Order{}, err
	}
	idx := entities.IndexProducts(products)

	order := entities.Order{
		ID:     uuid.NewString(),
		Status: entities.StatusPending,
		Items:  make([]entities.OrderItem, 0, len(items)),
	}

	// Totals run over the requested items, duplicate product ids are each
	// priced and summed independently.
	for _, it := range items {
		product, ok := idx[it.ProductID]
		if !ok {
			return entities.Order{}, fmt.Errorf("product %s not found in catalog", it.ProductID)
		}
		order.TotalAmount += product.Price * float64(it.Quantity)
		order.TotalItems += it.Quantity
		order.Items = append(order.Items, entities.OrderItem{
			ProductID: it.ProductID,
			Price:     product.Price,
			Quantity:  it.Quantity,
			Name:      product.Name,
		})
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		return s.repo.CreateItems(ctx, order.ID, order.Items)
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.logger.DebugContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.Float64("total_amount", order.TotalAmount),
		slog.Int("total_items", order.TotalItems),
	)
	return order, nil
}

// GetOrderByID fetches an order and re-validates its product ids to
// attach current catalog names. Prices stay at their creation-time
// snapshot. A catalog failure fails the read as a whole.
func (s *orderService) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	ids := make([]string, 0, len(order.Items))
	seen := make(map[string]struct{}, len(order.Items))
	for _, it := range order.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	products, err := s.catalog.ValidateProducts(ctx, ids)
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to enrich order %s: %w", orderID, err)
	}
	idx := entities.IndexProducts(products)

	for i, it := range order.Items {
		product, ok := idx[it.ProductID]
		if !ok {
			return entities.Order{}, fmt.Errorf("product %s missing from catalog response", it.ProductID)
		}
		order.Items[i].Name = product.Name
	}

	return order, nil
}

// ListOrders returns a page of orders matching the filter, without
// catalog enrichment.
func (s *orderService) ListOrders(ctx context.Context, filter entities.OrderFilter) (entities.OrderPage, error) {
	total, err := s.repo.CountOrders(ctx, filter.Status)
	if err != nil {
		return entities.OrderPage{}, err
	}

	offset := uint64(filter.Page-1) * uint64(filter.Limit)
	orders, err := s.repo.ListOrders(ctx, filter.Status, offset, uint64(filter.Limit))
	if err != nil {
		return entities.OrderPage{}, err
	}

	lastPage := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))

	return entities.OrderPage{
		Data: orders,
		Meta: entities.PageMeta{
			Total:    total,
			Page:     filter.Page,
			LastPage: lastPage,
		},
	}, nil
}

// ChangeStatus applies a status transition. Setting the current status is
// a no-op that returns the order without a write. Other transitions must
// be legal per the order state machine.
func (s *orderService) ChangeStatus(ctx context.Context, orderID string, status entities.OrderStatus) (entities.Order, error) {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	if order.Status == status {
		return order, nil
	}

	if !order.Status.CanTransition(status) {
		return entities.Order{}, fmt.Errorf("%w: %s -> %s", entities.ErrInvalidTransition, order.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return entities.Order{}, err
	}

	s.logger.InfoContext(ctx, "order status changed",
		slog.String("order_id", orderID),
		slog.String("from", string(order.Status)),
		slog.String("to", string(status)),
	)

	order.Status = status
	return order, nil
}

// CreatePaymentSession opens a payment session for an existing order. The
// order is loaded enriched so item names reach the payment service.
func (s *orderService) CreatePaymentSession(ctx context.Context, orderID string) (json.RawMessage, error) {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.payments.CreateSession(ctx, order)
}

// ConfirmPayment applies a payment.succeeded notification in one
// transaction: status PAID, paid flags, the charge reference and exactly
// one receipt. Confirmations are idempotent per order, a duplicate
// returns the already paid order untouched.
func (s *orderService) ConfirmPayment(ctx context.Context, conf entities.PaymentConfirmation) (entities.Order, error) {
	var order entities.Order

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetOrderByID(ctx, conf.OrderID)
		if err != nil {
			return err
		}

		if order.Paid {
			s.logger.WarnContext(ctx, "duplicate payment confirmation ignored",
				slog.String("order_id", conf.OrderID),
				slog.String("stripe_payment_id", conf.StripePaymentID),
			)
			return nil
		}

		paidAt := time.Now()
		if err := s.repo.MarkPaid(ctx, conf.OrderID, conf.StripePaymentID, paidAt); err != nil {
			return err
		}
		if err := s.repo.CreateReceipt(ctx, conf.OrderID, conf.ReceiptURL); err != nil {
			return err
		}

		order.Status = entities.StatusPaid
		order.Paid = true
		order.PaidAt = &paidAt
		order.StripeChargeID = conf.StripePaymentID
		order.Receipt = &entities.OrderReceipt{ReceiptURL: conf.ReceiptURL, CreatedAt: paidAt}
		return nil
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.logger.InfoContext(ctx, "order paid", slog.String("order_id", conf.OrderID))
	return order, nil
}

func distinctProductIDs(items []entities.NewOrderItem) []string {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}
