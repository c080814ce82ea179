package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/microshop/orders-service/internal/entities"
	"github.com/microshop/orders-service/internal/service"
	mocks "github.com/microshop/orders-service/internal/service/mocks"
	txMocks "github.com/microshop/orders-service/pkg/trm/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var catalogProducts = []entities.Product{
	{ID: "p1", Name: "Keyboard", Price: 10},
	{ID: "p2", Name: "Mouse", Price: 25},
}

type serviceMocks struct {
	repo     *mocks.MockOrderRepo
	catalog  *mocks.MockProductValidator
	payments *mocks.MockPaymentsGateway
}

func newServiceMocks(t *testing.T) serviceMocks {
	t.Helper()
	return serviceMocks{
		repo:     mocks.NewMockOrderRepo(t),
		catalog:  mocks.NewMockProductValidator(t),
		payments: mocks.NewMockPaymentsGateway(t),
	}
}

// newTxManager yields a manager that runs the callback on the same context.
func newTxManager(t *testing.T) *txMocks.MockManager {
	t.Helper()
	tx := txMocks.NewMockManager(t)
	tx.EXPECT().
		Do(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, cb func(ctx context.Context) error) error {
			return cb(ctx)
		}).Maybe()
	return tx
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestOrderService_CreateOrder(t *testing.T) {
	dbError := errors.New("db error")

	testCases := []struct {
		name         string
		items        []entities.NewOrderItem
		mockBehavior func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator)
		wantErr      error
		check        func(t *testing.T, order entities.Order)
	}{
		{
			name: "OK",
			items: []entities.NewOrderItem{
				{ProductID: "p1", Quantity: 2},
				{ProductID: "p2", Quantity: 1},
			},
			mockBehavior: func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator) {
				catalog.EXPECT().
					ValidateProducts(mock.Anything, []string{"p1", "p2"}).
					Return(catalogProducts, nil).Once()
				repo.EXPECT().CreateOrder(mock.Anything, mock.Anything).Return(nil).Once()
				repo.EXPECT().CreateItems(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
			},
			check: func(t *testing.T, order entities.Order) {
				assert.NotEmpty(t, order.ID)
				assert.Equal(t, entities.StatusPending, order.Status)
				assert.Equal(t, 45.0, order.TotalAmount)
				assert.Equal(t, 3, order.TotalItems)
				require.Len(t, order.Items, 2)
				assert.Equal(t, "Keyboard", order.Items[0].Name)
				assert.Equal(t, 10.0, order.Items[0].Price)
				assert.Equal(t, "Mouse", order.Items[1].Name)
			},
		},
		{
			name: "duplicate product ids are priced independently",
			items: []entities.NewOrderItem{
				{ProductID: "p1", Quantity: 1},
				{ProductID: "p1", Quantity: 2},
			},
			mockBehavior: func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator) {
				// Distinct ids on the wire, both request lines in the order.
				catalog.EXPECT().
					ValidateProducts(mock.Anything, []string{"p1"}).
					Return(catalogProducts, nil).Once()
				repo.EXPECT().CreateOrder(mock.Anything, mock.Anything).Return(nil).Once()
				repo.EXPECT().CreateItems(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
			},
			check: func(t *testing.T, order entities.Order) {
				assert.Equal(t, 30.0, order.TotalAmount)
				assert.Equal(t, 3, order.TotalItems)
				assert.Len(t, order.Items, 2)
			},
		},
		{
			name:  "unknown product rejects the whole order",
			items: []entities.NewOrderItem{{ProductID: "ghost", Quantity: 1}},
			mockBehavior: func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator) {
				catalog.EXPECT().
					ValidateProducts(mock.Anything, []string{"ghost"}).
					Return(catalogProducts, nil).Once()
			},
			wantErr: entities.ErrOrderRejected,
		},
		{
			name:  "catalog failure rejects the order",
			items: []entities.NewOrderItem{{ProductID: "p1", Quantity: 1}},
			mockBehavior: func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator) {
				catalog.EXPECT().
					ValidateProducts(mock.Anything, mock.Anything).
					Return(nil, errors.New("catalog unreachable")).Once()
			},
			wantErr: entities.ErrOrderRejected,
		},
		{
			name:  "persistence failure rejects the order",
			items: []entities.NewOrderItem{{ProductID: "p1", Quantity: 1}},
			mockBehavior: func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator) {
				catalog.EXPECT().
					ValidateProducts(mock.Anything, mock.Anything).
					Return(catalogProducts, nil).Once()
				repo.EXPECT().CreateOrder(mock.Anything, mock.Anything).Return(dbError).Once()
			},
			wantErr: entities.ErrOrderRejected,
		},
		{
			name:         "empty item list",
			items:        nil,
			mockBehavior: func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator) {},
			wantErr:      entities.ErrOrderRejected,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newServiceMocks(t)
			tc.mockBehavior(m.repo, m.catalog)
			svc := service.NewOrderService(testLogger, newTxManager(t), m.repo, m.catalog, m.payments)

			order, err := svc.CreateOrder(context.Background(), tc.items)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.check(t, order)
		})
	}
}

func TestOrderService_GetOrderByID(t *testing.T) {
	storedOrder := entities.Order{
		ID:          "o1",
		Status:      entities.StatusPending,
		TotalAmount: 45,
		TotalItems:  3,
		Items: []entities.OrderItem{
			{ProductID: "p1", Price: 10, Quantity: 2},
			{ProductID: "p2", Price: 25, Quantity: 1},
		},
	}

	testCases := []struct {
		name         string
		orderID      string
		mockBehavior func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator)
		wantErr      error
		check        func(t *testing.T, order entities.Order)
	}{
		{
			name:    "success with enrichment",
			orderID: "o1",
			mockBehavior: func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator) {
				repo.EXPECT().GetOrderByID(mock.Anything, "o1").Return(storedOrder, nil).Once()
				catalog.EXPECT().
					ValidateProducts(mock.Anything, []string{"p1", "p2"}).
					Return(catalogProducts, nil).Once()
			},
			check: func(t *testing.T, order entities.Order) {
				require.Len(t, order.Items, 2)
				assert.Equal(t, "Keyboard", order.Items[0].Name)
				assert.Equal(t, "Mouse", order.Items[1].Name)
				// Prices stay at the creation-time snapshot.
				assert.Equal(t, 10.0, order.Items[0].Price)
			},
		},
		{
			name:    "not found",
			orderID: "missing",
			mockBehavior: func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator) {
				repo.EXPECT().
					GetOrderByID(mock.Anything, "missing").
					Return(entities.Order{}, entities.ErrOrderNotFound).Once()
			},
			wantErr: entities.ErrOrderNotFound,
		},
		{
			name:    "catalog failure fails the read",
			orderID: "o1",
			mockBehavior: func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator) {
				repo.EXPECT().GetOrderByID(mock.Anything, "o1").Return(storedOrder, nil).Once()
				catalog.EXPECT().
					ValidateProducts(mock.Anything, mock.Anything).
					Return(nil, errors.New("catalog unreachable")).Once()
			},
			wantErr: errAny,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newServiceMocks(t)
			tc.mockBehavior(m.repo, m.catalog)
			svc := service.NewOrderService(testLogger, newTxManager(t), m.repo, m.catalog, m.payments)

			order, err := svc.GetOrderByID(context.Background(), tc.orderID)

			if tc.wantErr != nil {
				if errors.Is(tc.wantErr, errAny) {
					assert.Error(t, err)
				} else {
					assert.ErrorIs(t, err, tc.wantErr)
				}
				return
			}
			require.NoError(t, err)
			tc.check(t, order)
		})
	}
}

// errAny marks cases where any non-nil error is acceptable.
var errAny = errors.New("any error")

func TestOrderService_ListOrders(t *testing.T) {
	pending := entities.StatusPending

	m := newServiceMocks(t)
	svc := service.NewOrderService(testLogger, newTxManager(t), m.repo, m.catalog, m.payments)

	orders := make([]entities.Order, 5)
	m.repo.EXPECT().CountOrders(mock.Anything, &pending).Return(int64(12), nil).Once()
	m.repo.EXPECT().
		ListOrders(mock.Anything, &pending, uint64(5), uint64(5)).
		Return(orders, nil).Once()

	page, err := svc.ListOrders(context.Background(), entities.OrderFilter{
		Status: &pending,
		Page:   2,
		Limit:  5,
	})

	require.NoError(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, int64(12), page.Meta.Total)
	assert.Equal(t, 2, page.Meta.Page)
	assert.Equal(t, 3, page.Meta.LastPage)
}

func TestOrderService_ChangeStatus(t *testing.T) {
	order := func(status entities.OrderStatus) entities.Order {
		return entities.Order{
			ID:     "o1",
			Status: status,
			Items:  []entities.OrderItem{{ProductID: "p1", Price: 10, Quantity: 1}},
		}
	}

	testCases := []struct {
		name         string
		newStatus    entities.OrderStatus
		mockBehavior func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator)
		wantErr      error
		wantStatus   entities.OrderStatus
	}{
		{
			name:      "same status issues no write",
			newStatus: entities.StatusPending,
			mockBehavior: func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator) {
				repo.EXPECT().GetOrderByID(mock.Anything, "o1").Return(order(entities.StatusPending), nil).Once()
				catalog.EXPECT().
					ValidateProducts(mock.Anything, []string{"p1"}).
					Return(catalogProducts, nil).Once()
				// No UpdateStatus expectation: a write would fail the test.
			},
			wantStatus: entities.StatusPending,
		},
		{
			name:      "pending to paid",
			newStatus: entities.StatusPaid,
			mockBehavior: func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator) {
				repo.EXPECT().GetOrderByID(mock.Anything, "o1").Return(order(entities.StatusPending), nil).Once()
				catalog.EXPECT().
					ValidateProducts(mock.Anything, []string{"p1"}).
					Return(catalogProducts, nil).Once()
				repo.EXPECT().UpdateStatus(mock.Anything, "o1", entities.StatusPaid).Return(nil).Once()
			},
			wantStatus: entities.StatusPaid,
		},
		{
			name:      "delivered is terminal",
			newStatus: entities.StatusPaid,
			mockBehavior: func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator) {
				repo.EXPECT().GetOrderByID(mock.Anything, "o1").Return(order(entities.StatusDelivered), nil).Once()
				catalog.EXPECT().
					ValidateProducts(mock.Anything, []string{"p1"}).
					Return(catalogProducts, nil).Once()
			},
			wantErr: entities.ErrInvalidTransition,
		},
		{
			name:      "not found",
			newStatus: entities.StatusPaid,
			mockBehavior: func(repo *mocks.MockOrderRepo, catalog *mocks.MockProductValidator) {
				repo.EXPECT().
					GetOrderByID(mock.Anything, "o1").
					Return(entities.Order{}, entities.ErrOrderNotFound).Once()
			},
			wantErr: entities.ErrOrderNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newServiceMocks(t)
			tc.mockBehavior(m.repo, m.catalog)
			svc := service.NewOrderService(testLogger, newTxManager(t), m.repo, m.catalog, m.payments)

			got, err := svc.ChangeStatus(context.Background(), "o1", tc.newStatus)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, got.Status)
		})
	}
}

func TestOrderService_ConfirmPayment(t *testing.T) {
	conf := entities.PaymentConfirmation{
		OrderID:         "o1",
		StripePaymentID: "ch_123",
		ReceiptURL:      "https://pay.example.com/receipts/1",
	}

	t.Run("marks order paid and creates one receipt", func(t *testing.T) {
		m := newServiceMocks(t)
		svc := service.NewOrderService(testLogger, newTxManager(t), m.repo, m.catalog, m.payments)

		m.repo.EXPECT().
			GetOrderByID(mock.Anything, "o1").
			Return(entities.Order{ID: "o1", Status: entities.StatusPending}, nil).Once()
		m.repo.EXPECT().MarkPaid(mock.Anything, "o1", "ch_123", mock.Anything).Return(nil).Once()
		m.repo.EXPECT().CreateReceipt(mock.Anything, "o1", conf.ReceiptURL).Return(nil).Once()

		order, err := svc.ConfirmPayment(context.Background(), conf)

		require.NoError(t, err)
		assert.True(t, order.Paid)
		assert.Equal(t, entities.StatusPaid, order.Status)
		assert.Equal(t, "ch_123", order.StripeChargeID)
		require.NotNil(t, order.PaidAt)
		require.NotNil(t, order.Receipt)
		assert.Equal(t, conf.ReceiptURL, order.Receipt.ReceiptURL)
	})

	t.Run("duplicate confirmation is a no-op", func(t *testing.T) {
		m := newServiceMocks(t)
		svc := service.NewOrderService(testLogger, newTxManager(t), m.repo, m.catalog, m.payments)

		paid := entities.Order{ID: "o1", Status: entities.StatusPaid, Paid: true}
		m.repo.EXPECT().GetOrderByID(mock.Anything, "o1").Return(paid, nil).Once()
		// No MarkPaid or CreateReceipt expectations: a second write would
		// fail the test.

		order, err := svc.ConfirmPayment(context.Background(), conf)

		require.NoError(t, err)
		assert.Equal(t, paid, order)
	})

	t.Run("unknown order", func(t *testing.T) {
		m := newServiceMocks(t)
		svc := service.NewOrderService(testLogger, newTxManager(t), m.repo, m.catalog, m.payments)

		m.repo.EXPECT().
			GetOrderByID(mock.Anything, "o1").
			Return(entities.Order{}, entities.ErrOrderNotFound).Once()

		_, err := svc.ConfirmPayment(context.Background(), conf)

		assert.ErrorIs(t, err, entities.ErrOrderNotFound)
	})
}

func TestOrderService_CreatePaymentSession(t *testing.T) {
	m := newServiceMocks(t)
	svc := service.NewOrderService(testLogger, newTxManager(t), m.repo, m.catalog, m.payments)

	stored := entities.Order{
		ID:     "o1",
		Status: entities.StatusPending,
		Items:  []entities.OrderItem{{ProductID: "p1", Price: 10, Quantity: 2}},
	}
	session := json.RawMessage(`{"url":"https://pay.example.com/s/1"}`)

	m.repo.EXPECT().GetOrderByID(mock.Anything, "o1").Return(stored, nil).Once()
	m.catalog.EXPECT().
		ValidateProducts(mock.Anything, []string{"p1"}).
		Return(catalogProducts, nil).Once()
	m.payments.EXPECT().
		CreateSession(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, order entities.Order) (json.RawMessage, error) {
			// The payment service needs enriched item names.
			require.Len(t, order.Items, 1)
			assert.Equal(t, "Keyboard", order.Items[0].Name)
			return session, nil
		}).Once()

	got, err := svc.CreatePaymentSession(context.Background(), "o1")

	require.NoError(t, err)
	assert.Equal(t, session, got)
}
