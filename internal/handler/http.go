package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/microshop/orders-service/internal/bus"
	"github.com/microshop/orders-service/internal/entities"
	"github.com/microshop/orders-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderService interface {
	CreateOrder(ctx context.Context, items []entities.NewOrderItem) (entities.Order, error)
	GetOrderByID(ctx context.Context, orderID string) (entities.Order, error)
	ListOrders(ctx context.Context, filter entities.OrderFilter) (entities.OrderPage, error)
	ChangeStatus(ctx context.Context, orderID string, status entities.OrderStatus) (entities.Order, error)
	CreatePaymentSession(ctx context.Context, orderID string) (json.RawMessage, error)
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderService
}

func NewHTTPHandler(logger *slog.Logger, svc OrderService) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger.With(slog.String("handler", "http")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{order_id}", h.GetOrderByID)
		r.Patch("/{order_id}/status", h.ChangeStatus)
		r.Post("/{order_id}/payment-session", h.CreatePaymentSession)
	})
}

// CreateOrder creates an order from a list of requested items.
// @Summary      Create order
// @Tags         orders
// @Param        body  body      CreateOrderRequest  true  "Requested items"
// @Success      201  {object}  Order
// @Failure      400  {object}  utils.ErrorResponse "Order rejected"
// @Router       /orders [post]
func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateOrderRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.CreateOrder(ctx, ItemsRequestToEntity(req.Items))
	if err != nil {
		// Creation failures are deliberately indistinguishable to the
		// caller, the cause lives in the logs.
		ordersRejected.Inc()
		utils.WriteError(w, "failed to create order", http.StatusBadRequest)
		return
	}

	ordersCreated.Inc()
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusCreated)
}

// GetOrderByID returns a single order enriched with catalog names.
// @Summary      Get order by id
// @Tags         orders
// @Param        order_id   path      string  true  "Order id"
// @Success      200  {object}  Order
// @Failure      404  {object}  utils.ErrorResponse "Order not found"
// @Failure      500  {object}  utils.ErrorResponse "Internal error"
// @Router       /orders/{order_id} [get]
func (h *HTTPHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	if err := h.validate.Var(orderID, "required,uuid4"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.GetOrderByID(ctx, orderID)

	if errors.Is(err, entities.ErrOrderNotFound) {
		utils.WriteError(w, "order not found", http.StatusNotFound)
		return
	}

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get order", slog.Any("error", err), slog.String("order_id", orderID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// ListOrders returns a page of orders, optionally filtered by status.
// @Summary      List orders
// @Tags         orders
// @Param        status  query  string  false  "Status filter"
// @Param        page    query  int     false  "1-indexed page"
// @Param        limit   query  int     false  "Page size"
// @Success      200  {object}  OrderPage
// @Failure      400  {object}  utils.ErrorResponse "Invalid filter"
// @Router       /orders [get]
func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseOrderFilter(r)
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := h.svc.ListOrders(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list orders", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, OrderPageToJSON(page), http.StatusOK)
}

// ChangeStatus applies a status transition to an order.
// @Summary      Change order status
// @Tags         orders
// @Param        order_id   path  string               true  "Order id"
// @Param        body       body  ChangeStatusRequest  true  "Target status"
// @Success      200  {object}  Order
// @Failure      404  {object}  utils.ErrorResponse "Order not found"
// @Failure      409  {object}  utils.ErrorResponse "Illegal transition"
// @Router       /orders/{order_id}/status [patch]
func (h *HTTPHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	var req ChangeStatusRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.ChangeStatus(ctx, orderID, entities.OrderStatus(req.Status))

	if errors.Is(err, entities.ErrOrderNotFound) {
		utils.WriteError(w, "order not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, entities.ErrInvalidTransition) {
		utils.WriteError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to change order status", slog.Any("error", err), slog.String("order_id", orderID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// CreatePaymentSession opens a payment session for an existing order.
// @Summary      Create payment session
// @Tags         orders
// @Param        order_id   path  string  true  "Order id"
// @Success      201  {object}  object "Session descriptor"
// @Failure      404  {object}  utils.ErrorResponse "Order not found"
// @Failure      502  {object}  utils.ErrorResponse "Payment service unavailable"
// @Router       /orders/{order_id}/payment-session [post]
func (h *HTTPHandler) CreatePaymentSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	session, err := h.svc.CreatePaymentSession(ctx, orderID)

	if errors.Is(err, entities.ErrOrderNotFound) {
		utils.WriteError(w, "order not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, bus.ErrTimeout) {
		utils.WriteError(w, "payment service unavailable", http.StatusBadGateway)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create payment session", slog.Any("error", err), slog.String("order_id", orderID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, session, http.StatusCreated)
}

func parseOrderFilter(r *http.Request) (entities.OrderFilter, error) {
	filter := entities.OrderFilter{Page: 1, Limit: 10}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := entities.OrderStatus(raw)
		if !status.Valid() {
			return entities.OrderFilter{}, errors.New("invalid status filter")
		}
		filter.Status = &status
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return entities.OrderFilter{}, errors.New("page must be a positive integer")
		}
		filter.Page = page
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return entities.OrderFilter{}, errors.New("limit must be a positive integer")
		}
		filter.Limit = limit
	}

	return filter, nil
}
