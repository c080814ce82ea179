package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/microshop/orders-service/internal/entities"
	"github.com/microshop/orders-service/pkg/trm"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type postgresRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewPostgresRepo(db *sqlx.DB) *postgresRepo {
	return &postgresRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *postgresRepo) CreateOrder(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Insert("orders").
		Columns("id", "total_amount", "total_items", "status").
		Values(o.ID, o.TotalAmount, o.TotalItems, string(o.Status)).
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *postgresRepo) CreateItems(ctx context.Context, orderID string, items []entities.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").
		Columns("order_id", "product_id", "price", "quantity")

	for _, it := range items {
		q = q.Values(orderID, it.ProductID, it.Price, it.Quantity)
	}

	query, args := q.MustSql()
	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	query, args := r.qb.Select(
		"id", "total_amount", "total_items", "status", "paid",
		"paid_at", "stripe_charge_id", "created_at", "updated_at").
		From("orders").
		Where(sq.Eq{"id": orderID}).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	query, args = r.qb.Select("order_id", "product_id", "price", "quantity").
		From("order_items").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	var items []OrderItem
	err = r.selectContext(ctx, &items, query, args...)
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order items: %w", err)
	}

	query, args = r.qb.Select("order_id", "receipt_url", "created_at").
		From("order_receipts").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	var receipt OrderReceipt
	err = r.getContext(ctx, &receipt, query, args...)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, fmt.Errorf("failed to get order receipt: %w", err)
	}

	var rec *OrderReceipt
	if err == nil {
		rec = &receipt
	}

	return OrderToEntity(order, items, rec), nil
}

func (r *postgresRepo) ListOrders(ctx context.Context, status *entities.OrderStatus, offset, limit uint64) ([]entities.Order, error) {
	q := r.qb.Select(
		"id", "total_amount", "total_items", "status", "paid",
		"paid_at", "stripe_charge_id", "created_at", "updated_at").
		From("orders").
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(limit)

	if status != nil {
		q = q.Where(sq.Eq{"status": string(*status)})
	}

	query, args := q.MustSql()

	var orders []Order
	err := r.selectContext(ctx, &orders, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	result := make([]entities.Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, OrderToEntity(order, nil, nil))
	}
	return result, nil
}

func (r *postgresRepo) CountOrders(ctx context.Context, status *entities.OrderStatus) (int64, error) {
	q := r.qb.Select("COUNT(*)").From("orders")
	if status != nil {
		q = q.Where(sq.Eq{"status": string(*status)})
	}

	query, args := q.MustSql()

	var count int64
	if err := r.getContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) error {
	query, args := r.qb.Update("orders").
		Set("status", string(status)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": orderID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return requireAffected(res)
}

func (r *postgresRepo) MarkPaid(ctx context.Context, orderID, stripeChargeID string, paidAt time.Time) error {
	query, args := r.qb.Update("orders").
		Set("status", string(entities.StatusPaid)).
		Set("paid", true).
		Set("paid_at", paidAt).
		Set("stripe_charge_id", stripeChargeID).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": orderID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	return requireAffected(res)
}

func (r *postgresRepo) CreateReceipt(ctx context.Context, orderID, receiptURL string) error {
	query, args := r.qb.Insert("order_receipts").
		Columns("order_id", "receipt_url").
		Values(orderID, receiptURL).
		Suffix("ON CONFLICT (order_id) DO NOTHING").
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create order receipt: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return entities.ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepo) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *postgresRepo) getContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return r.db.GetContext(ctx, dest, query, args...)
}

func (r *postgresRepo) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return r.db.SelectContext(ctx, dest, query, args...)
}
