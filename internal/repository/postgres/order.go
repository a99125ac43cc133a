package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/BackofficeGo/internal/domain"
	"github.com/utafrali/BackofficeGo/pkg/database"
	apperrors "github.com/utafrali/BackofficeGo/pkg/errors"
	"github.com/utafrali/BackofficeGo/pkg/pagination"
)

// OrderRepository stores orders and their line items in PostgreSQL.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates a PostgreSQL-backed order repository.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

const reserveStockQuery = `
	UPDATE products SET stock = stock - $2, updated_at = now()
	WHERE id = $1 AND stock >= $2 AND active = true`

const restoreStockQuery = `
	UPDATE products SET stock = stock + $2, updated_at = now()
	WHERE id = $1`

// Create reserves stock for every line item and inserts the order and
// its items, all in one transaction. A failed order (insufficient
// stock, inactive product, insert error) rolls back and leaves
// inventory untouched.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, item := range order.Items {
		tag, err := tx.Exec(ctx, reserveStockQuery, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("reserve stock: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.Conflict("insufficient stock for product " + item.ProductID)
		}
	}

	orderQuery := `
		INSERT INTO orders (id, customer_id, status, subtotal_cents, tax_cents, shipping_cents, total_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.Exec(ctx, orderQuery,
		order.ID, order.CustomerID, order.Status,
		order.SubtotalCents, order.TaxCents, order.ShippingCents, order.TotalCents,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, item := range order.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID, order.ID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPriceCents,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// CancelAndRestock marks the order cancelled and returns every line
// item's quantity to stock in the same transaction, so the status
// change and the restock cannot diverge.
func (r *OrderRepository) CancelAndRestock(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		order.ID, domain.OrderStatusCancelled)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order not found")
	}

	for _, item := range order.Items {
		if _, err := tx.Exec(ctx, restoreStockQuery, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, customer_id, status, subtotal_cents, tax_cents, shipping_cents, total_cents, created_at, updated_at
		FROM orders WHERE id = $1`

	var o domain.Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.CustomerID, &o.Status,
		&o.SubtotalCents, &o.TaxCents, &o.ShippingCents, &o.TotalCents,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	items, err := r.itemsForOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string, params pagination.Params) ([]domain.Order, int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `
		SELECT id, customer_id, status, subtotal_cents, tax_cents, shipping_cents, total_cents, created_at, updated_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, customerID, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		err := rows.Scan(
			&o.ID, &o.CustomerID, &o.Status,
			&o.SubtotalCents, &o.TaxCents, &o.ShippingCents, &o.TotalCents,
			&o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		items, err := r.itemsForOrder(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order not found")
	}
	return nil
}

func (r *OrderRepository) itemsForOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price_cents
		FROM order_items WHERE order_id = $1`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPriceCents)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}
