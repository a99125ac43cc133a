package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/BackofficeGo/internal/domain"
	"github.com/utafrali/BackofficeGo/pkg/database"
	apperrors "github.com/utafrali/BackofficeGo/pkg/errors"
)

func newTestOrder() *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		ID:         "order-1",
		CustomerID: "customer-1",
		Status:     domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{
				ID:             "item-1",
				OrderID:        "order-1",
				ProductID:      "product-1",
				ProductName:    "Teclado mecanico",
				Quantity:       2,
				UnitPriceCents: 50000,
			},
		},
		SubtotalCents: 100000,
		TaxCents:      12000,
		ShippingCents: 15000,
		TotalCents:    127000,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestOrderRepository_Create_ReservesStockInTransaction(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepository(mock)
	order := newTestOrder()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE products SET stock = stock - \$2`).
		WithArgs("product-1", 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(order.ID, order.CustomerID, order.Status,
			order.SubtotalCents, order.TaxCents, order.ShippingCents, order.TotalCents,
			order.CreatedAt, order.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs("item-1", order.ID, "product-1", "Teclado mecanico", 2, int64(50000)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = repo.Create(context.Background(), order)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// When a line item cannot be reserved the whole transaction rolls back,
// including reservations made for earlier items.
func TestOrderRepository_Create_InsufficientStockRollsBack(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepository(mock)
	order := newTestOrder()
	order.Items = append(order.Items, domain.OrderItem{
		ID:             "item-2",
		OrderID:        order.ID,
		ProductID:      "product-2",
		ProductName:    "Mouse inalambrico",
		Quantity:       5,
		UnitPriceCents: 20000,
	})

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE products SET stock = stock - \$2`).
		WithArgs("product-1", 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE products SET stock = stock - \$2`).
		WithArgs("product-2", 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err = repo.Create(context.Background(), order)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_InsertFailureRollsBack(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepository(mock)
	order := newTestOrder()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE products SET stock = stock - \$2`).
		WithArgs("product-1", 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(order.ID, order.CustomerID, order.Status,
			order.SubtotalCents, order.TaxCents, order.ShippingCents, order.TotalCents,
			order.CreatedAt, order.UpdatedAt).
		WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	err = repo.Create(context.Background(), order)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_CancelAndRestock(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepository(mock)
	order := newTestOrder()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE orders SET status = \$2`).
		WithArgs(order.ID, domain.OrderStatusCancelled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE products SET stock = stock \+ \$2`).
		WithArgs("product-1", 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = repo.CancelAndRestock(context.Background(), order)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_CancelAndRestock_RestockFailureRollsBack(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepository(mock)
	order := newTestOrder()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE orders SET status = \$2`).
		WithArgs(order.ID, domain.OrderStatusCancelled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE products SET stock = stock \+ \$2`).
		WithArgs("product-1", 2).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = repo.CancelAndRestock(context.Background(), order)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_CancelAndRestock_OrderNotFound(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepository(mock)
	order := newTestOrder()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE orders SET status = \$2`).
		WithArgs(order.ID, domain.OrderStatusCancelled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err = repo.CancelAndRestock(context.Background(), order)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
