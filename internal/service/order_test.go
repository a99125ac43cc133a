package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/BackofficeGo/internal/domain"
	apperrors "github.com/utafrali/BackofficeGo/pkg/errors"
	"github.com/utafrali/BackofficeGo/pkg/pagination"
)

type mockCustomerRepo struct{ mock.Mock }

func (m *mockCustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepo) List(ctx context.Context, params pagination.Params) ([]domain.Customer, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Customer), args.Int(1), args.Error(2)
}

func (m *mockCustomerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, params pagination.Params) ([]domain.Product, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByCustomer(ctx context.Context, customerID string, params pagination.Params) ([]domain.Order, int, error) {
	args := m.Called(ctx, customerID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockOrderRepo) CancelAndRestock(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

type noopOrderEvents struct{}

func (noopOrderEvents) OrderCreated(context.Context, *domain.Order)       {}
func (noopOrderEvents) OrderStatusChanged(context.Context, *domain.Order) {}

func newOrderService(orders *mockOrderRepo, customers *mockCustomerRepo, products *mockProductRepo) *OrderService {
	return NewOrderService(orders, customers, products, noopOrderEvents{},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testCustomer(premium bool) *domain.Customer {
	return &domain.Customer{
		ID:      "customer-1",
		Name:    "Luis Mora",
		Email:   "luis@example.com",
		Premium: premium,
	}
}

func testProduct(id string, priceCents int64) *domain.Product {
	return &domain.Product{
		ID:         id,
		Name:       "Teclado mecanico",
		PriceCents: priceCents,
		Stock:      10,
		Active:     true,
	}
}

func TestOrderService_Create_PricesWithTaxAndShipping(t *testing.T) {
	orders := new(mockOrderRepo)
	customers := new(mockCustomerRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, customers, products)

	customers.On("GetByID", mock.Anything, "customer-1").Return(testCustomer(false), nil)
	products.On("GetByID", mock.Anything, "product-1").Return(testProduct("product-1", 50000), nil)
	orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	order, err := svc.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: "customer-1",
		Items: []domain.CreateOrderItemRequest{
			{ProductID: "product-1", Quantity: 2},
		},
	})
	require.NoError(t, err)

	// subtotal 100000, tax 12%, flat shipping below the threshold
	assert.Equal(t, int64(100000), order.SubtotalCents)
	assert.Equal(t, int64(12000), order.TaxCents)
	assert.Equal(t, int64(15000), order.ShippingCents)
	assert.Equal(t, int64(127000), order.TotalCents)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestOrderService_Create_FreeShippingAboveThreshold(t *testing.T) {
	orders := new(mockOrderRepo)
	customers := new(mockCustomerRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, customers, products)

	customers.On("GetByID", mock.Anything, "customer-1").Return(testCustomer(false), nil)
	products.On("GetByID", mock.Anything, "product-1").Return(testProduct("product-1", 100000), nil)
	orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	order, err := svc.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: "customer-1",
		Items: []domain.CreateOrderItemRequest{
			{ProductID: "product-1", Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(200000), order.SubtotalCents)
	assert.Equal(t, int64(0), order.ShippingCents)
}

func TestOrderService_Create_FreeShippingForPremiumCustomer(t *testing.T) {
	orders := new(mockOrderRepo)
	customers := new(mockCustomerRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, customers, products)

	customers.On("GetByID", mock.Anything, "customer-1").Return(testCustomer(true), nil)
	products.On("GetByID", mock.Anything, "product-1").Return(testProduct("product-1", 10000), nil)
	orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	order, err := svc.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: "customer-1",
		Items: []domain.CreateOrderItemRequest{
			{ProductID: "product-1", Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), order.ShippingCents)
}

func TestOrderService_Create_InsufficientStock(t *testing.T) {
	orders := new(mockOrderRepo)
	customers := new(mockCustomerRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, customers, products)

	customers.On("GetByID", mock.Anything, "customer-1").Return(testCustomer(false), nil)
	products.On("GetByID", mock.Anything, "product-1").Return(testProduct("product-1", 50000), nil)
	orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Return(apperrors.Conflict("insufficient stock for product product-1"))

	_, err := svc.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: "customer-1",
		Items: []domain.CreateOrderItemRequest{
			{ProductID: "product-1", Quantity: 99},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestOrderService_Create_InactiveProductRejectedBeforeInsert(t *testing.T) {
	orders := new(mockOrderRepo)
	customers := new(mockCustomerRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, customers, products)

	inactive := testProduct("product-2", 30000)
	inactive.Active = false

	customers.On("GetByID", mock.Anything, "customer-1").Return(testCustomer(false), nil)
	products.On("GetByID", mock.Anything, "product-1").Return(testProduct("product-1", 50000), nil)
	products.On("GetByID", mock.Anything, "product-2").Return(inactive, nil)

	_, err := svc.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: "customer-1",
		Items: []domain.CreateOrderItemRequest{
			{ProductID: "product-1", Quantity: 3},
			{ProductID: "product-2", Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	// The insert carries the stock reservation, so a rejected order must
	// never reach the repository.
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_Create_UnknownCustomer(t *testing.T) {
	orders := new(mockOrderRepo)
	customers := new(mockCustomerRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, customers, products)

	customers.On("GetByID", mock.Anything, "missing").
		Return(nil, apperrors.NotFound("customer not found"))

	_, err := svc.Create(context.Background(), domain.CreateOrderRequest{
		CustomerID: "missing",
		Items: []domain.CreateOrderItemRequest{
			{ProductID: "product-1", Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderService_UpdateStatus_ValidTransition(t *testing.T) {
	orders := new(mockOrderRepo)
	customers := new(mockCustomerRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, customers, products)

	existing := &domain.Order{ID: "order-1", Status: domain.OrderStatusPending}
	orders.On("GetByID", mock.Anything, "order-1").Return(existing, nil)
	orders.On("UpdateStatus", mock.Anything, "order-1", domain.OrderStatusConfirmed).Return(nil)

	order, err := svc.UpdateStatus(context.Background(), "order-1", domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
}

func TestOrderService_UpdateStatus_IllegalTransition(t *testing.T) {
	orders := new(mockOrderRepo)
	customers := new(mockCustomerRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, customers, products)

	existing := &domain.Order{ID: "order-1", Status: domain.OrderStatusDelivered}
	orders.On("GetByID", mock.Anything, "order-1").Return(existing, nil)

	_, err := svc.UpdateStatus(context.Background(), "order-1", domain.OrderStatusShipped)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus_CancelRestoresStock(t *testing.T) {
	orders := new(mockOrderRepo)
	customers := new(mockCustomerRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, customers, products)

	existing := &domain.Order{
		ID:     "order-1",
		Status: domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: "product-1", Quantity: 3},
		},
	}
	orders.On("GetByID", mock.Anything, "order-1").Return(existing, nil)
	orders.On("CancelAndRestock", mock.Anything, existing).Return(nil)

	order, err := svc.UpdateStatus(context.Background(), "order-1", domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	orders.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_CancelRestockFailureSurfaces(t *testing.T) {
	orders := new(mockOrderRepo)
	customers := new(mockCustomerRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, customers, products)

	existing := &domain.Order{
		ID:     "order-1",
		Status: domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: "product-1", Quantity: 3},
		},
	}
	orders.On("GetByID", mock.Anything, "order-1").Return(existing, nil)
	orders.On("CancelAndRestock", mock.Anything, existing).
		Return(apperrors.NotFound("order not found"))

	_, err := svc.UpdateStatus(context.Background(), "order-1", domain.OrderStatusCancelled)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
