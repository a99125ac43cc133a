package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/BackofficeGo/internal/domain"
	"github.com/utafrali/BackofficeGo/internal/repository"
	apperrors "github.com/utafrali/BackofficeGo/pkg/errors"
	"github.com/utafrali/BackofficeGo/pkg/pagination"
)

// Pricing rules, in cents.
const (
	taxRatePercent         = 12
	flatShippingCents      = 15000
	freeShippingThresholdC = 200000
)

// OrderEvents receives order lifecycle notifications.
type OrderEvents interface {
	OrderCreated(ctx context.Context, order *domain.Order)
	OrderStatusChanged(ctx context.Context, order *domain.Order)
}

// OrderService places orders and moves them through their lifecycle.
type OrderService struct {
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	events    OrderEvents
	logger    *slog.Logger
}

// NewOrderService creates the order service.
func NewOrderService(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	events OrderEvents,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		customers: customers,
		products:  products,
		events:    events,
		logger:    logger,
	}
}

// Create places a new order. Line items are priced from the current
// catalog and totals are computed with tax and shipping applied. Stock
// reservation happens inside the repository's insert transaction, so a
// rejected order leaves inventory untouched.
func (s *OrderService) Create(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:         uuid.New().String(),
		CustomerID: customer.ID,
		Status:     domain.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var subtotal int64
	for _, item := range req.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Active {
			return nil, apperrors.InvalidInput("product " + product.ID + " is not available")
		}

		order.Items = append(order.Items, domain.OrderItem{
			ID:             uuid.New().String(),
			OrderID:        order.ID,
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: product.PriceCents,
		})
		subtotal += product.PriceCents * int64(item.Quantity)
	}

	order.SubtotalCents = subtotal
	order.TaxCents = subtotal * taxRatePercent / 100
	order.ShippingCents = shippingFor(subtotal, customer.Premium)
	order.TotalCents = order.SubtotalCents + order.TaxCents + order.ShippingCents

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperrors.Wrap(err, "create order")
	}

	s.events.OrderCreated(ctx, order)
	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("customer_id", order.CustomerID),
		slog.Int64("total_cents", order.TotalCents),
	)
	return order, nil
}

func (s *OrderService) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) ListByCustomer(ctx context.Context, customerID string, params pagination.Params) (pagination.Result[domain.Order], error) {
	orders, total, err := s.orders.ListByCustomer(ctx, customerID, params)
	if err != nil {
		return pagination.Result[domain.Order]{}, apperrors.Wrap(err, "list orders")
	}
	return pagination.NewResult(orders, total, params), nil
}

// UpdateStatus transitions the order. Illegal transitions are rejected;
// cancelling an order returns its stock in the same transaction as the
// status change.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, apperrors.Conflict("cannot transition order from " + string(order.Status) + " to " + string(status))
	}

	if status == domain.OrderStatusCancelled {
		if err := s.orders.CancelAndRestock(ctx, order); err != nil {
			return nil, err
		}
	} else if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	s.events.OrderStatusChanged(ctx, order)
	return order, nil
}

// shippingFor applies the shipping rules: premium customers and orders
// at or above the free-shipping threshold ship free, everyone else pays
// the flat rate.
func shippingFor(subtotalCents int64, premium bool) int64 {
	if premium || subtotalCents >= freeShippingThresholdC {
		return 0
	}
	return flatShippingCents
}
