package event

import (
	"context"
	"log/slog"

	"github.com/utafrali/BackofficeGo/internal/domain"
	"github.com/utafrali/BackofficeGo/pkg/kafka"
	"github.com/utafrali/BackofficeGo/pkg/logger"
)

const (
	TopicUsers  = "backoffice.users"
	TopicOrders = "backoffice.orders"

	TypeUserRegistered     = "user.registered"
	TypeUserLoggedIn       = "user.logged_in"
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"

	sourceName = "backoffice-service"
)

// Sender publishes serialized events to a topic.
type Sender interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// Publisher emits domain events. Publishing is best effort: failures are
// logged and never fail the triggering operation.
type Publisher struct {
	sender Sender
	logger *slog.Logger
}

// NewPublisher creates a domain event publisher. A nil sender disables
// publishing entirely.
func NewPublisher(sender Sender, logger *slog.Logger) *Publisher {
	return &Publisher{sender: sender, logger: logger}
}

// UserRegisteredPayload is the data of a user.registered event.
type UserRegisteredPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// UserLoggedInPayload is the data of a user.logged_in event.
type UserLoggedInPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// OrderCreatedPayload is the data of an order.created event.
type OrderCreatedPayload struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	TotalCents int64  `json:"total_cents"`
	ItemCount  int    `json:"item_count"`
}

// OrderStatusChangedPayload is the data of an order.status_changed event.
type OrderStatusChangedPayload struct {
	OrderID string             `json:"order_id"`
	Status  domain.OrderStatus `json:"status"`
}

func (p *Publisher) UserRegistered(ctx context.Context, user *domain.User) {
	p.publish(ctx, TopicUsers, TypeUserRegistered, user.ID, "user", UserRegisteredPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
}

func (p *Publisher) UserLoggedIn(ctx context.Context, user *domain.User) {
	p.publish(ctx, TopicUsers, TypeUserLoggedIn, user.ID, "user", UserLoggedInPayload{
		UserID: user.ID,
		Email:  user.Email,
	})
}

func (p *Publisher) OrderCreated(ctx context.Context, order *domain.Order) {
	p.publish(ctx, TopicOrders, TypeOrderCreated, order.ID, "order", OrderCreatedPayload{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		TotalCents: order.TotalCents,
		ItemCount:  len(order.Items),
	})
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, order *domain.Order) {
	p.publish(ctx, TopicOrders, TypeOrderStatusChanged, order.ID, "order", OrderStatusChangedPayload{
		OrderID: order.ID,
		Status:  order.Status,
	})
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) {
	if p.sender == nil {
		return
	}

	evt, err := kafka.NewEvent(eventType, aggregateID, aggregateType, sourceName, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}

	if err := p.sender.Publish(ctx, topic, evt); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
	}
}
