package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/BackofficeGo/internal/domain"
	"github.com/utafrali/BackofficeGo/internal/repository"
	apperrors "github.com/utafrali/BackofficeGo/pkg/errors"
	"github.com/utafrali/BackofficeGo/pkg/pagination"
)

// CustomerService manages buyer records.
type CustomerService struct {
	customers repository.CustomerRepository
	logger    *slog.Logger
}

// NewCustomerService creates the customer service.
func NewCustomerService(customers repository.CustomerRepository, logger *slog.Logger) *CustomerService {
	return &CustomerService{customers: customers, logger: logger}
}

func (s *CustomerService) Create(ctx context.Context, req domain.CreateCustomerRequest) (*domain.Customer, error) {
	existing, err := s.customers.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Wrap(err, "check existing customer")
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("customer", "email", req.Email)
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Premium:   req.Premium,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, apperrors.Wrap(err, "create customer")
	}

	s.logger.InfoContext(ctx, "customer created",
		slog.String("customer_id", customer.ID),
	)
	return customer, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return s.customers.GetByID(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, params pagination.Params) (pagination.Result[domain.Customer], error) {
	customers, total, err := s.customers.List(ctx, params)
	if err != nil {
		return pagination.Result[domain.Customer]{}, apperrors.Wrap(err, "list customers")
	}
	return pagination.NewResult(customers, total, params), nil
}

func (s *CustomerService) Update(ctx context.Context, id string, req domain.UpdateCustomerRequest) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Address = req.Address
	customer.Premium = req.Premium
	customer.UpdatedAt = time.Now().UTC()

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, apperrors.Wrap(err, "update customer")
	}
	return customer, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "customer deleted",
		slog.String("customer_id", id),
	)
	return nil
}
