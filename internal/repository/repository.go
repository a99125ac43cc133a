package repository

import (
	"context"

	"github.com/utafrali/BackofficeGo/internal/domain"
	"github.com/utafrali/BackofficeGo/pkg/pagination"
)

// UserRepository persists back-office accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TokenRepository persists access-token records.
type TokenRepository interface {
	Save(ctx context.Context, token *domain.Token) error
	SaveAll(ctx context.Context, tokens []domain.Token) error
	FindByValue(ctx context.Context, value string) (*domain.Token, error)
	FindAllValidByUserID(ctx context.Context, userID string) ([]domain.Token, error)
	// RevokeActiveAndSave marks every active token of the user as expired
	// and revoked, then persists the new token, all in one transaction.
	RevokeActiveAndSave(ctx context.Context, userID string, token *domain.Token) error
}

// CustomerRepository persists customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context, params pagination.Params) ([]domain.Customer, int, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id string) error
}

// ProductRepository persists catalog entries.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, params pagination.Params) ([]domain.Product, int, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository persists orders and their items. Create reserves
// product stock together with the insert; CancelAndRestock returns it
// together with the status change. Both are single transactions so a
// failed order can never leak reserved inventory.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string, params pagination.Params) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	CancelAndRestock(ctx context.Context, order *domain.Order) error
}
