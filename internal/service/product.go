package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/BackofficeGo/internal/domain"
	"github.com/utafrali/BackofficeGo/internal/repository"
	apperrors "github.com/utafrali/BackofficeGo/pkg/errors"
	"github.com/utafrali/BackofficeGo/pkg/pagination"
)

const productCacheTTL = 5 * time.Minute

// ProductService manages the catalog with a Redis read-through cache on
// single-product lookups. Cache failures degrade to the database.
type ProductService struct {
	products repository.ProductRepository
	cache    *redis.Client
	logger   *slog.Logger
}

// NewProductService creates the product service. The cache client may be
// nil, in which case every read hits the database.
func NewProductService(products repository.ProductRepository, cache *redis.Client, logger *slog.Logger) *ProductService {
	return &ProductService{products: products, cache: cache, logger: logger}
}

func (s *ProductService) Create(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.Wrap(err, "create product")
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
	)
	return product, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if cached := s.fromCache(ctx, id); cached != nil {
		return cached, nil
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, product)
	return product, nil
}

func (s *ProductService) List(ctx context.Context, params pagination.Params) (pagination.Result[domain.Product], error) {
	products, total, err := s.products.List(ctx, params)
	if err != nil {
		return pagination.Result[domain.Product]{}, apperrors.Wrap(err, "list products")
	}
	return pagination.NewResult(products, total, params), nil
}

func (s *ProductService) Update(ctx context.Context, id string, req domain.UpdateProductRequest) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Category = req.Category
	product.PriceCents = req.PriceCents
	product.Stock = req.Stock
	product.Active = req.Active
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, apperrors.Wrap(err, "update product")
	}

	s.evict(ctx, id)
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id)
	return nil
}

func (s *ProductService) fromCache(ctx context.Context, id string) *domain.Product {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, productCacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "product cache read failed",
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil
	}
	return &product
}

func (s *ProductService) toCache(ctx context.Context, product *domain.Product) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, productCacheKey(product.ID), data, productCacheTTL).Err(); err != nil {
		s.logger.WarnContext(ctx, "product cache write failed",
			slog.String("error", err.Error()),
		)
	}
}

func (s *ProductService) evict(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, productCacheKey(id)).Err(); err != nil {
		s.logger.WarnContext(ctx, "product cache eviction failed",
			slog.String("error", err.Error()),
		)
	}
}

func productCacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}
