package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/modern_shop/internal/events"
	"github.com/Skotchmaster/modern_shop/internal/models"
	"github.com/Skotchmaster/modern_shop/internal/repo"
	"github.com/Skotchmaster/modern_shop/internal/transport"
	"github.com/Skotchmaster/modern_shop/pkg/logging"
)

// ProductIndex is the search backend. A nil index makes SearchProducts query
// the database instead.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p transport.Product) error
	Search(ctx context.Context, query string, from, size int) (int64, []transport.Product, error)
}

type ProductService struct {
	Index  ProductIndex
	Events events.Publisher
}

func (s *ProductService) CreateProduct(ctx context.Context, sess *gorm.DB, in transport.ProductCreate) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.create")

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	prod := transport.NewProductModel(in)
	if err := repo.New(sess).CreateProduct(ctx, prod); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, transport.ToProduct(prod)); err != nil {
			l.Error("index_error", "product_id", prod.ID, "error", err)
		}
	}

	if s.Events != nil {
		event := map[string]any{
			"type":      "product_created",
			"productID": prod.ID,
			"name":      prod.Name,
			"price":     prod.Price,
			"timestamp": time.Now().UTC(),
		}
		key := strconv.FormatUint(uint64(prod.ID), 10)
		if err := s.Events.Publish(ctx, events.TopicProducts, key, event); err != nil {
			l.Error("publish_error", "topic", events.TopicProducts, "error", err)
		}
	}

	return prod, nil
}

func (s *ProductService) GetProducts(ctx context.Context, sess *gorm.DB, offset, limit int) ([]models.Product, error) {
	items, err := repo.New(sess).GetProducts(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

func (s *ProductService) GetProduct(ctx context.Context, sess *gorm.DB, id uint) (*models.Product, error) {
	prod, err := repo.New(sess).GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return prod, nil
}

func (s *ProductService) SearchProducts(ctx context.Context, sess *gorm.DB, q string, offset, limit int) (int64, []transport.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: empty query", ErrValidation)
	}

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, offset, limit)
		if err != nil {
			return 0, nil, fmt.Errorf("search index: %w", err)
		}
		if items == nil {
			items = []transport.Product{}
		}
		return total, items, nil
	}

	total, items, err := repo.New(sess).SearchProducts(ctx, q, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("search products: %w", err)
	}
	return total, transport.ToProducts(items), nil
}
