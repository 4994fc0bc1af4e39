package repository

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"product-api/internal/logger"
	"product-api/internal/model"

	"go.opentelemetry.io/otel"
)

var (
	ErrNotFound    = errors.New("product not found")
	ErrDuplicateID = errors.New("product id already exists")
)

// ProductRepository owns the in-memory collection. Insertion order is
// kept; every access goes through the mutex.
type ProductRepository struct {
	mu       sync.RWMutex
	products []model.Product
}

var ProductRepositoryTracer = otel.Tracer("ProductRepository")

func NewProductRepository(seed []model.Product) *ProductRepository {
	products := make([]model.Product, len(seed))
	copy(products, seed)
	return &ProductRepository{products: products}
}

// FindAll returns a snapshot copy in collection order.
func (r *ProductRepository) FindAll(ctx context.Context) []model.Product {
	_, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Product, len(r.products))
	copy(out, r.products)
	return out
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	_, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Product{}, ErrNotFound
	}
	return r.products[i], nil
}

func (r *ProductRepository) Insert(ctx context.Context, product model.Product) error {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.Insert")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(product.ID) >= 0 {
		return ErrDuplicateID
	}
	r.products = append(r.products, product)
	logger.Info(ctx, "Repository", slog.String("op", "insert"), slog.String("product.id", product.ID))
	return nil
}

// Update applies mutate to the stored record under the write lock and
// returns the replaced value. The id cannot be changed by mutate.
func (r *ProductRepository) Update(ctx context.Context, id string, mutate func(*model.Product)) (model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Product{}, ErrNotFound
	}
	updated := r.products[i]
	mutate(&updated)
	updated.ID = id
	r.products[i] = updated
	logger.Info(ctx, "Repository", slog.String("op", "update"), slog.String("product.id", id))
	return updated, nil
}

// Delete removes the record in place and returns it.
func (r *ProductRepository) Delete(ctx context.Context, id string) (model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Product{}, ErrNotFound
	}
	removed := r.products[i]
	r.products = append(r.products[:i], r.products[i+1:]...)
	logger.Info(ctx, "Repository", slog.String("op", "delete"), slog.String("product.id", id))
	return removed, nil
}

func (r *ProductRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products)
}

func (r *ProductRepository) indexOf(id string) int {
	for i := range r.products {
		if r.products[i].ID == id {
			return i
		}
	}
	return -1
}
