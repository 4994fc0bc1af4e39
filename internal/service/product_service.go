package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"product-api/internal/apperror"
	"product-api/internal/logger"
	"product-api/internal/model"
	"product-api/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type ProductService struct {
	repo  *repository.ProductRepository
	newID func() string
}

var ProductServiceTracer = otel.Tracer("ProductService")

func NewProductService(repo *repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo, newID: uuid.NewString}
}

// List narrows the collection by category, stock, min and max price (in
// that order) and returns the requested page. page and limit below 1 are
// raised to 1.
func (s *ProductService) List(ctx context.Context, filter model.ListFilter, page, limit int) model.ProductPage {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.List")
	defer span.End()

	products := s.repo.FindAll(ctx)

	if filter.Category != nil {
		products = keep(products, func(p model.Product) bool {
			return strings.ToLower(p.Category) == strings.ToLower(*filter.Category)
		})
	}
	if filter.InStock != nil {
		products = keep(products, func(p model.Product) bool { return p.InStock == *filter.InStock })
	}
	if filter.MinPrice != nil {
		products = keep(products, func(p model.Product) bool { return p.Price >= *filter.MinPrice })
	}
	if filter.MaxPrice != nil {
		products = keep(products, func(p model.Product) bool { return p.Price <= *filter.MaxPrice })
	}

	start, end, pagination := Paginate(len(products), page, limit)
	span.SetAttributes(
		attribute.Int("products.filtered", len(products)),
		attribute.Int("products.page", pagination.CurrentPage),
	)

	return model.ProductPage{
		Items:      products[start:end],
		Pagination: pagination,
	}
}

// Paginate computes slice bounds for total items. The bounds are clamped
// to [0, total]; the metadata uses the unclamped window.
func Paginate(total, page, limit int) (int, int, model.Pagination) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	startIndex := math.MaxInt
	if page-1 <= (math.MaxInt-limit)/limit {
		startIndex = (page - 1) * limit
	}
	endIndex := math.MaxInt
	if startIndex <= math.MaxInt-limit {
		endIndex = startIndex + limit
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	pagination := model.Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		ItemsPerPage: limit,
		TotalItems:   total,
		HasNextPage:  endIndex < total,
		HasPrevPage:  startIndex > 0,
	}

	start := min(startIndex, total)
	end := min(endIndex, total)
	return start, end, pagination
}

// Search matches q as a case-insensitive substring of name or description.
func (s *ProductService) Search(ctx context.Context, q string) ([]model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Search")
	defer span.End()

	if q == "" {
		return nil, apperror.Generic(http.StatusBadRequest, "Search query (q) is required")
	}

	needle := strings.ToLower(q)
	results := keep(s.repo.FindAll(ctx), func(p model.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle)
	})
	span.SetAttributes(attribute.Int("products.matched", len(results)))
	return results, nil
}

// Stats aggregates over the whole collection, ignoring any filter.
func (s *ProductService) Stats(ctx context.Context) model.Stats {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Stats")
	defer span.End()

	products := s.repo.FindAll(ctx)
	stats := model.Stats{
		TotalProducts: len(products),
		Categories:    make(map[string]int),
	}

	var total float64
	for _, p := range products {
		stats.Categories[p.Category]++
		if p.InStock {
			stats.InStock++
		}
		total += p.Price
	}
	stats.OutOfStock = stats.TotalProducts - stats.InStock
	if stats.TotalProducts > 0 {
		// Prices are non-negative, so Floor(x+0.5) matches round-half-up.
		stats.AveragePrice = int64(math.Floor(total/float64(stats.TotalProducts) + 0.5))
	}
	return stats
}

func (s *ProductService) GetByID(ctx context.Context, id string) (model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.GetByID")
	defer span.End()

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, mapRepoErr(err)
	}
	return p, nil
}

// Create stores a product from a create-mode validated input under a
// fresh id.
func (s *ProductService) Create(ctx context.Context, in model.ProductInput) (model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Create")
	defer span.End()

	if in.Name == nil || in.Description == nil || in.Price == nil || in.Category == nil {
		return model.Product{}, apperror.Generic(http.StatusBadRequest, "Invalid product data")
	}

	p := model.Product{
		ID:          s.newID(),
		Name:        *in.Name,
		Description: *in.Description,
		Price:       *in.Price,
		Category:    *in.Category,
		InStock:     in.InStock != nil && *in.InStock,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return model.Product{}, mapRepoErr(err)
	}

	logger.Info(ctx, "Product created", slog.String("product.id", p.ID))
	return p, nil
}

// Update merges the provided fields over the stored record.
func (s *ProductService) Update(ctx context.Context, id string, in model.ProductInput) (model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Update")
	defer span.End()

	p, err := s.repo.Update(ctx, id, func(p *model.Product) {
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.Category != nil {
			p.Category = *in.Category
		}
		if in.InStock != nil {
			p.InStock = *in.InStock
		}
	})
	if err != nil {
		return model.Product{}, mapRepoErr(err)
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) (model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Delete")
	defer span.End()

	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return model.Product{}, mapRepoErr(err)
	}
	return p, nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("Product")
	}
	return apperror.Internal(err)
}

func keep(products []model.Product, pred func(model.Product) bool) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
