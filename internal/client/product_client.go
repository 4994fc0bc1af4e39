package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"product-api/internal/auth"
	"product-api/internal/model"
)

// APIError is a non-2xx answer carrying the server's error envelope.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Message, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Errors     []string          `json:"errors"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Count      int               `json:"count"`
}

// ProductInput is the write payload. Nil fields are omitted.
type ProductInput struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	InStock     *bool    `json:"inStock,omitempty"`
}

type ListParams struct {
	Category string
	InStock  *bool
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.InStock != nil {
		q.Set("inStock", strconv.FormatBool(*p.InStock))
	}
	if p.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*p.MinPrice, 'f', -1, 64))
	}
	if p.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*p.MaxPrice, 'f', -1, 64))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

// ProductClient speaks the product API.
type ProductClient struct {
	http *HTTPClient
}

func NewProductClient(baseURL, apiKey string, timeout time.Duration) *ProductClient {
	c := NewHTTPClient(baseURL, timeout)
	if apiKey != "" {
		c.SetDefaultHeader(auth.HeaderAPIKey, apiKey)
	}
	return &ProductClient{http: c}
}

func (c *ProductClient) List(ctx context.Context, params ListParams) ([]model.Product, model.Pagination, error) {
	var products []model.Product
	env, err := c.call(ctx, RequestOptions{Method: http.MethodGet, Path: "/api/products", QueryParams: params.values()}, &products)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	var pagination model.Pagination
	if env.Pagination != nil {
		pagination = *env.Pagination
	}
	return products, pagination, nil
}

func (c *ProductClient) Search(ctx context.Context, q string) ([]model.Product, error) {
	var products []model.Product
	_, err := c.call(ctx, RequestOptions{Method: http.MethodGet, Path: "/api/products/search", QueryParams: url.Values{"q": {q}}}, &products)
	return products, err
}

func (c *ProductClient) Stats(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	_, err := c.call(ctx, RequestOptions{Method: http.MethodGet, Path: "/api/products/stats"}, &stats)
	return stats, err
}

func (c *ProductClient) Get(ctx context.Context, id string) (model.Product, error) {
	var product model.Product
	_, err := c.call(ctx, RequestOptions{Method: http.MethodGet, Path: productPath(id)}, &product)
	return product, err
}

func (c *ProductClient) Create(ctx context.Context, in ProductInput) (model.Product, error) {
	var product model.Product
	_, err := c.call(ctx, RequestOptions{Method: http.MethodPost, Path: "/api/products", Body: in}, &product)
	return product, err
}

func (c *ProductClient) Update(ctx context.Context, id string, in ProductInput) (model.Product, error) {
	var product model.Product
	_, err := c.call(ctx, RequestOptions{Method: http.MethodPut, Path: productPath(id), Body: in}, &product)
	return product, err
}

func (c *ProductClient) Delete(ctx context.Context, id string) (model.Product, error) {
	var product model.Product
	_, err := c.call(ctx, RequestOptions{Method: http.MethodDelete, Path: productPath(id)}, &product)
	return product, err
}

func productPath(id string) string {
	return "/api/products/" + url.PathEscape(id)
}

func (c *ProductClient) call(ctx context.Context, opts RequestOptions, data any) (envelope, error) {
	var env envelope
	resp, err := c.http.Do(ctx, opts, &env)
	if err != nil {
		if resp != nil && !resp.IsSuccess() {
			return env, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return env, err
	}
	if !resp.IsSuccess() || !env.Success {
		return env, &APIError{StatusCode: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return env, fmt.Errorf("decode data: %w", err)
		}
	}
	return env, nil
}
