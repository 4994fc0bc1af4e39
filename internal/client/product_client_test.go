package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-api/internal/auth"
	handler "product-api/internal/handler/http"
	"product-api/internal/model"
	"product-api/internal/repository"
	"product-api/internal/service"
)

func ptr[T any](v T) *T { return &v }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo := repository.NewProductRepository(model.SeedProducts())
	srv := httptest.NewServer(handler.NewRouter(handler.Deps{
		Products: handler.NewProductHandler(service.NewProductService(repo)),
		Health:   handler.NewHealthHandler(service.NewHealthService(repo)),
		Gate:     auth.NewGate(nil, handler.PublicRoutes("")...),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProductClientRoundTrip(t *testing.T) {
	srv := newServer(t)
	c := NewProductClient(srv.URL, "test-key-456", 2*time.Second)
	ctx := context.Background()

	products, pagination, err := c.List(ctx, ListParams{Category: "pencils", Limit: 1})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "2", products[0].ID)
	assert.Equal(t, 2, pagination.TotalPages)

	found, err := c.Search(ctx, "paper")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "SketchPad", found[0].Name)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(408), stats.AveragePrice)

	created, err := c.Create(ctx, ProductInput{
		Name:        ptr("Ruler"),
		Description: ptr("30cm steel"),
		Price:       ptr(55.0),
		Category:    ptr("tool"),
		InStock:     ptr(true),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	updated, err := c.Update(ctx, created.ID, ProductInput{Price: ptr(60.0)})
	require.NoError(t, err)
	assert.Equal(t, 60.0, updated.Price)
	assert.Equal(t, "Ruler", updated.Name)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	deleted, err := c.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = c.Get(ctx, created.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Product not found", apiErr.Message)
}

func TestProductClientSurfacesErrors(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	_, err := NewProductClient(srv.URL, "", time.Second).Create(ctx, ProductInput{Name: ptr("x")})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, auth.MessageKeyRequired, apiErr.Message)

	_, err = NewProductClient(srv.URL, "test-key-456", time.Second).Create(ctx, ProductInput{Price: ptr(-5.0)})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Errors, "Price cannot be negative")
	assert.Contains(t, apiErr.Error(), "Validation failed")
}

func TestHTTPClientPropagatesHeaders(t *testing.T) {
	var seen http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", time.Second)
	c.SetDefaultHeader("X-Default", "1")

	var out struct {
		OK bool `json:"ok"`
	}
	resp, err := c.Do(context.Background(), RequestOptions{
		Method:  http.MethodPost,
		Path:    "/echo",
		Body:    map[string]string{"a": "b"},
		Headers: map[string]string{"X-Extra": "2"},
	}, &out)
	require.NoError(t, err)

	assert.True(t, resp.IsSuccess())
	assert.True(t, out.OK)
	assert.Equal(t, "1", seen.Get("X-Default"))
	assert.Equal(t, "2", seen.Get("X-Extra"))
	assert.Equal(t, "application/json", seen.Get("Content-Type"))
}
