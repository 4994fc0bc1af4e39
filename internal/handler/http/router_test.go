package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-api/internal/auth"
	middleware_http "product-api/internal/middleware/http"
	"product-api/internal/model"
	"product-api/internal/repository"
	"product-api/internal/service"
)

const validKey = "test-key-456"

type envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Errors     []string         `json:"errors"`
	Data       json.RawMessage  `json:"data"`
	Pagination model.Pagination `json:"pagination"`
	Count      int              `json:"count"`
}

type testServer struct {
	handler http.Handler
	repo    *repository.ProductRepository
	health  *service.HealthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := repository.NewProductRepository(model.SeedProducts())
	health := service.NewHealthService(repo)
	metrics := middleware_http.NewMetrics("test")

	h := NewRouter(Deps{
		Products:    NewProductHandler(service.NewProductService(repo)),
		Health:      NewHealthHandler(health),
		Gate:        auth.NewGate(nil, PublicRoutes("/metrics")...),
		Metrics:     metrics,
		MetricsPath: "/metrics",
	})
	return &testServer{handler: h, repo: repo, health: health}
}

func (s *testServer) do(t *testing.T, method, target, key, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if key != "" {
		req.Header.Set(auth.HeaderAPIKey, key)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestWelcome(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, WelcomeText, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestAuthGate(t *testing.T) {
	s := newTestServer(t)
	payload := `{"name":"Eraser","description":"Soft","price":20,"category":"tools","inStock":true}`

	rec, _ := s.do(t, http.MethodGet, "/api/products", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := s.do(t, http.MethodPost, "/api/products", "", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, auth.MessageKeyRequired, env.Message)

	rec, env = s.do(t, http.MethodPost, "/api/products", "bad-key", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.MessageKeyInvalid, env.Message)

	rec, env = s.do(t, http.MethodPost, "/api/products", validKey, payload)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Product added successfully", env.Message)
}

func TestAuthRunsBeforeValidation(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/products", "", `{"price":-1}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, env.Errors)
}

func TestListDefaultsAndFilters(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/products", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []model.Product
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 4)
	assert.Equal(t, model.Pagination{
		CurrentPage: 1, TotalPages: 1, ItemsPerPage: 10, TotalItems: 4,
	}, env.Pagination)

	rec, env = s.do(t, http.MethodGet, "/api/products?category=Pencils&inStock=false&maxPrice=500", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var filtered []model.Product
	require.NoError(t, json.Unmarshal(env.Data, &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, "4", filtered[0].ID)
}

func TestListPaginationCoversSetOnce(t *testing.T) {
	s := newTestServer(t)

	for limit := 1; limit <= 5; limit++ {
		t.Run("limit "+strconv.Itoa(limit), func(t *testing.T) {
			var seen []string
			page := 1
			for {
				target := "/api/products?limit=" + strconv.Itoa(limit) + "&page=" + strconv.Itoa(page)
				rec, env := s.do(t, http.MethodGet, target, "", "")
				require.Equal(t, http.StatusOK, rec.Code)

				var items []model.Product
				require.NoError(t, json.Unmarshal(env.Data, &items))
				for _, p := range items {
					seen = append(seen, p.ID)
				}
				assert.Equal(t, (4+limit-1)/limit, env.Pagination.TotalPages)
				if !env.Pagination.HasNextPage {
					break
				}
				page++
			}
			assert.Equal(t, []string{"1", "2", "3", "4"}, seen)
		})
	}
}

func TestListPageBeyondEnd(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/products?page=9&limit=2", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Equal(t, 9, env.Pagination.CurrentPage)
	assert.False(t, env.Pagination.HasNextPage)
	assert.True(t, env.Pagination.HasPrevPage)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/products/search?q=paper", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var found []model.Product
	require.NoError(t, json.Unmarshal(env.Data, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "SketchPad", found[0].Name)
	assert.Equal(t, 1, env.Count)

	rec, env = s.do(t, http.MethodGet, "/api/products/search", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Search query (q) is required", env.Message)
}

func TestStats(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/products/stats", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var stats model.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, model.Stats{
		TotalProducts: 4,
		InStock:       2,
		OutOfStock:    2,
		AveragePrice:  408,
		Categories:    map[string]int{"books": 1, "pencils": 2, "tool": 1},
	}, stats)
}

func TestCreateThenGet(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/products", validKey,
		`{"name":"Eraser","description":"Soft","price":"12.5","category":"tools","inStock":"true"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Product
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Eraser", created.Name)
	assert.Equal(t, "Soft", created.Description)
	assert.Equal(t, 12.5, created.Price)
	assert.Equal(t, "tools", created.Category)
	assert.True(t, created.InStock)
	assert.NotEmpty(t, created.ID)
	for _, seed := range model.SeedProducts() {
		assert.NotEqual(t, seed.ID, created.ID)
	}

	rec, env = s.do(t, http.MethodGet, "/api/products/"+created.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched model.Product
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, created, fetched)
}

func TestCreateValidationAccumulates(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/products", validKey, `{"price":-5,"category":123}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Contains(t, env.Errors, "Category must be a string")
	assert.Contains(t, env.Errors, "Price cannot be negative")
	assert.Contains(t, env.Errors, "Name is required")
	assert.Equal(t, 4, s.repo.Count())
}

func TestCreateMalformedJSON(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/products", validKey, `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON payload", env.Message)
}

func TestCreateRejectsTrailingData(t *testing.T) {
	s := newTestServer(t)
	valid := `{"name":"Eraser","description":"Soft","price":20,"category":"tools","inStock":true}`

	for _, body := range []string{valid + " garbage", valid + `{"name":"again"}`} {
		rec, env := s.do(t, http.MethodPost, "/api/products", validKey, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Invalid JSON payload", env.Message)
	}
	assert.Equal(t, 4, s.repo.Count())

	rec, _ := s.do(t, http.MethodPost, "/api/products", validKey, valid+"\n  ")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestTrailingSlashCollectionRoutes(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/products/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, env.Pagination.TotalItems)

	rec, _ = s.do(t, http.MethodPost, "/api/products/", "", `{"name":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/products/", validKey,
		`{"name":"Eraser","description":"Soft","price":20,"category":"tools","inStock":true}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestListHugeLimit(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/products?limit=99999999999999999999", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.Pagination.TotalPages)
	assert.Equal(t, 4, env.Pagination.TotalItems)
	assert.False(t, env.Pagination.HasNextPage)
}

func TestCreatePayloadTooLarge(t *testing.T) {
	s := newTestServer(t)
	body := `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`

	rec, env := s.do(t, http.MethodPost, "/api/products", validKey, body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Request payload too large", env.Message)
}

func TestUpdateMergesFields(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPut, "/api/products/2", validKey, `{"price":900,"inStock":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product updated successfully", env.Message)

	var updated model.Product
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "2", updated.ID)
	assert.Equal(t, "Mechanical Pencil", updated.Name)
	assert.Equal(t, 900.0, updated.Price)
	assert.True(t, updated.InStock)

	rec, env = s.do(t, http.MethodGet, "/api/products/2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched model.Product
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, updated, fetched)
}

func TestUpdateUnknownAndInvalid(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPut, "/api/products/nope", validKey, `{"price":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", env.Message)

	rec, env = s.do(t, http.MethodPut, "/api/products/1", validKey, `{"price":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Price must be a number"}, env.Errors)
}

func TestDeleteThenGet(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodDelete, "/api/products/3", validKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted successfully", env.Message)
	var deleted model.Product
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	assert.Equal(t, "3", deleted.ID)

	rec, env = s.do(t, http.MethodGet, "/api/products/3", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Product not found", env.Message)

	rec, _ = s.do(t, http.MethodDelete, "/api/products/3", validKey, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/orders", validKey, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", env.Message)
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status service.HealthStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, service.StatusUp, status.Status)
	assert.Equal(t, 4, status.Products)

	s.health.SetServing(false)
	rec, _ = s.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="GET",route="GET /healthz",status="200"} 1`)
}

func TestPipelineRecoversPanic(t *testing.T) {
	h := Pipeline(nil, func(w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	})
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Something went wrong on the server"}`, rec.Body.String())
}
