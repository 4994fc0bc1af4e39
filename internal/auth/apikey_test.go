package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-api/internal/apperror"
)

func TestGateAuthorize(t *testing.T) {
	gate := NewGate(nil)

	tests := []struct {
		name    string
		method  string
		path    string
		key     string
		wantMsg string
	}{
		{name: "root is public", method: http.MethodGet, path: "/"},
		{name: "list is public", method: http.MethodGet, path: "/api/products"},
		{name: "search is public", method: http.MethodGet, path: "/api/products/search"},
		{name: "stats is public", method: http.MethodGet, path: "/api/products/stats"},
		{name: "get by id is public", method: http.MethodGet, path: "/api/products/abc-123"},
		{name: "public ignores invalid key", method: http.MethodGet, path: "/api/products", key: "bad-key"},
		{name: "nested path is not public", method: http.MethodGet, path: "/api/products/1/reviews", wantMsg: MessageKeyRequired},
		{name: "post without key", method: http.MethodPost, path: "/api/products", wantMsg: MessageKeyRequired},
		{name: "post with bad key", method: http.MethodPost, path: "/api/products", key: "bad-key", wantMsg: MessageKeyInvalid},
		{name: "post with valid key", method: http.MethodPost, path: "/api/products", key: "test-key-456"},
		{name: "put with valid key", method: http.MethodPut, path: "/api/products/1", key: "secret-api-key-123"},
		{name: "delete without key", method: http.MethodDelete, path: "/api/products/1", wantMsg: MessageKeyRequired},
		{name: "unknown get route needs key", method: http.MethodGet, path: "/api/orders", wantMsg: MessageKeyRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Authorize(tt.method, tt.path, tt.key)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr := apperror.From(err)
			assert.Equal(t, apperror.KindUnauthorized, appErr.Kind)
			assert.Equal(t, http.StatusUnauthorized, appErr.Status)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestGateCustomKeysAndExtraRoutes(t *testing.T) {
	gate := NewGate([]string{"only-key"}, Route{Method: http.MethodGet, Path: "/healthz"})

	assert.True(t, gate.IsPublic(http.MethodGet, "/healthz"))
	assert.False(t, gate.IsPublic(http.MethodPost, "/healthz"))
	assert.NoError(t, gate.Authorize(http.MethodPost, "/api/products", "only-key"))
	assert.Error(t, gate.Authorize(http.MethodPost, "/api/products", "test-key-456"))
}

func TestGateCheckReadsHeader(t *testing.T) {
	gate := NewGate(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/1", nil)
	assert.Error(t, gate.Check(req))

	req.Header.Set("X-Api-Key", "test-key-456")
	assert.NoError(t, gate.Check(req))
}
