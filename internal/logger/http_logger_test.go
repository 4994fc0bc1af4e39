package logger

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func attrMap(attrs []slog.Attr) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Key] = a.Value.String()
	}
	return out
}

func TestHeaderAttrsRedactsAPIKey(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("X-Api-Key", "secret-api-key-123")
	hdr.Set("Content-Type", "application/json")
	hdr.Set("Cookie", "session=1")

	got := attrMap(HeaderAttrs(hdr))

	assert.Equal(t, "***", got["http.header.x-api-key"])
	assert.Equal(t, "application/json", got["http.header.content-type"])
	assert.NotContains(t, got, "http.header.cookie")
}

func TestRequestAttrsKeepsBodyReadable(t *testing.T) {
	body := `{"name":"Eraser","price":3,"tags":["a","b","c"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/products?page=2", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	got := attrMap(RequestAttrs(req, "incoming::request"))

	assert.Equal(t, "Eraser", got["http.body.name"])
	assert.Equal(t, "3", got["http.body.price"])
	assert.Equal(t, "a", got["http.body.tags.0"])
	assert.Equal(t, "c", got["http.body.tags.2"])
	assert.NotContains(t, got, "http.body.tags.1")
	assert.Equal(t, "2", got["http.query.page"])

	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(rest))
}

func TestDecodeBodyByMediaType(t *testing.T) {
	plain, err := DecodeBody("text/plain; charset=utf-8", []byte("Welcome"))
	require.NoError(t, err)
	assert.Equal(t, "Welcome", attrMap(plain)["http.body"])

	form, err := DecodeBody("application/x-www-form-urlencoded", []byte("password=hunter2&q=paper"))
	require.NoError(t, err)
	assert.Equal(t, "***", attrMap(form)["http.body.password"])
	assert.Equal(t, "paper", attrMap(form)["http.body.q"])

	bin, err := DecodeBody("application/octet-stream", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Contains(t, attrMap(bin), "http.body.base64")
}

func TestMetadataAttrsRedacts(t *testing.T) {
	md := metadata.Pairs("x-api-key", "test-key-456", "user-agent", "grpc-go", "other", "x")

	got := attrMap(MetadataAttrs(md))

	assert.Equal(t, "***", got["grpc.header.x-api-key"])
	assert.Equal(t, "grpc-go", got["grpc.header.user-agent"])
	assert.NotContains(t, got, "grpc.header.other")
}
