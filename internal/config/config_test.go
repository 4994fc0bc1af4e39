package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "product-api", cfg.AppName)
	assert.Equal(t, []string{"secret-api-key-123", "test-key-456"}, cfg.APIKeys)
	assert.Equal(t, "", cfg.GRPCPort)
	assert.Equal(t, "/metrics", cfg.MetricsPath)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.Production)
	assert.False(t, cfg.TraceStdout)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"PORT":                "8080",
		"APP_NAME":            "catalog",
		"API_KEYS":            " a-key , b-key ,,",
		"GRPC_PORT":           "9090",
		"SHUTDOWN_TIMEOUT_MS": "2500",
		"TRACE_STDOUT":        "true",
		"ENV":                 "production",
		"REMOTE_LOG_HTTP_URI": "http://loki:3100/loki/api/v1/push",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "catalog", cfg.AppName)
	assert.Equal(t, []string{"a-key", "b-key"}, cfg.APIKeys)
	assert.Equal(t, "9090", cfg.GRPCPort)
	assert.Equal(t, 2500*time.Millisecond, cfg.ShutdownTimeout)
	assert.True(t, cfg.TraceStdout)
	assert.True(t, cfg.Production)
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"non numeric port", map[string]string{"PORT": "http"}},
		{"non numeric grpc port", map[string]string{"GRPC_PORT": "abc"}},
		{"metrics path without slash", map[string]string{"METRICS_PATH": "metrics"}},
		{"bad remote log uri", map[string]string{"REMOTE_LOG_HTTP_URI": "not a url"}},
		{"zero shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT_MS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envOf(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestSafeConfigMasksKeys(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)

	safe := cfg.ToSafeConfig()
	assert.Equal(t, "secr***,test***", safe.APIKeys)

	attrs := StructAttrs("data", safe)
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, a.Key)
	}
	assert.Contains(t, keys, "data.api_keys")
	assert.Contains(t, keys, "data.shutdown_timeout_ms")
}

func TestClientFromEnv(t *testing.T) {
	cfg, err := ClientFromEnv(envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.TargetURL)
	assert.Equal(t, "localhost:50051", cfg.GRPCTarget)
	assert.Equal(t, "secret-api-key-123", cfg.APIKey)
	assert.Equal(t, time.Second, cfg.Delay)
	assert.Equal(t, 2*time.Second, cfg.Timeout)

	_, err = ClientFromEnv(envOf(map[string]string{"TARGET_HTTP_URI": "not a url"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TargetURL")
}
