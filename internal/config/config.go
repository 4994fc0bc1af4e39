package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"product-api/internal/auth"
	"product-api/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port                   string        `validate:"required,numeric"`
	AppName                string        `validate:"required"`
	APIKeys                []string      `validate:"min=1,dive,required"`
	GRPCPort               string        `validate:"omitempty,numeric"`
	MetricsPath            string        `validate:"required,startswith=/"`
	ShutdownTimeout        time.Duration `validate:"gt=0"`
	RemoteLogHttpURI       string        `validate:"omitempty,url"`
	RemoteTraceRpcURI      string
	RemoteProfilingHttpURI string `validate:"omitempty,url"`
	TraceStdout            bool
	Production             bool
}

// SafeConfig is the loggable projection of Config. API keys are masked.
type SafeConfig struct {
	Port                   string `json:"port"`
	AppName                string `json:"app_name"`
	APIKeys                string `json:"api_keys"`
	GRPCPort               string `json:"grpc_port"`
	MetricsPath            string `json:"metrics_path"`
	ShutdownTimeoutMs      int64  `json:"shutdown_timeout_ms"`
	RemoteLogHttpURI       string `json:"remote_log_http_uri"`
	RemoteTraceRpcURI      string `json:"remote_trace_rpc_uri"`
	RemoteProfilingHttpURI string `json:"remote_profiling_http_uri"`
	TraceStdout            bool   `json:"trace_stdout"`
	Production             bool   `json:"production"`
}

func (c *Config) ToSafeConfig() SafeConfig {
	masked := make([]string, len(c.APIKeys))
	for i, k := range c.APIKeys {
		masked[i] = mask(k)
	}
	return SafeConfig{
		Port:                   c.Port,
		AppName:                c.AppName,
		APIKeys:                strings.Join(masked, ","),
		GRPCPort:               c.GRPCPort,
		MetricsPath:            c.MetricsPath,
		ShutdownTimeoutMs:      c.ShutdownTimeout.Milliseconds(),
		RemoteLogHttpURI:       c.RemoteLogHttpURI,
		RemoteTraceRpcURI:      c.RemoteTraceRpcURI,
		RemoteProfilingHttpURI: c.RemoteProfilingHttpURI,
		TraceStdout:            c.TraceStdout,
		Production:             c.Production,
	}
}

func mask(s string) string {
	if len(s) <= 4 {
		return "***"
	}
	return s[:4] + "***"
}

func toSnake(s string) string {
	var out strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && s[i-1] != '_' {
				out.WriteRune('_')
			}
			out.WriteRune(unicode.ToLower(r))
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// StructAttrs("data", cfg) ➜ []slog.Attr{ slog.String("data.port", "3000"), ... }
func StructAttrs(prefix string, s any) []slog.Attr {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	attrs := make([]slog.Attr, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := prefix + "." + jsonKey(f)

		switch v.Field(i).Kind() {
		case reflect.String:
			attrs = append(attrs, slog.String(key, v.Field(i).String()))
		case reflect.Int, reflect.Int64, reflect.Int32:
			attrs = append(attrs, slog.Int64(key, v.Field(i).Int()))
		case reflect.Bool:
			attrs = append(attrs, slog.Bool(key, v.Field(i).Bool()))
		default:
			attrs = append(attrs, slog.Any(key, v.Field(i).Interface()))
		}
	}
	return attrs
}

func jsonKey(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return toSnake(f.Name)
}

var log = logger.Instance()

var validate = validator.New(validator.WithRequiredStructEnabled())

var (
	configInstance *Config
	configOnce     sync.Once
)

func getenv(getter func(string) string, key, def string) string {
	if v := strings.TrimSpace(getter(key)); v != "" {
		return v
	}
	return def
}

func setInt64(getter func(string) string, key string, def int64) int64 {
	val := getter(key)
	if val == "" {
		return def
	}
	num, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		log.Warn("Invalid integer env, using default", slog.String("key", key), slog.Int64("default", def))
		return def
	}
	return num
}

func setBool(getter func(string) string, key string) bool {
	b, _ := strconv.ParseBool(getter(key))
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FromEnv builds and validates a Config from getter. It never exits.
func FromEnv(getter func(string) string) (*Config, error) {
	keys := splitList(getter("API_KEYS"))
	if len(keys) == 0 {
		keys = append([]string{}, auth.DefaultKeys...)
	}

	cfg := &Config{
		Port:                   getenv(getter, "PORT", "3000"),
		AppName:                getenv(getter, "APP_NAME", "product-api"),
		APIKeys:                keys,
		GRPCPort:               getenv(getter, "GRPC_PORT", ""),
		MetricsPath:            getenv(getter, "METRICS_PATH", "/metrics"),
		ShutdownTimeout:        time.Duration(setInt64(getter, "SHUTDOWN_TIMEOUT_MS", 10000)) * time.Millisecond,
		RemoteLogHttpURI:       getenv(getter, "REMOTE_LOG_HTTP_URI", ""),
		RemoteTraceRpcURI:      getenv(getter, "REMOTE_TRACE_RPC_URI", ""),
		RemoteProfilingHttpURI: getenv(getter, "REMOTE_PROFILING_HTTP_URI", ""),
		TraceStdout:            setBool(getter, "TRACE_STDOUT"),
		Production:             getter("ENV") == "production",
	}

	if err := validateStruct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ClientConfig drives the smoke client in cmd/http-client.
type ClientConfig struct {
	TargetURL  string        `validate:"required,url"`
	GRPCTarget string        `validate:"required,hostname_port"`
	APIKey     string        `validate:"required"`
	Delay      time.Duration `validate:"gt=0"`
	Timeout    time.Duration `validate:"gt=0"`
}

func ClientFromEnv(getter func(string) string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		TargetURL:  getenv(getter, "TARGET_HTTP_URI", "http://localhost:3000"),
		GRPCTarget: getenv(getter, "TARGET_GRPC_URI", "localhost:50051"),
		APIKey:     getenv(getter, "CLIENT_API_KEY", auth.DefaultKeys[0]),
		Delay:      time.Duration(setInt64(getter, "CLIENT_DELAY_MS", 1000)) * time.Millisecond,
		Timeout:    time.Duration(setInt64(getter, "CLIENT_TIMEOUT_MS", 2000)) * time.Millisecond,
	}
	if err := validateStruct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateStruct(cfg any) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return fmt.Errorf("invalid configuration: %w", err)
}

// Instance loads .env (optional) and the process environment once.
// An invalid configuration terminates the process.
func Instance() *Config {
	configOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Warn("No .env file found, using system environment variables")
		}

		cfg, err := FromEnv(os.Getenv)
		if err != nil {
			log.Error("Failed to load configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}

		if cfg.RemoteLogHttpURI == "" {
			log.Warn("Missing REMOTE_LOG_HTTP_URI will skip sending log")
		}
		if cfg.RemoteTraceRpcURI == "" {
			log.Warn("Missing REMOTE_TRACE_RPC_URI will skip sending trace")
		}
		if cfg.RemoteProfilingHttpURI == "" {
			log.Warn("Missing REMOTE_PROFILING_HTTP_URI will skip sending profiling")
		}

		attrs := StructAttrs("data", cfg.ToSafeConfig())
		anyAttrs := make([]any, len(attrs))
		for i, a := range attrs {
			anyAttrs[i] = a
		}
		log.Info("Configuration loaded successfully", anyAttrs...)

		configInstance = cfg
	})

	return configInstance
}

// LoadClient is Instance for the client binaries.
func LoadClient() *ClientConfig {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
	cfg, err := ClientFromEnv(os.Getenv)
	if err != nil {
		log.Error("Failed to load client configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	return cfg
}
