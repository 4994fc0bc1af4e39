package tracer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"product-api/internal/config"
	"product-api/internal/logger"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/grafana/pyroscope-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Options selects where spans and profiles go. Empty endpoints disable
// the matching exporter; spans are still created so trace ids reach logs
// and the X-Trace-ID header.
type Options struct {
	AppName      string
	Env          string
	OTLPEndpoint string
	Stdout       bool
	ProfilingURI string
}

type ShutdownFunc func(ctx context.Context) error

var (
	once         sync.Once
	shutdownFunc ShutdownFunc
	initErr      error
)

var pyroLogrus = func() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return l
}()

func OptionsFromConfig(cfg *config.Config) Options {
	env := "development"
	if cfg.Production {
		env = "production"
	}
	return Options{
		AppName:      cfg.AppName,
		Env:          env,
		OTLPEndpoint: cfg.RemoteTraceRpcURI,
		Stdout:       cfg.TraceStdout,
		ProfilingURI: cfg.RemoteProfilingHttpURI,
	}
}

// Singleton Instance
func Instance(globalCtx context.Context) (ShutdownFunc, error) {
	once.Do(func() {
		shutdownFunc, initErr = Setup(globalCtx, OptionsFromConfig(config.Instance()))
	})
	return shutdownFunc, initErr
}

// Setup installs the global tracer provider and propagator, and starts
// the profiler when configured.
func Setup(ctx context.Context, opts Options) (ShutdownFunc, error) {
	log := logger.Instance()

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(opts.AppName),
			attribute.String("env", opts.Env),
		),
	)
	if err != nil {
		log.Error("Failed to create resource", slog.String("error", err.Error()))
		return nil, err
	}

	tpOpts := []trace.TracerProviderOption{trace.WithResource(res)}
	switch {
	case opts.OTLPEndpoint != "":
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(opts.OTLPEndpoint),
			otlptracegrpc.WithCompressor("gzip"),
		)
		if err != nil {
			log.Error("Failed to create OTLP exporter", slog.String("error", err.Error()))
			return nil, err
		}
		tpOpts = append(tpOpts, trace.WithBatcher(exp))
	case opts.Stdout:
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			log.Error("Failed to create stdout exporter", slog.String("error", err.Error()))
			return nil, err
		}
		tpOpts = append(tpOpts, trace.WithSyncer(exp))
	}

	tp := trace.NewTracerProvider(tpOpts...)

	var profiler *pyroscope.Profiler
	if opts.ProfilingURI != "" {
		profiler, err = pyroscope.Start(pyroscope.Config{
			ApplicationName: opts.AppName,
			ServerAddress:   opts.ProfilingURI,
			Logger:          pyroLogrus,
			Tags:            map[string]string{"env": opts.Env},
		})
		if err != nil {
			log.Error("Pyroscope failed to start", slog.String("error", err.Error()))
		} else {
			log.Info("Pyroscope started successfully")
		}
	}

	if profiler != nil {
		otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp))
	} else {
		otel.SetTracerProvider(tp)
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("OpenTelemetry Tracer initialized",
		slog.Bool("otlp", opts.OTLPEndpoint != ""),
		slog.Bool("stdout", opts.Stdout && opts.OTLPEndpoint == ""),
		slog.Bool("profiling", profiler != nil),
	)

	return func(ctx context.Context) error {
		errs := []error{tp.Shutdown(ctx)}
		if profiler != nil {
			errs = append(errs, profiler.Stop())
		}
		return errors.Join(errs...)
	}, nil
}
