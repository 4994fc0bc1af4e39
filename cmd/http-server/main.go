package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"product-api/internal/auth"
	"product-api/internal/config"
	grpcHandler "product-api/internal/handler/grpc"
	handler "product-api/internal/handler/http"
	"product-api/internal/logger"
	middleware_grpc "product-api/internal/middleware/grpc"
	middleware_http "product-api/internal/middleware/http"
	"product-api/internal/model"
	"product-api/internal/repository"
	"product-api/internal/service"
	"product-api/internal/tracer"
	"product-api/internal/version"
)

func main() {
	globalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Instance()
	cfg := config.Instance()
	logger.ConfigureRemote(logger.RemoteOptions{URI: cfg.RemoteLogHttpURI, Job: cfg.AppName})

	logger.Info(globalCtx, cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	shutdownTracer, err := tracer.Instance(globalCtx)
	if err != nil {
		logger.Error(globalCtx, "Failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wiring
	productRepo := repository.NewProductRepository(model.SeedProducts())
	productService := service.NewProductService(productRepo)
	healthService := service.NewHealthService(productRepo)

	metrics := middleware_http.NewMetrics(metricsNamespace(cfg.AppName))
	metrics.GaugeFunc("products", "Number of products in the collection", func() float64 {
		return float64(productRepo.Count())
	})

	router := handler.NewRouter(handler.Deps{
		Products:    handler.NewProductHandler(productService),
		Health:      handler.NewHealthHandler(healthService),
		Gate:        auth.NewGate(cfg.APIKeys, handler.PublicRoutes(cfg.MetricsPath)...),
		Metrics:     metrics,
		MetricsPath: cfg.MetricsPath,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return globalCtx },
	}

	go func() {
		logger.Info(globalCtx, "HTTP server running", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(globalCtx, "Server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	var grpcServer *grpc.Server
	var grpcHealth *grpcHandler.HealthServer
	if cfg.GRPCPort != "" {
		grpcServer = grpc.NewServer(
			grpc.UnaryInterceptor(middleware_grpc.UnaryTracingInterceptor()),
		)
		grpcHealth = grpcHandler.NewHealthServer(healthService)
		grpcHealth.Register(globalCtx, grpcServer)

		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			logger.Error(globalCtx, "failed to listen", slog.String("error", err.Error()))
			os.Exit(1)
		}

		go func() {
			logger.Info(globalCtx, "gRPC server running", slog.String("port", cfg.GRPCPort))
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error(globalCtx, "failed to serve", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}()
	}

	<-globalCtx.Done()

	// Health reports DOWN before the listeners drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	healthService.SetServing(false)
	logger.Info(shutdownCtx, "Shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))

	if grpcServer != nil {
		grpcHealth.Refresh(shutdownCtx)
		grpcServer.GracefulStop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "HTTP shutdown failed", slog.String("error", err.Error()))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "Error shutting down tracer provider", slog.String("error", err.Error()))
	}
	logger.Info(shutdownCtx, "Server exited cleanly")
}

// metricsNamespace turns "product-api" into "product_api".
func metricsNamespace(appName string) string {
	out := []rune(appName)
	for i, r := range out {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			out[i] = '_'
		}
	}
	return string(out)
}
