package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"

	"product-api/internal/config"
	grpcHandler "product-api/internal/handler/grpc"
	"product-api/internal/logger"
	middleware_grpc "product-api/internal/middleware/grpc"
	"product-api/internal/tracer"
	"product-api/internal/version"
)

// Polls the gRPC health endpoint of a running server.
func main() {
	globalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Instance()
	cfg := config.LoadClient()

	logger.Info(globalCtx, "product-api-grpc-client",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	shutdown, err := tracer.Setup(globalCtx, tracer.Options{AppName: "product-api-grpc-client", Env: "development"})
	if err == nil {
		defer func() { _ = shutdown(context.Background()) }()
	}
	probeTracer := otel.Tracer("GrpcHealthProbe")

	conn, err := grpc.NewClient(
		cfg.GRPCTarget,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		logger.Error(globalCtx, "Failed to connect to gRPC server",
			slog.String("error", err.Error()),
			slog.String("target", cfg.GRPCTarget),
		)
		os.Exit(1)
	}
	defer func() {
		logger.Info(globalCtx, "Closing gRPC connection")
		_ = conn.Close()
	}()

	client := healthpb.NewHealthClient(conn)
	logger.Info(globalCtx, "gRPC client started", slog.String("target", cfg.GRPCTarget))

	ticker := time.NewTicker(cfg.Delay)
	defer ticker.Stop()

	for {
		select {
		case <-globalCtx.Done():
			logger.Info(globalCtx, "Received shutdown signal, exiting")
			return
		case <-ticker.C:
		}

		ctx, span := probeTracer.Start(globalCtx, "HealthProbe")
		md := metadata.MD{}
		otel.GetTextMapPropagator().Inject(ctx, middleware_grpc.MetadataCarrier(md))
		ctx = metadata.NewOutgoingContext(ctx, md)

		callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		resp, err := client.Check(callCtx, &healthpb.HealthCheckRequest{Service: grpcHandler.ProductServiceName})
		cancel()

		if err != nil {
			logger.Error(ctx, "Health check failed", slog.String("error", err.Error()))
		} else {
			logger.Info(ctx, "Health check", slog.String("status", resp.GetStatus().String()))
		}
		span.End()
	}
}
