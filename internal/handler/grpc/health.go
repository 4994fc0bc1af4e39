package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"product-api/internal/logger"
	"product-api/internal/service"
)

// ProductServiceName is the health key for the product API; the empty
// name covers the whole server.
const ProductServiceName = "product.ProductAPI"

// HealthServer mirrors HealthService onto the standard gRPC health
// protocol.
type HealthServer struct {
	*health.Server
	service *service.HealthService
}

func NewHealthServer(service *service.HealthService) *HealthServer {
	return &HealthServer{
		Server:  health.NewServer(),
		service: service,
	}
}

// Register exposes health and reflection on s and publishes the current
// status.
func (h *HealthServer) Register(ctx context.Context, s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.Server)
	reflection.Register(s)
	h.Refresh(ctx)
}

// Refresh re-reads the service status. Call it after SetServing changes.
func (h *HealthServer) Refresh(ctx context.Context) {
	st := healthpb.HealthCheckResponse_SERVING
	if h.service.Check(ctx).Status != service.StatusUp {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.SetServingStatus("", st)
	h.SetServingStatus(ProductServiceName, st)
	logger.Info(ctx, "GrpcHealth", slog.String("status", st.String()))
}
