package service

import (
	"context"
	"sync/atomic"
	"time"

	"product-api/internal/repository"

	"go.opentelemetry.io/otel"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

type HealthService struct {
	repo    *repository.ProductRepository
	started time.Time
	serving atomic.Bool
}

type HealthStatus struct {
	Status        string  `json:"status"`
	Products      int     `json:"products"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

var HealthServiceTracer = otel.Tracer("HealthService")

// NewHealthService starts in the serving state.
func NewHealthService(repo *repository.ProductRepository) *HealthService {
	h := &HealthService{repo: repo, started: time.Now()}
	h.serving.Store(true)
	return h
}

// SetServing flips readiness, e.g. while draining on shutdown.
func (s *HealthService) SetServing(serving bool) {
	s.serving.Store(serving)
}

func (s *HealthService) Serving() bool {
	return s.serving.Load()
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	_, span := HealthServiceTracer.Start(ctx, "HealthService.Check")
	defer span.End()

	status := HealthStatus{
		Status:        StatusUp,
		Products:      s.repo.Count(),
		UptimeSeconds: time.Since(s.started).Seconds(),
	}
	if !s.Serving() {
		status.Status = StatusDown
	}
	return status
}
