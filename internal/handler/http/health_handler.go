package http

import (
	"net/http"

	"product-api/internal/service"

	"go.opentelemetry.io/otel"
)

type HealthHandler struct {
	service *service.HealthService
}

var HttpHealthHandlerTracer = otel.Tracer("HttpHealthHandler")

func NewHealthHandler(service *service.HealthService) *HealthHandler {
	return &HealthHandler{
		service: service,
	}
}

// Check answers 503 while the service is draining.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) error {
	ctx, span := HttpHealthHandlerTracer.Start(r.Context(), "HttpHealthHandler.Check")
	defer span.End()

	status := h.service.Check(ctx)

	code := http.StatusOK
	if status.Status != service.StatusUp {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, dataResponse{Success: status.Status == service.StatusUp, Data: status})
	return nil
}
