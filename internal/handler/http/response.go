package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"product-api/internal/apperror"
	"product-api/internal/logger"
)

type errorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// normalize maps any failure to a status and the uniform error body.
func normalize(err error) (int, errorResponse) {
	appErr := apperror.From(err)
	body := errorResponse{Success: false, Message: appErr.Message}
	status := appErr.Status

	switch appErr.Kind {
	case apperror.KindValidation:
		body.Errors = appErr.Errors
	case apperror.KindNotFound, apperror.KindUnauthorized:
	default:
		if status < 400 || status > 599 {
			status = http.StatusInternalServerError
		}
		if body.Message == "" {
			body.Message = apperror.DefaultMessage
		}
	}
	return status, body
}

// writeError is the single exit for failed requests.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := normalize(err)

	attrs := []slog.Attr{
		slog.Int("http.status", status),
		slog.String("error.kind", apperror.From(err).Kind.String()),
		slog.String("error.message", body.Message),
	}
	if cause := errors.Unwrap(err); cause != nil {
		attrs = append(attrs, slog.String("error.cause", cause.Error()))
	}
	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "Request failed", attrs...)
	} else {
		logger.Warn(ctx, "Request failed", attrs...)
	}

	writeJSON(w, status, body)
}
