package middleware_http

import (
	"bytes"
	"net/http"
	"time"

	"product-api/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

var tracer = otel.Tracer("HttpMiddleware")

// ResponseWriter records status and size, and optionally keeps a copy of
// the body up to logger.MaxBodyLogged bytes.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	captureBody bool
	buf         bytes.Buffer
}

func NewResponseWriter(w http.ResponseWriter, captureBody bool) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok && rw.captureBody == captureBody {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK, captureBody: captureBody}
}

func (rw *ResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)

	if rw.captureBody && rw.buf.Len() < logger.MaxBodyLogged {
		toCopy := min(logger.MaxBodyLogged-rw.buf.Len(), len(b))
		rw.buf.Write(b[:toCopy])
	}
	return n, err
}

func (rw *ResponseWriter) Status() int { return rw.statusCode }

func (rw *ResponseWriter) Size() int64 { return rw.size }

func (rw *ResponseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// TraceMiddleware opens a server span per request (continuing any
// incoming trace context), sets X-Trace-ID, and logs the request and the
// response with their bodies.
func TraceMiddleware(routeOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			route := r.URL.Path
			if routeOf != nil {
				if p := routeOf(r); p != "" {
					route = p
				}
			}
			ctx, span := tracer.Start(ctx, r.Method+" "+route)
			defer span.End()
			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", r.URL.RequestURI()),
			)

			r = r.WithContext(ctx)
			logger.Info(ctx, "HTTP", logger.RequestAttrs(r, "incoming::request")...)

			rw := NewResponseWriter(w, true)
			start := time.Now()

			rw.Header().Set("X-Trace-ID", span.SpanContext().TraceID().String())

			next.ServeHTTP(rw, r)

			span.SetAttributes(attribute.Int("http.status_code", rw.statusCode))
			switch {
			case rw.statusCode >= 500:
				span.SetStatus(codes.Error, "internal server error")
			case rw.statusCode >= 400:
				span.SetStatus(codes.Error, "client error")
			default:
				span.SetStatus(codes.Ok, "")
			}

			attrs := logger.ResponseAttrs(r, rw.Header(), rw.statusCode, rw.buf.Bytes(), time.Since(start).Milliseconds(), "incoming::response")
			logger.Info(ctx, "HTTP", attrs...)
		})
	}
}
