package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"product-api/internal/apperror"
	"product-api/internal/auth"
	"product-api/internal/model"
	"product-api/internal/validation"
)

// MaxBodyBytes caps decoded request payloads.
const MaxBodyBytes = 1 << 20

// Gate is one pipeline stage. It either lets the request continue,
// possibly replacing it (e.g. to attach a parsed payload), or stops it
// with an error.
type Gate func(r *http.Request) (*http.Request, error)

// HandlerFunc is an endpoint that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

type inputKey struct{}

// Pipeline runs gates in order, then the handler. Any error or panic is
// handed to the normalizer.
func Pipeline(gates []Gate, h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				writeError(r.Context(), w, apperror.Internal(fmt.Errorf("panic: %v", rec)))
			}
		}()

		for _, gate := range gates {
			next, err := gate(r)
			if err != nil {
				writeError(r.Context(), w, err)
				return
			}
			r = next
		}
		if err := h(w, r); err != nil {
			writeError(r.Context(), w, err)
		}
	})
}

// AuthGate rejects requests that need and lack a valid API key.
func AuthGate(g *auth.Gate) Gate {
	return func(r *http.Request) (*http.Request, error) {
		return r, g.Check(r)
	}
}

// ValidateProductGate decodes the JSON body, runs the product rules for
// mode and attaches the normalized input to the request context.
func ValidateProductGate(mode validation.Mode) Gate {
	return func(r *http.Request) (*http.Request, error) {
		raw, err := decodeObject(r)
		if err != nil {
			return nil, err
		}
		in, err := validation.Product(raw, mode)
		if err != nil {
			return nil, err
		}
		return r.WithContext(context.WithValue(r.Context(), inputKey{}, in)), nil
	}
}

func productInput(r *http.Request) (model.ProductInput, bool) {
	in, ok := r.Context().Value(inputKey{}).(model.ProductInput)
	return in, ok
}

// decodeObject reads a JSON object body. An empty body is an empty object.
func decodeObject(r *http.Request) (map[string]any, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return map[string]any{}, nil
	}
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, bodyError(err)
	}
	// only whitespace may follow the value
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, apperror.Generic(http.StatusBadRequest, "Invalid JSON payload")
		}
		return nil, bodyError(err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, apperror.Generic(http.StatusBadRequest, "Invalid JSON payload")
	}
	return obj, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.Generic(http.StatusRequestEntityTooLarge, "Request payload too large")
	}
	return apperror.Generic(http.StatusBadRequest, "Invalid JSON payload")
}
