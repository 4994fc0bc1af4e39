package http

import (
	"net/http"

	"product-api/internal/apperror"
	"product-api/internal/model"
	"product-api/internal/service"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const WelcomeText = "Welcome to my FIRST API... Visit /api/products to see all products."

type ProductHandler struct {
	service *service.ProductService
}

var HttpProductHandlerTracer = otel.Tracer("HttpProductHandler")

func NewProductHandler(service *service.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

type listResponse struct {
	Success    bool             `json:"success"`
	Data       []model.Product  `json:"data"`
	Pagination model.Pagination `json:"pagination"`
}

type searchResponse struct {
	Success bool            `json:"success"`
	Data    []model.Product `json:"data"`
	Count   int             `json:"count"`
}

func (h *ProductHandler) Welcome(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(WelcomeText))
	return err
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) error {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.List")
	defer span.End()

	filter, page, limit := parseListQuery(r.URL.Query())
	result := h.service.List(ctx, filter, page, limit)

	writeJSON(w, http.StatusOK, listResponse{
		Success:    true,
		Data:       result.Items,
		Pagination: result.Pagination,
	})
	return nil
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) error {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Search")
	defer span.End()

	results, err := h.service.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Success: true,
		Data:    results,
		Count:   len(results),
	})
	return nil
}

func (h *ProductHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Stats")
	defer span.End()

	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: h.service.Stats(ctx)})
	return nil
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) error {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.GetByID")
	defer span.End()

	id := r.PathValue("id")
	span.SetAttributes(attribute.String("product.id", id))

	product, err := h.service.GetByID(ctx, id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: product})
	return nil
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) error {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Create")
	defer span.End()

	in, ok := productInput(r)
	if !ok {
		return apperror.Internal(errMissingInput)
	}
	created, err := h.service.Create(ctx, in)
	if err != nil {
		return err
	}

	span.SetAttributes(attribute.String("product.id", created.ID))
	writeJSON(w, http.StatusCreated, messageResponse{
		Success: true,
		Message: "Product added successfully",
		Data:    created,
	})
	return nil
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) error {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Update")
	defer span.End()

	id := r.PathValue("id")
	span.SetAttributes(attribute.String("product.id", id))

	in, ok := productInput(r)
	if !ok {
		return apperror.Internal(errMissingInput)
	}
	updated, err := h.service.Update(ctx, id, in)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Product updated successfully",
		Data:    updated,
	})
	return nil
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Delete")
	defer span.End()

	id := r.PathValue("id")
	span.SetAttributes(attribute.String("product.id", id))

	deleted, err := h.service.Delete(ctx, id)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Product deleted successfully",
		Data:    deleted,
	})
	return nil
}
