package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/printatelier/storefront/internal/logger"
	"github.com/printatelier/storefront/internal/models"
)

type createProductRequest struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Image string `json:"image"`
}

// createProductHandler handles POST /products
func (h *Handler) createProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "title is required")
		return
	}
	if req.Image == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "image is required")
		return
	}

	now := time.Now().UTC()
	product := models.Product{
		ID:        req.ID,
		Title:     req.Title,
		Image:     req.Image,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	if err := h.store.CreateProduct(ctx, product); err != nil {
		logger.WithContext(ctx).Error("Failed to create product", "error", err, "product_id", product.ID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.WithContext(ctx).Info("Product created", "product_id", product.ID, "title", product.Title)

	if h.publish != nil {
		h.publish(product)
	}

	h.writeJSONResponse(w, http.StatusCreated, product)
}

// getProductHandler handles GET /products/{id}
func (h *Handler) getProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := chi.URLParam(r, "id")

	if productID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "product ID is required")
		return
	}

	product, err := h.store.GetProduct(ctx, productID)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to get product", "error", err, "product_id", productID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	if product == nil {
		h.writeErrorResponse(w, r, http.StatusNotFound, "Product not found")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, product)
}

// listProductsHandler handles GET /products
func (h *Handler) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := h.parseProductQuery(r)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.store.ListProducts(ctx, q)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to list products", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := map[string]interface{}{
		"data":      products,
		"count":     len(products),
		"timestamp": time.Now().UTC(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// parseProductQuery parses query parameters into ProductQuery
func (h *Handler) parseProductQuery(r *http.Request) (models.ProductQuery, error) {
	q := models.ProductQuery{}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return q, fmt.Errorf("invalid limit: %s", limitStr)
		}
		if limit < 0 || limit > 1000 {
			return q, fmt.Errorf("limit must be between 0 and 1000")
		}
		q.Limit = limit
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return q, fmt.Errorf("invalid offset: %s", offsetStr)
		}
		if offset < 0 {
			return q, fmt.Errorf("offset must be non-negative")
		}
		q.Offset = offset
	}

	return q, nil
}
