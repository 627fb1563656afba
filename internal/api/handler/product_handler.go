package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"loan-engine/internal/api/handler/dto"
	"loan-engine/internal/domain/product"
)

type ProductHandler struct {
	service product.Service
	logger  *slog.Logger
}

func NewProductHandler(s product.Service, l *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: s,
		logger:  l.With("component", "ProductHandler"),
	}
}

// CreateProduct adds a loan product to the catalog.
//
// @Summary Create a loan product
// @Tags Loan Products
// @Accept json
// @Produce json
// @Param request body dto.CreateProductRequest true "Product definition"
// @Success 201 {object} dto.ProductResponse "Product created"
// @Failure 400 {object} dto.ErrorResponse "Invalid product definition"
// @Failure 403 {object} dto.ErrorResponse "Caller may not manage products"
// @Failure 409 {object} dto.ErrorResponse "Product name already in use"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loan-products [post]
// @Security BearerAuth
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CreateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, invalidRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, invalidRequest(err))
		return
	}

	created, err := h.service.CreateProduct(r.Context(), actor, req.ToProduct())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewProductResponse(created))
}

// ListProducts returns the catalog.
//
// @Summary List loan products
// @Tags Loan Products
// @Produce json
// @Param active query bool false "Only active products (default true)"
// @Success 200 {array} dto.ProductResponse "Loan products"
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameter"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loan-products [get]
// @Security BearerAuth
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if raw := r.URL.Query().Get("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, invalidRequest(err))
			return
		}
		activeOnly = parsed
	}

	products, err := h.service.ListProducts(r.Context(), activeOnly)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProductListResponse(products))
}

// GetProduct retrieves one loan product, active or not.
//
// @Summary Retrieve a loan product
// @Tags Loan Products
// @Produce json
// @Param productID path int true "Product ID"
// @Success 200 {object} dto.ProductResponse "Loan product"
// @Failure 400 {object} dto.ErrorResponse "Invalid product ID"
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loan-products/{productID} [get]
// @Security BearerAuth
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := getIDFromURL(r, "productID")
	if err != nil {
		respondError(w, invalidRequest(err))
		return
	}

	p, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProductResponse(p))
}

// UpdateProduct changes catalog terms. Loans already created keep their own copy.
//
// @Summary Update a loan product
// @Tags Loan Products
// @Accept json
// @Produce json
// @Param productID path int true "Product ID"
// @Param request body dto.UpdateProductRequest true "Fields to change"
// @Success 200 {object} dto.ProductResponse "Product updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload"
// @Failure 403 {object} dto.ErrorResponse "Caller may not manage products"
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loan-products/{productID} [put]
// @Security BearerAuth
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}
	productID, err := getIDFromURL(r, "productID")
	if err != nil {
		respondError(w, invalidRequest(err))
		return
	}

	var req dto.UpdateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, invalidRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, invalidRequest(err))
		return
	}

	updated, err := h.service.UpdateProduct(r.Context(), actor, productID, req.ToChanges())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProductResponse(updated))
}

// DeactivateProduct hides a product from new originations.
//
// @Summary Deactivate a loan product
// @Tags Loan Products
// @Param productID path int true "Product ID"
// @Success 204 "Product deactivated"
// @Failure 400 {object} dto.ErrorResponse "Invalid product ID"
// @Failure 403 {object} dto.ErrorResponse "Caller may not manage products"
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loan-products/{productID} [delete]
// @Security BearerAuth
func (h *ProductHandler) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}
	productID, err := getIDFromURL(r, "productID")
	if err != nil {
		respondError(w, invalidRequest(err))
		return
	}

	if err := h.service.DeactivateProduct(r.Context(), actor, productID); err != nil {
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan product deactivated", "productID", productID)
	w.WriteHeader(http.StatusNoContent)
}
