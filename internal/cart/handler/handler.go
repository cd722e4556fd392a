// Package handler provides HTTP handlers for the catalog and cart endpoints.
package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	"github.com/abgdnv/shopcart/internal/cart/service"
	"github.com/abgdnv/shopcart/internal/catalog"
	"github.com/abgdnv/shopcart/internal/platform/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	catalog  service.CatalogService
	carts    service.CartService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler with the provided services.
func NewHandler(catalog service.CatalogService, carts service.CartService, logger *slog.Logger) *Handler {
	return &Handler{
		catalog:  catalog,
		carts:    carts,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes of the cart service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/", h.FindAllProducts)
		r.Get("/{id}", h.FindProductByID)
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(web.CartIDMiddleware(h.logger))
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Delete("/items/{id}", h.RemoveItem)
		r.Post("/checkout", h.Checkout)
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindAllProducts lists the catalog, optionally paged with offset and limit.
func (h *Handler) FindAllProducts(w http.ResponseWriter, r *http.Request) {
	offset, ok := web.OptionalGte(r, w, h.logger, "offset", 0, 0)
	if !ok {
		return
	}
	limit, ok := web.OptionalGt(r, w, h.logger, "limit", 0, 0)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to list catalog", "offset", offset, "limit", limit)
	list, err := h.catalog.FindAll(r.Context(), offset, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving catalog", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// FindProductByID retrieves a product by its ID.
func (h *Handler) FindProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseIntID(w, r, h.logger)
	if !ok {
		return
	}
	found, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// GetCart returns the caller's cart with its totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID, ok := web.GetCartID(w, r, h.logger)
	if !ok {
		return
	}
	dto, err := h.carts.Get(r.Context(), cartID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving cart", "error", err)
		h.respondCartError(w, err, "Failed to retrieve cart")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, dto)
}

// AddItem adds one unit of a catalog product to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := web.GetCartID(w, r, h.logger)
	if !ok {
		return
	}
	var req service.AddItemDto
	if !web.DecodeAndValidate(w, r, h.logger, h.validate, &req) {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to add item", "product_id", req.ProductID)
	dto, err := h.carts.AddItem(r.Context(), cartID, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found", "ID", req.ProductID)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", req.ProductID))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error adding item", "ID", req.ProductID, "error", err)
		h.respondCartError(w, err, "Failed to add item")
		return
	}
	h.logger.InfoContext(r.Context(), "Item added", "ID", req.ProductID, "items", dto.TotalItemCount)
	web.RespondJSON(w, h.logger, http.StatusOK, dto)
}

// RemoveItem removes one unit of a product from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := web.GetCartID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := web.ParseIntID(w, r, h.logger)
	if !ok {
		return
	}
	dto, err := h.carts.RemoveItem(r.Context(), cartID, id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error removing item", "ID", id, "error", err)
		h.respondCartError(w, err, "Failed to remove item")
		return
	}
	h.logger.InfoContext(r.Context(), "Item removed", "ID", id, "items", dto.TotalItemCount)
	web.RespondJSON(w, h.logger, http.StatusOK, dto)
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cartID, ok := web.GetCartID(w, r, h.logger)
	if !ok {
		return
	}
	dto, err := h.carts.Clear(r.Context(), cartID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error clearing cart", "error", err)
		h.respondCartError(w, err, "Failed to clear cart")
		return
	}
	h.logger.InfoContext(r.Context(), "Cart cleared")
	web.RespondJSON(w, h.logger, http.StatusOK, dto)
}

// respondCartError writes 503 when the cart storage cannot be read, 500 otherwise.
func (h *Handler) respondCartError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, carterrors.ErrStoreUnavailable) {
		web.RespondError(w, h.logger, http.StatusServiceUnavailable, "Cart storage is temporarily unavailable")
		return
	}
	web.RespondError(w, h.logger, http.StatusInternalServerError, message)
}

// Checkout is a placeholder; no order is placed.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "Checkout requested but not available")
	web.RespondError(w, h.logger, http.StatusNotImplemented, "Checkout is not available yet")
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
