package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/catalog"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

type Handler struct {
	svc *catalog.Service
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/price", h.updatePrice)
}

type createProductRequest struct {
	SKU       string      `json:"sku"`
	Name      string      `json:"name"`
	UnitPrice money.Money `json:"unit_price"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.SKU == "" || req.Name == "" {
		http.Error(w, "sku and name are required", http.StatusBadRequest)
		return
	}

	if !req.UnitPrice.IsPositive() {
		http.Error(w, "unit_price must be positive", http.StatusBadRequest)
		return
	}

	product, err := h.svc.Create(r.Context(), catalog.CreateParams{
		SKU:       req.SKU,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(product))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ListFilter{Search: r.URL.Query().Get("search")}

	products, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(products))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	product, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toResponse(product))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updatePriceRequest struct {
	UnitPrice money.Money `json:"unit_price"`
}

func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !req.UnitPrice.IsPositive() {
		http.Error(w, "unit_price must be positive", http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdatePrice(r.Context(), id, req.UnitPrice); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type productResponse struct {
	ID        uuid.UUID   `json:"id"`
	SKU       string      `json:"sku"`
	Name      string      `json:"name"`
	UnitPrice money.Money `json:"unit_price"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

func toResponse(p *catalog.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toResponseList(products []*catalog.Product) []productResponse {
	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toResponse(p)
	}

	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
