package register

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tilly/internal/cart"
	"github.com/MrJamesThe3rd/tilly/internal/catalog"
	"github.com/MrJamesThe3rd/tilly/internal/hold"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

// Handler owns the active cart of each register. Carts live in memory for
// the duration of a shift; everything that must survive goes through the
// checkout service or the hold store.
type Handler struct {
	catalogSvc *catalog.Service
	checkout   *cart.Service
	holds      *hold.Store
	taxRate    decimal.Decimal
	currency   string

	mu    sync.Mutex
	carts map[string]*cart.Cart
}

func NewHandler(catalogSvc *catalog.Service, checkout *cart.Service, holds *hold.Store, taxRate decimal.Decimal, currency string) *Handler {
	return &Handler{
		catalogSvc: catalogSvc,
		checkout:   checkout,
		holds:      holds,
		taxRate:    taxRate,
		currency:   currency,
		carts:      make(map[string]*cart.Cart),
	}
}

// Routes are mounted under /registers/{register}.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/cart", h.getCart)
	r.Delete("/cart", h.clearCart)
	r.Post("/cart/items", h.addItem)
	r.Patch("/cart/items/{lineID}", h.updateLine)
	r.Delete("/cart/items/{lineID}", h.removeLine)
	r.Post("/cart/hold", h.holdCart)
	r.Post("/cart/restore/{holdID}", h.restoreCart)
	r.Post("/checkout", h.doCheckout)
}

// HoldRoutes are mounted under /holds; held transactions are shared across
// registers.
func (h *Handler) HoldRoutes(r chi.Router) {
	r.Get("/", h.listHolds)
	r.Delete("/{holdID}", h.discardHold)
}

// cartFor returns the register's active cart, creating it on first use.
// The caller must hold h.mu.
func (h *Handler) cartFor(registerID string) *cart.Cart {
	c, ok := h.carts[registerID]
	if !ok {
		c = cart.New(h.taxRate)
		h.carts[registerID] = c
	}

	return c
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := h.cartFor(chi.URLParam(r, "register"))
	writeJSON(w, http.StatusOK, toCartResponse(c, h.currency))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cartFor(chi.URLParam(r, "register")).Clear()
	w.WriteHeader(http.StatusNoContent)
}

type addItemRequest struct {
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	SKU       string     `json:"sku,omitempty"`
	Quantity  int64      `json:"quantity"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		product *catalog.Product
		err     error
	)

	switch {
	case req.ProductID != nil:
		product, err = h.catalogSvc.Get(r.Context(), *req.ProductID)
	case req.SKU != "":
		product, err = h.catalogSvc.GetBySKU(r.Context(), req.SKU)
	default:
		http.Error(w, "product_id or sku is required", http.StatusBadRequest)
		return
	}

	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c := h.cartFor(chi.URLParam(r, "register"))

	if _, err := c.AddItem(cart.ItemParams{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.UnitPrice,
	}, req.Quantity); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, toCartResponse(c, h.currency))
}

type updateLineRequest struct {
	Quantity *int64       `json:"quantity,omitempty"`
	Discount *money.Money `json:"discount,omitempty"`
}

func (h *Handler) updateLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		http.Error(w, "invalid line id", http.StatusBadRequest)
		return
	}

	var req updateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c := h.cartFor(chi.URLParam(r, "register"))

	if req.Quantity != nil {
		if err := c.SetQuantity(lineID, *req.Quantity); err != nil {
			writeCartError(w, err)
			return
		}
	}

	if req.Discount != nil {
		if err := c.SetDiscount(lineID, *req.Discount); err != nil {
			writeCartError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, toCartResponse(c, h.currency))
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		http.Error(w, "invalid line id", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c := h.cartFor(chi.URLParam(r, "register"))

	if err := c.RemoveItem(lineID); err != nil {
		writeCartError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCartResponse(c, h.currency))
}

func (h *Handler) holdCart(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := h.cartFor(chi.URLParam(r, "register"))

	id, err := h.holds.Hold(c)
	if err != nil {
		if errors.Is(err, hold.ErrEmptyCart) {
			http.Error(w, "cannot hold an empty cart", http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	c.Clear()

	writeJSON(w, http.StatusCreated, map[string]any{"hold_id": id})
}

func (h *Handler) restoreCart(w http.ResponseWriter, r *http.Request) {
	holdID, err := uuid.Parse(chi.URLParam(r, "holdID"))
	if err != nil {
		http.Error(w, "invalid hold id", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	registerID := chi.URLParam(r, "register")
	if !h.cartFor(registerID).IsEmpty() {
		http.Error(w, "register already has an active cart", http.StatusConflict)
		return
	}

	held, err := h.holds.Restore(holdID)
	if err != nil {
		if errors.Is(err, hold.ErrNotFound) {
			http.Error(w, "held transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	h.carts[registerID] = held.Snapshot

	writeJSON(w, http.StatusOK, toCartResponse(held.Snapshot, h.currency))
}

type checkoutRequest struct {
	Method cart.Method `json:"method"`
	Tender []tenderDTO `json:"tender"`
}

type tenderDTO struct {
	Method cart.Method `json:"method"`
	Amount money.Money `json:"amount"`
}

func (h *Handler) doCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	legs := make([]cart.TenderLeg, 0, len(req.Tender))
	for _, leg := range req.Tender {
		legs = append(legs, cart.TenderLeg{Method: leg.Method, Amount: leg.Amount})
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c := h.cartFor(chi.URLParam(r, "register"))

	sale, err := h.checkout.Checkout(r.Context(), c, req.Method, legs)
	if err != nil {
		writeCartError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSaleResponse(sale, h.currency))
}

func (h *Handler) listHolds(w http.ResponseWriter, r *http.Request) {
	resp := make([]holdResponse, 0, h.holds.Len())
	for held := range h.holds.List() {
		resp = append(resp, toHoldResponse(held))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) discardHold(w http.ResponseWriter, r *http.Request) {
	holdID, err := uuid.Parse(chi.URLParam(r, "holdID"))
	if err != nil {
		http.Error(w, "invalid hold id", http.StatusBadRequest)
		return
	}

	if err := h.holds.Discard(holdID); err != nil {
		if errors.Is(err, hold.ErrNotFound) {
			http.Error(w, "held transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeCartError maps cart domain errors to status codes. Everything the
// cashier can fix is a 400; an infrastructure failure is a 500.
func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrLineNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidDiscount),
		errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, cart.ErrInsufficientTender),
		errors.Is(err, cart.ErrTenderMismatch),
		errors.Is(err, cart.ErrUnknownMethod):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
