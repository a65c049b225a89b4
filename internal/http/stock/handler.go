package stock

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/auth"
	"github.com/MrJamesThe3rd/tilly/internal/stock"
)

type Handler struct {
	saga  *stock.Saga
	repo  stock.Repository
	roles auth.RoleProvider
}

func NewHandler(saga *stock.Saga, repo stock.Repository, roles auth.RoleProvider) *Handler {
	return &Handler{saga: saga, repo: repo, roles: roles}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{productID}", h.get)
	r.Post("/transfers", h.transfer)
}

type stockResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	OnHand    int64     `json:"on_hand"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	account, err := h.repo.GetStock(r.Context(), productID)
	if err != nil {
		if errors.Is(err, stock.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, stockResponse{ProductID: account.ProductID, OnHand: account.OnHand})
}

type transferRequest struct {
	SourceID      uuid.UUID `json:"source_id"`
	DestinationID uuid.UUID `json:"destination_id"`
	Quantity      int64     `json:"quantity"`
	Reason        string    `json:"reason"`
}

type transferResponse struct {
	SourceOnHand      int64 `json:"source_on_hand"`
	DestinationOnHand int64 `json:"destination_on_hand"`
}

type transferErrorResponse struct {
	Error               string      `json:"error"`
	State               stock.State `json:"state"`
	NeedsReconciliation bool        `json:"needs_reconciliation"`
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	actor, err := h.roles.CurrentActor(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if !actor.Role.CanTransferStock() {
		http.Error(w, "role cannot transfer stock", http.StatusForbidden)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.saga.Transfer(r.Context(), stock.Transfer{
		SourceID:      req.SourceID,
		DestinationID: req.DestinationID,
		Quantity:      req.Quantity,
		Reason:        req.Reason,
		Actor:         actor.ID,
	})
	if err != nil {
		writeTransferError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transferResponse{
		SourceOnHand:      result.SourceOnHand,
		DestinationOnHand: result.DestinationOnHand,
	})
}

func writeTransferError(w http.ResponseWriter, err error) {
	var terr *stock.TransferError
	if errors.As(err, &terr) {
		// The saga already left the balances consistent or flagged them for
		// reconciliation; report which it was.
		writeJSON(w, http.StatusInternalServerError, transferErrorResponse{
			Error:               terr.Error(),
			State:               terr.State,
			NeedsReconciliation: terr.NeedsReconciliation,
		})

		return
	}

	switch {
	case errors.Is(err, stock.ErrProductNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, stock.ErrInsufficientStock):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, stock.ErrSameProduct),
		errors.Is(err, stock.ErrInvalidQuantity),
		errors.Is(err, stock.ErrMissingReason):
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
