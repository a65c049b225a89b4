package invoice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/invoice"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

type Handler struct {
	ledger *invoice.Ledger
}

func NewHandler(ledger *invoice.Ledger) *Handler {
	return &Handler{ledger: ledger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/outstanding", h.listOutstanding)
	r.Get("/{id}", h.get)
	r.Get("/{id}/payments", h.listPayments)
	r.Post("/{id}/payments", h.recordPayment)
}

func (h *Handler) listOutstanding(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.ledger.ListOutstanding(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	now := time.Now()

	resp := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp = append(resp, toInvoiceResponse(inv, now))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toInvoiceResponse(inv, time.Now()))
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	payments, err := h.ledger.ListPayments(r.Context(), id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, toPaymentResponse(p))
	}

	writeJSON(w, http.StatusOK, resp)
}

type recordPaymentRequest struct {
	Amount    money.Money           `json:"amount"`
	Method    invoice.PaymentMethod `json:"method"`
	Date      *time.Time            `json:"date,omitempty"`
	Reference string                `json:"reference,omitempty"`
}

type recordPaymentResponse struct {
	Invoice invoiceResponse `json:"invoice"`
	Payment paymentResponse `json:"payment"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := invoice.RecordPaymentParams{
		InvoiceID: id,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
	}
	if req.Date != nil {
		params.Date = *req.Date
	}

	inv, payment, err := h.ledger.RecordPayment(r.Context(), params)
	if err != nil {
		writePaymentError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, recordPaymentResponse{
		Invoice: toInvoiceResponse(inv, time.Now()),
		Payment: toPaymentResponse(payment),
	})
}

// writePaymentError maps ledger errors to status codes. A settled invoice is
// a conflict rather than a validation error so the client can tell a stale
// screen apart from bad input.
func writePaymentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, invoice.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, invoice.ErrAlreadySettled):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, invoice.ErrInvalidAmount),
		errors.Is(err, invoice.ErrExceedsBalance):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, invoice.ErrNotAuthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
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
