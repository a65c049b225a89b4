package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/invoice"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

type invoiceResponse struct {
	ID                 uuid.UUID      `json:"id"`
	Number             string         `json:"number"`
	CustomerName       string         `json:"customer_name"`
	TotalAmount        money.Money    `json:"total_amount"`
	AmountPaid         money.Money    `json:"amount_paid"`
	OutstandingBalance money.Money    `json:"outstanding_balance"`
	Status             invoice.Status `json:"status"`
	Overdue            bool           `json:"overdue"`
	IssuedAt           time.Time      `json:"issued_at"`
	DueDate            time.Time      `json:"due_date"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          *time.Time     `json:"updated_at,omitempty"`
}

type paymentResponse struct {
	ID        uuid.UUID             `json:"id"`
	InvoiceID uuid.UUID             `json:"invoice_id"`
	Amount    money.Money           `json:"amount"`
	Method    invoice.PaymentMethod `json:"method"`
	Date      time.Time             `json:"date"`
	Reference string                `json:"reference,omitempty"`
	ActorID   string                `json:"actor_id,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

func toInvoiceResponse(inv *invoice.Invoice, now time.Time) invoiceResponse {
	return invoiceResponse{
		ID:                 inv.ID,
		Number:             inv.Number,
		CustomerName:       inv.CustomerName,
		TotalAmount:        inv.TotalAmount,
		AmountPaid:         inv.AmountPaid,
		OutstandingBalance: inv.OutstandingBalance,
		Status:             inv.Status,
		Overdue:            inv.IsOverdue(now),
		IssuedAt:           inv.IssuedAt,
		DueDate:            inv.DueDate,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
	}
}

func toPaymentResponse(p *invoice.Payment) paymentResponse {
	return paymentResponse{
		ID:        p.ID,
		InvoiceID: p.InvoiceID,
		Amount:    p.Amount,
		Method:    p.Method,
		Date:      p.Date,
		Reference: p.Reference,
		ActorID:   p.ActorID,
		CreatedAt: p.CreatedAt,
	}
}
