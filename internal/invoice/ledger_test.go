package invoice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tilly/internal/auth"
	"github.com/MrJamesThe3rd/tilly/internal/invoice"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

var accountant = auth.StaticProvider{Actor: auth.Actor{ID: "u-7", Role: auth.RoleAccountant}}

func testInvoice(totalCents, paidCents int64) *invoice.Invoice {
	total := money.FromCents(totalCents)
	paid := money.FromCents(paidCents)

	status := invoice.StatusUnpaid
	if paidCents > 0 {
		status = invoice.StatusPartiallyPaid
	}

	return &invoice.Invoice{
		ID:                 uuid.New(),
		Number:             "INV-2025-0042",
		TotalAmount:        total,
		AmountPaid:         paid,
		OutstandingBalance: total.Sub(paid),
		Status:             status,
		DueDate:            time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func expectAtomicApply(repo *invoice.MockRepository, tx *invoice.MockPaymentTx, inv *invoice.Invoice) {
	repo.EXPECT().BeginPayment(gomock.Any(), inv.ID).Return(tx, nil)
	tx.EXPECT().AppendPayment(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().ApplyPayment(gomock.Any(), inv.ID, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil)
}

func TestLedger_RecordPayment_SettlesInFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)
	tx := invoice.NewMockPaymentTx(ctrl)

	inv := testInvoice(100000, 40000) // 1000.00 total, 400.00 paid
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	expectAtomicApply(repo, tx, inv)

	ledger := invoice.NewLedger(repo, accountant, nil, nil)

	updated, payment, err := ledger.RecordPayment(context.Background(), invoice.RecordPaymentParams{
		InvoiceID: inv.ID,
		Amount:    money.FromCents(60000),
		Method:    invoice.PaymentBankTransfer,
		Reference: "TRX-991",
	})
	require.NoError(t, err)

	assert.Equal(t, invoice.StatusPaid, updated.Status)
	assert.Equal(t, int64(100000), updated.AmountPaid.Cents())
	assert.True(t, updated.OutstandingBalance.IsEffectivelyZero())

	assert.Equal(t, inv.ID, payment.InvoiceID)
	assert.Equal(t, "u-7", payment.ActorID)
	assert.Equal(t, int64(60000), payment.Amount.Cents())
}

func TestLedger_RecordPayment_PartialPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)
	tx := invoice.NewMockPaymentTx(ctrl)

	inv := testInvoice(100000, 0)
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	expectAtomicApply(repo, tx, inv)

	ledger := invoice.NewLedger(repo, accountant, nil, nil)

	updated, _, err := ledger.RecordPayment(context.Background(), invoice.RecordPaymentParams{
		InvoiceID: inv.ID,
		Amount:    money.FromCents(40000),
		Method:    invoice.PaymentCash,
	})
	require.NoError(t, err)

	assert.Equal(t, invoice.StatusPartiallyPaid, updated.Status)
	assert.Equal(t, int64(60000), updated.OutstandingBalance.Cents())
}

func TestLedger_RecordPayment_AlreadySettled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)

	inv := testInvoice(96328, 96328) // fully paid
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)

	ledger := invoice.NewLedger(repo, accountant, nil, nil)

	_, _, err := ledger.RecordPayment(context.Background(), invoice.RecordPaymentParams{
		InvoiceID: inv.ID,
		Amount:    money.FromCents(1),
		Method:    invoice.PaymentCash,
	})
	assert.ErrorIs(t, err, invoice.ErrAlreadySettled)
}

func TestLedger_RecordPayment_SubCentResidueCountsAsSettled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)

	inv := testInvoice(96328, 96328)
	// Leave compounding rounding residue of 0.004 on the balance.
	inv.AmountPaid = inv.AmountPaid.Sub(money.FromFloat(0.004))
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)

	ledger := invoice.NewLedger(repo, accountant, nil, nil)

	_, _, err := ledger.RecordPayment(context.Background(), invoice.RecordPaymentParams{
		InvoiceID: inv.ID,
		Amount:    money.FromCents(1),
		Method:    invoice.PaymentCash,
	})
	assert.ErrorIs(t, err, invoice.ErrAlreadySettled)
}

func TestLedger_RecordPayment_ExceedsBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)

	inv := testInvoice(100000, 40000)
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)

	ledger := invoice.NewLedger(repo, accountant, nil, nil)

	// 650.00 against an outstanding 600.00 is a real overpayment.
	_, _, err := ledger.RecordPayment(context.Background(), invoice.RecordPaymentParams{
		InvoiceID: inv.ID,
		Amount:    money.FromCents(65000),
		Method:    invoice.PaymentCash,
	})
	assert.ErrorIs(t, err, invoice.ErrExceedsBalance)
}

func TestLedger_RecordPayment_OvershootWithinToleranceSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)
	tx := invoice.NewMockPaymentTx(ctrl)

	inv := testInvoice(100000, 40000)
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	expectAtomicApply(repo, tx, inv)

	ledger := invoice.NewLedger(repo, accountant, nil, nil)

	// One cent above the displayed balance is rounding noise.
	updated, _, err := ledger.RecordPayment(context.Background(), invoice.RecordPaymentParams{
		InvoiceID: inv.ID,
		Amount:    money.FromCents(60001),
		Method:    invoice.PaymentCard,
	})
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, updated.Status)
	// The raw balance keeps the -0.01 residue; display clamps it away.
	assert.True(t, updated.OutstandingBalance.Clamp(money.Zero(), updated.TotalAmount).IsZero())
}

func TestLedger_RecordPayment_InvalidAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)

	inv := testInvoice(100000, 0)
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil).Times(2)

	ledger := invoice.NewLedger(repo, accountant, nil, nil)

	for _, cents := range []int64{0, -500} {
		_, _, err := ledger.RecordPayment(context.Background(), invoice.RecordPaymentParams{
			InvoiceID: inv.ID,
			Amount:    money.FromCents(cents),
			Method:    invoice.PaymentCash,
		})
		assert.ErrorIs(t, err, invoice.ErrInvalidAmount)
	}
}

func TestLedger_RecordPayment_NotAuthorized(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)

	inv := testInvoice(100000, 0)
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)

	cashier := auth.StaticProvider{Actor: auth.Actor{ID: "u-2", Role: auth.RoleCashier}}
	ledger := invoice.NewLedger(repo, cashier, nil, nil)

	_, _, err := ledger.RecordPayment(context.Background(), invoice.RecordPaymentParams{
		InvoiceID: inv.ID,
		Amount:    money.FromCents(1000),
		Method:    invoice.PaymentCash,
	})
	assert.ErrorIs(t, err, invoice.ErrNotAuthorized)
}

func TestLedger_RecordPayment_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)

	id := uuid.New()
	repo.EXPECT().GetInvoice(gomock.Any(), id).Return(nil, invoice.ErrNotFound)

	ledger := invoice.NewLedger(repo, accountant, nil, nil)

	_, _, err := ledger.RecordPayment(context.Background(), invoice.RecordPaymentParams{
		InvoiceID: id,
		Amount:    money.FromCents(1000),
		Method:    invoice.PaymentCash,
	})
	assert.ErrorIs(t, err, invoice.ErrNotFound)
}

func TestLedger_RecordPayment_ApplyFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)
	tx := invoice.NewMockPaymentTx(ctrl)

	inv := testInvoice(100000, 0)
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	repo.EXPECT().BeginPayment(gomock.Any(), inv.ID).Return(tx, nil)
	tx.EXPECT().AppendPayment(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().ApplyPayment(gomock.Any(), inv.ID, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("write failed"))
	tx.EXPECT().Rollback().Return(nil)

	ledger := invoice.NewLedger(repo, accountant, nil, nil)

	_, _, err := ledger.RecordPayment(context.Background(), invoice.RecordPaymentParams{
		InvoiceID: inv.ID,
		Amount:    money.FromCents(1000),
		Method:    invoice.PaymentCash,
	})
	require.Error(t, err)

	// The in-memory invoice must not have been touched either.
	assert.Equal(t, int64(0), inv.AmountPaid.Cents())
	assert.Equal(t, invoice.StatusUnpaid, inv.Status)
}

func TestInvoice_IsOverdue(t *testing.T) {
	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	before := due.Add(-24 * time.Hour)
	after := due.Add(24 * time.Hour)

	inv := testInvoice(100000, 40000)
	inv.DueDate = due

	assert.False(t, inv.IsOverdue(before))
	assert.True(t, inv.IsOverdue(after))

	inv.Status = invoice.StatusPaid
	assert.False(t, inv.IsOverdue(after))

	inv.Status = invoice.StatusDraft
	assert.False(t, inv.IsOverdue(after))
}
