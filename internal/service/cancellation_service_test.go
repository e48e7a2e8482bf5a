package service

import (
	"context"
	"testing"

	"tourdesk-backend/internal/model"
	"tourdesk-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cancelSetup builds a confirmed booking with money already flowing: the
// customer has paid in and part of the cost has gone out to a supplier.
func cancelSetup(t *testing.T, env *testEnv, received, paidToSupplier string) (*BookingResponse, *SupplierResponse) {
	t.Helper()
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	supplier := env.createSupplier(t, "Sunrise Hotels")

	if received != "" {
		env.payInitial(t, booking.ID.String(), received)
	}

	if paidToSupplier != "" {
		item, err := env.suppliers.AddCostItem(ctx, "", booking.ID.String(), AddCostItemRequest{
			SupplierID: supplier.ID.String(),
			Amount:     "400.00",
		})
		require.NoError(t, err)
		_, err = env.suppliers.RecordSupplierPayment(ctx, "", item.ID.String(), RecordPaymentRequest{
			Amount: paidToSupplier,
			Method: model.TenderBankTransfer,
		})
		require.NoError(t, err)
	}

	return booking, supplier
}

func TestCancelChainRefundAndSupplierCreditNote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Received 600, paid 250 to the supplier; fees are 200 + 50.
	booking, supplier := cancelSetup(t, env, "600.00", "250.00")

	result, err := env.cancellations.CancelChain(ctx, "", booking.ID.String(), CancelChainRequest{
		SupplierID:              supplier.ID.String(),
		SupplierCancellationFee: "200.00",
		AdminFee:                "50.00",
		RefundMode:              model.RefundModeCash,
	})
	require.NoError(t, err)

	assert.Equal(t, "600.00", result.TotalReceived)
	assert.Equal(t, "250.00", result.TotalPaidToSupp)
	assert.Equal(t, "350.00", result.RefundToPassenger)
	assert.Equal(t, "0.00", result.PayableByCustomer)
	assert.Equal(t, model.RefundPending, result.RefundStatus)

	// 250 paid against a 200 fee comes back as a supplier credit note.
	assert.Equal(t, "50.00", result.SupplierCreditNoteAmt)
	assert.Equal(t, "0.00", result.SupplierPayableAmt)
	require.NotNil(t, result.SupplierCreditNoteID)

	// 600 in, 400 owed to the supplier, 350 back to the passenger.
	assert.Equal(t, "-150.00", result.ProfitOrLoss)
	assert.Equal(t, "1.C", result.Folder)
	assert.True(t, env.publisher.has("booking.cancelled"))

	note, err := env.creditNotes.GetSupplierNote(ctx, result.SupplierCreditNoteID.String())
	require.NoError(t, err)
	assert.Equal(t, "50.00", note.RemainingAmount)
	assert.Equal(t, "Sunrise Hotels", note.Counterparty)

	detail, err := env.bookings.Get(ctx, booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, detail.Status)
}

func TestCancelChainCashRefundFlipsToPaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, supplier := cancelSetup(t, env, "600.00", "")

	result, err := env.cancellations.CancelChain(ctx, "", booking.ID.String(), CancelChainRequest{
		SupplierID:              supplier.ID.String(),
		SupplierCancellationFee: "200.00",
		AdminFee:                "50.00",
		RefundMode:              model.RefundModeCash,
	})
	require.NoError(t, err)
	require.Equal(t, model.RefundPending, result.RefundStatus)

	_, err = env.payments.RecordRefund(ctx, "", booking.ID.String(), RecordRefundRequest{
		Amount: "350.00",
		Method: model.TenderBankTransfer,
		Reason: "cancellation refund",
	})
	require.NoError(t, err)

	refreshed, err := env.cancellations.Get(ctx, result.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.RefundPaid, refreshed.RefundStatus)
}

func TestCancelChainCreditNoteRefund(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, supplier := cancelSetup(t, env, "600.00", "")

	result, err := env.cancellations.CancelChain(ctx, "", booking.ID.String(), CancelChainRequest{
		SupplierID:              supplier.ID.String(),
		SupplierCancellationFee: "200.00",
		AdminFee:                "50.00",
		RefundMode:              model.RefundModeCreditNote,
	})
	require.NoError(t, err)

	assert.Equal(t, model.RefundCreditIssued, result.RefundStatus)
	assert.Equal(t, "350.00", result.CreditNoteAmount)
	require.NotNil(t, result.CustomerCreditNoteID)

	note, err := env.creditNotes.GetCustomerNote(ctx, result.CustomerCreditNoteID.String())
	require.NoError(t, err)
	assert.Equal(t, "350.00", note.InitialAmount)
	assert.Equal(t, "Jordan Lee", note.Counterparty)
	assert.Equal(t, model.CreditNoteAvailable, note.Status)
}

func TestCancelChainNetsEarlierRefunds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, supplier := cancelSetup(t, env, "600.00", "")

	_, err := env.payments.RecordRefund(ctx, "", booking.ID.String(), RecordRefundRequest{
		Amount: "100.00",
		Method: model.TenderBankTransfer,
		Reason: "goodwill refund",
	})
	require.NoError(t, err)

	result, err := env.cancellations.CancelChain(ctx, "", booking.ID.String(), CancelChainRequest{
		SupplierID:              supplier.ID.String(),
		SupplierCancellationFee: "200.00",
		AdminFee:                "50.00",
		RefundMode:              model.RefundModeCash,
	})
	require.NoError(t, err)

	// Money already returned before the cancellation is not refunded twice.
	assert.Equal(t, "500.00", result.TotalReceived)
	assert.Equal(t, "250.00", result.RefundToPassenger)
}

func TestCancelChainCustomerShortfallRaisesPayables(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Received 100 against fees of 250; nothing paid to the supplier yet.
	booking, supplier := cancelSetup(t, env, "100.00", "")

	result, err := env.cancellations.CancelChain(ctx, "", booking.ID.String(), CancelChainRequest{
		SupplierID:              supplier.ID.String(),
		SupplierCancellationFee: "200.00",
		AdminFee:                "50.00",
		RefundMode:              model.RefundModeCash,
	})
	require.NoError(t, err)

	assert.Equal(t, "0.00", result.RefundToPassenger)
	assert.Equal(t, "150.00", result.PayableByCustomer)
	assert.Equal(t, model.RefundNA, result.RefundStatus)
	require.NotNil(t, result.CustomerPayableID)

	assert.Equal(t, "200.00", result.SupplierPayableAmt)
	require.NotNil(t, result.SupplierPayableID)

	customerPayables, total, err := env.settlements.ListCustomerPayables(ctx, model.PayablePending, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, customerPayables, 1)
	assert.Equal(t, "150.00", customerPayables[0].PendingAmount)
	assert.Equal(t, "Jordan Lee", customerPayables[0].Counterparty)
}

func TestCancelChainOnlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, supplier := cancelSetup(t, env, "600.00", "")
	req := CancelChainRequest{
		SupplierID:              supplier.ID.String(),
		SupplierCancellationFee: "200.00",
		AdminFee:                "50.00",
		RefundMode:              model.RefundModeCash,
	}

	_, err := env.cancellations.CancelChain(ctx, "", booking.ID.String(), req)
	require.NoError(t, err)

	_, err = env.cancellations.CancelChain(ctx, "", booking.ID.String(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	// A cancelled chain cannot be restored through unvoid either.
	_, err = env.bookings.Unvoid(ctx, "", booking.ID.String())
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestCancelChainCoversDateChangeChildren(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	parent := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	supplier := env.createSupplier(t, "Sunrise Hotels")

	child, err := env.bookings.CreateDateChange(ctx, "", parent.ID.String(), DateChangeRequest{
		Revenue:       "300.00",
		ProdCost:      "100.00",
		PaymentMethod: "FULL_CASH",
	})
	require.NoError(t, err)
	env.payInitial(t, parent.ID.String(), "500.00")
	env.payInitial(t, child.ID.String(), "300.00")

	result, err := env.cancellations.CancelChain(ctx, "", child.ID.String(), CancelChainRequest{
		SupplierID:              supplier.ID.String(),
		SupplierCancellationFee: "200.00",
		AdminFee:                "50.00",
		RefundMode:              model.RefundModeCash,
	})
	require.NoError(t, err)

	// Chain-wide: 800 received, 500 owed to suppliers across both members.
	assert.Equal(t, "800.00", result.TotalReceived)
	assert.Equal(t, "550.00", result.RefundToPassenger)

	parentDetail, err := env.bookings.Get(ctx, parent.ID.String())
	require.NoError(t, err)
	childDetail, err := env.bookings.Get(ctx, child.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, parentDetail.Status)
	assert.Equal(t, model.BookingCancelled, childDetail.Status)
}
