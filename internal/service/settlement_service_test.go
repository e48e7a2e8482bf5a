package service

import (
	"context"
	"testing"

	"tourdesk-backend/internal/model"
	"tourdesk-backend/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// payableSetup cancels an underpaid chain so both a supplier payable (200) and
// a customer payable (150) exist.
func payableSetup(t *testing.T, env *testEnv) (*BookingResponse, *SupplierResponse, *CancellationResponse) {
	t.Helper()
	booking, supplier := cancelSetup(t, env, "100.00", "")

	result, err := env.cancellations.CancelChain(context.Background(), "", booking.ID.String(), CancelChainRequest{
		SupplierID:              supplier.ID.String(),
		SupplierCancellationFee: "200.00",
		AdminFee:                "50.00",
		RefundMode:              model.RefundModeCash,
	})
	require.NoError(t, err)
	require.NotNil(t, result.SupplierPayableID)
	require.NotNil(t, result.CustomerPayableID)
	return booking, supplier, result
}

func TestSupplierPayableSettledInParts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, _, cancellation := payableSetup(t, env)
	payableID := cancellation.SupplierPayableID.String()

	partial, err := env.settlements.SettleSupplierPayable(ctx, "", payableID, RecordPaymentRequest{
		Amount: "120.00",
		Method: model.TenderBankTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, "120.00", partial.PaidAmount)
	assert.Equal(t, "80.00", partial.PendingAmount)
	assert.Equal(t, model.PayablePending, partial.Status)

	full, err := env.settlements.SettleSupplierPayable(ctx, "", payableID, RecordPaymentRequest{
		Amount: "80.00",
		Method: model.TenderBankTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", full.PendingAmount)
	assert.Equal(t, model.PayablePaid, full.Status)

	_, err = env.settlements.SettleSupplierPayable(ctx, "", payableID, RecordPaymentRequest{
		Amount: "10.00",
		Method: model.TenderBankTransfer,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	// Paying the supplier never changes what was received from the customer.
	detail, err := env.bookings.Get(ctx, booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "100.00", detail.TotalReceived)
}

func TestSettlementCannotExceedPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, cancellation := payableSetup(t, env)

	_, err := env.settlements.SettleSupplierPayable(ctx, "", cancellation.SupplierPayableID.String(), RecordPaymentRequest{
		Amount: "250.00",
		Method: model.TenderBankTransfer,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestCustomerPayableSettlementFeedsChainRoot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, _, cancellation := payableSetup(t, env)

	settled, err := env.settlements.SettleCustomerPayable(ctx, "", cancellation.CustomerPayableID.String(), RecordPaymentRequest{
		Amount: "150.00",
		Method: model.TenderCash,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PayablePaid, settled.Status)

	// The money the customer pays against the payable counts toward the chain
	// root's received total.
	detail, err := env.bookings.Get(ctx, booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "250.00", detail.TotalReceived)
	assert.Equal(t, model.BookingCancelled, detail.Status)
}

func TestSupplierPayableSettledWithSupplierCreditNote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, supplier, cancellation := payableSetup(t, env)

	// A note the supplier owes us from an earlier overpayment.
	note, err := env.creditNotes.IssueSupplierNote(ctx, supplier.ID, supplier.Name, decimal.NewFromInt(60), nil, nil)
	require.NoError(t, err)

	settled, err := env.settlements.SettleSupplierPayable(ctx, "", cancellation.SupplierPayableID.String(), RecordPaymentRequest{
		Amount:           "60.00",
		Method:           model.TenderCreditNotes,
		CreditNoteAmount: "60.00",
		CreditNotes: []CreditNoteLineRequest{
			{NoteID: note.ID.String(), Amount: "60.00"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "140.00", settled.PendingAmount)

	refreshed, err := env.creditNotes.GetSupplierNote(ctx, note.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.CreditNoteUsed, refreshed.Status)
	require.Len(t, refreshed.Usages, 1)
	assert.Equal(t, model.AppliedToPayableSettlement, refreshed.Usages[0].AppliedToKind)
}
