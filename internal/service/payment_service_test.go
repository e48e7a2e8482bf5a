package service

import (
	"context"
	"testing"
	"time"

	"tourdesk-backend/internal/model"
	"tourdesk-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstalmentPaymentsAccumulate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	env.payInitial(t, booking.ID.String(), "400.00")

	instalment, err := env.payments.CreateInstalment(ctx, "", booking.ID.String(), CreateInstalmentRequest{
		Amount:  "600.00",
		DueDate: time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", instalment.Paid)

	updated, err := env.payments.RecordInstalmentPayment(ctx, "", instalment.ID.String(), RecordPaymentRequest{
		Amount: "250.00",
		Method: model.TenderCard,
	})
	require.NoError(t, err)
	assert.Equal(t, "650.00", updated.TotalReceived)
	assert.Equal(t, "350.00", updated.Balance)
	assert.Equal(t, model.BookingConfirmed, updated.Status)

	updated, err = env.payments.RecordInstalmentPayment(ctx, "", instalment.ID.String(), RecordPaymentRequest{
		Amount: "350.00",
		Method: model.TenderCard,
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", updated.Balance)
	assert.Equal(t, model.BookingCompleted, updated.Status)

	instalments, err := env.payments.ListInstalments(ctx, booking.ID.String())
	require.NoError(t, err)
	require.Len(t, instalments, 1)
	assert.Equal(t, "600.00", instalments[0].Paid)
}

func TestPaymentRejectedOnTerminalBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	_, err := env.bookings.Void(ctx, "", booking.ID.String())
	require.NoError(t, err)

	_, err = env.payments.RecordInitialPayment(ctx, "", booking.ID.String(), RecordPaymentRequest{
		Amount: "100.00",
		Method: model.TenderBankTransfer,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestPaymentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")

	cases := []struct {
		name string
		req  RecordPaymentRequest
	}{
		{"zero amount", RecordPaymentRequest{Amount: "0.00", Method: model.TenderCash}},
		{"negative amount", RecordPaymentRequest{Amount: "-5.00", Method: model.TenderCash}},
		{"unknown method", RecordPaymentRequest{Amount: "100.00", Method: "IOU"}},
		{"credit notes without lines", RecordPaymentRequest{Amount: "100.00", Method: model.TenderCreditNotes}},
		{"cover without lines", RecordPaymentRequest{Amount: "100.00", Method: model.TenderCash, CreditNoteAmount: "50.00"}},
		{"cover above amount", RecordPaymentRequest{
			Amount: "100.00", Method: model.TenderCash, CreditNoteAmount: "150.00",
			CreditNotes: []CreditNoteLineRequest{{NoteID: booking.ID.String(), Amount: "150.00"}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.payments.RecordInitialPayment(ctx, "", booking.ID.String(), tc.req)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestRefundReopensCompletedBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	paid := env.payInitial(t, booking.ID.String(), "1000.00")
	require.Equal(t, model.BookingCompleted, paid.Status)

	refunded, err := env.payments.RecordRefund(ctx, "", booking.ID.String(), RecordRefundRequest{
		Amount: "200.00",
		Method: model.TenderBankTransfer,
		Reason: "overcharged surcharge",
	})
	require.NoError(t, err)
	assert.Equal(t, "800.00", refunded.TotalReceived)
	assert.Equal(t, "200.00", refunded.Balance)
	assert.Equal(t, model.BookingConfirmed, refunded.Status)
}

func TestRefundRejectedOnVoidBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	_, err := env.bookings.Void(ctx, "", booking.ID.String())
	require.NoError(t, err)

	_, err = env.payments.RecordRefund(ctx, "", booking.ID.String(), RecordRefundRequest{
		Amount: "100.00",
		Method: model.TenderCash,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}
