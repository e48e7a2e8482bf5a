package service

import (
	"context"
	"testing"

	"tourdesk-backend/internal/model"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerCreditNoteFundsPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	note, err := env.creditNotes.IssueCustomerNote(ctx, "Jordan Lee", decimal.NewFromInt(200), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CreditNoteAvailable, note.Status)
	assert.Contains(t, note.NoteNo, "CCN-")

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")

	paid, err := env.payments.RecordInitialPayment(ctx, "", booking.ID.String(), RecordPaymentRequest{
		Amount: "150.00",
		Method: model.TenderCreditNotes,
		CreditNotes: []CreditNoteLineRequest{
			{NoteID: note.ID.String(), Amount: "150.00"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "150.00", paid.TotalReceived)

	refreshed, err := env.creditNotes.GetCustomerNote(ctx, note.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "50.00", refreshed.RemainingAmount)
	assert.Equal(t, model.CreditNotePartiallyUsed, refreshed.Status)
	require.Len(t, refreshed.Usages, 1)
	assert.Equal(t, "150.00", refreshed.Usages[0].AmountUsed)
	assert.Equal(t, model.AppliedToInitialPayment, refreshed.Usages[0].AppliedToKind)
}

func TestCreditNoteOverdrawRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	note, err := env.creditNotes.IssueCustomerNote(ctx, "Jordan Lee", decimal.NewFromInt(100), nil, nil)
	require.NoError(t, err)

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")

	_, err = env.payments.RecordInitialPayment(ctx, "", booking.ID.String(), RecordPaymentRequest{
		Amount: "150.00",
		Method: model.TenderCreditNotes,
		CreditNotes: []CreditNoteLineRequest{
			{NoteID: note.ID.String(), Amount: "150.00"},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	// The rejected payment left nothing behind.
	refreshed, err := env.creditNotes.GetCustomerNote(ctx, note.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "100.00", refreshed.RemainingAmount)
	assert.Empty(t, refreshed.Usages)

	detail, err := env.bookings.Get(ctx, booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "0.00", detail.TotalReceived)
}

func TestCreditNoteWrongCounterpartyRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	note, err := env.creditNotes.IssueCustomerNote(ctx, "Someone Else", decimal.NewFromInt(100), nil, nil)
	require.NoError(t, err)

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")

	_, err = env.payments.RecordInitialPayment(ctx, "", booking.ID.String(), RecordPaymentRequest{
		Amount: "100.00",
		Method: model.TenderCreditNotes,
		CreditNotes: []CreditNoteLineRequest{
			{NoteID: note.ID.String(), Amount: "100.00"},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestCreditNoteSpentExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	note, err := env.creditNotes.IssueCustomerNote(ctx, "Jordan Lee", decimal.NewFromInt(100), nil, nil)
	require.NoError(t, err)

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	line := []CreditNoteLineRequest{{NoteID: note.ID.String(), Amount: "100.00"}}

	_, err = env.payments.RecordInitialPayment(ctx, "", booking.ID.String(), RecordPaymentRequest{
		Amount: "100.00", Method: model.TenderCreditNotes, CreditNotes: line,
	})
	require.NoError(t, err)

	refreshed, err := env.creditNotes.GetCustomerNote(ctx, note.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.CreditNoteUsed, refreshed.Status)

	_, err = env.payments.RecordInitialPayment(ctx, "", booking.ID.String(), RecordPaymentRequest{
		Amount: "100.00", Method: model.TenderCreditNotes, CreditNotes: line,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestCreditNoteCoverMustMatchLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	note, err := env.creditNotes.IssueCustomerNote(ctx, "Jordan Lee", decimal.NewFromInt(200), nil, nil)
	require.NoError(t, err)

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")

	// Lines total 50 against a declared cover of 60.
	_, err = env.payments.RecordInitialPayment(ctx, "", booking.ID.String(), RecordPaymentRequest{
		Amount:           "100.00",
		Method:           model.TenderCash,
		CreditNoteAmount: "60.00",
		CreditNotes: []CreditNoteLineRequest{
			{NoteID: note.ID.String(), Amount: "50.00"},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestListCustomerNotesFiltersByCounterpartyAndStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.creditNotes.IssueCustomerNote(ctx, "Jordan Lee", decimal.NewFromInt(100), nil, nil)
	require.NoError(t, err)
	_, err = env.creditNotes.IssueCustomerNote(ctx, "Sam Okafor", decimal.NewFromInt(80), nil, nil)
	require.NoError(t, err)

	notes, total, err := env.creditNotes.ListCustomerNotes(ctx, repository.CreditNoteListFilter{
		Counterparty: "Jordan Lee",
		Page:         1,
		Limit:        10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, notes, 1)
	assert.Equal(t, "Jordan Lee", notes[0].Counterparty)

	none, total, err := env.creditNotes.ListCustomerNotes(ctx, repository.CreditNoteListFilter{
		Status: model.CreditNoteUsed,
		Page:   1,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, none)
}
