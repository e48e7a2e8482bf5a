package service

import (
	"context"
	"testing"

	"tourdesk-backend/internal/model"
	"tourdesk-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOffSettlesTheBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	env.payInitial(t, booking.ID.String(), "400.00")

	written, err := env.amendments.WriteOff(ctx, "", booking.ID.String(), WriteOffRequest{
		Reason: "goodwill after service failure",
	})
	require.NoError(t, err)

	assert.Equal(t, "0.00", written.Balance)
	assert.Equal(t, "0.00", written.Profit)
	assert.Equal(t, model.BookingCompleted, written.Status)

	amendments, err := env.amendments.ListByBooking(ctx, booking.ID.String())
	require.NoError(t, err)
	require.Len(t, amendments, 1)
	assert.Equal(t, "600.00", amendments[0].OldValue)
	assert.Equal(t, "-600.00", amendments[0].Difference)

	// The written-off profit claws back the initial commission.
	entries, err := env.commissions.ListByBooking(ctx, booking.ID.String())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	byType := map[string]string{}
	for _, e := range entries {
		byType[e.EntryType] = e.Amount
	}
	assert.Equal(t, "300.00", byType[model.CommissionInitial])
	assert.Equal(t, "-300.00", byType[model.CommissionFinalReconciliation])
}

func TestWriteOffRequiresOutstandingBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	env.payInitial(t, booking.ID.String(), "1000.00")

	_, err := env.amendments.WriteOff(ctx, "", booking.ID.String(), WriteOffRequest{
		Reason: "nothing left to write off",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestReverseReopensTheBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	env.payInitial(t, booking.ID.String(), "400.00")

	_, err := env.amendments.WriteOff(ctx, "", booking.ID.String(), WriteOffRequest{
		Reason: "goodwill after service failure",
	})
	require.NoError(t, err)

	amendments, err := env.amendments.ListByBooking(ctx, booking.ID.String())
	require.NoError(t, err)
	require.Len(t, amendments, 1)

	reopened, err := env.amendments.Reverse(ctx, "", amendments[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, "600.00", reopened.Balance)
	assert.Equal(t, "600.00", reopened.Profit)
	assert.Equal(t, model.BookingConfirmed, reopened.Status)

	_, err = env.amendments.Reverse(ctx, "", amendments[0].ID.String())
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestAdjustmentShiftsBalanceAndProfit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	env.payInitial(t, booking.ID.String(), "400.00")

	adjusted, err := env.amendments.CreateAdjustment(ctx, "", booking.ID.String(), CreateAdjustmentRequest{
		Reason:   "late surcharge added",
		OldValue: "600.00",
		NewValue: "650.00",
	})
	require.NoError(t, err)
	assert.Equal(t, "650.00", adjusted.Balance)
	assert.Equal(t, "650.00", adjusted.Profit)
}

func TestAdjustmentMustChangeSomething(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")

	_, err := env.amendments.CreateAdjustment(ctx, "", booking.ID.String(), CreateAdjustmentRequest{
		Reason:   "noop",
		OldValue: "600.00",
		NewValue: "600.00",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
