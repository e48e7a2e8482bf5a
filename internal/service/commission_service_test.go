package service

import (
	"context"
	"testing"

	"tourdesk-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullSchedulePaysFullCommissionUpFront(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "500.00", "200.00", "FULL_CARD")

	entries, err := env.commissions.ListByBooking(ctx, booking.ID.String())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.CommissionInitial, entries[0].EntryType)
	assert.Equal(t, "300.00", entries[0].Amount)
}

func TestFullScheduleSkipsFinalReconciliation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// The initial entry already covers the whole profit, so completion has
	// nothing left to post.
	booking := env.createBooking(t, "500.00", "200.00", "FULL_CARD")
	env.payInitial(t, booking.ID.String(), "500.00")

	entries, err := env.commissions.ListByBooking(ctx, booking.ID.String())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.CommissionInitial, entries[0].EntryType)
}

func TestCommissionFrozenAfterFinalReconciliation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	paid := env.payInitial(t, booking.ID.String(), "1000.00")
	require.Equal(t, model.BookingCompleted, paid.Status)

	// Raising the revenue reopens the balance but must not rewrite the ledger.
	revenue := "1200.00"
	updated, err := env.bookings.UpdateFinancials(ctx, "", booking.ID.String(), UpdateBookingFinancialsRequest{
		Revenue: &revenue,
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, updated.Status)

	entries, err := env.commissions.ListByBooking(ctx, booking.ID.String())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	byType := map[string]string{}
	for _, e := range entries {
		byType[e.EntryType] = e.Amount
	}
	assert.Equal(t, "300.00", byType[model.CommissionInitial])
	assert.Equal(t, "300.00", byType[model.CommissionFinalReconciliation])
}

func TestListCommissionsByAgent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	agent := env.createAgent(t)

	for _, revenue := range []string{"1000.00", "800.00"} {
		booking, err := env.bookings.Create(ctx, "", CreateBookingRequest{
			CustomerName:  "Jordan Lee",
			AgentID:       agent.ID.String(),
			Revenue:       revenue,
			ProdCost:      "400.00",
			PaymentMethod: "PART_BANK_TRANSFER",
		})
		require.NoError(t, err)
		_, err = env.bookings.Approve(ctx, "", booking.ID.String())
		require.NoError(t, err)
	}

	entries, total, err := env.commissions.ListByAgent(ctx, agent.ID.String(), 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, agent.ID, e.AgentID)
	}
}
