package service

import (
	"context"
	"testing"

	"tourdesk-backend/internal/model"
	"tourdesk-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingAssignsSequentialFolders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	agent := env.createAgent(t)

	first, err := env.bookings.Create(ctx, "", CreateBookingRequest{
		CustomerName:  "Jordan Lee",
		AgentID:       agent.ID.String(),
		Revenue:       "1000.00",
		ProdCost:      "400.00",
		PaymentMethod: "PART_BANK_TRANSFER",
	})
	require.NoError(t, err)

	assert.Equal(t, "TDK-00001", first.RefNo)
	assert.Equal(t, "1", first.Folder)
	assert.Equal(t, model.BookingPending, first.Status)
	assert.Equal(t, "1000.00", first.Balance)
	assert.Equal(t, "600.00", first.Profit)
	assert.Equal(t, first.ID, first.ChainRootID)

	second, err := env.bookings.Create(ctx, "", CreateBookingRequest{
		CustomerName:  "Sam Okafor",
		AgentID:       agent.ID.String(),
		Revenue:       "500.00",
		ProdCost:      "200.00",
		PaymentMethod: "FULL_CARD",
	})
	require.NoError(t, err)
	assert.Equal(t, "TDK-00002", second.RefNo)
	assert.Equal(t, "2", second.Folder)
}

func TestCreateBookingPostsInitialCommission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// PART schedule pays half the profit up front.
	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")

	entries, err := env.commissions.ListByBooking(ctx, booking.ID.String())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.CommissionInitial, entries[0].EntryType)
	assert.Equal(t, "300.00", entries[0].Amount)
}

func TestCreateBookingRejectsUnknownTender(t *testing.T) {
	env := newTestEnv(t)
	agent := env.createAgent(t)

	_, err := env.bookings.Create(context.Background(), "", CreateBookingRequest{
		CustomerName:  "Jordan Lee",
		AgentID:       agent.ID.String(),
		Revenue:       "1000.00",
		ProdCost:      "400.00",
		PaymentMethod: "FULL_BITCOIN",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestApproveOnlyFromPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	assert.Equal(t, model.BookingConfirmed, booking.Status)

	_, err := env.bookings.Approve(ctx, "", booking.ID.String())
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestDateChangeChildJoinsTheChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	parent := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")

	child, err := env.bookings.CreateDateChange(ctx, "", parent.ID.String(), DateChangeRequest{
		Revenue:       "300.00",
		ProdCost:      "100.00",
		PaymentMethod: "FULL_CASH",
	})
	require.NoError(t, err)

	assert.Equal(t, "TDK-00001-1", child.RefNo)
	assert.Equal(t, "1.1", child.Folder)
	assert.Equal(t, model.RecordKindDateChange, child.RecordKind)
	assert.Equal(t, parent.ChainRootID, child.ChainRootID)
	require.NotNil(t, child.ParentBookingID)
	assert.Equal(t, parent.ID, *child.ParentBookingID)
	assert.Equal(t, parent.CustomerName, child.CustomerName)

	detail, err := env.bookings.Get(ctx, parent.ID.String())
	require.NoError(t, err)
	assert.Len(t, detail.Chain, 2)
}

func TestDateChangeRejectedOnTerminalParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	parent := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	_, err := env.bookings.Void(ctx, "", parent.ID.String())
	require.NoError(t, err)

	_, err = env.bookings.CreateDateChange(ctx, "", parent.ID.String(), DateChangeRequest{
		Revenue:       "300.00",
		ProdCost:      "100.00",
		PaymentMethod: "FULL_CASH",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestVoidAndUnvoid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")

	voided, err := env.bookings.Void(ctx, "", booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.BookingVoid, voided.Status)

	// Voiding twice is a conflict.
	_, err = env.bookings.Void(ctx, "", booking.ID.String())
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	restored, err := env.bookings.Unvoid(ctx, "", booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, restored.Status)
}

func TestFullPaymentCompletesBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	paid := env.payInitial(t, booking.ID.String(), "1000.00")

	assert.Equal(t, model.BookingCompleted, paid.Status)
	assert.Equal(t, "1000.00", paid.TotalReceived)
	assert.Equal(t, "0.00", paid.Balance)
	assert.True(t, env.publisher.has("booking.completed"))

	// Final reconciliation pays the remaining half of the profit.
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

func TestBalanceWithinToleranceCompletesBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")
	paid := env.payInitial(t, booking.ID.String(), "999.995")

	// A 0.005 remainder is inside the settlement tolerance even though the
	// stored balance rounds it up to 0.01.
	assert.Equal(t, model.BookingCompleted, paid.Status)
	assert.Equal(t, "0.01", paid.Balance)
	assert.True(t, env.publisher.has("booking.completed"))

	entries, err := env.commissions.ListByBooking(ctx, booking.ID.String())
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestUpdateFinancialsRetargetsInitialCommission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking := env.createBooking(t, "1000.00", "400.00", "PART_BANK_TRANSFER")

	revenue := "1200.00"
	updated, err := env.bookings.UpdateFinancials(ctx, "", booking.ID.String(), UpdateBookingFinancialsRequest{
		Revenue: &revenue,
	})
	require.NoError(t, err)
	assert.Equal(t, "800.00", updated.Profit)
	assert.Equal(t, "1200.00", updated.Balance)

	entries, err := env.commissions.ListByBooking(ctx, booking.ID.String())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "400.00", entries[0].Amount)
}
