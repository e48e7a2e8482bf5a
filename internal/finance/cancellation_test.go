package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourdesk-backend/pkg/apperror"
)

func TestComputeCancellationRefundAndSupplierCredit(t *testing.T) {
	// Received 1000, supplier fee 200, admin fee 50, 300 already paid out:
	// 750 back to the passenger, 100 owed back by the supplier.
	out, err := ComputeCancellation(CancellationInput{
		TotalReceived:           d(1000),
		TotalOwedToSupplier:     d(400),
		TotalPaidToSupplier:     d(300),
		SupplierCancellationFee: d(200),
		AdminFee:                d(50),
	})
	require.NoError(t, err)

	assert.True(t, out.CustomerTotalFee.Equal(d(250)))
	assert.True(t, out.RefundToPassenger.Equal(d(750)))
	assert.True(t, out.PayableByCustomer.IsZero())
	assert.True(t, out.SupplierCreditNote.Equal(d(100)))
	assert.True(t, out.SupplierPayable.IsZero())
	// (1000 - 400) - 750 + 0
	assert.True(t, out.ProfitOrLoss.Equal(d(-150)), "profit/loss %s", out.ProfitOrLoss)
}

func TestComputeCancellationCustomerOwes(t *testing.T) {
	// Fees exceed what was received; the customer owes the difference and
	// the supplier is still owed the fee shortfall.
	out, err := ComputeCancellation(CancellationInput{
		TotalReceived:           d(100),
		TotalOwedToSupplier:     d(500),
		TotalPaidToSupplier:     d(0),
		SupplierCancellationFee: d(300),
		AdminFee:                d(50),
	})
	require.NoError(t, err)

	assert.True(t, out.RefundToPassenger.IsZero())
	assert.True(t, out.PayableByCustomer.Equal(d(250)))
	assert.True(t, out.SupplierCreditNote.IsZero())
	assert.True(t, out.SupplierPayable.Equal(d(300)))
	// (100 - 500) - 0 + 250
	assert.True(t, out.ProfitOrLoss.Equal(d(-150)))
}

func TestComputeCancellationExactCoverage(t *testing.T) {
	// Received exactly covers the fees and the fee exactly matches what was
	// paid: no refund, no payable, no note on either side.
	out, err := ComputeCancellation(CancellationInput{
		TotalReceived:           d(250),
		TotalOwedToSupplier:     d(200),
		TotalPaidToSupplier:     d(200),
		SupplierCancellationFee: d(200),
		AdminFee:                d(50),
	})
	require.NoError(t, err)

	assert.True(t, out.RefundToPassenger.IsZero())
	assert.True(t, out.PayableByCustomer.IsZero())
	assert.True(t, out.SupplierCreditNote.IsZero())
	assert.True(t, out.SupplierPayable.IsZero())
}

func TestComputeCancellationSidesAreExclusive(t *testing.T) {
	inputs := []CancellationInput{
		{TotalReceived: d(1000), TotalPaidToSupplier: d(700), SupplierCancellationFee: d(100), AdminFee: d(25)},
		{TotalReceived: d(50), TotalPaidToSupplier: d(10), SupplierCancellationFee: d(400), AdminFee: d(0)},
		{TotalReceived: d(0), TotalPaidToSupplier: d(0), SupplierCancellationFee: d(0), AdminFee: d(0)},
	}
	for _, in := range inputs {
		out, err := ComputeCancellation(in)
		require.NoError(t, err)
		assert.False(t, out.SupplierCreditNote.IsPositive() && out.SupplierPayable.IsPositive())
		assert.False(t, out.RefundToPassenger.IsPositive() && out.PayableByCustomer.IsPositive())
	}
}

func TestComputeCancellationRejectsNegativeFees(t *testing.T) {
	_, err := ComputeCancellation(CancellationInput{SupplierCancellationFee: d(-1)})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = ComputeCancellation(CancellationInput{AdminFee: decimal.NewFromInt(-5)})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
