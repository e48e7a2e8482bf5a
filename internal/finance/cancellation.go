package finance

import (
	"github.com/shopspring/decimal"

	"tourdesk-backend/pkg/apperror"
)

// CancellationInput aggregates a whole booking chain at the moment of
// cancellation. Received and owed amounts span every active (non-void) chain
// member; paid-to-supplier is actual cash out, not contracted cost.
type CancellationInput struct {
	TotalReceived           decimal.Decimal // initial + instalment payments, chain-wide
	TotalOwedToSupplier     decimal.Decimal // sum of prod cost, chain-wide
	TotalPaidToSupplier     decimal.Decimal // settlements actually paid, chain-wide
	SupplierCancellationFee decimal.Decimal
	AdminFee                decimal.Decimal
}

// CancellationOutcome is the single, consistent financial settlement of a
// cancelled chain. SupplierCreditNote and SupplierPayable are mutually
// exclusive, as are RefundToPassenger and PayableByCustomer.
type CancellationOutcome struct {
	CustomerTotalFee   decimal.Decimal
	RefundToPassenger  decimal.Decimal
	PayableByCustomer  decimal.Decimal
	SupplierCreditNote decimal.Decimal
	SupplierPayable    decimal.Decimal
	ProfitOrLoss       decimal.Decimal
}

// ComputeCancellation applies the cancellation settlement rules.
//
// The customer side splits on the contracted fee total: whatever the customer
// has paid beyond supplier fee + admin fee comes back as a refund, any
// shortfall becomes a customer payable. The supplier side splits on actual
// cash movement instead: the fee is compared against what has really been paid
// to the supplier, so an overpayment becomes a supplier credit note and an
// underpayment a supplier payable.
func ComputeCancellation(in CancellationInput) (CancellationOutcome, error) {
	if in.SupplierCancellationFee.IsNegative() {
		return CancellationOutcome{}, apperror.Validation("supplier cancellation fee must not be negative")
	}
	if in.AdminFee.IsNegative() {
		return CancellationOutcome{}, apperror.Validation("admin fee must not be negative")
	}

	out := CancellationOutcome{
		CustomerTotalFee:  in.SupplierCancellationFee.Add(in.AdminFee),
		RefundToPassenger: decimal.Zero,
		PayableByCustomer: decimal.Zero,
	}

	customerDifference := in.TotalReceived.Sub(out.CustomerTotalFee)
	if customerDifference.GreaterThanOrEqual(Tolerance) {
		out.RefundToPassenger = customerDifference
	} else if customerDifference.Neg().GreaterThanOrEqual(Tolerance) {
		out.PayableByCustomer = customerDifference.Neg()
	}

	supplierDifference := in.TotalPaidToSupplier.Sub(in.SupplierCancellationFee)
	if supplierDifference.GreaterThanOrEqual(Tolerance) {
		out.SupplierCreditNote = supplierDifference
	} else if supplierDifference.Neg().GreaterThanOrEqual(Tolerance) {
		out.SupplierPayable = supplierDifference.Neg()
	}

	out.ProfitOrLoss = in.TotalReceived.Sub(in.TotalOwedToSupplier).
		Sub(out.RefundToPassenger).
		Add(out.PayableByCustomer)

	return out, nil
}
