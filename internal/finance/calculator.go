// Package finance is the pure reconciliation engine. Every function operates
// on explicit input records and touches no storage, so each rule can be tested
// in isolation and services stay free of inlined arithmetic.
package finance

import (
	"github.com/shopspring/decimal"
)

// Tolerance is the uniform absolute-difference tolerance for every
// "is this fully paid/covered" comparison. Persisted amounts are decimal with
// 2 fraction digits, so anything under a cent counts as settled.
var Tolerance = decimal.NewFromFloat(0.01)

// Settled reports whether an amount is zero within tolerance.
func Settled(amount decimal.Decimal) bool {
	return amount.Abs().LessThan(Tolerance)
}

// LedgerSnapshot is a booking's full payment graph at one point in time.
// Supplier settlements are chain-wide (cost-line settlements plus supplier
// payable settlements); amendment diffs include active amendments only.
type LedgerSnapshot struct {
	Revenue   decimal.Decimal
	ProdCost  decimal.Decimal
	TransFee  decimal.Decimal
	Surcharge decimal.Decimal

	InitialPayments            []decimal.Decimal
	InstalmentPayments         []decimal.Decimal
	CustomerPayableSettlements []decimal.Decimal
	PassengerRefunds           []decimal.Decimal
	SupplierSettlements        []decimal.Decimal
	AmendmentDiffs             []decimal.Decimal
}

// Reconciliation is the recomputed financial state of a booking.
type Reconciliation struct {
	TotalReceived        decimal.Decimal
	Balance              decimal.Decimal
	Profit               decimal.Decimal
	TotalPaidToSuppliers decimal.Decimal
	AmendmentTotal       decimal.Decimal
}

func sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Recompute derives total received, balance and profit from first principles.
// It is called after every mutating operation that touches any payment,
// settlement, refund or amendment; totals are never patched incrementally.
func Recompute(s LedgerSnapshot) Reconciliation {
	received := sum(s.InitialPayments).
		Add(sum(s.InstalmentPayments)).
		Add(sum(s.CustomerPayableSettlements)).
		Sub(sum(s.PassengerRefunds))

	amendments := sum(s.AmendmentDiffs)

	return Reconciliation{
		TotalReceived:        received,
		Balance:              s.Revenue.Sub(received).Add(amendments),
		Profit:               s.Revenue.Sub(s.ProdCost).Sub(s.TransFee).Sub(s.Surcharge).Add(amendments),
		TotalPaidToSuppliers: sum(s.SupplierSettlements),
		AmendmentTotal:       amendments,
	}
}
