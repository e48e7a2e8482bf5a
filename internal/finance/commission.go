package finance

import (
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// InitialCommissionTarget is the amount the agent earns up front: the full
// profit on a FULL payment schedule, half on an instalment plan (the rest is
// settled at final reconciliation).
func InitialCommissionTarget(fullSchedule bool, profit decimal.Decimal) decimal.Decimal {
	if fullSchedule {
		return profit
	}
	return profit.Div(two)
}

// FinalReconciliationAmount is the commission still owed once a booking's
// balance reaches zero: final profit minus what the INITIAL entry already
// paid. A result inside tolerance is not worth posting.
func FinalReconciliationAmount(revenue, prodCost, amendmentTotal, initialPaid decimal.Decimal) decimal.Decimal {
	finalProfit := revenue.Sub(prodCost).Add(amendmentTotal)
	return finalProfit.Sub(initialPaid)
}
