package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestRecomputeInitialPaymentOnly(t *testing.T) {
	// Revenue 1000, prod cost 400, one initial payment of 500:
	// profit 600 before fees, balance 500.
	rec := Recompute(LedgerSnapshot{
		Revenue:         d(1000),
		ProdCost:        d(400),
		InitialPayments: []decimal.Decimal{d(500)},
	})

	assert.True(t, rec.TotalReceived.Equal(d(500)), "received %s", rec.TotalReceived)
	assert.True(t, rec.Balance.Equal(d(500)), "balance %s", rec.Balance)
	assert.True(t, rec.Profit.Equal(d(600)), "profit %s", rec.Profit)
}

func TestRecomputeFullGraph(t *testing.T) {
	rec := Recompute(LedgerSnapshot{
		Revenue:                    d(2000),
		ProdCost:                   d(1200),
		TransFee:                   d(40),
		Surcharge:                  d(10),
		InitialPayments:            []decimal.Decimal{d(500), d(250)},
		InstalmentPayments:         []decimal.Decimal{d(600)},
		CustomerPayableSettlements: []decimal.Decimal{d(100)},
		PassengerRefunds:           []decimal.Decimal{d(50)},
		SupplierSettlements:        []decimal.Decimal{d(700), d(500)},
	})

	assert.True(t, rec.TotalReceived.Equal(d(1400)))
	assert.True(t, rec.Balance.Equal(d(600)))
	assert.True(t, rec.Profit.Equal(d(750)))
	assert.True(t, rec.TotalPaidToSuppliers.Equal(d(1200)))
}

func TestRecomputeAmendmentsShiftBalanceAndProfit(t *testing.T) {
	// A write-off of 87.50 appears as an active amendment of -87.50 and
	// clears the outstanding balance.
	rec := Recompute(LedgerSnapshot{
		Revenue:         d(500),
		ProdCost:        d(300),
		InitialPayments: []decimal.Decimal{d(412.50)},
		AmendmentDiffs:  []decimal.Decimal{d(-87.50)},
	})

	assert.True(t, rec.Balance.IsZero(), "balance %s", rec.Balance)
	assert.True(t, rec.Profit.Equal(d(112.50)), "profit %s", rec.Profit)
	assert.True(t, rec.AmendmentTotal.Equal(d(-87.50)))
}

func TestRecomputeReversedAmendmentsExcluded(t *testing.T) {
	// The caller only passes active amendments; an empty slice must behave
	// exactly like no amendments at all.
	with := Recompute(LedgerSnapshot{Revenue: d(100), AmendmentDiffs: []decimal.Decimal{}})
	without := Recompute(LedgerSnapshot{Revenue: d(100)})
	assert.True(t, with.Balance.Equal(without.Balance))
}

func TestRecomputeToleratesOverpayment(t *testing.T) {
	rec := Recompute(LedgerSnapshot{
		Revenue:            d(100),
		InstalmentPayments: []decimal.Decimal{d(60), d(60)},
	})
	assert.True(t, rec.Balance.Equal(d(-20)), "overpayment yields negative balance, not an error")
}

func TestSettledTolerance(t *testing.T) {
	assert.True(t, Settled(d(0)))
	assert.True(t, Settled(d(0.005)))
	assert.True(t, Settled(d(-0.009)))
	assert.False(t, Settled(d(0.01)))
	assert.False(t, Settled(d(-0.02)))
}

func TestBalanceIdentity(t *testing.T) {
	// balance == revenue - totalReceived + sum(active amendments), for any graph.
	cases := []LedgerSnapshot{
		{Revenue: d(1000), InitialPayments: []decimal.Decimal{d(100), d(200)}},
		{Revenue: d(10), PassengerRefunds: []decimal.Decimal{d(10)}},
		{Revenue: d(999.99), InstalmentPayments: []decimal.Decimal{d(333.33), d(333.33), d(333.33)}, AmendmentDiffs: []decimal.Decimal{d(-0.01), d(0.01)}},
	}
	for _, s := range cases {
		rec := Recompute(s)
		want := s.Revenue.Sub(rec.TotalReceived).Add(rec.AmendmentTotal)
		assert.True(t, rec.Balance.Equal(want), "identity broken: %s != %s", rec.Balance, want)
	}
}
