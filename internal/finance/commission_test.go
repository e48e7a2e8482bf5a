package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialCommissionTarget(t *testing.T) {
	assert.True(t, InitialCommissionTarget(true, d(600)).Equal(d(600)))
	assert.True(t, InitialCommissionTarget(false, d(600)).Equal(d(300)))
	assert.True(t, InitialCommissionTarget(false, d(-100)).Equal(d(-50)), "losses halve too")
}

func TestFinalReconciliationAmount(t *testing.T) {
	// Final profit (revenue - prod cost + amendments) minus what the INITIAL
	// entry already paid.
	amount := FinalReconciliationAmount(d(1000), d(400), d(0), d(300))
	assert.True(t, amount.Equal(d(300)))

	// A write-off reduces the final profit and can make the reconciliation
	// negative (clawback).
	amount = FinalReconciliationAmount(d(1000), d(400), d(-87.50), d(600))
	assert.True(t, amount.Equal(d(-87.50)))
}

func TestFinalReconciliationWithinToleranceIsSkippable(t *testing.T) {
	amount := FinalReconciliationAmount(d(1000), d(400), d(0), d(599.995))
	assert.True(t, Settled(amount), "sub-cent residue should not post an entry")
}
