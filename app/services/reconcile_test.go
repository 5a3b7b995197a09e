package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPlanAllocationsSettlesExactAmount(t *testing.T) {
	plan, remainder := planAllocations(dec("50"), []outstandingRequest{
		{ID: "a", Title: "Field trip", Outstanding: dec("50")},
	})

	require.Len(t, plan, 1)
	assert.Equal(t, "a", plan[0].RequestID)
	assert.True(t, plan[0].Amount.Equal(dec("50")), "allocation = %s", plan[0].Amount)
	assert.True(t, remainder.IsZero(), "remainder = %s", remainder)
}

func TestPlanAllocationsPartialSettlement(t *testing.T) {
	plan, remainder := planAllocations(dec("30"), []outstandingRequest{
		{ID: "a", Title: "Field trip", Outstanding: dec("50")},
	})

	require.Len(t, plan, 1)
	assert.True(t, plan[0].Amount.Equal(dec("30")))
	assert.True(t, remainder.IsZero())
}

func TestPlanAllocationsSpreadsOldestFirst(t *testing.T) {
	// Requests arrive ordered by creation time; the walk must exhaust them
	// in that order.
	plan, remainder := planAllocations(dec("120"), []outstandingRequest{
		{ID: "a", Outstanding: dec("50")},
		{ID: "b", Outstanding: dec("40")},
		{ID: "c", Outstanding: dec("60")},
	})

	require.Len(t, plan, 3)
	assert.Equal(t, "a", plan[0].RequestID)
	assert.True(t, plan[0].Amount.Equal(dec("50")))
	assert.Equal(t, "b", plan[1].RequestID)
	assert.True(t, plan[1].Amount.Equal(dec("40")))
	assert.Equal(t, "c", plan[2].RequestID)
	assert.True(t, plan[2].Amount.Equal(dec("30")))
	assert.True(t, remainder.IsZero())
}

func TestPlanAllocationsRemainderBecomesCredit(t *testing.T) {
	plan, remainder := planAllocations(dec("100"), []outstandingRequest{
		{ID: "a", Outstanding: dec("25.50")},
	})

	require.Len(t, plan, 1)
	assert.True(t, plan[0].Amount.Equal(dec("25.50")))
	assert.True(t, remainder.Equal(dec("74.50")), "remainder = %s", remainder)
}

func TestPlanAllocationsNoOutstandingRequests(t *testing.T) {
	plan, remainder := planAllocations(dec("40"), nil)

	assert.Empty(t, plan)
	assert.True(t, remainder.Equal(dec("40")))
}

func TestPlanAllocationsSkipsExhaustedRequests(t *testing.T) {
	plan, remainder := planAllocations(dec("10"), []outstandingRequest{
		{ID: "a", Outstanding: decimal.Zero},
		{ID: "b", Outstanding: dec("10")},
	})

	require.Len(t, plan, 1)
	assert.Equal(t, "b", plan[0].RequestID)
	assert.True(t, remainder.IsZero())
}

func TestPlanAllocationsNeverExceedsOutstanding(t *testing.T) {
	outstanding := []outstandingRequest{
		{ID: "a", Outstanding: dec("12.30")},
		{ID: "b", Outstanding: dec("7.70")},
		{ID: "c", Outstanding: dec("100")},
	}

	for _, amount := range []string{"0.01", "12.30", "12.31", "20", "119.99", "120", "500"} {
		plan, remainder := planAllocations(dec(amount), outstanding)

		total := remainder
		for _, p := range plan {
			total = total.Add(p.Amount)
			for _, o := range outstanding {
				if o.ID == p.RequestID {
					assert.True(t, p.Amount.LessThanOrEqual(o.Outstanding),
						"amount %s: allocated %s to %s with only %s outstanding",
						amount, p.Amount, p.RequestID, o.Outstanding)
				}
			}
		}
		// Allocations plus credit always account for the full transfer.
		assert.True(t, total.Equal(dec(amount)), "amount %s: accounted %s", amount, total)
	}
}

func TestReconcileGateRejectsProcessedTransfer(t *testing.T) {
	// Re-running a processed transfer must always be a rejected no-op,
	// whatever the options.
	assert.ErrorIs(t, reconcileGate(true, true, ""), ErrDuplicateTransfer)
	assert.ErrorIs(t, reconcileGate(true, false, ""), ErrDuplicateTransfer)
	assert.ErrorIs(t, reconcileGate(true, true, "req-1"), ErrDuplicateTransfer)
}

func TestReconcileGateRejectsManualTargetOnUnmatchedTransfer(t *testing.T) {
	// A manual target cannot be honoured without a matched student; dropping
	// it silently would discard the caller's instruction.
	assert.ErrorIs(t, reconcileGate(false, false, "req-1"), ErrOrphanTransfer)
}

func TestReconcileGatePassesNormalRuns(t *testing.T) {
	assert.NoError(t, reconcileGate(false, true, ""))
	assert.NoError(t, reconcileGate(false, true, "req-1"))
	// Unmatched without a target is the regular orphan path, not an error.
	assert.NoError(t, reconcileGate(false, false, ""))
}

func TestAllocateManualWithinBalance(t *testing.T) {
	alloc, credit, err := allocateManual(dec("30"), dec("50"), false)

	require.NoError(t, err)
	assert.True(t, alloc.Equal(dec("30")))
	assert.True(t, credit.IsZero())
}

func TestAllocateManualRejectsOverpayment(t *testing.T) {
	_, _, err := allocateManual(dec("60"), dec("50"), false)

	assert.ErrorIs(t, err, ErrAmountMismatch)
}

func TestAllocateManualOverpaymentFlagBecomesCredit(t *testing.T) {
	alloc, credit, err := allocateManual(dec("60"), dec("50"), true)

	require.NoError(t, err)
	assert.True(t, alloc.Equal(dec("50")), "settled amount may never exceed the requested amount")
	assert.True(t, credit.Equal(dec("10")))
}

func TestReconciliationResultAllocatedTotal(t *testing.T) {
	result := &ReconciliationResult{
		Allocations: []PlannedAllocation{
			{RequestID: "a", Amount: dec("25")},
			{RequestID: "b", Amount: dec("12.50")},
		},
	}

	assert.True(t, result.AllocatedTotal().Equal(dec("37.50")))
}
