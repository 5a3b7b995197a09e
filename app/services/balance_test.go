package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSummarizeEmptyLedger(t *testing.T) {
	summary := Summarize(nil, nil)

	assert.True(t, summary.Collected.IsZero())
	assert.True(t, summary.Spent.IsZero())
	assert.True(t, summary.Balance.IsZero())
}

func TestSummarizeTransfersMinusPublishedExpenses(t *testing.T) {
	summary := Summarize(
		[]decimal.Decimal{dec("50")},
		[]decimal.Decimal{dec("20")},
	)

	assert.True(t, summary.Collected.Equal(dec("50")))
	assert.True(t, summary.Spent.Equal(dec("20")))
	assert.True(t, summary.Balance.Equal(dec("30")))
}

func TestSummarizeIsOrderIndependent(t *testing.T) {
	transfers := []decimal.Decimal{dec("10.50"), dec("200"), dec("0.01"), dec("89.49")}
	expenses := []decimal.Decimal{dec("75"), dec("12.34")}

	forward := Summarize(transfers, expenses)

	reversedTransfers := make([]decimal.Decimal, 0, len(transfers))
	for i := len(transfers) - 1; i >= 0; i-- {
		reversedTransfers = append(reversedTransfers, transfers[i])
	}
	reversedExpenses := []decimal.Decimal{expenses[1], expenses[0]}
	backward := Summarize(reversedTransfers, reversedExpenses)

	assert.True(t, forward.Balance.Equal(backward.Balance))
	assert.True(t, forward.Collected.Equal(dec("300")))
	assert.True(t, forward.Spent.Equal(dec("87.34")))
	assert.True(t, forward.Balance.Equal(dec("212.66")))
}

func TestSummarizeCountsEveryRecordedTransfer(t *testing.T) {
	// Unallocated credit and orphan transfers still count as collected
	// money; the balance tracks the account, not the settlements.
	summary := Summarize(
		[]decimal.Decimal{dec("50"), dec("30")},
		nil,
	)

	assert.True(t, summary.Balance.Equal(dec("80")))
}
