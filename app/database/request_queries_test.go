package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/gyarab/2025-wt-prj-dembinny/app/models"
)

func TestDeriveStatus(t *testing.T) {
	expected := decimal.RequireFromString("50.00")

	assert.Equal(t, models.SettlementPending, deriveStatus(decimal.Zero, expected))
	assert.Equal(t, models.SettlementPartial, deriveStatus(decimal.RequireFromString("20.00"), expected))
	assert.Equal(t, models.SettlementSettled, deriveStatus(expected, expected))
	// Overpayment (manual allocations with the overpayment flag) still reads
	// as settled, never as a fourth state.
	assert.Equal(t, models.SettlementSettled, deriveStatus(decimal.RequireFromString("60.00"), expected))
}
