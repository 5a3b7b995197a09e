package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAppliesToClassWideRequest(t *testing.T) {
	pr := &PaymentRequest{TargetType: TargetClass}
	assert.True(t, pr.AppliesTo("any-student"))
}

func TestAppliesToSingleStudentRequest(t *testing.T) {
	target := "student-1"
	pr := &PaymentRequest{TargetType: TargetStudent, TargetStudentID: &target}

	assert.True(t, pr.AppliesTo("student-1"))
	assert.False(t, pr.AppliesTo("student-2"))
}

func TestIsOverdue(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	pr := &PaymentRequest{}
	assert.False(t, pr.IsOverdue(today), "no due date means never overdue")

	past := today.AddDate(0, 0, -1)
	pr.DueDate = &past
	assert.True(t, pr.IsOverdue(today))

	future := today.AddDate(0, 0, 1)
	pr.DueDate = &future
	assert.False(t, pr.IsOverdue(today))
}

func TestTransferUnallocatedCredit(t *testing.T) {
	bt := &BankTransfer{
		Amount: decimal.RequireFromString("100.00"),
		Allocations: []*TransferAllocation{
			{Amount: decimal.RequireFromString("60.00")},
			{Amount: decimal.RequireFromString("25.50")},
		},
	}

	assert.True(t, bt.Allocated().Equal(decimal.RequireFromString("85.50")))
	assert.True(t, bt.UnallocatedCredit().Equal(decimal.RequireFromString("14.50")))
}

func TestExpenseCategoryValid(t *testing.T) {
	assert.True(t, ExpenseCategory("trip").Valid())
	assert.True(t, ExpenseOther.Valid())
	assert.False(t, ExpenseCategory("vacation").Valid())
}
