package models

// RequestTarget defines who a payment request applies to.
type RequestTarget string

const (
	TargetClass   RequestTarget = "class"   // every active student in the class
	TargetStudent RequestTarget = "student" // one specific student
)

// SettlementStatus is the derived settlement state of a payment request.
// It is always recomputed from allocation rows, never stored.
type SettlementStatus string

const (
	SettlementPending SettlementStatus = "pending"
	SettlementPartial SettlementStatus = "partial"
	SettlementSettled SettlementStatus = "settled"
)

// ExpenseCategory defines what fund money was spent on.
type ExpenseCategory string

const (
	ExpenseTrip       ExpenseCategory = "trip"
	ExpenseSupplies   ExpenseCategory = "supplies"
	ExpenseFood       ExpenseCategory = "food"
	ExpenseDecoration ExpenseCategory = "decoration"
	ExpenseDonation   ExpenseCategory = "donation"
	ExpenseOther      ExpenseCategory = "other"
)

// Valid reports whether the category is one of the known values.
func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseTrip, ExpenseSupplies, ExpenseFood, ExpenseDecoration, ExpenseDonation, ExpenseOther:
		return true
	}
	return false
}
