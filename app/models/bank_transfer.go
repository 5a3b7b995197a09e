package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransfer records money actually received on the class account. A
// transfer is immutable once recorded except for the reconciliation fields:
// the student link (set when an orphan is resolved), the processed flag and
// the review flag. A NULL student means the sender could not be matched.
type BankTransfer struct {
	ID             string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ClassID        string          `json:"class_id" gorm:"not null;index;type:uuid"`
	StudentID      *string         `json:"student_id,omitempty" gorm:"index;type:uuid"`
	Amount         decimal.Decimal `json:"amount" gorm:"not null;type:numeric(10,2)"`
	SenderName     string          `json:"sender_name,omitempty"`
	StatementRef   string          `json:"statement_ref,omitempty"`
	VariableSymbol string          `json:"variable_symbol,omitempty" gorm:"type:varchar(10)"`
	ReceivedAt     time.Time       `json:"received_at" gorm:"not null;index"`
	Note           string          `json:"note,omitempty" gorm:"type:text"`
	NeedsReview    bool            `json:"needs_review" gorm:"default:false;index"`
	ProcessedAt    *time.Time      `json:"processed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`

	Student     *StudentProfile       `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
	Allocations []*TransferAllocation `json:"allocations,omitempty" gorm:"foreignKey:TransferID;references:ID"`
}

// Processed reports whether the transfer has been run through reconciliation.
func (bt *BankTransfer) Processed() bool {
	return bt.ProcessedAt != nil
}

// Allocated sums the amounts already applied to payment requests.
func (bt *BankTransfer) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, a := range bt.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// UnallocatedCredit is the part of the transfer not covering any request.
func (bt *BankTransfer) UnallocatedCredit() decimal.Decimal {
	return bt.Amount.Sub(bt.Allocated())
}
