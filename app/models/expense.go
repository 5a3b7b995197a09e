package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is money spent from the class fund by the treasurer. Published
// expenses are visible to every student and become immutable.
type Expense struct {
	ID          string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ClassID     string          `json:"class_id" gorm:"not null;index;type:uuid"`
	Title       string          `json:"title" gorm:"not null"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	Amount      decimal.Decimal `json:"amount" gorm:"not null;type:numeric(10,2)"`
	Category    ExpenseCategory `json:"category" gorm:"not null;default:'other';type:varchar(20)"`
	SpentAt     time.Time       `json:"spent_at" gorm:"not null;type:date"`
	RecordedBy  *string         `json:"recorded_by,omitempty" gorm:"type:uuid"`
	IsPublished bool            `json:"is_published" gorm:"default:false;index"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
}
