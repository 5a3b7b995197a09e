package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest is a request created by the treasurer asking students to pay
// a specific amount. It targets either every active student in the class or a
// single student (tagged by TargetType). Requests are never deleted, only
// voided; their settlement status is derived from transfer allocations.
type PaymentRequest struct {
	ID              string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ClassID         string          `json:"class_id" gorm:"not null;index;type:uuid"`
	Title           string          `json:"title" gorm:"not null"`
	Description     string          `json:"description,omitempty" gorm:"type:text"`
	Amount          decimal.Decimal `json:"amount" gorm:"not null;type:numeric(10,2)"`
	DueDate         *time.Time      `json:"due_date,omitempty" gorm:"type:date"`
	TargetType      RequestTarget   `json:"target_type" gorm:"not null;default:'class';type:varchar(10)"`
	TargetStudentID *string         `json:"target_student_id,omitempty" gorm:"index;type:uuid"`
	VariableSymbol  string          `json:"variable_symbol,omitempty" gorm:"type:varchar(10)"`
	CreatedBy       *string         `json:"created_by,omitempty" gorm:"type:uuid"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
	VoidedAt        *time.Time      `json:"voided_at,omitempty" gorm:"index"`

	TargetStudent *StudentProfile `json:"target_student,omitempty" gorm:"foreignKey:TargetStudentID;references:ID"`
}

// IsVoided reports whether the request has been voided by the treasurer.
func (pr *PaymentRequest) IsVoided() bool {
	return pr.VoidedAt != nil
}

// AppliesTo reports whether the given student is expected to pay this request.
func (pr *PaymentRequest) AppliesTo(studentID string) bool {
	if pr.TargetType == TargetClass {
		return true
	}
	return pr.TargetStudentID != nil && *pr.TargetStudentID == studentID
}

// IsOverdue reports whether the request has a due date in the past.
func (pr *PaymentRequest) IsOverdue(today time.Time) bool {
	return pr.DueDate != nil && pr.DueDate.Before(today)
}
