package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferAllocation links part of a bank transfer to a payment request.
// Settlement status is always derived from these rows.
type TransferAllocation struct {
	ID         string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TransferID string          `json:"transfer_id" gorm:"not null;index;type:uuid"`
	RequestID  string          `json:"request_id" gorm:"not null;index;type:uuid"`
	Amount     decimal.Decimal `json:"amount" gorm:"not null;type:numeric(10,2)"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime"`

	Transfer *BankTransfer   `json:"transfer,omitempty" gorm:"foreignKey:TransferID;references:ID"`
	Request  *PaymentRequest `json:"request,omitempty" gorm:"foreignKey:RequestID;references:ID"`
}
