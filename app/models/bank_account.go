package models

import "time"

// BankAccount holds the class bank account details shown to students on the
// payment-info page. Only the active account of a class is displayed.
type BankAccount struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ClassID       string    `json:"class_id" gorm:"not null;uniqueIndex;type:uuid"`
	OwnerName     string    `json:"owner_name" gorm:"not null"`
	AccountNumber string    `json:"account_number" gorm:"not null"`
	IBAN          string    `json:"iban,omitempty"`
	BankName      string    `json:"bank_name,omitempty"`
	Note          string    `json:"note,omitempty" gorm:"type:text"`
	IsActive      bool      `json:"is_active" gorm:"default:true"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
