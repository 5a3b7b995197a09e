package models

import "time"

// SchoolClass groups students under one treasurer and one fund. Every
// finance record (request, transfer, expense, bank account) is scoped to
// exactly one class.
type SchoolClass struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"not null"`
	TreasurerID *string   `json:"treasurer_id,omitempty" gorm:"index;type:uuid"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	Treasurer *User `json:"treasurer,omitempty" gorm:"foreignKey:TreasurerID;references:ID"`
}
