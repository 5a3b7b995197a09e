package models

import "time"

// StudentProfile enrolls a user account into a class. The variable symbol is
// the unique payer reference students put on their bank transfers; incoming
// statement rows are matched to students through it.
type StudentProfile struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID         string    `json:"user_id" gorm:"not null;uniqueIndex;type:uuid"`
	ClassID        string    `json:"class_id" gorm:"not null;index;type:uuid"`
	VariableSymbol string    `json:"variable_symbol" gorm:"not null;uniqueIndex"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	EnrolledAt     time.Time `json:"enrolled_at" gorm:"autoCreateTime"`

	User  *User        `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Class *SchoolClass `json:"class,omitempty" gorm:"foreignKey:ClassID;references:ID"`
}
