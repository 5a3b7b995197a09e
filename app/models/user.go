package models

import "time"

type User struct {
	ID              string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	Email           string     `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	Password        string     `json:"-" gorm:"not null" validate:"required,min=8"`
	FirstName       string     `json:"first_name" gorm:"not null" validate:"required"`
	LastName        string     `json:"last_name" gorm:"not null" validate:"required"`
	IsTreasurer     bool       `json:"is_treasurer" gorm:"default:false"`
	HideFundBalance bool       `json:"hide_fund_balance" gorm:"default:false"`
	IsActive        bool       `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	Profile *StudentProfile `json:"profile,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

// FullName returns the display name used across pages and logs.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
