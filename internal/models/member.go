package models

import (
	"gorm.io/gorm"
)

// Member is a registered ward resident.
type Member struct {
	gorm.Model
	Phone      string `gorm:"uniqueIndex;not null" json:"phone"`
	FullName   string `gorm:"not null" json:"full_name"`
	NationalID string `gorm:"uniqueIndex;not null" json:"national_id"`
	Language   string `gorm:"default:'en'" json:"language"`
	Verified   bool   `gorm:"default:false" json:"verified"`
}

// MemberRegistration carries the fields collected over the USSD
// registration flow before the member record is created.
type MemberRegistration struct {
	Phone      string `json:"phone"`
	FullName   string `json:"full_name"`
	NationalID string `json:"national_id"`
	Language   string `json:"language"`
}
