package models

import (
	"gorm.io/gorm"
)

// Announcement is a ward office notice shown read-only over USSD.
type Announcement struct {
	gorm.Model
	Title  string `gorm:"not null" json:"title"`
	Body   string `json:"body"`
	Active bool   `gorm:"default:true;index" json:"active"`
}

// Project is a ward development project listed over USSD.
type Project struct {
	gorm.Model
	Name   string `gorm:"not null" json:"name"`
	Status string `gorm:"default:'ongoing'" json:"status"` // planned, ongoing, completed
	Budget string `json:"budget"`
}
