package models

import (
	"gorm.io/gorm"
)

// Bursary application statuses
const (
	BursaryStatusPending  = "pending"
	BursaryStatusReview   = "under_review"
	BursaryStatusApproved = "approved"
	BursaryStatusRejected = "rejected"
)

// BursaryApplication is a student bursary request submitted over USSD.
type BursaryApplication struct {
	gorm.Model
	RefCode     string `gorm:"uniqueIndex;not null" json:"ref_code"`
	Phone       string `gorm:"index;not null" json:"phone"`
	StudentName string `gorm:"not null" json:"student_name"`
	School      string `gorm:"not null" json:"school"`
	Year        string `json:"year"`
	Status      string `gorm:"default:'pending'" json:"status"`
}

func (b *BursaryApplication) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = BursaryStatusPending
	}
	return nil
}
