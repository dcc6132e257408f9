package models

import (
	"gorm.io/gorm"
)

// Issue statuses
const (
	IssueStatusOpen       = "open"
	IssueStatusInProgress = "in_progress"
	IssueStatusResolved   = "resolved"
	IssueStatusClosed     = "closed"
)

// Issue categories selectable from the USSD menu
const (
	IssueCategoryWater    = "water"
	IssueCategoryRoads    = "roads"
	IssueCategorySecurity = "security"
	IssueCategoryOther    = "other"
)

// Issue is a citizen-reported ward issue.
type Issue struct {
	gorm.Model
	TicketCode  string `gorm:"uniqueIndex;not null" json:"ticket_code"`
	Phone       string `gorm:"index;not null" json:"phone"`
	Category    string `gorm:"not null" json:"category"`
	Description string `gorm:"not null" json:"description"`
	Status      string `gorm:"default:'open'" json:"status"`
}

// BeforeCreate defaults the status for rows inserted outside the engine
// (admin imports, seeds).
func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	if i.Status == "" {
		i.Status = IssueStatusOpen
	}
	return nil
}
