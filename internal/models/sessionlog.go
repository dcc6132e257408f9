package models

import (
	"time"
)

// SessionLog records one handled USSD turn for auditing. Append-only;
// written fire-and-forget after the response is framed.
type SessionLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"index;type:varchar(100);not null" json:"session_id"`
	Msisdn    string    `gorm:"index;type:varchar(16);not null" json:"msisdn"`
	Stage     string    `gorm:"index;type:varchar(50);not null" json:"stage"`
	UserInput string    `gorm:"type:varchar(160)" json:"user_input"`
	Ended     bool      `gorm:"index" json:"ended"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName keeps the conventional USSD log table name.
func (*SessionLog) TableName() string {
	return "ussd_logs"
}
