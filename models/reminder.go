package models

import "time"

// ReminderSchedule rows are created in bulk per washout period and deleted in
// bulk on cancel. Sent flips once, owned by the dispatcher.
type ReminderSchedule struct {
	ID              uint      `gorm:"primaryKey"`
	WashoutPeriodID uint      `gorm:"index"`
	ScheduledTime   time.Time `gorm:"index;not null"`
	Message         string    `gorm:"type:text"`
	Sent            bool      `gorm:"default:false"`
	CreatedAt       time.Time
}

type UserDevice struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index"`
	Platform    string `gorm:"size:16"` // "android" | "ios"
	TokenHash   string `gorm:"size:64"`
	EndpointARN string `gorm:"size:256"`
	Enabled     bool   `gorm:"default:true"`
	UpdatedAt   time.Time
	CreatedAt   time.Time
}
