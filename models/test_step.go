package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	StepPending    = "pending"
	StepInProgress = "in_progress"
	StepCompleted  = "completed"
	StepSkipped    = "skipped"
)

// TestStep is one dosing day of one food within one FODMAP group.
type TestStep struct {
	gorm.Model
	ProtocolRunID uint   `gorm:"index;not null"`
	Group         string `gorm:"size:20;not null"`
	DayNumber     int    `gorm:"not null"` // 1-based within the 3-day test
	FoodItem      string `gorm:"not null"`
	PortionSize   string
	Phase         string `gorm:"size:20;default:reintroduction"`
	Status        string `gorm:"size:20;default:pending"`
	StartDate     time.Time
	EndDate       time.Time
	Symptoms      []SymptomEntry
}

// SymptomEntry stores the raw 1–10 score the app collects; the engine works on
// the 0–3 ordinal scale via the bucket mapping in utils.
type SymptomEntry struct {
	gorm.Model
	TestStepID uint   `gorm:"index;not null"`
	Name       string `gorm:"not null"` // "bloating", "cramps", ...
	Score      int    `gorm:"not null"` // 1..10
	LoggedAt   time.Time
}
