package models

import (
	"time"

	"gorm.io/gorm"
)

// Protocol phases, strictly forward: elimination → reintroduction → personalization.
const (
	PhaseElimination     = "elimination"
	PhaseReintroduction  = "reintroduction"
	PhasePersonalization = "personalization"
)

const (
	RunActive    = "active"
	RunCompleted = "completed"
	RunAbandoned = "abandoned"
)

// ProtocolRun is one user's pass through the reintroduction protocol.
type ProtocolRun struct {
	gorm.Model
	UserID       uint   `gorm:"index;not null"`
	Phase        string `gorm:"size:20;default:elimination"`
	CurrentGroup string `gorm:"size:20"` // FODMAP group under test, empty during elimination
	Status       string `gorm:"size:20;default:active"`
	StartedAt    time.Time
	Steps        []TestStep
	Washouts     []WashoutPeriod
}

const (
	WashoutActive    = "active"
	WashoutCompleted = "completed"
)

// WashoutPeriod is the rest interval after a 3-day test sequence.
// AnxietyLevel and FrequencyHours are captured at scheduling time so that
// frequency updates can rebuild the reminder series without extra caller context.
type WashoutPeriod struct {
	gorm.Model
	ProtocolRunID  uint      `gorm:"index;not null"`
	Group          string    `gorm:"size:20;not null"`
	StartDate      time.Time `gorm:"not null"`
	EndDate        time.Time `gorm:"not null"`
	Status         string    `gorm:"size:20;default:active"` // reconciled against EndDate at read time
	AnxietyLevel   string    `gorm:"size:16;default:medium"`
	FrequencyHours int
}

// Completed is the derived condition; the persisted Status column trails it.
func (w *WashoutPeriod) Completed(now time.Time) bool {
	return !now.Before(w.EndDate)
}
