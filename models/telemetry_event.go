package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	EventContentViewed    = "content_viewed"
	EventContentExpanded  = "content_expanded"
	EventContentCompleted = "content_completed"
)

// UserState is a derived snapshot, recomputed on demand. It is never persisted
// on its own, only embedded inside telemetry events for segmentation.
type UserState struct {
	ExperienceLevel     string   `json:"experience_level"`
	AnxietyLevel        string   `json:"anxiety_level"`
	ProtocolPhase       string   `json:"protocol_phase"`
	CompletedTestsCount int      `json:"completed_tests_count"`
	PreviouslyViewedIDs []string `json:"previously_viewed_content_ids" gorm:"serializer:json"`
}

// TelemetryEvent is an append-only interaction record. Mutated only by the
// Synced flip; removed only by age-based pruning of synced events.
type TelemetryEvent struct {
	gorm.Model `json:"-"`
	EventID    string    `json:"id" gorm:"size:36;uniqueIndex;not null"`
	UserID     uint      `json:"user_id" gorm:"index"`
	EventType  string    `json:"event_type" gorm:"size:32;index;not null"`
	ContentID  string    `json:"content_id" gorm:"size:64;not null"`
	Timestamp  time.Time `json:"timestamp"` // RFC3339 on the wire
	UserState  UserState `json:"user_state" gorm:"embedded;embeddedPrefix:state_"`
	TimeSpent  int       `json:"time_spent,omitempty"` // seconds, expanded/completed only
	Synced     bool      `json:"synced"`
}
