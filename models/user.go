package models

import (
	"gorm.io/gorm"
)

// Anxiety levels scale reminder frequency during washout.
const (
	AnxietyLow    = "low"
	AnxietyMedium = "medium"
	AnxietyHigh   = "high"
)

const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceAdvanced     = "advanced"
)

type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null"`
	Password     string `gorm:"not null"`
	FullName     string
	AnxietyLevel string `gorm:"size:16;default:medium"` // "low" | "medium" | "high"
	Onboarded    bool
}
