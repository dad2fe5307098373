package models

import "gorm.io/gorm"

// EducationalContent is a catalog entry surfaced during washout.
type EducationalContent struct {
	gorm.Model
	ContentID  string `gorm:"size:64;uniqueIndex;not null"`
	Title      string `gorm:"not null"`
	Summary    string `gorm:"type:text"`
	Category   string `gorm:"size:32"` // "protocol", "symptoms", "coping", "nutrition"
	Phase      string `gorm:"size:20"` // phase the item is most relevant to
	Difficulty string `gorm:"size:16"` // "beginner" | "intermediate" | "advanced"
	AnxietyTag string `gorm:"size:16"` // targets readers at this anxiety level, empty = any
}
