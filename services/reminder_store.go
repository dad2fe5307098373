package services

import (
	"time"

	"github.com/titorm/fodmap-facil-sub001/models"

	"gorm.io/gorm"
)

// GormReminderStore backs ReminderStore with the reminder_schedules table.
type GormReminderStore struct{ db *gorm.DB }

func NewGormReminderStore(db *gorm.DB) *GormReminderStore { return &GormReminderStore{db: db} }

func (s *GormReminderStore) Create(r *models.ReminderSchedule) error {
	return s.db.Create(r).Error
}

func (s *GormReminderStore) FindPending(washoutPeriodID uint) ([]models.ReminderSchedule, error) {
	var out []models.ReminderSchedule
	err := s.db.
		Where("washout_period_id = ? AND sent = ?", washoutPeriodID, false).
		Order("scheduled_time ASC").
		Find(&out).Error
	return out, err
}

func (s *GormReminderStore) Delete(id uint) error {
	return s.db.Delete(&models.ReminderSchedule{}, id).Error
}

func (s *GormReminderStore) FindDue(now time.Time) ([]models.ReminderSchedule, error) {
	var out []models.ReminderSchedule
	err := s.db.
		Where("sent = ? AND scheduled_time <= ?", false, now).
		Order("scheduled_time ASC").
		Find(&out).Error
	return out, err
}

func (s *GormReminderStore) MarkSent(id uint) error {
	return s.db.Model(&models.ReminderSchedule{}).
		Where("id = ?", id).
		Update("sent", true).Error
}

// GormWashoutStore backs WashoutStore.
type GormWashoutStore struct{ db *gorm.DB }

func NewGormWashoutStore(db *gorm.DB) *GormWashoutStore { return &GormWashoutStore{db: db} }

func (s *GormWashoutStore) FindByID(id uint) (*models.WashoutPeriod, error) {
	var w models.WashoutPeriod
	if err := s.db.First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *GormWashoutStore) Save(w *models.WashoutPeriod) error {
	return s.db.Save(w).Error
}
