package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/titorm/fodmap-facil-sub001/models"
)

// ErrFrequencyOutOfRange is the only validated scheduler error; everything else
// (store failures) propagates unchanged.
var ErrFrequencyOutOfRange = errors.New("frequency must be between 1 and 24 hours")

// ReminderStore is the notification-schedule collaborator. The scheduler issues
// one independent write per reminder; it does not wrap them in a transaction.
type ReminderStore interface {
	Create(r *models.ReminderSchedule) error
	FindPending(washoutPeriodID uint) ([]models.ReminderSchedule, error)
	Delete(id uint) error
	FindDue(now time.Time) ([]models.ReminderSchedule, error)
	MarkSent(id uint) error
}

// WashoutStore reads and writes washout periods.
type WashoutStore interface {
	FindByID(id uint) (*models.WashoutPeriod, error)
	Save(w *models.WashoutPeriod) error
}

// SchedulerService computes reminder series over a washout period. The clock is
// injected so schedules are reproducible in tests.
type SchedulerService struct {
	reminders ReminderStore
	washouts  WashoutStore
	now       func() time.Time
}

func NewSchedulerService(reminders ReminderStore, washouts WashoutStore) *SchedulerService {
	return &SchedulerService{reminders: reminders, washouts: washouts, now: time.Now}
}

// highAnxietyFactor shortens the interval by a third, i.e. ~50% more reminders.
const highAnxietyFactor = 0.67

// ScheduleReminders generates and persists the reminder series for a period.
// The first reminder lands one interval after the start, never at the start
// instant; instants at or past the end are not generated, so a short period
// with a long interval legitimately yields zero reminders.
func (s *SchedulerService) ScheduleReminders(period *models.WashoutPeriod, frequencyHours int, anxietyLevel string) ([]models.ReminderSchedule, error) {
	if frequencyHours < 1 || frequencyHours > 24 {
		return nil, ErrFrequencyOutOfRange
	}

	adjusted := float64(frequencyHours)
	if anxietyLevel == models.AnxietyHigh {
		adjusted *= highAnxietyFactor
	}
	step := time.Duration(adjusted * float64(time.Hour))

	var instants []time.Time
	for t := period.StartDate.Add(step); t.Before(period.EndDate); t = t.Add(step) {
		instants = append(instants, t)
	}

	out := make([]models.ReminderSchedule, 0, len(instants))
	for i, t := range instants {
		r := models.ReminderSchedule{
			WashoutPeriodID: period.ID,
			ScheduledTime:   t,
			Message:         reminderMessage(i, len(instants), period.EndDate.Sub(t)),
		}
		if err := s.reminders.Create(&r); err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

// reminderMessage frames the countdown: days at the start, hours at the finish,
// and day- vs hour-granularity in between depending on how much is left.
func reminderMessage(i, total int, remaining time.Duration) string {
	days := int(remaining.Hours() / 24)
	hours := int(remaining.Hours())

	switch {
	case i == 0:
		return fmt.Sprintf("Washout under way — %s to go. Stick to your baseline low-FODMAP meals.", plural(days, "day"))
	case i == total-1:
		return fmt.Sprintf("Almost there — about %s left in your washout. You've got this!", plural(hours, "hour"))
	case remaining > 24*time.Hour:
		return fmt.Sprintf("%s left in your washout. Keep logging how you feel.", plural(days, "day"))
	default:
		return fmt.Sprintf("%s left in your washout.", plural(hours, "hour"))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// CancelReminders removes every not-yet-sent reminder for the period. Sent
// reminders stay. Calling it again is a no-op, not an error.
func (s *SchedulerService) CancelReminders(washoutPeriodID uint) error {
	pending, err := s.reminders.FindPending(washoutPeriodID)
	if err != nil {
		return err
	}
	for _, r := range pending {
		if err := s.reminders.Delete(r.ID); err != nil {
			return err
		}
	}
	return nil
}

// UpdateFrequency validates the new frequency, stores it on the period, drops
// the pending series and rebuilds it with the period's recorded anxiety level.
func (s *SchedulerService) UpdateFrequency(washoutPeriodID uint, newFrequencyHours int) ([]models.ReminderSchedule, error) {
	if newFrequencyHours < 1 || newFrequencyHours > 24 {
		return nil, ErrFrequencyOutOfRange
	}

	period, err := s.washouts.FindByID(washoutPeriodID)
	if err != nil {
		return nil, err
	}

	period.FrequencyHours = newFrequencyHours
	if err := s.washouts.Save(period); err != nil {
		return nil, err
	}

	if err := s.CancelReminders(washoutPeriodID); err != nil {
		return nil, err
	}
	return s.ScheduleReminders(period, newFrequencyHours, period.AnxietyLevel)
}

// Countdown is the derived remaining-time view for a period.
type Countdown struct {
	Completed        bool  `json:"completed"`
	RemainingSeconds int64 `json:"remaining_seconds"`
	RemainingDays    int   `json:"remaining_days"`
	RemainingHours   int   `json:"remaining_hours"`
}

// CountdownFor reconciles the persisted status against the clock: a period
// whose end has passed is flipped to completed on read.
func (s *SchedulerService) CountdownFor(period *models.WashoutPeriod) (Countdown, error) {
	now := s.now()
	if period.Completed(now) {
		if period.Status != models.WashoutCompleted {
			period.Status = models.WashoutCompleted
			if err := s.washouts.Save(period); err != nil {
				return Countdown{}, err
			}
		}
		return Countdown{Completed: true}, nil
	}

	remaining := period.EndDate.Sub(now)
	return Countdown{
		RemainingSeconds: int64(remaining.Seconds()),
		RemainingDays:    int(remaining.Hours() / 24),
		RemainingHours:   int(remaining.Hours()),
	}, nil
}
