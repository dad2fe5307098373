package services

import (
	"errors"
	"testing"
	"time"

	"github.com/titorm/fodmap-facil-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReminderStore struct {
	nextID    uint
	reminders map[uint]models.ReminderSchedule
	createErr error
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{reminders: map[uint]models.ReminderSchedule{}}
}

func (f *fakeReminderStore) Create(r *models.ReminderSchedule) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	r.ID = f.nextID
	f.reminders[r.ID] = *r
	return nil
}

func (f *fakeReminderStore) FindPending(periodID uint) ([]models.ReminderSchedule, error) {
	var out []models.ReminderSchedule
	for _, r := range f.reminders {
		if r.WashoutPeriodID == periodID && !r.Sent {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminderStore) Delete(id uint) error {
	delete(f.reminders, id)
	return nil
}

func (f *fakeReminderStore) FindDue(now time.Time) ([]models.ReminderSchedule, error) {
	var out []models.ReminderSchedule
	for _, r := range f.reminders {
		if !r.Sent && !r.ScheduledTime.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminderStore) MarkSent(id uint) error {
	r, ok := f.reminders[id]
	if !ok {
		return errors.New("not found")
	}
	r.Sent = true
	f.reminders[id] = r
	return nil
}

type fakeWashoutStore struct {
	periods map[uint]models.WashoutPeriod
}

func newFakeWashoutStore() *fakeWashoutStore {
	return &fakeWashoutStore{periods: map[uint]models.WashoutPeriod{}}
}

func (f *fakeWashoutStore) FindByID(id uint) (*models.WashoutPeriod, error) {
	p, ok := f.periods[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &p, nil
}

func (f *fakeWashoutStore) Save(w *models.WashoutPeriod) error {
	f.periods[w.ID] = *w
	return nil
}

func testPeriod(id uint, hours int, anxiety string) *models.WashoutPeriod {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	p := &models.WashoutPeriod{
		Group:        models.GroupLactose,
		StartDate:    start,
		EndDate:      start.Add(time.Duration(hours) * time.Hour),
		Status:       models.WashoutActive,
		AnxietyLevel: anxiety,
	}
	p.ID = id
	return p
}

func TestScheduleRemindersInvalidFrequency(t *testing.T) {
	store := newFakeReminderStore()
	svc := NewSchedulerService(store, newFakeWashoutStore())

	for _, freq := range []int{0, -1, 25} {
		_, err := svc.ScheduleReminders(testPeriod(1, 72, models.AnxietyLow), freq, models.AnxietyLow)
		assert.ErrorIs(t, err, ErrFrequencyOutOfRange, "freq %d", freq)
	}
	// nothing persisted on a validation failure
	assert.Empty(t, store.reminders)
}

func TestScheduleRemindersEmptyResultBoundary(t *testing.T) {
	store := newFakeReminderStore()
	svc := NewSchedulerService(store, newFakeWashoutStore())

	// 6-hour period, 12-hour frequency: the first instant already overshoots
	// the end. Zero reminders, not an error.
	out, err := svc.ScheduleReminders(testPeriod(1, 6, models.AnxietyLow), 12, models.AnxietyLow)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, store.reminders)
}

func TestScheduleRemindersSpacing(t *testing.T) {
	store := newFakeReminderStore()
	svc := NewSchedulerService(store, newFakeWashoutStore())

	period := testPeriod(1, 24, models.AnxietyLow)
	out, err := svc.ScheduleReminders(period, 6, models.AnxietyLow)
	require.NoError(t, err)

	// instants at +6h, +12h, +18h; +24h equals the end and is excluded
	require.Len(t, out, 3)
	assert.Equal(t, period.StartDate.Add(6*time.Hour), out[0].ScheduledTime)
	assert.Equal(t, period.StartDate.Add(18*time.Hour), out[2].ScheduledTime)
}

func TestScheduleRemindersHighAnxietyAdjustment(t *testing.T) {
	svc := NewSchedulerService(newFakeReminderStore(), newFakeWashoutStore())
	low, err := svc.ScheduleReminders(testPeriod(1, 24, models.AnxietyLow), 6, models.AnxietyLow)
	require.NoError(t, err)

	svcHigh := NewSchedulerService(newFakeReminderStore(), newFakeWashoutStore())
	high, err := svcHigh.ScheduleReminders(testPeriod(2, 24, models.AnxietyHigh), 6, models.AnxietyHigh)
	require.NoError(t, err)

	// 6h * 0.67 ≈ 4.02h: at least 4 reminders in 24h versus 3 at low anxiety
	assert.GreaterOrEqual(t, len(high), 4)
	assert.Greater(t, len(high), len(low))
}

func TestScheduleRemindersMessages(t *testing.T) {
	svc := NewSchedulerService(newFakeReminderStore(), newFakeWashoutStore())

	out, err := svc.ScheduleReminders(testPeriod(1, 72, models.AnxietyMedium), 12, models.AnxietyMedium)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(out), 3)

	assert.Contains(t, out[0].Message, "day")
	assert.Contains(t, out[len(out)-1].Message, "hour")
}

func TestCancelRemindersIdempotent(t *testing.T) {
	store := newFakeReminderStore()
	svc := NewSchedulerService(store, newFakeWashoutStore())

	period := testPeriod(7, 24, models.AnxietyLow)
	_, err := svc.ScheduleReminders(period, 6, models.AnxietyLow)
	require.NoError(t, err)

	require.NoError(t, svc.CancelReminders(period.ID))
	pending, _ := store.FindPending(period.ID)
	assert.Empty(t, pending)

	// second cancel is a no-op, not an error
	require.NoError(t, svc.CancelReminders(period.ID))
	pending, _ = store.FindPending(period.ID)
	assert.Empty(t, pending)
}

func TestCancelRemindersLeavesSentOnes(t *testing.T) {
	store := newFakeReminderStore()
	svc := NewSchedulerService(store, newFakeWashoutStore())

	period := testPeriod(3, 24, models.AnxietyLow)
	out, err := svc.ScheduleReminders(period, 6, models.AnxietyLow)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	require.NoError(t, store.MarkSent(out[0].ID))
	require.NoError(t, svc.CancelReminders(period.ID))

	// the delivered reminder survives the bulk cancel
	assert.Len(t, store.reminders, 1)
	assert.True(t, store.reminders[out[0].ID].Sent)
}

func TestUpdateFrequencyUsesStoredAnxiety(t *testing.T) {
	store := newFakeReminderStore()
	washouts := newFakeWashoutStore()
	svc := NewSchedulerService(store, washouts)

	period := testPeriod(5, 24, models.AnxietyHigh)
	period.FrequencyHours = 12
	require.NoError(t, washouts.Save(period))
	_, err := svc.ScheduleReminders(period, 12, models.AnxietyHigh)
	require.NoError(t, err)

	out, err := svc.UpdateFrequency(period.ID, 6)
	require.NoError(t, err)

	// stored high anxiety keeps applying: 6h*0.67 across 24h gives ≥4
	assert.GreaterOrEqual(t, len(out), 4)

	updated, err := washouts.FindByID(period.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.FrequencyHours)

	pending, _ := store.FindPending(period.ID)
	assert.Len(t, pending, len(out))
}

func TestUpdateFrequencyValidatesRange(t *testing.T) {
	svc := NewSchedulerService(newFakeReminderStore(), newFakeWashoutStore())
	_, err := svc.UpdateFrequency(1, 99)
	assert.ErrorIs(t, err, ErrFrequencyOutOfRange)
}

func TestCountdownReconcilesCompletedStatus(t *testing.T) {
	washouts := newFakeWashoutStore()
	svc := NewSchedulerService(newFakeReminderStore(), washouts)

	period := testPeriod(9, 24, models.AnxietyLow)
	require.NoError(t, washouts.Save(period))

	svc.now = func() time.Time { return period.EndDate.Add(time.Minute) }
	cd, err := svc.CountdownFor(period)
	require.NoError(t, err)
	assert.True(t, cd.Completed)

	stored, err := washouts.FindByID(period.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WashoutCompleted, stored.Status)
}

func TestCountdownRemainingTime(t *testing.T) {
	svc := NewSchedulerService(newFakeReminderStore(), newFakeWashoutStore())
	period := testPeriod(11, 48, models.AnxietyLow)

	svc.now = func() time.Time { return period.StartDate.Add(12 * time.Hour) }
	cd, err := svc.CountdownFor(period)
	require.NoError(t, err)
	assert.False(t, cd.Completed)
	assert.Equal(t, 36, cd.RemainingHours)
	assert.Equal(t, 1, cd.RemainingDays)
}
