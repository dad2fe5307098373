package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/titorm/fodmap-facil-sub001/models"

	"gorm.io/gorm"
)

// ValidationError carries the accumulated engine findings to the HTTP layer,
// where it renders as a 400 with the full error list.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	return "invalid test step: " + strings.Join(e.Result.Errors, "; ")
}

// ProtocolService manages runs and test steps around the pure engine.
type ProtocolService struct {
	db        *gorm.DB
	scheduler *SchedulerService
}

func NewProtocolService(db *gorm.DB, scheduler *SchedulerService) *ProtocolService {
	return &ProtocolService{db: db, scheduler: scheduler}
}

// StartRun returns the user's active run, creating one in the elimination
// phase if none exists.
func (s *ProtocolService) StartRun(userID uint) (*models.ProtocolRun, error) {
	var run models.ProtocolRun
	err := s.db.
		Where("user_id = ? AND status = ?", userID, models.RunActive).
		First(&run).Error
	if err == nil {
		return &run, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	run = models.ProtocolRun{
		UserID:    userID,
		Phase:     models.PhaseElimination,
		Status:    models.RunActive,
		StartedAt: time.Now(),
	}
	if err := s.db.Create(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// BeginReintroduction moves a run forward into the reintroduction phase for a
// group. Phases only ever move forward.
func (s *ProtocolService) BeginReintroduction(userID, runID uint, group string) (*models.ProtocolRun, error) {
	proto := GetProtocol(group)
	if proto.TestDurationDays == 0 {
		return nil, fmt.Errorf("unknown FODMAP group %q", group)
	}

	var run models.ProtocolRun
	if err := s.db.Where("id = ? AND user_id = ?", runID, userID).First(&run).Error; err != nil {
		return nil, err
	}
	if run.Phase == models.PhasePersonalization {
		return nil, errors.New("run is already in the personalization phase")
	}

	run.Phase = models.PhaseReintroduction
	run.CurrentGroup = proto.Group
	if err := s.db.Save(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// AddTestStep validates a step with the engine and persists it. The portion is
// filled from the protocol table when the client leaves it empty.
func (s *ProtocolService) AddTestStep(userID, runID uint, group, foodItem string, dayNumber int) (*models.TestStep, error) {
	var run models.ProtocolRun
	if err := s.db.Where("id = ? AND user_id = ?", runID, userID).First(&run).Error; err != nil {
		return nil, err
	}

	step := models.TestStep{
		ProtocolRunID: run.ID,
		Group:         strings.ToLower(group),
		DayNumber:     dayNumber,
		FoodItem:      foodItem,
		Phase:         run.Phase,
		Status:        models.StepInProgress,
		StartDate:     time.Now(),
	}
	if portion, ok := SuggestedPortion(step.Group, dayNumber); ok {
		step.PortionSize = portion
	}

	if res := ValidateTestStep(step); !res.Valid {
		return nil, &ValidationError{Result: res}
	}

	if err := s.db.Create(&step).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

// LogSymptom appends a 1–10 scored symptom to a step.
func (s *ProtocolService) LogSymptom(userID, stepID uint, name string, score int) (*models.SymptomEntry, error) {
	if score < 1 || score > 10 {
		return nil, errors.New("symptom score must be between 1 and 10")
	}

	var step models.TestStep
	err := s.db.
		Joins("JOIN protocol_runs ON protocol_runs.id = test_steps.protocol_run_id").
		Where("test_steps.id = ? AND protocol_runs.user_id = ?", stepID, userID).
		First(&step).Error
	if err != nil {
		return nil, err
	}

	entry := models.SymptomEntry{
		TestStepID: step.ID,
		Name:       name,
		Score:      score,
		LoggedAt:   time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// CompleteStep closes a dosing day.
func (s *ProtocolService) CompleteStep(userID, stepID uint) (*models.TestStep, error) {
	var step models.TestStep
	err := s.db.
		Joins("JOIN protocol_runs ON protocol_runs.id = test_steps.protocol_run_id").
		Where("test_steps.id = ? AND protocol_runs.user_id = ?", stepID, userID).
		First(&step).Error
	if err != nil {
		return nil, err
	}

	step.Status = models.StepCompleted
	step.EndDate = time.Now()
	if err := s.db.Save(&step).Error; err != nil {
		return nil, err
	}

	// reload with symptoms so the caller can run the progression gate
	var completed models.TestStep
	if err := s.db.Preload("Symptoms").First(&completed, step.ID).Error; err != nil {
		return nil, err
	}
	return &completed, nil
}

// OpenWashout creates the washout period that follows a finished 3-day test
// sequence and schedules its reminder series. The user's anxiety level and the
// chosen frequency are recorded on the period so later frequency updates need
// no extra context.
func (s *ProtocolService) OpenWashout(userID, runID uint, group string, frequencyHours int) (*models.WashoutPeriod, []models.ReminderSchedule, error) {
	// Validated before anything is persisted so an out-of-range request
	// leaves nothing behind.
	if frequencyHours < 1 || frequencyHours > 24 {
		return nil, nil, ErrFrequencyOutOfRange
	}

	proto := GetProtocol(group)
	if proto.TestDurationDays == 0 {
		return nil, nil, fmt.Errorf("unknown FODMAP group %q", group)
	}

	var run models.ProtocolRun
	if err := s.db.Where("id = ? AND user_id = ?", runID, userID).First(&run).Error; err != nil {
		return nil, nil, err
	}

	anxiety := models.AnxietyMedium
	var user models.User
	if err := s.db.First(&user, userID).Error; err == nil && user.AnxietyLevel != "" {
		anxiety = user.AnxietyLevel
	}

	start := time.Now()
	period := models.WashoutPeriod{
		ProtocolRunID:  run.ID,
		Group:          proto.Group,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, proto.WashoutDays),
		Status:         models.WashoutActive,
		AnxietyLevel:   anxiety,
		FrequencyHours: frequencyHours,
	}

	if err := s.db.Create(&period).Error; err != nil {
		return nil, nil, err
	}

	reminders, err := s.scheduler.ScheduleReminders(&period, frequencyHours, anxiety)
	if err != nil {
		return &period, reminders, err
	}
	return &period, reminders, nil
}

// ToleranceReport computes the per-group tolerance for every group tested in a
// run, in first-tested order.
func (s *ProtocolService) ToleranceReport(userID, runID uint) ([]Tolerance, error) {
	steps, err := s.stepsForRun(userID, runID)
	if err != nil {
		return nil, err
	}

	byGroup := map[string][]models.TestStep{}
	var order []string
	for _, st := range steps {
		if _, seen := byGroup[st.Group]; !seen {
			order = append(order, st.Group)
		}
		byGroup[st.Group] = append(byGroup[st.Group], st)
	}

	var out []Tolerance
	for _, g := range order {
		if tol := DetermineTolerance(byGroup[g]); tol != nil {
			out = append(out, *tol)
		}
	}
	return out, nil
}

// Recommendations renders the human-readable summary for a run.
func (s *ProtocolService) Recommendations(userID, runID uint) ([]string, error) {
	steps, err := s.stepsForRun(userID, runID)
	if err != nil {
		return nil, err
	}
	return GenerateRecommendations(steps), nil
}

func (s *ProtocolService) stepsForRun(userID, runID uint) ([]models.TestStep, error) {
	var run models.ProtocolRun
	if err := s.db.Where("id = ? AND user_id = ?", runID, userID).First(&run).Error; err != nil {
		return nil, err
	}

	var steps []models.TestStep
	err := s.db.
		Preload("Symptoms").
		Where("protocol_run_id = ?", run.ID).
		Order("day_number ASC, id ASC").
		Find(&steps).Error
	return steps, err
}
