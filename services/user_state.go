package services

import (
	"errors"

	"github.com/titorm/fodmap-facil-sub001/models"

	"gorm.io/gorm"
)

// Read-only collaborators for state derivation. Not-found is a nil result with
// a nil error, never a failure, since new users have no data yet.
type ProfileReader interface {
	GetByID(userID uint) (*models.User, error)
}

type ProtocolRunReader interface {
	FindActive(userID uint) (*models.ProtocolRun, error)
	FindByUserID(userID uint) ([]models.ProtocolRun, error)
}

type TestStepReader interface {
	FindByProtocolRunID(runID uint) ([]models.TestStep, error)
	FindByStatus(runID uint, status string) ([]models.TestStep, error)
}

// ViewedContentLookup answers "which content has this user already seen".
type ViewedContentLookup func(userID uint) ([]string, error)

// StateService derives the UserState snapshot consumed by content surfacing and
// embedded in telemetry events. Pure aggregation over its readers; no writes.
type StateService struct {
	profiles ProfileReader
	runs     ProtocolRunReader
	steps    TestStepReader
	viewed   ViewedContentLookup
}

func NewStateService(profiles ProfileReader, runs ProtocolRunReader, steps TestStepReader, viewed ViewedContentLookup) *StateService {
	return &StateService{profiles: profiles, runs: runs, steps: steps, viewed: viewed}
}

// Experience banding: 0 completed tests → beginner, 1–4 → intermediate,
// 5 and up → advanced.
func experienceLevel(completed int) string {
	switch {
	case completed == 0:
		return models.ExperienceBeginner
	case completed <= 4:
		return models.ExperienceIntermediate
	default:
		return models.ExperienceAdvanced
	}
}

func (s *StateService) DeriveUserState(userID uint) (models.UserState, error) {
	state := models.UserState{
		ExperienceLevel: models.ExperienceBeginner,
		AnxietyLevel:    models.AnxietyMedium,
		ProtocolPhase:   models.PhaseElimination,
	}

	profile, err := s.profiles.GetByID(userID)
	if err != nil {
		return state, err
	}
	if profile != nil && profile.AnxietyLevel != "" {
		state.AnxietyLevel = profile.AnxietyLevel
	}

	active, err := s.runs.FindActive(userID)
	if err != nil {
		return state, err
	}
	if active != nil {
		state.ProtocolPhase = active.Phase
	}

	runs, err := s.runs.FindByUserID(userID)
	if err != nil {
		return state, err
	}
	for _, run := range runs {
		completed, err := s.steps.FindByStatus(run.ID, models.StepCompleted)
		if err != nil {
			return state, err
		}
		state.CompletedTestsCount += len(completed)
	}
	state.ExperienceLevel = experienceLevel(state.CompletedTestsCount)

	if s.viewed != nil {
		ids, err := s.viewed(userID)
		if err != nil {
			return state, err
		}
		seen := map[string]struct{}{}
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			state.PreviouslyViewedIDs = append(state.PreviouslyViewedIDs, id)
		}
	}

	return state, nil
}

// ---- GORM readers ----

type GormProfileReader struct{ db *gorm.DB }

func NewGormProfileReader(db *gorm.DB) *GormProfileReader { return &GormProfileReader{db: db} }

func (r *GormProfileReader) GetByID(userID uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

type GormProtocolRunReader struct{ db *gorm.DB }

func NewGormProtocolRunReader(db *gorm.DB) *GormProtocolRunReader {
	return &GormProtocolRunReader{db: db}
}

func (r *GormProtocolRunReader) FindActive(userID uint) (*models.ProtocolRun, error) {
	var run models.ProtocolRun
	err := r.db.
		Where("user_id = ? AND status = ?", userID, models.RunActive).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *GormProtocolRunReader) FindByUserID(userID uint) ([]models.ProtocolRun, error) {
	var runs []models.ProtocolRun
	err := r.db.Where("user_id = ?", userID).Order("started_at ASC").Find(&runs).Error
	return runs, err
}

type GormTestStepReader struct{ db *gorm.DB }

func NewGormTestStepReader(db *gorm.DB) *GormTestStepReader { return &GormTestStepReader{db: db} }

func (r *GormTestStepReader) FindByProtocolRunID(runID uint) ([]models.TestStep, error) {
	var steps []models.TestStep
	err := r.db.
		Preload("Symptoms").
		Where("protocol_run_id = ?", runID).
		Order("day_number ASC").
		Find(&steps).Error
	return steps, err
}

func (r *GormTestStepReader) FindByStatus(runID uint, status string) ([]models.TestStep, error) {
	var steps []models.TestStep
	err := r.db.
		Where("protocol_run_id = ? AND status = ?", runID, status).
		Order("day_number ASC").
		Find(&steps).Error
	return steps, err
}
