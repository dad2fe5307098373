package services

import (
	"testing"

	"github.com/titorm/fodmap-facil-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileReader struct{ user *models.User }

func (f *fakeProfileReader) GetByID(userID uint) (*models.User, error) { return f.user, nil }

type fakeRunReader struct {
	active *models.ProtocolRun
	runs   []models.ProtocolRun
}

func (f *fakeRunReader) FindActive(userID uint) (*models.ProtocolRun, error) { return f.active, nil }
func (f *fakeRunReader) FindByUserID(userID uint) ([]models.ProtocolRun, error) {
	return f.runs, nil
}

type fakeStepReader struct {
	completedByRun map[uint]int
}

func (f *fakeStepReader) FindByProtocolRunID(runID uint) ([]models.TestStep, error) {
	return nil, nil
}

func (f *fakeStepReader) FindByStatus(runID uint, status string) ([]models.TestStep, error) {
	n := f.completedByRun[runID]
	steps := make([]models.TestStep, n)
	return steps, nil
}

func TestDeriveUserStateDefaultsForNewUser(t *testing.T) {
	svc := NewStateService(
		&fakeProfileReader{},
		&fakeRunReader{},
		&fakeStepReader{},
		func(userID uint) ([]string, error) { return nil, nil },
	)

	state, err := svc.DeriveUserState(42)
	require.NoError(t, err)

	assert.Equal(t, models.ExperienceBeginner, state.ExperienceLevel)
	assert.Equal(t, models.AnxietyMedium, state.AnxietyLevel)
	assert.Equal(t, models.PhaseElimination, state.ProtocolPhase)
	assert.Zero(t, state.CompletedTestsCount)
	assert.Empty(t, state.PreviouslyViewedIDs)
}

func TestDeriveUserStateExperienceBanding(t *testing.T) {
	cases := []struct {
		completed int
		want      string
	}{
		{0, models.ExperienceBeginner},
		{1, models.ExperienceIntermediate},
		{4, models.ExperienceIntermediate},
		{5, models.ExperienceAdvanced},
		{12, models.ExperienceAdvanced},
	}

	for _, tc := range cases {
		run := models.ProtocolRun{}
		run.ID = 1
		svc := NewStateService(
			&fakeProfileReader{},
			&fakeRunReader{runs: []models.ProtocolRun{run}},
			&fakeStepReader{completedByRun: map[uint]int{1: tc.completed}},
			nil,
		)

		state, err := svc.DeriveUserState(1)
		require.NoError(t, err)
		assert.Equal(t, tc.want, state.ExperienceLevel, "completed=%d", tc.completed)
		assert.Equal(t, tc.completed, state.CompletedTestsCount)
	}
}

func TestDeriveUserStateReadsProfileAndActiveRun(t *testing.T) {
	active := &models.ProtocolRun{Phase: models.PhaseReintroduction}
	svc := NewStateService(
		&fakeProfileReader{user: &models.User{AnxietyLevel: models.AnxietyHigh}},
		&fakeRunReader{active: active},
		&fakeStepReader{},
		func(userID uint) ([]string, error) { return []string{"c-1", "c-1", "c-2"}, nil },
	)

	state, err := svc.DeriveUserState(1)
	require.NoError(t, err)

	assert.Equal(t, models.AnxietyHigh, state.AnxietyLevel)
	assert.Equal(t, models.PhaseReintroduction, state.ProtocolPhase)
	assert.Equal(t, []string{"c-1", "c-2"}, state.PreviouslyViewedIDs)
}
