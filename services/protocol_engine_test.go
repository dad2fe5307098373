package services

import (
	"testing"

	"github.com/titorm/fodmap-facil-sub001/models"
	"github.com/titorm/fodmap-facil-sub001/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scores sit at the bucket representatives: 1=none, 3=mild, 6=moderate, 9=severe.
func stepWithScores(group string, day int, scores ...int) models.TestStep {
	st := models.TestStep{
		Group:     group,
		DayNumber: day,
		Phase:     models.PhaseReintroduction,
	}
	for _, sc := range scores {
		st.Symptoms = append(st.Symptoms, models.SymptomEntry{Name: "bloating", Score: sc})
	}
	return st
}

func TestGetProtocolDefinedForEveryGroup(t *testing.T) {
	for _, g := range models.AllGroups {
		proto := GetProtocol(g)
		assert.Equal(t, 3, proto.TestDurationDays, g)
		assert.Len(t, proto.PortionProgression, proto.TestDurationDays, g)
		assert.NotEmpty(t, proto.RecommendedFoods, g)
	}
}

func TestMaxSymptomSeverity(t *testing.T) {
	assert.Equal(t, utils.SeverityNone, MaxSymptomSeverity(stepWithScores(models.GroupFructose, 1)))
	assert.Equal(t, utils.SeveritySevere, MaxSymptomSeverity(stepWithScores(models.GroupFructose, 1, 1, 3, 9)))
	assert.Equal(t, utils.SeverityMild, MaxSymptomSeverity(stepWithScores(models.GroupFructose, 1, 3, 1)))
}

func TestCanProgressToNextGroup(t *testing.T) {
	cases := []struct {
		name  string
		score int
		want  bool
	}{
		{"none", 1, true},
		{"mild", 3, true},
		{"moderate", 6, false},
		{"severe", 9, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := stepWithScores(models.GroupLactose, 1, tc.score)
			assert.Equal(t, tc.want, CanProgressToNextGroup(st))
		})
	}
}

func TestDetermineToleranceEmptyInput(t *testing.T) {
	assert.Nil(t, DetermineTolerance(nil))
}

func TestDetermineToleranceAllClear(t *testing.T) {
	steps := []models.TestStep{
		stepWithScores(models.GroupFructose, 1, 1),
		stepWithScores(models.GroupFructose, 2, 3),
		stepWithScores(models.GroupFructose, 3),
	}
	tol := DetermineTolerance(steps)
	require.NotNil(t, tol)
	assert.True(t, tol.Tolerated)
	assert.Equal(t, GetProtocol(models.GroupFructose).PortionProgression[2], tol.MaxToleratedPortion)
}

func TestDetermineTolerancePrefixCutoff(t *testing.T) {
	// mild, moderate, mild: only day 1 counts; the trailing mild after the
	// failure must not resume the scan.
	steps := []models.TestStep{
		stepWithScores(models.GroupLactose, 1, 3),
		stepWithScores(models.GroupLactose, 2, 6),
		stepWithScores(models.GroupLactose, 3, 3),
	}
	tol := DetermineTolerance(steps)
	require.NotNil(t, tol)
	assert.True(t, tol.Tolerated)
	assert.Equal(t, GetProtocol(models.GroupLactose).PortionProgression[0], tol.MaxToleratedPortion)
}

func TestDetermineToleranceFirstDayFailure(t *testing.T) {
	steps := []models.TestStep{
		stepWithScores(models.GroupPolyols, 1, 9),
		stepWithScores(models.GroupPolyols, 2, 1),
	}
	tol := DetermineTolerance(steps)
	require.NotNil(t, tol)
	assert.False(t, tol.Tolerated)
	assert.Empty(t, tol.MaxToleratedPortion)
}

func TestSuggestedPortionBoundaries(t *testing.T) {
	_, ok := SuggestedPortion(models.GroupFructose, 0)
	assert.False(t, ok)

	_, ok = SuggestedPortion(models.GroupFructose, 4)
	assert.False(t, ok)

	portion, ok := SuggestedPortion(models.GroupFructose, 1)
	require.True(t, ok)
	assert.Equal(t, GetProtocol(models.GroupFructose).PortionProgression[0], portion)
}

func TestInWashoutPeriod(t *testing.T) {
	assert.False(t, InWashoutPeriod(3, 3))
	assert.True(t, InWashoutPeriod(4, 3))
}

func TestValidateTestStepAccumulatesErrors(t *testing.T) {
	st := models.TestStep{
		Group:     models.GroupFructans,
		DayNumber: 0,
		FoodItem:  "chocolate",
		Phase:     models.PhaseElimination,
	}
	res := ValidateTestStep(st)
	assert.False(t, res.Valid)
	// all three independent problems reported, no short-circuit
	require.Len(t, res.Errors, 3)
	assert.Contains(t, res.Errors[2], "wheat bread") // recommended list echoed
}

func TestValidateTestStepFoodCaseInsensitive(t *testing.T) {
	st := models.TestStep{
		Group:     models.GroupFructans,
		DayNumber: 1,
		FoodItem:  "GARLIC",
		Phase:     models.PhaseReintroduction,
	}
	res := ValidateTestStep(st)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestGenerateRecommendationsDeterministicOrder(t *testing.T) {
	steps := []models.TestStep{
		stepWithScores(models.GroupLactose, 1, 1),
		stepWithScores(models.GroupFructose, 1, 9),
		stepWithScores(models.GroupLactose, 2, 3),
	}

	first := GenerateRecommendations(steps)
	require.Len(t, first, 2)
	// first-appearance order: lactose before fructose
	assert.Contains(t, first[0], models.GroupLactose)
	assert.Contains(t, first[1], models.GroupFructose)
	assert.Contains(t, first[1], "avoiding")

	second := GenerateRecommendations(steps)
	assert.Equal(t, first, second)
}
