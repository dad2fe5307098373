// services/protocol_engine.go
package services

import (
	"fmt"
	"strings"

	"github.com/titorm/fodmap-facil-sub001/models"
	"github.com/titorm/fodmap-facil-sub001/utils"
)

// ReintroductionProtocol is the immutable per-group dosing config.
type ReintroductionProtocol struct {
	Group              string
	TestDurationDays   int
	WashoutDays        int
	PortionProgression []string // index 0 = day 1
	RecommendedFoods   []string
}

// Tolerance is derived from a test sequence, never stored.
type Tolerance struct {
	Group               string `json:"group"`
	Tolerated           bool   `json:"tolerated"`
	MaxToleratedPortion string `json:"max_tolerated_portion,omitempty"`
}

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Every group tests for 3 days. Portions step up day over day; the washout
// afterwards clears residual fermentation before the next group.
var protocols = map[string]ReintroductionProtocol{
	models.GroupFructose: {
		Group:              models.GroupFructose,
		TestDurationDays:   3,
		WashoutDays:        3,
		PortionProgression: []string{"1 tsp honey", "2 tsp honey", "1 tbsp honey"},
		RecommendedFoods:   []string{"honey", "mango", "asparagus"},
	},
	models.GroupLactose: {
		Group:              models.GroupLactose,
		TestDurationDays:   3,
		WashoutDays:        3,
		PortionProgression: []string{"1/4 cup milk", "1/2 cup milk", "1 cup milk"},
		RecommendedFoods:   []string{"milk", "plain yogurt", "ricotta"},
	},
	models.GroupFructans: {
		Group:              models.GroupFructans,
		TestDurationDays:   3,
		WashoutDays:        3,
		PortionProgression: []string{"1 slice wheat bread", "2 slices wheat bread", "3 slices wheat bread"},
		RecommendedFoods:   []string{"wheat bread", "garlic", "onion"},
	},
	models.GroupGalactans: {
		Group:              models.GroupGalactans,
		TestDurationDays:   3,
		WashoutDays:        3,
		PortionProgression: []string{"1/4 cup chickpeas", "1/2 cup chickpeas", "3/4 cup chickpeas"},
		RecommendedFoods:   []string{"chickpeas", "lentils", "kidney beans"},
	},
	models.GroupPolyols: {
		Group:              models.GroupPolyols,
		TestDurationDays:   3,
		WashoutDays:        3,
		PortionProgression: []string{"2 dried apricots", "4 dried apricots", "6 dried apricots"},
		RecommendedFoods:   []string{"dried apricots", "avocado", "mushrooms"},
	},
}

// GetProtocol returns the dosing config for a group. Defined for every value of
// the taxonomy; an unrecognised string yields the zero protocol.
func GetProtocol(group string) ReintroductionProtocol {
	return protocols[strings.ToLower(group)]
}

// MaxSymptomSeverity reduces a step's symptom list to its worst bucket.
// No symptoms means none.
func MaxSymptomSeverity(step models.TestStep) utils.Severity {
	max := utils.SeverityNone
	for _, s := range step.Symptoms {
		if sev := utils.SeverityFromScore(s.Score); sev > max {
			max = sev
		}
	}
	return max
}

// CanProgressToNextGroup gates on the fixed threshold: mild or none passes,
// moderate or severe blocks.
func CanProgressToNextGroup(step models.TestStep) bool {
	return MaxSymptomSeverity(step) < utils.SeverityModerate
}

// DetermineTolerance scans steps in their given day order and keeps the longest
// contiguous prefix of passing days. The scan stops at the first failure and
// never resumes; a clean day after a failed one does not count.
func DetermineTolerance(steps []models.TestStep) *Tolerance {
	if len(steps) == 0 {
		return nil
	}

	proto := GetProtocol(steps[0].Group)
	tol := &Tolerance{Group: steps[0].Group}

	prefix := 0
	for _, st := range steps {
		if MaxSymptomSeverity(st) >= utils.SeverityModerate {
			break
		}
		prefix++
	}

	if prefix > 0 {
		tol.Tolerated = true
		idx := prefix - 1
		if idx >= len(proto.PortionProgression) {
			idx = len(proto.PortionProgression) - 1
		}
		if idx >= 0 {
			tol.MaxToleratedPortion = proto.PortionProgression[idx]
		}
	}
	return tol
}

// SuggestedPortion looks up the dose for a day. ok is false when the day falls
// outside [1, testDuration]: the caller gets no portion, not an error.
func SuggestedPortion(group string, dayNumber int) (string, bool) {
	proto := GetProtocol(group)
	if dayNumber < 1 || dayNumber > proto.TestDurationDays {
		return "", false
	}
	return proto.PortionProgression[dayNumber-1], true
}

// InWashoutPeriod reports whether a day count has run past the test itself.
func InWashoutPeriod(dayNumber, testDurationDays int) bool {
	return dayNumber > testDurationDays
}

// ValidateTestStep accumulates every independent problem with a step rather
// than stopping at the first.
func ValidateTestStep(step models.TestStep) ValidationResult {
	var errs []string

	if step.DayNumber < 1 {
		errs = append(errs, "day number must be at least 1")
	}
	if step.Phase != models.PhaseReintroduction {
		errs = append(errs, fmt.Sprintf("test steps can only be logged during the reintroduction phase (got %q)", step.Phase))
	}

	proto := GetProtocol(step.Group)
	if proto.TestDurationDays == 0 {
		errs = append(errs, fmt.Sprintf("unknown FODMAP group %q", step.Group))
	} else {
		found := false
		for _, f := range proto.RecommendedFoods {
			if strings.EqualFold(f, step.FoodItem) {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, fmt.Sprintf("%q is not a recommended test food for %s; use one of: %s",
				step.FoodItem, proto.Group, strings.Join(proto.RecommendedFoods, ", ")))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// GenerateRecommendations emits one line per FODMAP group present in the input,
// in order of first appearance. Deterministic for a fixed input.
func GenerateRecommendations(steps []models.TestStep) []string {
	byGroup := map[string][]models.TestStep{}
	var order []string
	for _, st := range steps {
		if _, seen := byGroup[st.Group]; !seen {
			order = append(order, st.Group)
		}
		byGroup[st.Group] = append(byGroup[st.Group], st)
	}

	var recs []string
	for _, g := range order {
		tol := DetermineTolerance(byGroup[g])
		if tol == nil {
			continue
		}
		if tol.Tolerated {
			recs = append(recs, fmt.Sprintf(
				"You tolerated %s up to %s — you can keep portions up to that size in your diet.",
				g, tol.MaxToleratedPortion))
		} else {
			recs = append(recs, fmt.Sprintf(
				"%s triggered symptoms at the first dose — keep avoiding this group for now and retest later.", g))
		}
	}
	return recs
}
