package services

import (
	"sort"

	"github.com/titorm/fodmap-facil-sub001/models"

	"gorm.io/gorm"
)

// ContentCatalog is read-only access to the educational content library.
type ContentCatalog interface {
	All() ([]models.EducationalContent, error)
}

// ContentService ranks catalog items against a user state. The contract it
// keeps: at most maxItems results, no duplicate content ids, and identical
// output for identical input and catalog.
type ContentService struct {
	catalog ContentCatalog
}

func NewContentService(catalog ContentCatalog) *ContentService {
	return &ContentService{catalog: catalog}
}

// Ranking weights. Already-viewed items take a penalty big enough that any
// unviewed item with at least a phase or level match outranks them, so repeats
// only surface when the catalog has nothing fresh left.
const (
	phaseMatchWeight      = 40
	experienceMatchWeight = 25
	anxietyMatchWeight    = 20
	generalAnxietyWeight  = 5
	viewedPenalty         = 100
)

func (s *ContentService) SelectContent(state models.UserState, maxItems int) ([]models.EducationalContent, error) {
	if maxItems <= 0 {
		return nil, nil
	}

	items, err := s.catalog.All()
	if err != nil {
		return nil, err
	}

	viewed := make(map[string]struct{}, len(state.PreviouslyViewedIDs))
	for _, id := range state.PreviouslyViewedIDs {
		viewed[id] = struct{}{}
	}

	type scored struct {
		item  models.EducationalContent
		score int
	}

	seen := map[string]struct{}{}
	var ranked []scored
	for _, it := range items {
		if _, dup := seen[it.ContentID]; dup {
			continue
		}
		seen[it.ContentID] = struct{}{}

		score := 0
		if it.Phase == state.ProtocolPhase {
			score += phaseMatchWeight
		}
		if it.Difficulty == state.ExperienceLevel {
			score += experienceMatchWeight
		}
		switch it.AnxietyTag {
		case state.AnxietyLevel:
			score += anxietyMatchWeight
		case "":
			score += generalAnxietyWeight
		}
		if _, was := viewed[it.ContentID]; was {
			score -= viewedPenalty
		}
		ranked = append(ranked, scored{item: it, score: score})
	}

	// ContentID tiebreak keeps the ordering stable across calls
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].item.ContentID < ranked[j].item.ContentID
	})

	if len(ranked) > maxItems {
		ranked = ranked[:maxItems]
	}
	out := make([]models.EducationalContent, len(ranked))
	for i, r := range ranked {
		out[i] = r.item
	}
	return out, nil
}

// GormContentCatalog reads the catalog table.
type GormContentCatalog struct{ db *gorm.DB }

func NewGormContentCatalog(db *gorm.DB) *GormContentCatalog { return &GormContentCatalog{db: db} }

func (c *GormContentCatalog) All() ([]models.EducationalContent, error) {
	var items []models.EducationalContent
	err := c.db.Order("content_id ASC").Find(&items).Error
	return items, err
}
