package conversation

import (
	"context"

	"plan_advisor/src/model"
)

// EntityExtractor pulls tagged spans out of free text
type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]model.ExtractedEntity, error)
}

// Summarizer condenses an ordered run of turns into a short text
type Summarizer interface {
	Summarize(ctx context.Context, turns []model.Turn) (string, error)
}

// FilterEntities keeps entities whose confidence is strictly above threshold.
// Out-of-range confidences are dropped regardless of threshold.
func FilterEntities(entities []model.ExtractedEntity, threshold float64) []model.ExtractedEntity {
	kept := make([]model.ExtractedEntity, 0, len(entities))
	for _, e := range entities {
		if e.Confidence < 0 || e.Confidence > 1 {
			continue
		}
		if e.Confidence > threshold {
			kept = append(kept, e)
		}
	}
	return kept
}
