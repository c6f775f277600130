package llm

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"plan_advisor/src/model"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Ranker writes the comparative analysis of an eligible plan set
type Ranker struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

func NewRanker(ctx context.Context, cm einomodel.BaseChatModel) (*Ranker, error) {
	chain, err := newChain(ctx, newTemplate(rankSystem, rankUser), cm)
	if err != nil {
		return nil, err
	}
	return &Ranker{chain: chain}, nil
}

func (r *Ranker) Rank(ctx context.Context, slots model.ProfileSlots, plans model.EligibleSet) (string, error) {
	analysis, err := invoke(ctx, r.chain, map[string]any{
		"business_size":       sizeText(slots.BusinessSize),
		"location":            textOrUnknown(slots.Location),
		"coverage_preference": coverageText(slots.CoveragePreference),
		"plan_summaries":      formatPlanSummaries(plans),
	})
	if err != nil {
		return "", model.Unavailable("ranker", err)
	}
	if analysis == "" {
		return "", model.Unavailable("ranker", errors.New("empty analysis"))
	}
	return analysis, nil
}

// formatPlanSummaries lists plans by name so the prompt is stable for a given set
func formatPlanSummaries(plans model.EligibleSet) string {
	blocks := make([]string, 0, len(plans))
	for _, name := range plans.Names() {
		blocks = append(blocks, "=== "+name+" ===\n"+plans[name])
	}
	return strings.Join(blocks, "\n\n")
}

func sizeText(n *int) string {
	if n == nil {
		return "unknown"
	}
	return strconv.Itoa(*n)
}

func textOrUnknown(s *string) string {
	if s == nil {
		return "unknown"
	}
	return *s
}

func coverageText(c *model.CoveragePreference) string {
	if c == nil {
		return "unknown"
	}
	return string(*c)
}
