package session

import (
	"context"

	"plan_advisor/src/model"
)

// SlotFiller runs one plan-discovery exchange with the language model
type SlotFiller interface {
	FillSlots(ctx context.Context, current model.ProfileSlots, pc model.PromptContext, message string) (model.DiscoveryReply, error)
}

// EligibilityMatcher returns the plans a complete profile qualifies for
type EligibilityMatcher interface {
	Match(ctx context.Context, slots model.ProfileSlots) (model.EligibleSet, error)
}

// PlanRanker writes the analysis of an eligible set
type PlanRanker interface {
	Rank(ctx context.Context, slots model.ProfileSlots, plans model.EligibleSet) (string, error)
}

// QueryRewriter decides whether and how to search the knowledge base
type QueryRewriter interface {
	Rewrite(ctx context.Context, pc model.PromptContext, question string) (model.QueryAnalysis, error)
}

// Answerer replies to a knowledge question from retrieved passages
type Answerer interface {
	Answer(ctx context.Context, pc model.PromptContext, question string, passages []string) (string, error)
}
