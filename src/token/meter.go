// Package token estimates the language-model context cost of conversation text.
package token

import (
	"fmt"

	"plan_advisor/src/model"
)

// Meter estimates the token cost of a block of text. Implementations are stateless
// from the caller's point of view and safe for concurrent use.
type Meter interface {
	Count(text string) int
}

// HeuristicMeter approximates tokens as four characters each, rounded up.
// Close enough for budget comparisons, not for billing.
type HeuristicMeter struct{}

func (HeuristicMeter) Count(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// CountTurns sums the cost of every turn's content, summary turns included
func CountTurns(m Meter, turns []model.Turn) int {
	total := 0
	for _, t := range turns {
		total += m.Count(t.Content)
	}
	return total
}

// New returns the meter named by kind ("heuristic" or "tiktoken")
func New(kind, tokenizerModel string) (Meter, error) {
	switch kind {
	case "", "heuristic":
		return HeuristicMeter{}, nil
	case "tiktoken":
		return NewTiktokenMeter(tokenizerModel)
	default:
		return nil, fmt.Errorf("unknown token meter %q", kind)
	}
}
