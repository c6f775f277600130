package llm

import (
	"context"
	"errors"
	"strings"

	"plan_advisor/src/model"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Summarizer condenses conversation turns with a chat model
type Summarizer struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

func NewSummarizer(ctx context.Context, cm einomodel.BaseChatModel) (*Summarizer, error) {
	chain, err := newChain(ctx, newTemplate(summarizeSystem, summarizeUser), cm)
	if err != nil {
		return nil, err
	}
	return &Summarizer{chain: chain}, nil
}

func (s *Summarizer) Summarize(ctx context.Context, turns []model.Turn) (string, error) {
	summary, err := invoke(ctx, s.chain, map[string]any{
		"conversation": renderTurns(turns),
	})
	if err != nil {
		return "", model.Unavailable("summarizer", err)
	}
	if summary == "" {
		return "", model.Unavailable("summarizer", errors.New("empty summary"))
	}
	return summary, nil
}

// renderTurns writes "role: content" lines
func renderTurns(turns []model.Turn) string {
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = string(t.Role) + ": " + t.Content
	}
	return strings.Join(lines, "\n")
}
