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

// Answerer replies to a knowledge question from retrieved passages
type Answerer struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

func NewAnswerer(ctx context.Context, cm einomodel.BaseChatModel) (*Answerer, error) {
	chain, err := newChain(ctx, newTemplate(answerSystem, answerUser), cm)
	if err != nil {
		return nil, err
	}
	return &Answerer{chain: chain}, nil
}

func (a *Answerer) Answer(ctx context.Context, pc model.PromptContext, question string, passages []string) (string, error) {
	retrieved := strings.Join(passages, "\n\n")
	if retrieved == "" {
		retrieved = "None"
	}

	answer, err := invoke(ctx, a.chain, map[string]any{
		"conversation_history": pc.History,
		"extracted_entities":   pc.Entities,
		"context":              retrieved,
		"user_query":           question,
	})
	if err != nil {
		return "", model.Unavailable("answerer", err)
	}
	if answer == "" {
		return "", model.Unavailable("answerer", errors.New("empty answer"))
	}
	return answer, nil
}
