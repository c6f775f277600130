package llm

import (
	"context"

	"plan_advisor/src/model"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// EntityExtractor asks a chat model for entity tuples and parses them.
// Confidence filtering is left to the caller.
type EntityExtractor struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	parser *TupleParser
}

func NewEntityExtractor(ctx context.Context, cm einomodel.BaseChatModel) (*EntityExtractor, error) {
	chain, err := newChain(ctx, newTemplate(entitySystem, entityUser), cm)
	if err != nil {
		return nil, err
	}
	return &EntityExtractor{chain: chain, parser: NewTupleParser()}, nil
}

func (e *EntityExtractor) Extract(ctx context.Context, text string) ([]model.ExtractedEntity, error) {
	reply, err := invoke(ctx, e.chain, map[string]any{
		"text": text,
		"TD":   e.parser.TupleDelimiter,
		"RD":   e.parser.RecordDelimiter,
		"CD":   e.parser.CompletionDelimiter,
	})
	if err != nil {
		return nil, model.Unavailable("entity extractor", err)
	}
	return e.parser.ParseEntities(reply), nil
}
