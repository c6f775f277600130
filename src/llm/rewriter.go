package llm

import (
	"context"
	"strings"

	"plan_advisor/src/model"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const maxRewrittenQueries = 3

// QueryRewriter turns a conversational question into standalone search queries
type QueryRewriter struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

func NewQueryRewriter(ctx context.Context, cm einomodel.BaseChatModel) (*QueryRewriter, error) {
	chain, err := newChain(ctx, newTemplate(rewriteSystem, rewriteUser), cm)
	if err != nil {
		return nil, err
	}
	return &QueryRewriter{chain: chain}, nil
}

func (q *QueryRewriter) Rewrite(ctx context.Context, pc model.PromptContext, question string) (model.QueryAnalysis, error) {
	reply, err := invoke(ctx, q.chain, map[string]any{
		"conversation_history": pc.History,
		"extracted_entities":   pc.Entities,
		"user_query":           question,
	})
	if err != nil {
		return model.QueryAnalysis{}, model.Unavailable("query rewriter", err)
	}

	var analysis model.QueryAnalysis
	if err := decodeReply(reply, &analysis); err != nil {
		return model.QueryAnalysis{}, model.Unavailable("query rewriter", err)
	}

	if !analysis.QueryCatalog {
		analysis.Queries = nil
		return analysis, nil
	}
	queries := make([]string, 0, len(analysis.Queries))
	for _, query := range analysis.Queries {
		if query = strings.TrimSpace(query); query != "" {
			queries = append(queries, query)
		}
		if len(queries) == maxRewrittenQueries {
			break
		}
	}
	analysis.Queries = queries
	return analysis, nil
}
