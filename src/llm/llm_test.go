package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"plan_advisor/src/model"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatModel replays canned replies and records the prompts it was sent
type fakeChatModel struct {
	replies []string
	err     error
	inputs  [][]*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	reply := ""
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	return schema.AssistantMessage(reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeChatModel) lastPrompt() string {
	if len(f.inputs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, m := range f.inputs[len(f.inputs)-1] {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func TestSummarizer(t *testing.T) {
	ctx := context.Background()
	cm := &fakeChatModel{replies: []string{"  The user runs a 30 person firm.  "}}
	s, err := NewSummarizer(ctx, cm)
	require.NoError(t, err)

	summary, err := s.Summarize(ctx, []model.Turn{
		{Role: model.RoleUser, Content: "We have 30 staff"},
		{Role: model.RoleAssistant, Content: "Noted"},
	})
	require.NoError(t, err)
	assert.Equal(t, "The user runs a 30 person firm.", summary)
	assert.Contains(t, cm.lastPrompt(), "user: We have 30 staff\nassistant: Noted")
}

func TestSummarizerFailures(t *testing.T) {
	ctx := context.Background()

	s, err := NewSummarizer(ctx, &fakeChatModel{err: errors.New("boom")})
	require.NoError(t, err)
	_, err = s.Summarize(ctx, []model.Turn{{Role: model.RoleUser, Content: "hi"}})
	assert.ErrorIs(t, err, model.ErrCollaboratorUnavailable)

	s, err = NewSummarizer(ctx, &fakeChatModel{replies: []string{"   "}})
	require.NoError(t, err)
	_, err = s.Summarize(ctx, []model.Turn{{Role: model.RoleUser, Content: "hi"}})
	assert.ErrorIs(t, err, model.ErrCollaboratorUnavailable)
}

func TestEntityExtractor(t *testing.T) {
	ctx := context.Background()
	cm := &fakeChatModel{replies: []string{
		"(entity<||>Austin<||>LOC<||>0.99)\n##\n(entity<||>40<||>CARDINAL<||>0.97)\n<|COMPLETE|>",
	}}
	e, err := NewEntityExtractor(ctx, cm)
	require.NoError(t, err)

	entities, err := e.Extract(ctx, "user: 40 people in Austin")
	require.NoError(t, err)
	assert.Equal(t, []model.ExtractedEntity{
		{Text: "Austin", Label: "LOC", Confidence: 0.99},
		{Text: "40", Label: "CARDINAL", Confidence: 0.97},
	}, entities)

	prompt := cm.lastPrompt()
	assert.Contains(t, prompt, "(entity<||>40<||>CARDINAL<||>0.97)")
	assert.Contains(t, prompt, "text: user: 40 people in Austin")
}

func TestSlotFiller(t *testing.T) {
	ctx := context.Background()
	cm := &fakeChatModel{replies: []string{
		"```json\n{\"plan_discovery_answers\": {\"business_size\": 30, \"location\": \" TX \", \"coverage_preference\": \"national\"}, \"response\": \"Thanks! Let me find plans.\"}\n```",
	}}
	f, err := NewSlotFiller(ctx, cm)
	require.NoError(t, err)

	size := 30
	reply, err := f.FillSlots(ctx, model.ProfileSlots{BusinessSize: &size}, model.PromptContext{History: "User: hi"}, "Texas, national please")
	require.NoError(t, err)

	assert.Equal(t, "Thanks! Let me find plans.", reply.Reply)
	require.True(t, reply.Slots.IsComplete())
	assert.Equal(t, 30, *reply.Slots.BusinessSize)
	assert.Equal(t, "TX", *reply.Slots.Location)
	assert.Equal(t, model.CoverageNational, *reply.Slots.CoveragePreference)

	prompt := cm.lastPrompt()
	assert.Contains(t, prompt, `"business_size":30`)
	assert.Contains(t, prompt, "Latest user message: Texas, national please")
	assert.Contains(t, prompt, `{"plan_discovery_answers": {"business_size": 30`)
}

func TestSlotFillerNormalisesAnswers(t *testing.T) {
	ctx := context.Background()
	cm := &fakeChatModel{replies: []string{
		`Sure. {"plan_discovery_answers": {"business_size": "3,000+", "location": "", "coverage_preference": "regional"}, "response": "Where are you located?"}`,
	}}
	f, err := NewSlotFiller(ctx, cm)
	require.NoError(t, err)

	reply, err := f.FillSlots(ctx, model.ProfileSlots{}, model.PromptContext{}, "we are big")
	require.NoError(t, err)
	require.NotNil(t, reply.Slots.BusinessSize)
	assert.Equal(t, 3000, *reply.Slots.BusinessSize)
	assert.Nil(t, reply.Slots.Location)
	assert.Nil(t, reply.Slots.CoveragePreference)
}

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tx", "TX"},
		{" Tx ", "TX"},
		{"Texas", "TX"},
		{"new  YORK", "NY"},
		{"District of Columbia", "DC"},
		{"CA", "CA"},
		{"Austin, TX", "Austin, TX"},
		{"t1", "t1"},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeLocation(tt.in), "input %q", tt.in)
	}
}

func TestSlotFillerNormalisesStateName(t *testing.T) {
	ctx := context.Background()
	cm := &fakeChatModel{replies: []string{
		`{"plan_discovery_answers": {"business_size": null, "location": "texas", "coverage_preference": null}, "response": "How many employees?"}`,
	}}
	f, err := NewSlotFiller(ctx, cm)
	require.NoError(t, err)

	reply, err := f.FillSlots(ctx, model.ProfileSlots{}, model.PromptContext{}, "we are in texas")
	require.NoError(t, err)
	require.NotNil(t, reply.Slots.Location)
	assert.Equal(t, "TX", *reply.Slots.Location)
}

func TestSlotFillerFailures(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cm   *fakeChatModel
	}{
		{"model error", &fakeChatModel{err: errors.New("timeout")}},
		{"not json", &fakeChatModel{replies: []string{"I could not help"}}},
		{"missing response", &fakeChatModel{replies: []string{`{"plan_discovery_answers": {}}`}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewSlotFiller(ctx, tt.cm)
			require.NoError(t, err)
			_, err = f.FillSlots(ctx, model.ProfileSlots{}, model.PromptContext{}, "hi")
			assert.ErrorIs(t, err, model.ErrCollaboratorUnavailable)
		})
	}
}

func TestEmployeeCount(t *testing.T) {
	assert.Equal(t, 45, *employeeCount(float64(45)))
	assert.Equal(t, 40, *employeeCount("about 40 people"))
	assert.Equal(t, 2, *employeeCount("2-50"))
	assert.Nil(t, employeeCount(nil))
	assert.Nil(t, employeeCount(float64(0)))
	assert.Nil(t, employeeCount("many"))
	assert.Nil(t, employeeCount(true))
}

func TestRanker(t *testing.T) {
	ctx := context.Background()
	cm := &fakeChatModel{replies: []string{"PPO first, then HMO."}}
	r, err := NewRanker(ctx, cm)
	require.NoError(t, err)

	size, loc, pref := 30, "CA", model.CoverageLocal
	analysis, err := r.Rank(ctx,
		model.ProfileSlots{BusinessSize: &size, Location: &loc, CoveragePreference: &pref},
		model.EligibleSet{"PPO": "broad network", "HMO": "low cost"},
	)
	require.NoError(t, err)
	assert.Equal(t, "PPO first, then HMO.", analysis)

	prompt := cm.lastPrompt()
	assert.Contains(t, prompt, "Business size: 30 employees")
	assert.Contains(t, prompt, "Coverage preference: Local")
	assert.Contains(t, prompt, "=== HMO ===\nlow cost\n\n=== PPO ===\nbroad network")
}

func TestQueryRewriter(t *testing.T) {
	ctx := context.Background()
	cm := &fakeChatModel{replies: []string{
		`{"query_catalog": true, "clarify": false, "queries": ["a", " ", "b", "c", "d"]}`,
		`{"query_catalog": false, "clarify": false, "queries": ["ignored"]}`,
	}}
	q, err := NewQueryRewriter(ctx, cm)
	require.NoError(t, err)

	analysis, err := q.Rewrite(ctx, model.PromptContext{History: "", Entities: "None"}, "what is a PPO?")
	require.NoError(t, err)
	assert.True(t, analysis.QueryCatalog)
	assert.Equal(t, []string{"a", "b", "c"}, analysis.Queries)
	assert.Contains(t, cm.lastPrompt(), "Known entities: None")

	analysis, err = q.Rewrite(ctx, model.PromptContext{}, "hello")
	require.NoError(t, err)
	assert.False(t, analysis.QueryCatalog)
	assert.Empty(t, analysis.Queries)
}

func TestAnswerer(t *testing.T) {
	ctx := context.Background()
	cm := &fakeChatModel{replies: []string{"A PPO lets you see any provider."}}
	a, err := NewAnswerer(ctx, cm)
	require.NoError(t, err)

	answer, err := a.Answer(ctx, model.PromptContext{}, "what is a PPO?", nil)
	require.NoError(t, err)
	assert.Equal(t, "A PPO lets you see any provider.", answer)
	assert.Contains(t, cm.lastPrompt(), "Retrieved context:\nNone")
}

func TestGuardedModelOpensAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	inner := &fakeChatModel{err: errors.New("503")}
	g := NewGuardedModel(inner, "test", model.LLMConfig{
		Timeout:            time.Second,
		BreakerMaxFailures: 2,
		BreakerTimeout:     time.Minute,
	})

	for i := 0; i < 2; i++ {
		_, err := g.Generate(ctx, []*schema.Message{schema.UserMessage("hi")})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, "open", g.State())

	_, err := g.Generate(ctx, []*schema.Message{schema.UserMessage("hi")})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Len(t, inner.inputs, 2, "open breaker does not call the model")
}

func TestGuardedModelPassesThrough(t *testing.T) {
	g := NewGuardedModel(&fakeChatModel{replies: []string{"ok"}}, "test", model.LLMConfig{})
	msg, err := g.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "ok", msg.Content)
	assert.Equal(t, "closed", g.State())
}
