package llm

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"plan_advisor/src/model"

	"github.com/bytedance/sonic"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// SlotFiller runs one plan-discovery turn: it reads the current answers and history
// and returns the model's complete replacement of the profile slots with a reply.
type SlotFiller struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

func NewSlotFiller(ctx context.Context, cm einomodel.BaseChatModel) (*SlotFiller, error) {
	chain, err := newChain(ctx, newTemplate(slotFillSystem, slotFillUser), cm)
	if err != nil {
		return nil, err
	}
	return &SlotFiller{chain: chain}, nil
}

type slotFillReply struct {
	Answers struct {
		BusinessSize       any     `json:"business_size"`
		Location           *string `json:"location"`
		CoveragePreference *string `json:"coverage_preference"`
	} `json:"plan_discovery_answers"`
	Response string `json:"response"`
}

func (f *SlotFiller) FillSlots(ctx context.Context, current model.ProfileSlots, pc model.PromptContext, message string) (model.DiscoveryReply, error) {
	currentJSON, err := sonic.MarshalString(current)
	if err != nil {
		return model.DiscoveryReply{}, err
	}

	reply, err := invoke(ctx, f.chain, map[string]any{
		"current_answers":      currentJSON,
		"conversation_history": pc.History,
		"user_query":           message,
	})
	if err != nil {
		return model.DiscoveryReply{}, model.Unavailable("slot filler", err)
	}

	var parsed slotFillReply
	if err := decodeReply(reply, &parsed); err != nil {
		return model.DiscoveryReply{}, model.Unavailable("slot filler", err)
	}
	if strings.TrimSpace(parsed.Response) == "" {
		return model.DiscoveryReply{}, model.Unavailable("slot filler", errors.New("reply has no response text"))
	}

	var slots model.ProfileSlots
	slots.BusinessSize = employeeCount(parsed.Answers.BusinessSize)
	if parsed.Answers.Location != nil {
		if loc := normalizeLocation(*parsed.Answers.Location); loc != "" {
			slots.Location = &loc
		}
	}
	if parsed.Answers.CoveragePreference != nil {
		if pref, ok := model.ParseCoveragePreference(*parsed.Answers.CoveragePreference); ok {
			slots.CoveragePreference = &pref
		}
	}

	return model.DiscoveryReply{Slots: slots, Reply: strings.TrimSpace(parsed.Response)}, nil
}

// employeeCount accepts a JSON number or text such as "3,000+" or "about 40 people".
// Anything without a positive count is treated as unknown.
func employeeCount(v any) *int {
	var n int
	switch val := v.(type) {
	case float64:
		if val < 1 || val > math.MaxInt32 {
			return nil
		}
		n = int(val)
	case string:
		digits := firstNumber(strings.ReplaceAll(val, ",", ""))
		parsed, err := strconv.Atoi(digits)
		if err != nil || parsed < 1 {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

func firstNumber(s string) string {
	start := strings.IndexAny(s, "0123456789")
	if start == -1 {
		return ""
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[start:end]
}
