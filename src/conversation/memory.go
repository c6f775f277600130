// Package conversation keeps a session's chat history inside a token budget by
// summarising its oldest turns while preserving the entities they mention.
package conversation

import (
	"context"
	"fmt"
	"strings"

	"plan_advisor/src/logger"
	"plan_advisor/src/metrics"
	"plan_advisor/src/model"
	"plan_advisor/src/token"

	"github.com/rs/zerolog"
)

// Config bounds a Memory
type Config struct {
	TokenBudget       int
	SummarizeFraction float64
	// MaxPasses caps compaction passes per EnforceBudget call
	MaxPasses       int
	EntityThreshold float64
}

// ConfigFrom copies the memory settings out of the process configuration
func ConfigFrom(c model.ConversationConfig) Config {
	return Config{
		TokenBudget:       c.TokenBudget,
		SummarizeFraction: c.SummarizeFraction,
		MaxPasses:         c.MaxCompactionPasses,
		EntityThreshold:   c.EntityThreshold,
	}
}

// State is the persisted form of a Memory
type State struct {
	Turns    []model.Turn            `json:"turns"`
	Entities []model.ExtractedEntity `json:"entities"`
}

// Memory owns the ordered turn log and the append-only entity log of one session.
// It is not safe for concurrent use; callers serialise access per session.
type Memory struct {
	config     Config
	meter      token.Meter
	extractor  EntityExtractor
	summarizer Summarizer
	log        zerolog.Logger

	turns    []model.Turn
	entities []model.ExtractedEntity
}

// NewMemory creates an empty memory. A nil extractor skips entity extraction and a
// nil summarizer always produces the fallback summary.
func NewMemory(config Config, meter token.Meter, extractor EntityExtractor, summarizer Summarizer) *Memory {
	if meter == nil {
		meter = token.HeuristicMeter{}
	}
	if config.MaxPasses <= 0 {
		config.MaxPasses = 16
	}
	return &Memory{
		config:     config,
		meter:      meter,
		extractor:  extractor,
		summarizer: summarizer,
		log:        logger.With("conversation"),
		turns:      []model.Turn{},
		entities:   []model.ExtractedEntity{},
	}
}

// Restore replaces the memory contents with a persisted state
func (m *Memory) Restore(state State) {
	m.turns = append([]model.Turn{}, state.Turns...)
	m.entities = append([]model.ExtractedEntity{}, state.Entities...)
}

// State returns a copy of the current contents
func (m *Memory) State() State {
	return State{
		Turns:    m.Turns(),
		Entities: m.Entities(),
	}
}

// Turns returns a copy of the turn log, oldest first
func (m *Memory) Turns() []model.Turn {
	return append([]model.Turn{}, m.turns...)
}

// Entities returns a copy of the entity log in extraction order
func (m *Memory) Entities() []model.ExtractedEntity {
	return append([]model.ExtractedEntity{}, m.entities...)
}

// TokenCount is recomputed on every call
func (m *Memory) TokenCount() int {
	return token.CountTurns(m.meter, m.turns)
}

// RecordTurn appends a turn and then enforces the token budget.
// The only error besides an invalid role is model.ErrBudgetExceeded, which leaves
// the memory usable in an over-budget state.
func (m *Memory) RecordTurn(ctx context.Context, role model.Role, content string) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}
	m.turns = append(m.turns, model.Turn{Role: role, Content: content})
	return m.EnforceBudget(ctx)
}

// EnforceBudget compacts the oldest turns until the history fits the budget.
// It stops with model.ErrBudgetExceeded when a pass achieves no reduction, when
// fewer than two turns remain, or after MaxPasses passes.
func (m *Memory) EnforceBudget(ctx context.Context) error {
	for pass := 0; ; pass++ {
		before := m.TokenCount()
		if before <= m.config.TokenBudget {
			return nil
		}
		if len(m.turns) < 2 || pass >= m.config.MaxPasses {
			return m.budgetExceeded(before, pass)
		}

		m.compact(ctx)

		if m.TokenCount() >= before {
			return m.budgetExceeded(m.TokenCount(), pass+1)
		}
	}
}

func (m *Memory) budgetExceeded(tokens, passes int) error {
	metrics.BudgetExceeded.Inc()
	m.log.Warn().
		Int("tokens", tokens).
		Int("budget", m.config.TokenBudget).
		Int("passes", passes).
		Int("turns", len(m.turns)).
		Msg("Conversation still over token budget after compaction")
	return fmt.Errorf("%w: %d tokens exceeds budget of %d", model.ErrBudgetExceeded, tokens, m.config.TokenBudget)
}

// compact folds the oldest k turns into a single summary turn
func (m *Memory) compact(ctx context.Context) {
	k := int(float64(len(m.turns)) * m.config.SummarizeFraction)
	if k < 2 {
		k = 2
	}
	if k > len(m.turns) {
		k = len(m.turns)
	}

	oldest := append([]model.Turn{}, m.turns[:k]...)
	rest := m.turns[k:]

	m.extractEntities(ctx, oldest)
	summary := m.summarize(ctx, oldest)

	compacted := make([]model.Turn, 0, len(rest)+1)
	compacted = append(compacted, model.Turn{Role: model.RoleSystem, Content: model.SummaryPrefix + summary})
	compacted = append(compacted, rest...)
	m.turns = compacted

	metrics.Compactions.Inc()
	m.log.Debug().
		Int("summarized_turns", k).
		Int("remaining_turns", len(m.turns)).
		Msg("Compacted conversation history")
}

// extractEntities appends the confident entities found in turns. On failure nothing is appended.
func (m *Memory) extractEntities(ctx context.Context, turns []model.Turn) {
	if m.extractor == nil {
		return
	}
	found, err := m.extractor.Extract(ctx, extractionText(turns))
	if err != nil {
		metrics.RecordFailure(metrics.EntityExtractor)
		m.log.Warn().Err(err).Msg("Entity extraction failed, entity log unchanged")
		return
	}
	kept := FilterEntities(found, m.config.EntityThreshold)
	m.entities = append(m.entities, kept...)
	metrics.EntitiesRetained.Add(float64(len(kept)))
}

func (m *Memory) summarize(ctx context.Context, turns []model.Turn) string {
	fallback := fmt.Sprintf("Summary of %d messages (summary failed)", len(turns))
	if m.summarizer == nil {
		return fallback
	}
	summary, err := m.summarizer.Summarize(ctx, turns)
	if err != nil {
		metrics.RecordFailure(metrics.Summarizer)
		m.log.Warn().Err(err).Int("turns", len(turns)).Msg("Summarization failed, using placeholder")
		return fallback
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return fallback
	}
	return summary
}

// extractionText renders turns as "role: content" lines
func extractionText(turns []model.Turn) string {
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = string(t.Role) + ": " + t.Content
	}
	return strings.Join(lines, "\n")
}

// FormatForPrompt renders the whole history as "Role: content" lines
func (m *Memory) FormatForPrompt() string {
	return FormatTurns(m.turns)
}

// BuildContext renders the history through a context strategy
func (m *Memory) BuildContext(strategy ContextStrategy) string {
	return strategy.BuildContext(m.turns)
}

// RecentEntityTexts returns the text of the last limit entities, oldest first.
// A non-positive limit returns all of them.
func (m *Memory) RecentEntityTexts(limit int) []string {
	recent := m.entities
	if limit > 0 && len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}
	texts := make([]string, len(recent))
	for i, e := range recent {
		texts[i] = e.Text
	}
	return texts
}

// FormatRecentEntities joins RecentEntityTexts for prompts, or "None" when the log is empty
func (m *Memory) FormatRecentEntities(limit int) string {
	texts := m.RecentEntityTexts(limit)
	if len(texts) == 0 {
		return "None"
	}
	return strings.Join(texts, ", ")
}
