package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plan_advisor/src/conversation"
	"plan_advisor/src/logger"
	"plan_advisor/src/metrics"
	"plan_advisor/src/model"
	"plan_advisor/src/storage"
	"plan_advisor/src/token"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// rewriteWindow is how many recent turns the query rewriter sees
const rewriteWindow = 6

// Deps are the collaborators a Service calls. Extractor, Summarizer, Rewriter and
// Retriever may be nil; the others are required for the operations that use them.
type Deps struct {
	Store      storage.Store
	Meter      token.Meter
	Extractor  conversation.EntityExtractor
	Summarizer conversation.Summarizer
	SlotFiller SlotFiller
	Matcher    EligibilityMatcher
	Ranker     PlanRanker
	Rewriter   QueryRewriter
	Retriever  retriever.Retriever
	Answerer   Answerer
}

// Service runs the advisor operations. Calls for one session id are serialised;
// different ids proceed independently.
type Service struct {
	deps        Deps
	memory      conversation.Config
	policy      model.SlotPolicy
	entityLimit int
	locks       *keyedMutex
	log         zerolog.Logger
	now         func() time.Time
}

func NewService(cfg model.ConversationConfig, deps Deps) *Service {
	if deps.Meter == nil {
		deps.Meter = token.HeuristicMeter{}
	}
	policy := cfg.SlotPolicy
	if policy == "" {
		policy = model.SlotPolicyReplace
	}
	return &Service{
		deps:        deps,
		memory:      conversation.ConfigFrom(cfg),
		policy:      policy,
		entityLimit: cfg.RecentEntityLimit,
		locks:       newKeyedMutex(),
		log:         logger.With("session"),
		now:         time.Now,
	}
}

// Create starts an empty session and returns its id
func (s *Service) Create(ctx context.Context) (string, error) {
	now := s.now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		Memory:    conversation.State{Turns: []model.Turn{}, Entities: []model.ExtractedEntity{}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, sess); err != nil {
		return "", err
	}
	s.log.Info().Str("session_id", sess.ID).Msg("Session created")
	return sess.ID, nil
}

// Discover records a user message, asks the slot filler for the updated profile and
// records its reply. If the slot filler fails the user turn is kept, no assistant
// turn is recorded and the slots are unchanged.
func (s *Service) Discover(ctx context.Context, id, message string) (DiscoveryResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return DiscoveryResult{}, err
	}
	mem := s.restore(sess)

	// history excludes the new message; the slot filler gets it as the query
	pc := s.promptContext(mem)
	if err := s.record(ctx, mem, model.RoleUser, message); err != nil {
		return DiscoveryResult{}, err
	}

	reply, err := s.deps.SlotFiller.FillSlots(ctx, sess.Slots, pc, message)
	if err != nil {
		metrics.RecordFailure(metrics.SlotFiller)
		s.log.Error().Err(err).Str("session_id", id).Msg("Slot filling failed")
		if saveErr := s.persist(ctx, sess, mem); saveErr != nil {
			return DiscoveryResult{}, saveErr
		}
		return DiscoveryResult{}, errorAs(err, "slot filler")
	}

	sess.Slots = s.policy.Apply(sess.Slots, reply.Slots)
	if err := s.record(ctx, mem, model.RoleAssistant, reply.Reply); err != nil {
		return DiscoveryResult{}, err
	}
	if err := s.persist(ctx, sess, mem); err != nil {
		return DiscoveryResult{}, err
	}

	s.log.Info().
		Str("session_id", id).
		Int("filled_slots", sess.Slots.FilledCount()).
		Bool("is_complete", sess.Slots.IsComplete()).
		Msg("Discovery turn processed")

	return DiscoveryResult{
		SessionID:  id,
		Reply:      reply.Reply,
		Slots:      sess.Slots,
		IsComplete: sess.Slots.IsComplete(),
	}, nil
}

// Ask answers a general question from the knowledge base. Retrieval failures
// degrade to an answer without context; rewriter and answerer failures are returned
// and no assistant turn is recorded.
func (s *Service) Ask(ctx context.Context, id, question string) (AskResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return AskResult{}, err
	}
	mem := s.restore(sess)

	if err := s.record(ctx, mem, model.RoleUser, question); err != nil {
		return AskResult{}, err
	}

	var analysis model.QueryAnalysis
	if s.deps.Rewriter != nil {
		pc := model.PromptContext{
			History:  mem.BuildContext(conversation.RecentWindow{MaxTurns: rewriteWindow}),
			Entities: mem.FormatRecentEntities(s.entityLimit),
		}
		analysis, err = s.deps.Rewriter.Rewrite(ctx, pc, question)
		if err != nil {
			return AskResult{}, s.abandon(ctx, sess, mem, metrics.QueryRewriter, err)
		}
	}

	passages := s.retrieve(ctx, id, analysis.Queries)

	answer, err := s.deps.Answerer.Answer(ctx, s.promptContext(mem), question, passages)
	if err != nil {
		return AskResult{}, s.abandon(ctx, sess, mem, metrics.Answerer, err)
	}

	if err := s.record(ctx, mem, model.RoleAssistant, answer); err != nil {
		return AskResult{}, err
	}
	if err := s.persist(ctx, sess, mem); err != nil {
		return AskResult{}, err
	}

	return AskResult{SessionID: id, Answer: answer, Analysis: analysis, Passages: len(passages)}, nil
}

// retrieve collects passages for every query, skipping queries whose search fails
func (s *Service) retrieve(ctx context.Context, id string, queries []string) []string {
	if s.deps.Retriever == nil {
		return nil
	}
	var passages []string
	for _, q := range queries {
		docs, err := s.deps.Retriever.Retrieve(ctx, q)
		if err != nil {
			metrics.RecordFailure(metrics.Retriever)
			s.log.Warn().Err(err).Str("session_id", id).Str("query", q).Msg("Passage retrieval failed")
			continue
		}
		for _, d := range docs {
			if d != nil && d.Content != "" {
				passages = append(passages, d.Content)
			}
		}
	}
	return passages
}

// abandon saves the user turn after a failed collaborator call and wraps the error
func (s *Service) abandon(ctx context.Context, sess *Session, mem *conversation.Memory, collaborator string, err error) error {
	metrics.RecordFailure(collaborator)
	s.log.Error().Err(err).Str("session_id", sess.ID).Str("collaborator", collaborator).Msg("Collaborator call failed")
	if saveErr := s.persist(ctx, sess, mem); saveErr != nil {
		return saveErr
	}
	return errorAs(err, collaborator)
}

// Status reports the session's profile and memory counters
func (s *Service) Status(ctx context.Context, id string) (Status, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return Status{}, err
	}
	mem := s.restore(sess)

	return Status{
		SessionID:      id,
		Slots:          sess.Slots,
		IsComplete:     sess.Slots.IsComplete(),
		TurnCount:      len(sess.Memory.Turns),
		EntityCount:    len(sess.Memory.Entities),
		TokenCount:     mem.TokenCount(),
		RecentEntities: mem.RecentEntityTexts(s.entityLimit),
		CreatedAt:      sess.CreatedAt,
		UpdatedAt:      sess.UpdatedAt,
	}, nil
}

// Recommend runs the eligibility search and ranks the result. An empty search, or a
// catalog failure flagged Degraded, yields the explicit no-plans recommendation.
func (s *Service) Recommend(ctx context.Context, id string) (model.Recommendation, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return model.Recommendation{}, err
	}
	if !sess.Slots.IsComplete() {
		return model.Recommendation{}, model.ErrIncompleteProfile
	}

	plans, err := s.deps.Matcher.Match(ctx, sess.Slots)
	degraded := false
	if err != nil {
		if errors.Is(err, model.ErrIncompleteProfile) {
			return model.Recommendation{}, err
		}
		s.log.Warn().Err(err).Str("session_id", id).Msg("Eligibility search degraded to no plans")
		degraded = true
		plans = model.EligibleSet{}
	}

	if len(plans) == 0 {
		return model.Recommendation{
			Plans:           model.EligibleSet{},
			Analysis:        model.NoEligiblePlansMessage,
			NoEligiblePlans: true,
			Degraded:        degraded,
		}, nil
	}

	analysis, err := s.deps.Ranker.Rank(ctx, sess.Slots, plans)
	if err != nil {
		metrics.RecordFailure(metrics.Ranker)
		s.log.Error().Err(err).Str("session_id", id).Msg("Plan ranking failed")
		return model.Recommendation{}, errorAs(err, "ranker")
	}

	s.log.Info().Str("session_id", id).Strs("plans", plans.Names()).Msg("Recommendation ready")
	return model.Recommendation{Plans: plans, Analysis: analysis}, nil
}

// Delete removes the session; deleting an unknown id succeeds
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.deps.Store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	s.log.Info().Str("session_id", id).Msg("Session deleted")
	return nil
}

// ====================== Private Methods ======================

func (s *Service) load(ctx context.Context, id string) (*Session, error) {
	data, err := s.deps.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return decode(data)
}

func (s *Service) save(ctx context.Context, sess *Session) error {
	data, err := encode(sess)
	if err != nil {
		return err
	}
	if err := s.deps.Store.Put(ctx, sess.ID, data); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *Service) persist(ctx context.Context, sess *Session, mem *conversation.Memory) error {
	sess.Memory = mem.State()
	sess.UpdatedAt = s.now().UTC()
	return s.save(ctx, sess)
}

func (s *Service) restore(sess *Session) *conversation.Memory {
	mem := conversation.NewMemory(s.memory, s.deps.Meter, s.deps.Extractor, s.deps.Summarizer)
	mem.Restore(sess.Memory)
	return mem
}

// record appends a turn; an over-budget history is logged by the memory and tolerated
func (s *Service) record(ctx context.Context, mem *conversation.Memory, role model.Role, content string) error {
	err := mem.RecordTurn(ctx, role, content)
	if err != nil && !errors.Is(err, model.ErrBudgetExceeded) {
		return err
	}
	return nil
}

func (s *Service) promptContext(mem *conversation.Memory) model.PromptContext {
	return model.PromptContext{
		History:  mem.FormatForPrompt(),
		Entities: mem.FormatRecentEntities(s.entityLimit),
	}
}

// errorAs makes sure a collaborator failure matches model.ErrCollaboratorUnavailable
func errorAs(err error, collaborator string) error {
	if errors.Is(err, model.ErrCollaboratorUnavailable) {
		return err
	}
	return model.Unavailable(collaborator, err)
}
