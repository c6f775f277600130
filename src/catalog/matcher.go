// Package catalog maps a business profile to plan-eligibility predicates and runs
// them against the plan catalog.
package catalog

import (
	"context"

	"plan_advisor/src/logger"
	"plan_advisor/src/metrics"
	"plan_advisor/src/model"

	"github.com/rs/zerolog"
)

// Catalog returns the plan records satisfying every predicate in c
type Catalog interface {
	Find(ctx context.Context, c Criteria) ([]model.PlanRecord, error)
}

// Matcher runs eligibility searches. It is safe for concurrent use when the
// underlying catalog is.
type Matcher struct {
	catalog Catalog
	log     zerolog.Logger
}

func NewMatcher(catalog Catalog) *Matcher {
	return &Matcher{catalog: catalog, log: logger.With("catalog")}
}

// Match requires a complete profile and returns the eligible plans.
// See Search for the failure contract.
func (m *Matcher) Match(ctx context.Context, slots model.ProfileSlots) (model.EligibleSet, error) {
	if !slots.IsComplete() {
		return nil, model.ErrIncompleteProfile
	}
	return m.Search(ctx, slots)
}

// Search tolerates a partial profile by omitting the predicates of empty slots.
// No match is an empty set and a nil error. A catalog failure is logged and
// returns an empty set together with an error wrapping model.ErrCollaboratorUnavailable.
func (m *Matcher) Search(ctx context.Context, slots model.ProfileSlots) (model.EligibleSet, error) {
	criteria := CriteriaFor(slots)

	records, err := m.catalog.Find(ctx, criteria)
	if err != nil {
		metrics.RecordFailure(metrics.Catalog)
		metrics.EligibilitySearches.WithLabelValues("error").Inc()
		m.log.Error().Err(err).Msg("Plan catalog query failed")
		return model.EligibleSet{}, model.Unavailable("plan catalog", err)
	}

	plans := shape(records)

	outcome := "matched"
	if len(plans) == 0 {
		outcome = "empty"
	}
	metrics.EligibilitySearches.WithLabelValues(outcome).Inc()
	m.log.Info().
		Strs("size_buckets", criteria.SizeBuckets).
		Int("documents", len(records)).
		Strs("plans", plans.Names()).
		Msg("Eligibility search complete")

	return plans, nil
}

// shape keys records by plan type. Records without a real plan type or a summary
// are dropped; later duplicates overwrite earlier ones.
func shape(records []model.PlanRecord) model.EligibleSet {
	plans := model.EligibleSet{}
	for _, r := range records {
		if r.PlanType == "" || r.PlanType == model.UnknownPlanType || r.Summary == "" {
			continue
		}
		plans[r.PlanType] = r.Summary
	}
	return plans
}
