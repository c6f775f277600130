// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Compactions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plan_advisor",
		Name:      "compactions_total",
		Help:      "Conversation compaction passes run.",
	})

	BudgetExceeded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plan_advisor",
		Name:      "budget_exceeded_total",
		Help:      "Times compaction stopped with the history still over budget.",
	})

	EntitiesRetained = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plan_advisor",
		Name:      "entities_retained_total",
		Help:      "Extracted entities appended to session entity logs.",
	})

	CollaboratorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plan_advisor",
		Name:      "collaborator_failures_total",
		Help:      "Failed calls to external collaborators.",
	}, []string{"collaborator"})

	EligibilitySearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plan_advisor",
		Name:      "eligibility_searches_total",
		Help:      "Eligibility searches by outcome (matched, empty, error).",
	}, []string{"outcome"})
)

// Collaborator label values
const (
	EntityExtractor = "entity_extractor"
	Summarizer      = "summarizer"
	SlotFiller      = "slot_filler"
	Ranker          = "ranker"
	QueryRewriter   = "query_rewriter"
	Answerer        = "answerer"
	Retriever       = "retriever"
	Catalog         = "catalog"
)

// RecordFailure counts one failed call to the named collaborator
func RecordFailure(collaborator string) {
	CollaboratorFailures.WithLabelValues(collaborator).Inc()
}
