package model

import "sort"

// Catalog label that matches every business size
const AllSizes = "All sizes"

// Catalog label that matches every location
const AllStates = "All states"

// UnknownPlanType is the placeholder label for catalog records without a plan type
const UnknownPlanType = "Unknown Plan"

// PlanRecord is a plan document read from the catalog
type PlanRecord struct {
	PlanName                string   `json:"plan_name" bson:"Plan Name" yaml:"plan_name"`
	PlanType                string   `json:"plan_type" bson:"Plan Type" yaml:"plan_type"`
	NetworkType             string   `json:"network_type" bson:"Network Type" yaml:"network_type"`
	BusinessSizeEligibility []string `json:"business_size_eligibility" bson:"Business Size Eligibility" yaml:"business_size_eligibility"`
	LocationAvailability    []string `json:"location_availability" bson:"location_availability" yaml:"location_availability"`
	Summary                 string   `json:"summary" bson:"summary" yaml:"summary"`
}

// EligibleSet maps a plan type label to its summary text
type EligibleSet map[string]string

// Names returns the plan labels in sorted order
func (e EligibleSet) Names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Recommendation is the outcome of the eligibility search plus ranking
type Recommendation struct {
	Plans           EligibleSet `json:"plans"`
	Analysis        string      `json:"analysis"`
	NoEligiblePlans bool        `json:"no_eligible_plans"`
	// Degraded is set when the catalog could not be queried and the empty result is a fallback
	Degraded bool `json:"degraded"`
}

// NoEligiblePlansMessage is returned to the user when no catalog plan matches
const NoEligiblePlansMessage = "No eligible plans found for your business profile. Please contact us directly for assistance."
