package catalog

import (
	"slices"

	"plan_advisor/src/model"
)

// Criteria are the eligibility predicates derived from a profile.
// A nil field means the predicate is omitted.
type Criteria struct {
	SizeBuckets []string
	Location    *string
	NetworkType *string
}

// CriteriaFor maps whatever slots are filled into predicates
func CriteriaFor(slots model.ProfileSlots) Criteria {
	var c Criteria
	if slots.BusinessSize != nil {
		c.SizeBuckets = BusinessSizeBuckets(*slots.BusinessSize)
	}
	if slots.Location != nil {
		loc := *slots.Location
		c.Location = &loc
	}
	if slots.CoveragePreference != nil {
		network := string(*slots.CoveragePreference)
		c.NetworkType = &network
	}
	return c
}

// Matches evaluates the predicates against a single record
func (c Criteria) Matches(p model.PlanRecord) bool {
	if c.NetworkType != nil && p.NetworkType != *c.NetworkType {
		return false
	}
	if c.SizeBuckets != nil {
		ok := slices.Contains(p.BusinessSizeEligibility, model.AllSizes)
		for _, b := range c.SizeBuckets {
			if ok {
				break
			}
			ok = slices.Contains(p.BusinessSizeEligibility, b)
		}
		if !ok {
			return false
		}
	}
	if c.Location != nil {
		if !slices.Contains(p.LocationAvailability, *c.Location) &&
			!slices.Contains(p.LocationAvailability, model.AllStates) {
			return false
		}
	}
	return true
}
