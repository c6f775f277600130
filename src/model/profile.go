package model

import "strings"

// CoveragePreference is the caller's choice of provider network scope
type CoveragePreference string

const (
	CoverageNational CoveragePreference = "National"
	CoverageLocal    CoveragePreference = "Local"
)

// ParseCoveragePreference normalises free-form input to a known preference.
// Unknown values return false.
func ParseCoveragePreference(s string) (CoveragePreference, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "national":
		return CoverageNational, true
	case "local":
		return CoverageLocal, true
	}
	return "", false
}

// ProfileSlots is the partially filled business profile collected during plan discovery.
// BusinessSize holds the employee count.
type ProfileSlots struct {
	BusinessSize       *int                `json:"business_size"`
	Location           *string             `json:"location"`
	CoveragePreference *CoveragePreference `json:"coverage_preference"`
}

// IsComplete reports whether every slot has been filled
func (p ProfileSlots) IsComplete() bool {
	return p.BusinessSize != nil && p.Location != nil && p.CoveragePreference != nil
}

// FilledCount returns how many of the three slots are set
func (p ProfileSlots) FilledCount() int {
	n := 0
	if p.BusinessSize != nil {
		n++
	}
	if p.Location != nil {
		n++
	}
	if p.CoveragePreference != nil {
		n++
	}
	return n
}

// Merge overlays the non-nil fields of next onto p
func (p ProfileSlots) Merge(next ProfileSlots) ProfileSlots {
	merged := p
	if next.BusinessSize != nil {
		merged.BusinessSize = next.BusinessSize
	}
	if next.Location != nil {
		merged.Location = next.Location
	}
	if next.CoveragePreference != nil {
		merged.CoveragePreference = next.CoveragePreference
	}
	return merged
}

// SlotPolicy controls how a slot-fill result is applied to the stored profile
type SlotPolicy string

const (
	// SlotPolicyReplace stores the slot filler's output as-is, even when fields regress to null
	SlotPolicyReplace SlotPolicy = "replace"
	// SlotPolicyMerge keeps previously collected fields the slot filler left null
	SlotPolicyMerge SlotPolicy = "merge"
)

// Apply combines current and incoming slots according to the policy
func (s SlotPolicy) Apply(current, incoming ProfileSlots) ProfileSlots {
	if s == SlotPolicyMerge {
		return current.Merge(incoming)
	}
	return incoming
}
