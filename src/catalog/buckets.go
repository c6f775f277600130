package catalog

import "plan_advisor/src/model"

// sizeBucket is an inclusive employee-count range; max 0 means unbounded
type sizeBucket struct {
	label    string
	min, max int
}

// Buckets overlap on purpose: a 30-person business is both "2-50" and "2-99".
var sizeBuckets = []sizeBucket{
	{"2-50", 2, 50},
	{"2-99", 2, 99},
	{"51-99", 51, 99},
	{"100-499", 100, 499},
	{"500-2,999", 500, 2999},
	{"3,000+", 3000, 0},
}

// BusinessSizeBuckets returns every eligibility label an employee count qualifies for.
// "All sizes" is always last.
func BusinessSizeBuckets(employees int) []string {
	labels := make([]string, 0, 4)
	for _, b := range sizeBuckets {
		if employees < b.min {
			continue
		}
		if b.max != 0 && employees > b.max {
			continue
		}
		labels = append(labels, b.label)
	}
	return append(labels, model.AllSizes)
}
