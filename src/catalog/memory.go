package catalog

import (
	"context"
	"fmt"
	"os"

	"plan_advisor/src/model"

	"gopkg.in/yaml.v3"
)

// MemoryCatalog is a read-only catalog held in process, in load order
type MemoryCatalog struct {
	plans []model.PlanRecord
}

func NewMemoryCatalog(plans []model.PlanRecord) *MemoryCatalog {
	return &MemoryCatalog{plans: append([]model.PlanRecord{}, plans...)}
}

func (c *MemoryCatalog) Find(_ context.Context, criteria Criteria) ([]model.PlanRecord, error) {
	var found []model.PlanRecord
	for _, p := range c.plans {
		if criteria.Matches(p) {
			found = append(found, p)
		}
	}
	return found, nil
}

type seedFile struct {
	Plans []model.PlanRecord `yaml:"plans"`
}

// LoadSeed reads plan records from a YAML file with a top-level "plans" list
func LoadSeed(path string) ([]model.PlanRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog seed: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog seed %s: %w", path, err)
	}
	return seed.Plans, nil
}
