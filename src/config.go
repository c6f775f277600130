package src

import (
	"fmt"

	"plan_advisor/src/model"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogConfig          model.LogConfig          `envconfig:"LOG"`
	LLMConfig          model.LLMConfig          `envconfig:"LLM"`
	ConversationConfig model.ConversationConfig `envconfig:"CONVERSATION"`
	StoreConfig        model.StoreConfig        `envconfig:"STORE"`
	CatalogConfig      model.CatalogConfig      `envconfig:"CATALOG"`
	KnowledgeConfig    model.KnowledgeConfig    `envconfig:"KNOWLEDGE"`
	ServerConfig       model.ServerConfig       `envconfig:"SERVER"`
}

func LoadConfig() (*Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	if err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %v", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the values envconfig cannot check on its own
func (c *Config) Validate() error {
	conv := c.ConversationConfig
	if conv.TokenBudget <= 0 {
		return fmt.Errorf("CONVERSATION_TOKEN_BUDGET must be positive, got %d", conv.TokenBudget)
	}
	if conv.SummarizeFraction <= 0 || conv.SummarizeFraction > 1 {
		return fmt.Errorf("CONVERSATION_SUMMARIZE_FRACTION must be in (0,1], got %v", conv.SummarizeFraction)
	}
	if conv.EntityThreshold < 0 || conv.EntityThreshold > 1 {
		return fmt.Errorf("CONVERSATION_ENTITY_THRESHOLD must be in [0,1], got %v", conv.EntityThreshold)
	}
	if conv.MaxCompactionPasses <= 0 {
		return fmt.Errorf("CONVERSATION_MAX_COMPACTION_PASSES must be positive, got %d", conv.MaxCompactionPasses)
	}
	switch conv.SlotPolicy {
	case model.SlotPolicyReplace, model.SlotPolicyMerge:
	default:
		return fmt.Errorf("unknown CONVERSATION_SLOT_POLICY %q", conv.SlotPolicy)
	}
	switch c.StoreConfig.Backend {
	case "memory":
	case "redis":
		if c.StoreConfig.RedisURL == "" {
			return fmt.Errorf("STORE_REDIS_URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreConfig.Backend)
	}
	switch c.CatalogConfig.Backend {
	case "memory":
	case "mongo":
		if c.CatalogConfig.MongoURI == "" {
			return fmt.Errorf("CATALOG_MONGO_URI is required for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", c.CatalogConfig.Backend)
	}
	if c.KnowledgeConfig.Enabled && c.KnowledgeConfig.PostgresDSN == "" {
		return fmt.Errorf("KNOWLEDGE_POSTGRES_DSN is required when KNOWLEDGE_ENABLED is set")
	}
	return nil
}
