package src

import (
	"testing"

	"plan_advisor/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.ConversationConfig.TokenBudget)
	assert.Equal(t, 0.2, cfg.ConversationConfig.SummarizeFraction)
	assert.Equal(t, 0.9, cfg.ConversationConfig.EntityThreshold)
	assert.Equal(t, model.SlotPolicyReplace, cfg.ConversationConfig.SlotPolicy)
	assert.Equal(t, "memory", cfg.StoreConfig.Backend)
	assert.Equal(t, "insurance_plans", cfg.CatalogConfig.Collection)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CONVERSATION_TOKEN_BUDGET", "1200")
	t.Setenv("CONVERSATION_SLOT_POLICY", "merge")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("STORE_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 1200, cfg.ConversationConfig.TokenBudget)
	assert.Equal(t, model.SlotPolicyMerge, cfg.ConversationConfig.SlotPolicy)
	assert.Equal(t, "redis://localhost:6379/0", cfg.StoreConfig.RedisURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero fraction", map[string]string{"CONVERSATION_SUMMARIZE_FRACTION": "0"}},
		{"threshold above one", map[string]string{"CONVERSATION_ENTITY_THRESHOLD": "1.5"}},
		{"unknown slot policy", map[string]string{"CONVERSATION_SLOT_POLICY": "append"}},
		{"redis without url", map[string]string{"STORE_BACKEND": "redis"}},
		{"mongo without uri", map[string]string{"CATALOG_BACKEND": "mongo"}},
		{"knowledge without dsn", map[string]string{"KNOWLEDGE_ENABLED": "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
