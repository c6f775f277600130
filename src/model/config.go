package model

import "time"

// ----------------------------------------------------
// ================ Config ================

// LogConfig holds logger settings
type LogConfig struct {
	Level      string `envconfig:"LEVEL" default:"info"`
	Format     string `envconfig:"FORMAT" default:"json"`
	Output     string `envconfig:"OUTPUT" default:"stdout"`
	FilePath   string `envconfig:"FILE_PATH" default:"logs/advisor.log"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"rfc3339"`
}

// LLMConfig selects the chat-model provider and its connection settings
type LLMConfig struct {
	Provider    string        `envconfig:"PROVIDER" default:"openai"`
	Model       string        `envconfig:"MODEL" default:"gpt-4o-mini"`
	RankModel   string        `envconfig:"RANK_MODEL"`
	APIKey      string        `envconfig:"API_KEY"`
	BaseURL     string        `envconfig:"BASE_URL"`
	MaxTokens   int           `envconfig:"MAX_TOKENS" default:"1500"`
	Temperature float64       `envconfig:"TEMPERATURE" default:"0.1"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"60s"`

	BreakerMaxFailures uint32        `envconfig:"BREAKER_MAX_FAILURES" default:"3"`
	BreakerTimeout     time.Duration `envconfig:"BREAKER_TIMEOUT" default:"30s"`
}

// ConversationConfig bounds the retained chat history of a session
type ConversationConfig struct {
	TokenBudget         int        `envconfig:"TOKEN_BUDGET" default:"300"`
	SummarizeFraction   float64    `envconfig:"SUMMARIZE_FRACTION" default:"0.2"`
	MaxCompactionPasses int        `envconfig:"MAX_COMPACTION_PASSES" default:"16"`
	EntityThreshold     float64    `envconfig:"ENTITY_THRESHOLD" default:"0.9"`
	RecentEntityLimit   int        `envconfig:"RECENT_ENTITY_LIMIT" default:"10"`
	TokenMeter          string     `envconfig:"TOKEN_METER" default:"heuristic"`
	TokenizerModel      string     `envconfig:"TOKENIZER_MODEL" default:"gpt-4"`
	SlotPolicy          SlotPolicy `envconfig:"SLOT_POLICY" default:"replace"`
}

// StoreConfig selects the session key-value backend
type StoreConfig struct {
	Backend  string        `envconfig:"BACKEND" default:"memory"`
	RedisURL string        `envconfig:"REDIS_URL"`
	TTL      time.Duration `envconfig:"TTL" default:"60m"`
}

// CatalogConfig selects the plan catalog backend
type CatalogConfig struct {
	Backend    string `envconfig:"BACKEND" default:"memory"`
	SeedFile   string `envconfig:"SEED_FILE" default:"data/plans.yaml"`
	MongoURI   string `envconfig:"MONGO_URI"`
	Database   string `envconfig:"DATABASE" default:"insurance"`
	Collection string `envconfig:"COLLECTION" default:"insurance_plans"`
}

// KnowledgeConfig configures the passage retriever used for general questions
type KnowledgeConfig struct {
	Enabled        bool   `envconfig:"ENABLED" default:"false"`
	PostgresDSN    string `envconfig:"POSTGRES_DSN"`
	Table          string `envconfig:"TABLE" default:"knowledge_chunks"`
	OllamaURL      string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"nomic-embed-text"`
	TopK           int    `envconfig:"TOP_K" default:"5"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr         string        `envconfig:"ADDR" default:":8000"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"120s"`
}
