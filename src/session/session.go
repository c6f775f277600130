// Package session ties conversation memory, profile slots and the eligibility
// search together behind per-session operations.
package session

import (
	"fmt"
	"time"

	"plan_advisor/src/conversation"
	"plan_advisor/src/model"

	"github.com/bytedance/sonic"
)

// Session is the persisted state of one advisor conversation
type Session struct {
	ID        string             `json:"session_id"`
	Slots     model.ProfileSlots `json:"plan_discovery_answers"`
	Memory    conversation.State `json:"memory"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func encode(s *Session) ([]byte, error) {
	data, err := sonic.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session %s: %w", s.ID, err)
	}
	return data, nil
}

func decode(data []byte) (*Session, error) {
	var s Session
	if err := sonic.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// ----------------------------------------------------
// ================ Results ================

// DiscoveryResult is returned for each plan-discovery message
type DiscoveryResult struct {
	SessionID  string             `json:"session_id"`
	Reply      string             `json:"response"`
	Slots      model.ProfileSlots `json:"plan_discovery_answers"`
	IsComplete bool               `json:"is_complete"`
}

// AskResult is returned for each knowledge question
type AskResult struct {
	SessionID string              `json:"session_id"`
	Answer    string              `json:"response"`
	Analysis  model.QueryAnalysis `json:"query_analysis"`
	Passages  int                 `json:"passages"`
}

// Status describes a session without changing it
type Status struct {
	SessionID      string             `json:"session_id"`
	Slots          model.ProfileSlots `json:"plan_discovery_answers"`
	IsComplete     bool               `json:"is_complete"`
	TurnCount      int                `json:"turn_count"`
	EntityCount    int                `json:"entity_count"`
	TokenCount     int                `json:"token_count"`
	RecentEntities []string           `json:"recent_entities"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}
