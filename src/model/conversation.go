package model

import "strings"

// Role identifies the speaker of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known speaker roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Title returns the role with its first letter upper-cased ("User", "Assistant", "System")
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ----------------------------------------------------
// ================ Conversation ================

// Turn is one message in a conversation. Turns are never edited once appended.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ExtractedEntity is a tagged span pulled out of compacted conversation text
type ExtractedEntity struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// SummaryPrefix marks the system turn that replaces compacted history
const SummaryPrefix = "[CONVERSATION SUMMARY] "
