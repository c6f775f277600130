package conversation

import (
	"strings"

	"plan_advisor/src/model"
)

// ContextStrategy renders conversation turns into prompt context
type ContextStrategy interface {
	BuildContext(turns []model.Turn) string
}

// ====================== Full history ======================

// FullHistory renders every retained turn
type FullHistory struct{}

func (FullHistory) BuildContext(turns []model.Turn) string {
	return FormatTurns(turns)
}

// ====================== Recent window ======================

// RecentWindow renders only the last MaxTurns turns. Query rewriting uses it.
type RecentWindow struct {
	MaxTurns int
}

func (s RecentWindow) BuildContext(turns []model.Turn) string {
	return FormatTurns(trimTail(turns, s.MaxTurns))
}

// FormatTurns renders turns as "Role: content" lines, oldest first.
// No turns renders to the empty string.
func FormatTurns(turns []model.Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.Role.Title())
		b.WriteString(": ")
		b.WriteString(t.Content)
	}
	return b.String()
}

// Helper function
func trimTail(turns []model.Turn, maxTurns int) []model.Turn {
	if maxTurns <= 0 || len(turns) <= maxTurns {
		return turns
	}
	return turns[len(turns)-maxTurns:]
}
