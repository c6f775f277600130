package model

import (
	"errors"
	"fmt"
)

var (
	// ErrCollaboratorUnavailable marks a failed or timed-out call to the language model,
	// entity extractor, vector search or document store
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrSessionNotFound is returned for an unknown session id
	ErrSessionNotFound = errors.New("session not found")

	// ErrIncompleteProfile rejects eligibility matching before every slot is filled
	ErrIncompleteProfile = errors.New("incomplete business profile")

	// ErrBudgetExceeded signals compaction could not bring the history under its token budget.
	// The conversation keeps going in an over-budget state.
	ErrBudgetExceeded = errors.New("conversation token budget exceeded")
)

// Unavailable wraps a collaborator failure so callers can match ErrCollaboratorUnavailable
// while the underlying cause stays reachable
func Unavailable(collaborator string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", collaborator, ErrCollaboratorUnavailable, err)
}
