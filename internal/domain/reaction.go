package domain

import (
	"context"
	"time"
)

// Reaction is an emoji attached to a message by a member, unique on
// (message_id, member_id, emoji).
type Reaction struct {
	ID        string    `json:"id"`
	MessageID string    `json:"message_id"`
	MemberID  string    `json:"member_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks reaction fields before persistence.
func (r *Reaction) Validate() error {
	if r.ID == "" {
		return NewValidationError("reaction id is required")
	}
	if r.MessageID == "" {
		return NewValidationError("reaction message_id is required")
	}
	if r.MemberID == "" {
		return NewValidationError("reaction member_id is required")
	}
	if r.Emoji == "" {
		return NewValidationError("reaction emoji is required")
	}
	if len(r.Emoji) > 32 {
		return NewValidationError("reaction emoji must be at most 32 characters")
	}
	return nil
}

// ReactionRepository manages reactions inside a workspace schema.
type ReactionRepository interface {
	// Toggle adds the reaction if absent and removes it if already present.
	// Returns true if the reaction exists after the call.
	Toggle(ctx context.Context, workspace *Workspace, reaction *Reaction) (bool, error)
	ListByMessage(ctx context.Context, workspace *Workspace, messageID string) ([]*Reaction, error)
}
