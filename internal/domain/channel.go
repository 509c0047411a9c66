package domain

import (
	"context"
	"time"

	"github.com/asaskevich/govalidator"
)

// Channel is a conversation stream inside a workspace. Channel names are
// unique within the workspace schema.
type Channel struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPrivate   bool      `json:"is_private"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks channel fields before persistence.
func (c *Channel) Validate() error {
	if c.ID == "" {
		return NewValidationError("channel id is required")
	}
	if !govalidator.IsByteLength(c.Name, 1, 80) {
		return NewValidationError("channel name must be 1-80 characters")
	}
	if c.CreatedBy == "" {
		return NewValidationError("channel created_by is required")
	}
	return nil
}

// ScanChannel scans a channel row from any scanner (row or rows).
func ScanChannel(scanner interface {
	Scan(dest ...interface{}) error
}) (*Channel, error) {
	var c Channel
	err := scanner.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.IsPrivate,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ChannelMember joins channels and members, unique on (channel_id, member_id).
type ChannelMember struct {
	ChannelID string    `json:"channel_id"`
	MemberID  string    `json:"member_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

// ChannelRepository manages channels and channel membership inside a
// workspace schema.
type ChannelRepository interface {
	Create(ctx context.Context, workspace *Workspace, channel *Channel) error
	GetByID(ctx context.Context, workspace *Workspace, id string) (*Channel, error)
	List(ctx context.Context, workspace *Workspace) ([]*Channel, error)
	Update(ctx context.Context, workspace *Workspace, channel *Channel) error
	Delete(ctx context.Context, workspace *Workspace, id string) error

	AddMember(ctx context.Context, workspace *Workspace, channelID, memberID string) error
	RemoveMember(ctx context.Context, workspace *Workspace, channelID, memberID string) error
	ListMembers(ctx context.Context, workspace *Workspace, channelID string) ([]*ChannelMember, error)
	IsMember(ctx context.Context, workspace *Workspace, channelID, memberID string) (bool, error)
}
