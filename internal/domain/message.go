package domain

import (
	"context"
	"time"

	"github.com/asaskevich/govalidator"
)

// MessageType distinguishes plain text from system notices and file posts.
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
	MessageTypeFile   MessageType = "file"
)

// Message is a channel post. ThreadID points at the parent message for
// thread replies; soft deletion keeps the row with deleted_at set.
type Message struct {
	ID        string      `json:"id"`
	ChannelID string      `json:"channel_id"`
	MemberID  string      `json:"member_id"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	ThreadID  *string     `json:"thread_id,omitempty"`
	IsEdited  bool        `json:"is_edited"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	DeletedAt *time.Time  `json:"deleted_at,omitempty"`
}

// Validate checks message fields before persistence.
func (m *Message) Validate() error {
	if m.ID == "" {
		return NewValidationError("message id is required")
	}
	if m.ChannelID == "" {
		return NewValidationError("message channel_id is required")
	}
	if m.MemberID == "" {
		return NewValidationError("message member_id is required")
	}
	if m.Content == "" && m.Type == MessageTypeText {
		return NewValidationError("message content is required")
	}
	if !govalidator.IsIn(string(m.Type),
		string(MessageTypeText), string(MessageTypeSystem), string(MessageTypeFile)) {
		return NewValidationError("invalid message type")
	}
	return nil
}

// ScanMessage scans a message row from any scanner (row or rows).
func ScanMessage(scanner interface {
	Scan(dest ...interface{}) error
}) (*Message, error) {
	var m Message
	err := scanner.Scan(
		&m.ID,
		&m.ChannelID,
		&m.MemberID,
		&m.Content,
		&m.Type,
		&m.ThreadID,
		&m.IsEdited,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MessageCursor is a keyset pagination cursor over (created_at, id).
type MessageCursor struct {
	CreatedAt time.Time
	ID        string
}

// MessageRepository manages messages inside a workspace schema.
type MessageRepository interface {
	Create(ctx context.Context, workspace *Workspace, message *Message) error
	GetByID(ctx context.Context, workspace *Workspace, id string) (*Message, error)
	Update(ctx context.Context, workspace *Workspace, id, content string) error
	Delete(ctx context.Context, workspace *Workspace, id string) error
	ListByChannel(ctx context.Context, workspace *Workspace, channelID string, cursor *MessageCursor, limit int) ([]*Message, error)
	ListThread(ctx context.Context, workspace *Workspace, threadID string) ([]*Message, error)
}
