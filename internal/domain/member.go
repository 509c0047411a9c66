package domain

import (
	"context"
	"time"

	"github.com/asaskevich/govalidator"
)

// MemberRole is the workspace-local role of a member.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
	MemberRoleGuest  MemberRole = "guest"
)

// Member is the workspace-local identity of a global user. A given user has
// at most one active member row per workspace.
type Member struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	DisplayName string     `json:"display_name"`
	Role        MemberRole `json:"role"`
	IsActive    bool       `json:"is_active"`
	JoinedAt    time.Time  `json:"joined_at"`
}

// Validate checks member fields before persistence.
func (m *Member) Validate() error {
	if m.ID == "" {
		return NewValidationError("member id is required")
	}
	if m.UserID == "" {
		return NewValidationError("member user_id is required")
	}
	if !govalidator.IsByteLength(m.DisplayName, 0, 255) {
		return NewValidationError("member display_name must be at most 255 characters")
	}
	if !govalidator.IsIn(string(m.Role),
		string(MemberRoleOwner), string(MemberRoleAdmin), string(MemberRoleMember), string(MemberRoleGuest)) {
		return NewValidationError("invalid member role")
	}
	return nil
}

// ScanMember scans a member row from any scanner (row or rows).
func ScanMember(scanner interface {
	Scan(dest ...interface{}) error
}) (*Member, error) {
	var m Member
	err := scanner.Scan(
		&m.ID,
		&m.UserID,
		&m.DisplayName,
		&m.Role,
		&m.IsActive,
		&m.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MemberRepository manages member rows inside a workspace schema. Every
// method takes the resolved workspace explicitly; implementations derive the
// schema name from it on each call.
type MemberRepository interface {
	Add(ctx context.Context, workspace *Workspace, member *Member) error
	GetByID(ctx context.Context, workspace *Workspace, id string) (*Member, error)
	GetByUserID(ctx context.Context, workspace *Workspace, userID string) (*Member, error)
	List(ctx context.Context, workspace *Workspace) ([]*Member, error)
	Deactivate(ctx context.Context, workspace *Workspace, id string) error
}
