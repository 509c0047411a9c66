package domain

import (
	"context"
	"time"

	"github.com/asaskevich/govalidator"
)

// File is metadata for an uploaded attachment. The bytes live in object
// storage under StorageKey; only the reference is tenant-scoped data.
type File struct {
	ID         string    `json:"id"`
	ChannelID  string    `json:"channel_id"`
	MemberID   string    `json:"member_id"`
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	StorageKey string    `json:"storage_key"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks file fields before persistence.
func (f *File) Validate() error {
	if f.ID == "" {
		return NewValidationError("file id is required")
	}
	if f.ChannelID == "" {
		return NewValidationError("file channel_id is required")
	}
	if f.MemberID == "" {
		return NewValidationError("file member_id is required")
	}
	if !govalidator.IsByteLength(f.FileName, 1, 255) {
		return NewValidationError("file name must be 1-255 characters")
	}
	if f.FileSize < 0 {
		return NewValidationError("file size must not be negative")
	}
	if f.StorageKey == "" {
		return NewValidationError("file storage_key is required")
	}
	return nil
}

// ScanFile scans a file row from any scanner (row or rows).
func ScanFile(scanner interface {
	Scan(dest ...interface{}) error
}) (*File, error) {
	var f File
	err := scanner.Scan(
		&f.ID,
		&f.ChannelID,
		&f.MemberID,
		&f.FileName,
		&f.FileSize,
		&f.MimeType,
		&f.StorageKey,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// FileRepository manages file metadata inside a workspace schema.
type FileRepository interface {
	Create(ctx context.Context, workspace *Workspace, file *File) error
	GetByID(ctx context.Context, workspace *Workspace, id string) (*File, error)
	ListByChannel(ctx context.Context, workspace *Workspace, channelID string) ([]*File, error)
	Delete(ctx context.Context, workspace *Workspace, id string) error
}
