package clients

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

// InitialStatus is the pipeline stage every new client starts in.
const InitialStatus = "new"

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrInvalidClient   = errors.New("invalid client")
	ErrAlreadyMerged   = errors.New("client already merged or invalid")
	ErrSelfMerge       = errors.New("cannot merge a client into itself")
	ErrInvalidClientID = errors.New("invalid client id")
)

// Client is a person the center is in contact with, across every platform.
type Client struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	PhoneNumber string         `json:"phoneNumber,omitempty"`
	Email       string         `json:"email,omitempty"`
	Source      string         `json:"source"`
	BranchID    string         `json:"branchId,omitempty"`
	Status      string         `json:"status"`
	Tags        []string       `json:"tags"`
	Notes       string         `json:"notes,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	MergedFrom  []string       `json:"mergedFrom,omitempty"`
	Channels    []Channel      `json:"channels,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Channel is one platform identity owned by a client.
type Channel struct {
	ID         string    `json:"id"`
	Platform   string    `json:"platform"`
	UserID     string    `json:"userId"`
	Username   string    `json:"username,omitempty"`
	ProfileURL string    `json:"profileUrl,omitempty"`
	IsPrimary  bool      `json:"isPrimary"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListFilter narrows List. Empty fields match everything.
type ListFilter struct {
	Search   string
	Status   string
	BranchID string
	Source   string
}

// CreateInput holds the fields accepted when staff add a client by hand.
type CreateInput struct {
	Name        string         `json:"name" validate:"required,max=255"`
	PhoneNumber string         `json:"phoneNumber" validate:"omitempty,max=32"`
	Email       string         `json:"email" validate:"omitempty,email"`
	Source      string         `json:"source"`
	BranchID    string         `json:"branchId" validate:"omitempty,uuid"`
	Tags        []string       `json:"tags"`
	Notes       string         `json:"notes"`
	Metadata    map[string]any `json:"metadata"`
}

// UpdateInput is a partial update; nil fields keep their stored value.
type UpdateInput struct {
	Name        *string        `json:"name" validate:"omitempty,max=255"`
	PhoneNumber *string        `json:"phoneNumber" validate:"omitempty,max=32"`
	Email       *string        `json:"email" validate:"omitempty,email"`
	BranchID    *string        `json:"branchId" validate:"omitempty,uuid"`
	Tags        []string       `json:"tags"`
	Notes       *string        `json:"notes"`
	Metadata    map[string]any `json:"metadata"`
}

// FromRow converts a stored client row.
func FromRow(row sqlc.Client) Client {
	merged := make([]string, 0, len(row.MergedFrom))
	for _, id := range row.MergedFrom {
		merged = append(merged, db.UUIDString(id))
	}
	tags := row.Tags
	if tags == nil {
		tags = []string{}
	}
	return Client{
		ID:          db.UUIDString(row.ID),
		Name:        db.TextValue(row.Name),
		PhoneNumber: db.TextValue(row.PhoneNumber),
		Email:       db.TextValue(row.Email),
		Source:      row.Source,
		BranchID:    db.UUIDString(row.BranchID),
		Status:      row.Status,
		Tags:        tags,
		Notes:       db.TextValue(row.Notes),
		Metadata:    decodeMetadata(row.Metadata),
		MergedFrom:  merged,
		CreatedAt:   db.TimeFromPg(row.CreatedAt),
		UpdatedAt:   db.TimeFromPg(row.UpdatedAt),
	}
}

// ChannelFromRow converts a stored channel row.
func ChannelFromRow(row sqlc.ClientChannel) Channel {
	return Channel{
		ID:         db.UUIDString(row.ID),
		Platform:   row.Platform,
		UserID:     row.UserID,
		Username:   db.TextValue(row.Username),
		ProfileURL: db.TextValue(row.ProfileUrl),
		IsPrimary:  row.IsPrimary,
		CreatedAt:  db.TimeFromPg(row.CreatedAt),
	}
}

func decodeMetadata(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || len(out) == 0 {
		return nil
	}
	return out
}

// EncodeMetadata marshals metadata, storing an empty object for nil maps.
func EncodeMetadata(meta map[string]any) ([]byte, error) {
	if meta == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(meta)
}
