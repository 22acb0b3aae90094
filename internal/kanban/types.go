package kanban

import (
	"errors"
	"time"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

var (
	ErrStageNotFound = errors.New("kanban stage not found")
	ErrSlugTaken     = errors.New("kanban stage slug already exists")
	ErrInvalidStage  = errors.New("invalid kanban stage")
	ErrInvalidStatus = errors.New("invalid status")
)

const defaultColor = "#6b7280"

// Stage is one column of the status board. Slug is the value stored in client.status.
type Stage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Color     string    `json:"color"`
	Position  int32     `json:"position"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HistoryEntry records one status change. FromStatus is empty for rows
// imported without a previous status.
type HistoryEntry struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"clientId"`
	FromStatus      string    `json:"fromStatus,omitempty"`
	ToStatus        string    `json:"toStatus"`
	ChangedBy       string    `json:"changedBy,omitempty"`
	DurationSeconds int64     `json:"durationSeconds"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type CreateStageInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Slug     string `json:"slug" validate:"omitempty,max=100"`
	Color    string `json:"color" validate:"omitempty,max=20"`
	Position *int32 `json:"position" validate:"omitempty,min=0"`
	IsActive *bool  `json:"isActive"`
}

type UpdateStageInput struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Slug     *string `json:"slug" validate:"omitempty,max=100"`
	Color    *string `json:"color" validate:"omitempty,max=20"`
	IsActive *bool   `json:"isActive"`
}

type TransitionInput struct {
	Status string `json:"status" validate:"required,max=100"`
	Notes  string `json:"notes" validate:"omitempty,max=2000"`
}

func StageFromRow(row sqlc.KanbanStatus) Stage {
	return Stage{
		ID:        db.UUIDString(row.ID),
		Name:      row.Name,
		Slug:      row.Slug,
		Color:     row.Color,
		Position:  row.Position,
		IsActive:  row.IsActive,
		CreatedAt: db.TimeFromPg(row.CreatedAt),
		UpdatedAt: db.TimeFromPg(row.UpdatedAt),
	}
}

func HistoryFromRow(row sqlc.ClientStatusHistory) HistoryEntry {
	return HistoryEntry{
		ID:              db.UUIDString(row.ID),
		ClientID:        db.UUIDString(row.ClientID),
		FromStatus:      db.TextValue(row.FromStatus),
		ToStatus:        row.ToStatus,
		ChangedBy:       db.UUIDString(row.ChangedBy),
		DurationSeconds: row.DurationSeconds,
		Notes:           db.TextValue(row.Notes),
		CreatedAt:       db.TimeFromPg(row.CreatedAt),
	}
}
