// Package branches manages clinic branches and their SMS templates.
package branches

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

var (
	ErrBranchNotFound = errors.New("branch not found")
	ErrInvalidBranch  = errors.New("invalid branch")
)

// Branch is a physical location. WorkingHours is a JSON object of day to
// hours, kept verbatim so key order survives.
type Branch struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Address      string          `json:"address,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	WorkingHours json.RawMessage `json:"workingHours,omitempty"`
	SmsTemplate  string          `json:"smsTemplate,omitempty"`
	Region       string          `json:"region,omitempty"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type Input struct {
	Name         string          `json:"name" validate:"required,max=255"`
	Address      string          `json:"address" validate:"omitempty,max=500"`
	Phone        string          `json:"phone" validate:"omitempty,max=32"`
	WorkingHours json.RawMessage `json:"workingHours"`
	SmsTemplate  string          `json:"smsTemplate" validate:"omitempty,max=1000"`
	Region       string          `json:"region" validate:"omitempty,max=100"`
	IsActive     *bool           `json:"isActive"`
}

func FromRow(row sqlc.Branch) Branch {
	b := Branch{
		ID:          db.UUIDString(row.ID),
		Name:        row.Name,
		Address:     db.TextValue(row.Address),
		Phone:       db.TextValue(row.Phone),
		SmsTemplate: db.TextValue(row.SmsTemplate),
		Region:      db.TextValue(row.Region),
		IsActive:    row.IsActive,
		CreatedAt:   db.TimeFromPg(row.CreatedAt),
		UpdatedAt:   db.TimeFromPg(row.UpdatedAt),
	}
	if len(row.WorkingHours) > 0 {
		b.WorkingHours = json.RawMessage(row.WorkingHours)
	}
	return b
}

type Store interface {
	ListBranches(ctx context.Context) ([]sqlc.Branch, error)
	GetBranchByID(ctx context.Context, id pgtype.UUID) (sqlc.Branch, error)
	CreateBranch(ctx context.Context, arg sqlc.CreateBranchParams) (sqlc.Branch, error)
	UpdateBranch(ctx context.Context, arg sqlc.UpdateBranchParams) (sqlc.Branch, error)
	DeleteBranch(ctx context.Context, id pgtype.UUID) (int64, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(log *slog.Logger, store Store) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, logger: log.With(slog.String("service", "branches"))}
}

func (s *Service) List(ctx context.Context) ([]Branch, error) {
	rows, err := s.store.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	out := make([]Branch, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, branchID string) (Branch, error) {
	id, err := db.ParseUUID(branchID)
	if err != nil {
		return Branch{}, ErrBranchNotFound
	}
	row, err := s.store.GetBranchByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Branch{}, ErrBranchNotFound
	}
	if err != nil {
		return Branch{}, fmt.Errorf("get branch: %w", err)
	}
	return FromRow(row), nil
}

func (s *Service) Create(ctx context.Context, input Input) (Branch, error) {
	hours, err := normalizeHours(input.WorkingHours)
	if err != nil {
		return Branch{}, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Branch{}, fmt.Errorf("%w: name is required", ErrInvalidBranch)
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	row, err := s.store.CreateBranch(ctx, sqlc.CreateBranchParams{
		Name:         name,
		Address:      db.Text(input.Address),
		Phone:        db.Text(input.Phone),
		WorkingHours: hours,
		SmsTemplate:  db.Text(input.SmsTemplate),
		Region:       db.Text(input.Region),
		IsActive:     active,
	})
	if err != nil {
		return Branch{}, fmt.Errorf("create branch: %w", err)
	}
	return FromRow(row), nil
}

// Update replaces every field. An omitted isActive keeps the current value.
func (s *Service) Update(ctx context.Context, branchID string, input Input) (Branch, error) {
	current, err := s.Get(ctx, branchID)
	if err != nil {
		return Branch{}, err
	}
	hours, err := normalizeHours(input.WorkingHours)
	if err != nil {
		return Branch{}, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Branch{}, fmt.Errorf("%w: name is required", ErrInvalidBranch)
	}
	active := current.IsActive
	if input.IsActive != nil {
		active = *input.IsActive
	}
	id, _ := db.ParseUUID(current.ID)
	row, err := s.store.UpdateBranch(ctx, sqlc.UpdateBranchParams{
		ID:           id,
		Name:         name,
		Address:      db.Text(input.Address),
		Phone:        db.Text(input.Phone),
		WorkingHours: hours,
		SmsTemplate:  db.Text(input.SmsTemplate),
		Region:       db.Text(input.Region),
		IsActive:     active,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Branch{}, ErrBranchNotFound
	}
	if err != nil {
		return Branch{}, fmt.Errorf("update branch: %w", err)
	}
	return FromRow(row), nil
}

func (s *Service) Delete(ctx context.Context, branchID string) error {
	id, err := db.ParseUUID(branchID)
	if err != nil {
		return ErrBranchNotFound
	}
	n, err := s.store.DeleteBranch(ctx, id)
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if n == 0 {
		return ErrBranchNotFound
	}
	return nil
}

// normalizeHours accepts a JSON object or nothing.
func normalizeHours(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []byte("{}"), nil
	}
	if trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: working hours must be a JSON object", ErrInvalidBranch)
	}
	return trimmed, nil
}

// FormatHours renders working hours as "day: hours" pairs in stored order.
func FormatHours(raw []byte) string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return ""
	}
	var parts []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return strings.Join(parts, ", ")
		}
		key, _ := keyTok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return strings.Join(parts, ", ")
		}
		parts = append(parts, fmt.Sprintf("%s: %v", key, value))
	}
	return strings.Join(parts, ", ")
}
