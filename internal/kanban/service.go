// Package kanban moves clients between pipeline stages and keeps the stage
// board itself.
package kanban

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/clients"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

type Store interface {
	GetClientByID(ctx context.Context, id pgtype.UUID) (sqlc.Client, error)
	ListStatusHistory(ctx context.Context, clientID pgtype.UUID) ([]sqlc.ClientStatusHistory, error)
	ListActiveKanbanStatuses(ctx context.Context) ([]sqlc.KanbanStatus, error)
	GetKanbanStatusByID(ctx context.Context, id pgtype.UUID) (sqlc.KanbanStatus, error)
	NextKanbanPosition(ctx context.Context) (int32, error)
	CreateKanbanStatus(ctx context.Context, arg sqlc.CreateKanbanStatusParams) (sqlc.KanbanStatus, error)
	UpdateKanbanStatus(ctx context.Context, arg sqlc.UpdateKanbanStatusParams) (sqlc.KanbanStatus, error)
	DeleteKanbanStatus(ctx context.Context, id pgtype.UUID) (int64, error)
}

// TxStore is the query subset used inside transitions and reorders.
type TxStore interface {
	GetClientForUpdate(ctx context.Context, id pgtype.UUID) (sqlc.Client, error)
	GetLatestStatusHistory(ctx context.Context, clientID pgtype.UUID) (sqlc.ClientStatusHistory, error)
	CreateStatusHistory(ctx context.Context, arg sqlc.CreateStatusHistoryParams) (sqlc.ClientStatusHistory, error)
	UpdateClientStatus(ctx context.Context, arg sqlc.UpdateClientStatusParams) (sqlc.Client, error)
	CountActiveKanbanStatuses(ctx context.Context) (int64, error)
	KanbanSlugIsActive(ctx context.Context, slug string) (bool, error)
	UpdateKanbanStatusPosition(ctx context.Context, arg sqlc.UpdateKanbanStatusPositionParams) (int64, error)
	ListActiveKanbanStatuses(ctx context.Context) ([]sqlc.KanbanStatus, error)
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(TxStore) error) error
}

type Service struct {
	store  Store
	tx     Transactor
	now    func() time.Time
	logger *slog.Logger
}

func NewService(log *slog.Logger, store Store, tx Transactor) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:  store,
		tx:     tx,
		now:    time.Now,
		logger: log.With(slog.String("service", "kanban")),
	}
}

// Transition moves a client to newStatus and appends a history row. The
// client row stays locked until both writes commit.
func (s *Service) Transition(ctx context.Context, clientID, newStatus, changedBy, notes string) (clients.Client, error) {
	id, err := db.ParseUUID(clientID)
	if err != nil {
		return clients.Client{}, clients.ErrInvalidClientID
	}
	staff, err := db.OptionalUUID(changedBy)
	if err != nil {
		return clients.Client{}, fmt.Errorf("%w: changed by", ErrInvalidStatus)
	}
	status := strings.TrimSpace(newStatus)
	if status == "" {
		return clients.Client{}, fmt.Errorf("%w: status is required", ErrInvalidStatus)
	}

	var updated sqlc.Client
	var from string
	err = s.tx.WithTx(ctx, func(q TxStore) error {
		if err := validateStatus(ctx, q, status); err != nil {
			return err
		}
		current, err := q.GetClientForUpdate(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return clients.ErrClientNotFound
		}
		if err != nil {
			return fmt.Errorf("lock client: %w", err)
		}
		from = current.Status

		now := s.now()
		var duration int64
		latest, err := q.GetLatestStatusHistory(ctx, id)
		switch {
		case err == nil:
			duration = clients.Dwell(latest, now)
		case errors.Is(err, pgx.ErrNoRows):
		default:
			return fmt.Errorf("load latest history: %w", err)
		}

		if _, err := q.CreateStatusHistory(ctx, sqlc.CreateStatusHistoryParams{
			ClientID:        id,
			FromStatus:      db.Text(from),
			ToStatus:        status,
			ChangedBy:       staff,
			DurationSeconds: duration,
			Notes:           db.Text(notes),
			CreatedAt:       db.Timestamptz(now),
		}); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		updated, err = q.UpdateClientStatus(ctx, sqlc.UpdateClientStatusParams{ID: id, Status: status})
		if err != nil {
			return fmt.Errorf("update client status: %w", err)
		}
		return nil
	})
	if err != nil {
		return clients.Client{}, err
	}
	s.logger.Info("client status changed",
		slog.String("client_id", clientID),
		slog.String("from", from),
		slog.String("to", status),
	)
	return clients.FromRow(updated), nil
}

// validateStatus accepts "new" and any active stage slug. With no stages
// configured every non-empty slug passes.
func validateStatus(ctx context.Context, q TxStore, status string) error {
	if status == clients.InitialStatus {
		return nil
	}
	count, err := q.CountActiveKanbanStatuses(ctx)
	if err != nil {
		return fmt.Errorf("count stages: %w", err)
	}
	if count == 0 {
		return nil
	}
	ok, err := q.KanbanSlugIsActive(ctx, status)
	if err != nil {
		return fmt.Errorf("check stage: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidStatus, status)
	}
	return nil
}

// History returns a client's status changes, newest first.
func (s *Service) History(ctx context.Context, clientID string) ([]HistoryEntry, error) {
	id, err := db.ParseUUID(clientID)
	if err != nil {
		return nil, clients.ErrInvalidClientID
	}
	if _, err := s.store.GetClientByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, clients.ErrClientNotFound
		}
		return nil, fmt.Errorf("load client: %w", err)
	}
	rows, err := s.store.ListStatusHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	out := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, HistoryFromRow(row))
	}
	return out, nil
}

// ListStages returns active stages ordered by position.
func (s *Service) ListStages(ctx context.Context) ([]Stage, error) {
	rows, err := s.store.ListActiveKanbanStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	return stagesFromRows(rows), nil
}

func (s *Service) CreateStage(ctx context.Context, input CreateStageInput) (Stage, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Stage{}, fmt.Errorf("%w: name is required", ErrInvalidStage)
	}
	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return Stage{}, fmt.Errorf("%w: slug is required", ErrInvalidStage)
	}
	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = defaultColor
	}
	var position int32
	if input.Position != nil {
		position = *input.Position
	} else {
		next, err := s.store.NextKanbanPosition(ctx)
		if err != nil {
			return Stage{}, fmt.Errorf("next position: %w", err)
		}
		position = next
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	row, err := s.store.CreateKanbanStatus(ctx, sqlc.CreateKanbanStatusParams{
		Name:     name,
		Slug:     slug,
		Color:    color,
		Position: position,
		IsActive: active,
	})
	if db.IsUniqueViolation(err) {
		return Stage{}, ErrSlugTaken
	}
	if err != nil {
		return Stage{}, fmt.Errorf("create stage: %w", err)
	}
	return StageFromRow(row), nil
}

func (s *Service) UpdateStage(ctx context.Context, stageID string, input UpdateStageInput) (Stage, error) {
	id, err := db.ParseUUID(stageID)
	if err != nil {
		return Stage{}, fmt.Errorf("%w: stage id", ErrInvalidStage)
	}
	current, err := s.store.GetKanbanStatusByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Stage{}, ErrStageNotFound
	}
	if err != nil {
		return Stage{}, fmt.Errorf("load stage: %w", err)
	}
	params := sqlc.UpdateKanbanStatusParams{
		ID:       id,
		Name:     current.Name,
		Slug:     current.Slug,
		Color:    current.Color,
		IsActive: current.IsActive,
	}
	if input.Name != nil {
		if params.Name = strings.TrimSpace(*input.Name); params.Name == "" {
			return Stage{}, fmt.Errorf("%w: name is required", ErrInvalidStage)
		}
	}
	if input.Slug != nil {
		if params.Slug = Slugify(*input.Slug); params.Slug == "" {
			return Stage{}, fmt.Errorf("%w: slug is required", ErrInvalidStage)
		}
	}
	if input.Color != nil && strings.TrimSpace(*input.Color) != "" {
		params.Color = strings.TrimSpace(*input.Color)
	}
	if input.IsActive != nil {
		params.IsActive = *input.IsActive
	}
	row, err := s.store.UpdateKanbanStatus(ctx, params)
	if db.IsUniqueViolation(err) {
		return Stage{}, ErrSlugTaken
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Stage{}, ErrStageNotFound
	}
	if err != nil {
		return Stage{}, fmt.Errorf("update stage: %w", err)
	}
	return StageFromRow(row), nil
}

// DeleteStage removes a stage. Clients already carrying its slug keep it.
func (s *Service) DeleteStage(ctx context.Context, stageID string) error {
	id, err := db.ParseUUID(stageID)
	if err != nil {
		return fmt.Errorf("%w: stage id", ErrInvalidStage)
	}
	n, err := s.store.DeleteKanbanStatus(ctx, id)
	if err != nil {
		return fmt.Errorf("delete stage: %w", err)
	}
	if n == 0 {
		return ErrStageNotFound
	}
	return nil
}

// ReorderStages moves the listed stages to positions 0..n-1 in the given
// order. Active stages left out keep their relative order and follow at n.
// An unknown or repeated id aborts the whole reorder.
func (s *Service) ReorderStages(ctx context.Context, orderedIDs []string) ([]Stage, error) {
	ids := make([]pgtype.UUID, 0, len(orderedIDs))
	seen := make(map[[16]byte]struct{}, len(orderedIDs))
	for _, raw := range orderedIDs {
		id, err := db.ParseUUID(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: stage id %q", ErrInvalidStage, raw)
		}
		if _, dup := seen[id.Bytes]; dup {
			return nil, fmt.Errorf("%w: stage id %q listed twice", ErrInvalidStage, raw)
		}
		seen[id.Bytes] = struct{}{}
		ids = append(ids, id)
	}
	var rows []sqlc.KanbanStatus
	err := s.tx.WithTx(ctx, func(q TxStore) error {
		active, err := q.ListActiveKanbanStatuses(ctx)
		if err != nil {
			return fmt.Errorf("list stages: %w", err)
		}
		known := make(map[[16]byte]struct{}, len(active))
		for _, row := range active {
			known[row.ID.Bytes] = struct{}{}
		}
		order := make([]pgtype.UUID, 0, len(active))
		for _, id := range ids {
			if _, ok := known[id.Bytes]; !ok {
				return fmt.Errorf("%w: %s", ErrStageNotFound, db.UUIDString(id))
			}
			order = append(order, id)
		}
		for _, row := range active {
			if _, listed := seen[row.ID.Bytes]; !listed {
				order = append(order, row.ID)
			}
		}
		for i, id := range order {
			n, err := q.UpdateKanbanStatusPosition(ctx, sqlc.UpdateKanbanStatusPositionParams{ID: id, Position: int32(i)})
			if err != nil {
				return fmt.Errorf("update position: %w", err)
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", ErrStageNotFound, db.UUIDString(id))
			}
		}
		rows, err = q.ListActiveKanbanStatuses(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stagesFromRows(rows), nil
}

// Slugify lowercases s and joins words with underscores.
func Slugify(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(s)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-'
	})
	return strings.Join(fields, "_")
}

func stagesFromRows(rows []sqlc.KanbanStatus) []Stage {
	out := make([]Stage, 0, len(rows))
	for _, row := range rows {
		out = append(out, StageFromRow(row))
	}
	return out
}
