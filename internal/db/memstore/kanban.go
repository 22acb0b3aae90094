package memstore

import (
	"context"
	"slices"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint}
}

func (s *Store) GetLatestStatusHistory(_ context.Context, clientID pgtype.UUID) (sqlc.ClientStatusHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest sqlc.ClientStatusHistory
	found := false
	for _, h := range s.history {
		if h.ClientID != clientID {
			continue
		}
		if !found || h.CreatedAt.Time.After(latest.CreatedAt.Time) {
			latest = h
			found = true
		}
	}
	if !found {
		return sqlc.ClientStatusHistory{}, errNoRows
	}
	return latest, nil
}

func (s *Store) CreateStatusHistory(_ context.Context, arg sqlc.CreateStatusHistoryParams) (sqlc.ClientStatusHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateStatusHistory"); err != nil {
		return sqlc.ClientStatusHistory{}, err
	}
	h := sqlc.ClientStatusHistory{
		ID:              db.NewUUID(),
		ClientID:        arg.ClientID,
		FromStatus:      arg.FromStatus,
		ToStatus:        arg.ToStatus,
		ChangedBy:       arg.ChangedBy,
		DurationSeconds: arg.DurationSeconds,
		Notes:           arg.Notes,
		CreatedAt:       arg.CreatedAt,
	}
	if !h.CreatedAt.Valid {
		h.CreatedAt = s.stamp()
	}
	s.history[h.ID.Bytes] = h
	return h, nil
}

func (s *Store) ListStatusHistory(_ context.Context, clientID pgtype.UUID) ([]sqlc.ClientStatusHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []sqlc.ClientStatusHistory
	for _, h := range s.history {
		if h.ClientID == clientID {
			items = append(items, h)
		}
	}
	slices.SortFunc(items, func(a, b sqlc.ClientStatusHistory) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
	return items, nil
}

func (s *Store) ReassignStatusHistory(_ context.Context, arg sqlc.ReassignStatusHistoryParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, h := range s.history {
		if h.ClientID == arg.SecondaryID {
			h.ClientID = arg.PrimaryID
			s.history[k] = h
			n++
		}
	}
	return n, nil
}

func (s *Store) ListActiveKanbanStatuses(_ context.Context) ([]sqlc.KanbanStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []sqlc.KanbanStatus
	for _, st := range s.stages {
		if st.IsActive {
			items = append(items, st)
		}
	}
	slices.SortFunc(items, func(a, b sqlc.KanbanStatus) int {
		if a.Position != b.Position {
			return int(a.Position - b.Position)
		}
		return a.CreatedAt.Time.Compare(b.CreatedAt.Time)
	})
	return items, nil
}

func (s *Store) GetKanbanStatusByID(_ context.Context, id pgtype.UUID) (sqlc.KanbanStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stages[id.Bytes]
	if !ok {
		return sqlc.KanbanStatus{}, errNoRows
	}
	return st, nil
}

func (s *Store) CountActiveKanbanStatuses(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, st := range s.stages {
		if st.IsActive {
			n++
		}
	}
	return n, nil
}

func (s *Store) KanbanSlugIsActive(_ context.Context, slug string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.stages {
		if st.IsActive && st.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) NextKanbanPosition(_ context.Context) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := int32(0)
	for _, st := range s.stages {
		if st.Position >= next {
			next = st.Position + 1
		}
	}
	return next, nil
}

func (s *Store) slugTaken(slug string, except pgtype.UUID) bool {
	for _, st := range s.stages {
		if st.Slug == slug && st.ID != except {
			return true
		}
	}
	return false
}

func (s *Store) CreateKanbanStatus(_ context.Context, arg sqlc.CreateKanbanStatusParams) (sqlc.KanbanStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slugTaken(arg.Slug, pgtype.UUID{}) {
		return sqlc.KanbanStatus{}, uniqueViolation("kanban_statuses_slug_key")
	}
	now := s.stamp()
	st := sqlc.KanbanStatus{
		ID:        db.NewUUID(),
		Name:      arg.Name,
		Slug:      arg.Slug,
		Color:     arg.Color,
		Position:  arg.Position,
		IsActive:  arg.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.stages[st.ID.Bytes] = st
	return st, nil
}

func (s *Store) UpdateKanbanStatus(_ context.Context, arg sqlc.UpdateKanbanStatusParams) (sqlc.KanbanStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stages[arg.ID.Bytes]
	if !ok {
		return sqlc.KanbanStatus{}, errNoRows
	}
	if s.slugTaken(arg.Slug, arg.ID) {
		return sqlc.KanbanStatus{}, uniqueViolation("kanban_statuses_slug_key")
	}
	st.Name = arg.Name
	st.Slug = arg.Slug
	st.Color = arg.Color
	st.IsActive = arg.IsActive
	st.UpdatedAt = s.stamp()
	s.stages[st.ID.Bytes] = st
	return st, nil
}

func (s *Store) UpdateKanbanStatusPosition(_ context.Context, arg sqlc.UpdateKanbanStatusPositionParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stages[arg.ID.Bytes]
	if !ok {
		return 0, nil
	}
	st.Position = arg.Position
	st.UpdatedAt = s.stamp()
	s.stages[st.ID.Bytes] = st
	return 1, nil
}

func (s *Store) DeleteKanbanStatus(_ context.Context, id pgtype.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stages[id.Bytes]; !ok {
		return 0, nil
	}
	delete(s.stages, id.Bytes)
	return 1, nil
}

