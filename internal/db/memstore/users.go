package memstore

import (
	"context"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *Store) CreateUser(_ context.Context, arg sqlc.CreateUserParams) (sqlc.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, arg.Email) {
			return sqlc.User{}, uniqueViolation("users_email_key")
		}
	}
	now := s.stamp()
	u := sqlc.User{
		ID:           db.NewUUID(),
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		FirstName:    arg.FirstName,
		LastName:     arg.LastName,
		Phone:        arg.Phone,
		RoleID:       arg.RoleID,
		BranchID:     arg.BranchID,
		IsActive:     arg.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID.Bytes] = u
	return u, nil
}

func (s *Store) GetUserByID(_ context.Context, id pgtype.UUID) (sqlc.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id.Bytes]
	if !ok {
		return sqlc.User{}, errNoRows
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (sqlc.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return sqlc.User{}, errNoRows
}

func (s *Store) ListUsers(_ context.Context) ([]sqlc.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]sqlc.User, 0, len(s.users))
	for _, u := range s.users {
		items = append(items, u)
	}
	slices.SortFunc(items, func(a, b sqlc.User) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
	return items, nil
}

func (s *Store) UpdateUser(_ context.Context, arg sqlc.UpdateUserParams) (sqlc.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[arg.ID.Bytes]
	if !ok {
		return sqlc.User{}, errNoRows
	}
	u.FirstName = arg.FirstName
	u.LastName = arg.LastName
	u.Phone = arg.Phone
	u.RoleID = arg.RoleID
	u.BranchID = arg.BranchID
	u.IsActive = arg.IsActive
	u.UpdatedAt = s.stamp()
	s.users[u.ID.Bytes] = u
	return u, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, arg sqlc.UpdateUserPasswordParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[arg.ID.Bytes]
	if !ok {
		return nil
	}
	u.PasswordHash = arg.PasswordHash
	u.UpdatedAt = s.stamp()
	s.users[u.ID.Bytes] = u
	return nil
}

func (s *Store) TouchUserLogin(_ context.Context, id pgtype.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id.Bytes]
	if !ok {
		return nil
	}
	u.LastLoginAt = s.stamp()
	s.users[u.ID.Bytes] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id pgtype.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id.Bytes]; !ok {
		return 0, nil
	}
	delete(s.users, id.Bytes)
	return 1, nil
}

func (s *Store) ListRoles(_ context.Context) ([]sqlc.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]sqlc.Role, 0, len(s.roles))
	for _, r := range s.roles {
		items = append(items, r)
	}
	slices.SortFunc(items, func(a, b sqlc.Role) int { return strings.Compare(a.Name, b.Name) })
	return items, nil
}

func (s *Store) GetRoleByID(_ context.Context, id pgtype.UUID) (sqlc.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[id.Bytes]
	if !ok {
		return sqlc.Role{}, errNoRows
	}
	return r, nil
}

func (s *Store) GetRoleByName(_ context.Context, name string) (sqlc.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return sqlc.Role{}, errNoRows
}
