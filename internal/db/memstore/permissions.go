package memstore

import (
	"bytes"
	"context"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

type grant struct {
	role, permission key
}

// defaultPermissions mirrors 0002_permissions.up.sql.
var defaultPermissions = []struct {
	name, resource, action string
	roles                  []string
}{
	{"view_users", "users", "view", []string{"admin"}},
	{"manage_users", "users", "manage", []string{"admin"}},
	{"manage_roles", "roles", "manage", nil},
	{"view_branches", "branches", "view", []string{"admin", "call_center"}},
	{"manage_branches", "branches", "manage", []string{"admin"}},
	{"view_clients", "clients", "view", []string{"admin", "call_center"}},
	{"manage_clients", "clients", "manage", []string{"admin", "call_center"}},
	{"view_messages", "messages", "view", []string{"admin", "call_center"}},
	{"manage_messages", "messages", "manage", []string{"admin", "call_center"}},
	{"manage_integrations", "integrations", "manage", []string{"admin"}},
	{"view_analytics", "analytics", "view", []string{"admin"}},
	{"send_sms", "sms", "send", []string{"admin", "call_center"}},
	{"manage_kanban", "kanban", "manage", []string{"admin"}},
	{"update_client_status", "kanban", "update", []string{"admin", "call_center"}},
}

func (s *Store) seedPermissions() {
	roles := make(map[string]key, len(s.roles))
	for id, r := range s.roles {
		roles[r.Name] = id
	}
	for _, p := range defaultPermissions {
		id := db.NewUUID()
		s.permissions[id.Bytes] = sqlc.Permission{
			ID: id, Name: p.name, Resource: p.resource, Action: p.action, CreatedAt: s.stamp(),
		}
		s.grants[grant{role: roles["super_admin"], permission: id.Bytes}] = struct{}{}
		for _, name := range p.roles {
			s.grants[grant{role: roles[name], permission: id.Bytes}] = struct{}{}
		}
	}
}

func (s *Store) ListPermissions(_ context.Context) ([]sqlc.Permission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]sqlc.Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		items = append(items, p)
	}
	slices.SortFunc(items, func(a, b sqlc.Permission) int {
		if c := strings.Compare(a.Resource, b.Resource); c != 0 {
			return c
		}
		if c := strings.Compare(a.Action, b.Action); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return items, nil
}

func (s *Store) ListRolePermissions(_ context.Context) ([]sqlc.RolePermission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]sqlc.RolePermission, 0, len(s.grants))
	for g := range s.grants {
		items = append(items, sqlc.RolePermission{
			RoleID:       pgtype.UUID{Bytes: g.role, Valid: true},
			PermissionID: pgtype.UUID{Bytes: g.permission, Valid: true},
		})
	}
	slices.SortFunc(items, func(a, b sqlc.RolePermission) int {
		if c := bytes.Compare(a.RoleID.Bytes[:], b.RoleID.Bytes[:]); c != 0 {
			return c
		}
		return bytes.Compare(a.PermissionID.Bytes[:], b.PermissionID.Bytes[:])
	})
	return items, nil
}

func (s *Store) ListPermissionNamesByRole(_ context.Context, roleID pgtype.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for g := range s.grants {
		if g.role != roleID.Bytes {
			continue
		}
		if p, ok := s.permissions[g.permission]; ok {
			names = append(names, p.Name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func (s *Store) DeleteRolePermissions(_ context.Context, roleID pgtype.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteRolePermissions"); err != nil {
		return err
	}
	for g := range s.grants {
		if g.role == roleID.Bytes {
			delete(s.grants, g)
		}
	}
	return nil
}

func (s *Store) AddRolePermission(_ context.Context, arg sqlc.AddRolePermissionParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("AddRolePermission"); err != nil {
		return err
	}
	if _, ok := s.roles[arg.RoleID.Bytes]; !ok {
		return foreignKeyViolation("role_permissions_role_id_fkey")
	}
	if _, ok := s.permissions[arg.PermissionID.Bytes]; !ok {
		return foreignKeyViolation("role_permissions_permission_id_fkey")
	}
	s.grants[grant{role: arg.RoleID.Bytes, permission: arg.PermissionID.Bytes}] = struct{}{}
	return nil
}
