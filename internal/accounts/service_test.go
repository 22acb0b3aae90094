package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/acoustichub/crm/internal/config"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/memstore"
)

func newTestService(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	tx := memstore.NewTx(st, func(s *memstore.Store) PermissionTx { return s })
	svc := NewService(nil, st, tx, config.AuthConfig{JWTSecret: "test-secret", JWTExpiresIn: "1h"})
	svc.cost = bcrypt.MinCost
	return svc, st
}

func roleID(t *testing.T, st *memstore.Store, name string) string {
	t.Helper()
	role, err := st.GetRoleByName(context.Background(), name)
	require.NoError(t, err)
	return db.UUIDString(role.ID)
}

func createOperator(t *testing.T, svc *Service, st *memstore.Store) Account {
	t.Helper()
	account, err := svc.Create(context.Background(), CreateInput{
		Email:     " Operator@Acoustic.UZ ",
		Password:  "secret123",
		FirstName: "Nodira",
		LastName:  "Karimova",
		Phone:     "+998901112233",
		RoleID:    roleID(t, st, "call_center"),
	})
	require.NoError(t, err)
	return account
}

func TestCreateAndLogin(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()
	account := createOperator(t, svc, st)
	assert.Equal(t, "operator@acoustic.uz", account.Email)
	assert.Equal(t, "call_center", account.Role)
	assert.True(t, account.IsActive)
	assert.Nil(t, account.LastLoginAt)

	session, err := svc.Login(ctx, LoginInput{Email: "OPERATOR@acoustic.uz", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, account.ID, session.User.ID)
	assert.Contains(t, session.Permissions, "send_sms")
	assert.NotContains(t, session.Permissions, "manage_roles", "call center cannot edit roles")

	again, err := svc.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.NotNil(t, again.LastLoginAt, "login stamps last_login_at")

	_, err = svc.Login(ctx, LoginInput{Email: "operator@acoustic.uz", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@acoustic.uz", Password: "secret123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsDisabledUser(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	account := createOperator(t, svc, st)
	off := false
	_, err := svc.Update(context.Background(), account.ID, UpdateInput{IsActive: &off})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{Email: account.Email, Password: "secret123"})
	require.ErrorIs(t, err, ErrInactive)
	_, err = svc.Active(context.Background(), account.ID)
	require.ErrorIs(t, err, ErrInactive)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()
	createOperator(t, svc, st)
	role := roleID(t, st, "admin")

	_, err := svc.Create(ctx, CreateInput{Email: "operator@acoustic.uz", Password: "secret123", FirstName: "A", LastName: "B", RoleID: role})
	require.ErrorIs(t, err, ErrEmailTaken)
	_, err = svc.Create(ctx, CreateInput{Email: "x@acoustic.uz", Password: "123", FirstName: "A", LastName: "B", RoleID: role})
	require.ErrorIs(t, err, ErrInvalidUser)
	_, err = svc.Create(ctx, CreateInput{Email: "x@acoustic.uz", Password: "secret123", FirstName: "A", LastName: "B", RoleID: db.UUIDString(db.NewUUID())})
	require.ErrorIs(t, err, ErrRoleNotFound)
	_, err = svc.Create(ctx, CreateInput{Email: "x@acoustic.uz", Password: "secret123", LastName: "B", RoleID: role})
	require.ErrorIs(t, err, ErrInvalidUser)
}

func TestProfileAndPassword(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()
	account := createOperator(t, svc, st)

	name := "Nodirabegim"
	updated, err := svc.UpdateProfile(ctx, account.ID, ProfileInput{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Nodirabegim", updated.FirstName)
	assert.Equal(t, "Karimova", updated.LastName)
	assert.Equal(t, "+998901112233", updated.Phone)

	err = svc.ChangePassword(ctx, account.ID, ChangePasswordInput{CurrentPassword: "nope", NewPassword: "newsecret"})
	require.ErrorIs(t, err, ErrInvalidPassword)
	require.NoError(t, svc.ChangePassword(ctx, account.ID, ChangePasswordInput{CurrentPassword: "secret123", NewPassword: "newsecret"}))

	_, err = svc.Login(ctx, LoginInput{Email: account.Email, Password: "secret123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginInput{Email: account.Email, Password: "newsecret"})
	require.NoError(t, err)
}

func TestAdminUpdateResetsPasswordAndRole(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()
	account := createOperator(t, svc, st)

	admin := roleID(t, st, "admin")
	password := "reset-by-admin"
	updated, err := svc.Update(ctx, account.ID, UpdateInput{RoleID: &admin, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)
	_, err = svc.Login(ctx, LoginInput{Email: account.Email, Password: password})
	require.NoError(t, err)

	bad := "not-a-uuid"
	_, err = svc.Update(ctx, account.ID, UpdateInput{BranchID: &bad})
	require.ErrorIs(t, err, ErrInvalidUser)
	_, err = svc.Update(ctx, db.UUIDString(db.NewUUID()), UpdateInput{})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestListDeleteAndRoles(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()
	account := createOperator(t, svc, st)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "call_center", list[0].Role)

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"admin", "call_center", "super_admin"}, names)

	require.NoError(t, svc.Delete(ctx, account.ID))
	require.ErrorIs(t, svc.Delete(ctx, account.ID), ErrUserNotFound)
	_, err = svc.Get(ctx, account.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureAdminRunsOnce(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	cfg := config.AdminConfig{Email: "Admin@Acoustic.uz", Password: "bootstrap-pass"}

	require.NoError(t, svc.EnsureAdmin(ctx, cfg))
	require.NoError(t, svc.EnsureAdmin(ctx, cfg))
	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@acoustic.uz", users[0].Email)
	assert.Equal(t, SuperAdminRole, users[0].Role)
	assert.Equal(t, "Super", users[0].FirstName)

	_, err = svc.Login(ctx, LoginInput{Email: "admin@acoustic.uz", Password: "bootstrap-pass"})
	require.NoError(t, err)

	fresh, _ := newTestService(t)
	require.Error(t, fresh.EnsureAdmin(ctx, config.AdminConfig{}))
}

func TestRequireSuperAdmin(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureAdmin(ctx, config.AdminConfig{Email: "admin@acoustic.uz", Password: "bootstrap-pass"}))
	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NoError(t, svc.RequireSuperAdmin(ctx, users[0].ID))

	operator := createOperator(t, svc, st)
	require.ErrorIs(t, svc.RequireSuperAdmin(ctx, operator.ID), ErrForbidden)
}

func TestRolesWithPermissions(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	catalog, err := svc.ListPermissions(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, catalog)
	assert.Equal(t, "analytics", catalog[0].Resource, "sorted by resource")

	roles, err := svc.RolesWithPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	counts := map[string]int{}
	for _, r := range roles {
		counts[r.Name] = len(r.PermissionIDs)
	}
	assert.Equal(t, len(catalog), counts[SuperAdminRole])
	assert.Equal(t, len(catalog)-1, counts["admin"])
	assert.Less(t, counts["call_center"], counts["admin"])
}

func TestSetRolePermissions(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()
	catalog, err := svc.ListPermissions(ctx)
	require.NoError(t, err)
	byName := map[string]string{}
	for _, p := range catalog {
		byName[p.Name] = p.ID
	}

	callCenter := roleID(t, st, "call_center")
	role, err := svc.SetRolePermissions(ctx, callCenter, SetPermissionsInput{
		PermissionIDs: []string{byName["view_clients"], byName["view_clients"], byName["manage_kanban"]},
	})
	require.NoError(t, err)
	assert.Equal(t, "call_center", role.Name)
	assert.Equal(t, []string{byName["view_clients"], byName["manage_kanban"]}, role.PermissionIDs)

	operator := createOperator(t, svc, st)
	session, err := svc.Login(ctx, LoginInput{Email: operator.Email, Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, []string{"manage_kanban", "view_clients"}, session.Permissions)

	cleared, err := svc.SetRolePermissions(ctx, callCenter, SetPermissionsInput{})
	require.NoError(t, err)
	assert.Empty(t, cleared.PermissionIDs)
	session, err = svc.Login(ctx, LoginInput{Email: operator.Email, Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, session.Permissions)
}

func TestSetRolePermissionsErrors(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()
	before, err := svc.RolesWithPermissions(ctx)
	require.NoError(t, err)

	_, err = svc.SetRolePermissions(ctx, roleID(t, st, SuperAdminRole), SetPermissionsInput{})
	require.ErrorIs(t, err, ErrRoleLocked)

	admin := roleID(t, st, "admin")
	_, err = svc.SetRolePermissions(ctx, admin, SetPermissionsInput{PermissionIDs: []string{db.UUIDString(db.NewUUID())}})
	require.ErrorIs(t, err, ErrInvalidPermission)
	_, err = svc.SetRolePermissions(ctx, admin, SetPermissionsInput{PermissionIDs: []string{"nope"}})
	require.ErrorIs(t, err, ErrInvalidPermission)
	_, err = svc.SetRolePermissions(ctx, db.UUIDString(db.NewUUID()), SetPermissionsInput{})
	require.ErrorIs(t, err, ErrRoleNotFound)

	catalog, err := svc.ListPermissions(ctx)
	require.NoError(t, err)
	st.Fail("AddRolePermission", errors.New("connection reset"))
	_, err = svc.SetRolePermissions(ctx, admin, SetPermissionsInput{PermissionIDs: []string{catalog[0].ID}})
	require.Error(t, err)

	after, err := svc.RolesWithPermissions(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed replacement keeps the old grants")
}
