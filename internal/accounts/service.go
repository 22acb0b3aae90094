package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"

	"github.com/acoustichub/crm/internal/auth"
	"github.com/acoustichub/crm/internal/config"
	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

type Store interface {
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, arg sqlc.CreateUserParams) (sqlc.User, error)
	GetUserByID(ctx context.Context, id pgtype.UUID) (sqlc.User, error)
	GetUserByEmail(ctx context.Context, email string) (sqlc.User, error)
	ListUsers(ctx context.Context) ([]sqlc.User, error)
	UpdateUser(ctx context.Context, arg sqlc.UpdateUserParams) (sqlc.User, error)
	UpdateUserPassword(ctx context.Context, arg sqlc.UpdateUserPasswordParams) error
	TouchUserLogin(ctx context.Context, id pgtype.UUID) error
	DeleteUser(ctx context.Context, id pgtype.UUID) (int64, error)
	ListRoles(ctx context.Context) ([]sqlc.Role, error)
	GetRoleByID(ctx context.Context, id pgtype.UUID) (sqlc.Role, error)
	GetRoleByName(ctx context.Context, name string) (sqlc.Role, error)
	ListPermissions(ctx context.Context) ([]sqlc.Permission, error)
	ListRolePermissions(ctx context.Context) ([]sqlc.RolePermission, error)
	ListPermissionNamesByRole(ctx context.Context, roleID pgtype.UUID) ([]string, error)
}

// PermissionTx is the query set used while replacing a role's grants.
type PermissionTx interface {
	DeleteRolePermissions(ctx context.Context, roleID pgtype.UUID) error
	AddRolePermission(ctx context.Context, arg sqlc.AddRolePermissionParams) error
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(PermissionTx) error) error
}

type Service struct {
	store     Store
	tx        Transactor
	secret    string
	expiresIn time.Duration
	cost      int
	logger    *slog.Logger
}

func NewService(log *slog.Logger, store Store, tx Transactor, cfg config.AuthConfig) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:     store,
		tx:        tx,
		secret:    cfg.JWTSecret,
		expiresIn: cfg.ExpiresIn(),
		cost:      bcrypt.DefaultCost,
		logger:    log.With(slog.String("service", "accounts")),
	}
}

// Login checks the password of an active user and issues an access token.
func (s *Service) Login(ctx context.Context, input LoginInput) (Session, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return Session{}, ErrInvalidCredentials
	}
	row, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(input.Password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if !row.IsActive {
		return Session{}, ErrInactive
	}
	token, expiresAt, err := auth.GenerateToken(auth.Claims{
		UserID:   db.UUIDString(row.ID),
		Email:    row.Email,
		RoleID:   db.UUIDString(row.RoleID),
		BranchID: db.UUIDString(row.BranchID),
	}, s.secret, s.expiresIn)
	if err != nil {
		return Session{}, err
	}
	if err := s.store.TouchUserLogin(ctx, row.ID); err != nil {
		s.logger.Warn("touch last login failed", slog.String("user_id", db.UUIDString(row.ID)), slog.Any("error", err))
	}
	account, err := s.withRole(ctx, row)
	if err != nil {
		return Session{}, err
	}
	permissions := []string{}
	if row.RoleID.Valid {
		names, err := s.store.ListPermissionNamesByRole(ctx, row.RoleID)
		if err != nil {
			return Session{}, fmt.Errorf("load permissions: %w", err)
		}
		permissions = append(permissions, names...)
	}
	return Session{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt, User: account, Permissions: permissions}, nil
}

// Get returns a user by id. Inactive users are returned too.
func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return Account{}, err
	}
	return s.withRole(ctx, row)
}

// Active returns the user behind a token, rejecting disabled accounts.
func (s *Service) Active(ctx context.Context, id string) (Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if !account.IsActive {
		return Account{}, ErrInactive
	}
	return account, nil
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	rows, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.roleNames(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Account, 0, len(rows))
	for _, row := range rows {
		items = append(items, accountFromRow(row, names[db.UUIDString(row.RoleID)]))
	}
	return items, nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Account, error) {
	email := normalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return Account{}, fmt.Errorf("%w: email is required", ErrInvalidUser)
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return Account{}, fmt.Errorf("%w: first and last name are required", ErrInvalidUser)
	}
	if len(input.Password) < MinPasswordLength {
		return Account{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidUser, MinPasswordLength)
	}
	roleID, err := s.role(ctx, input.RoleID)
	if err != nil {
		return Account{}, err
	}
	branchID, err := db.OptionalUUID(input.BranchID)
	if err != nil {
		return Account{}, fmt.Errorf("%w: invalid branch id", ErrInvalidUser)
	}
	hash, err := s.hash(input.Password)
	if err != nil {
		return Account{}, err
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	row, err := s.store.CreateUser(ctx, sqlc.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        db.Text(input.Phone),
		RoleID:       roleID,
		BranchID:     branchID,
		IsActive:     active,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Account{}, ErrEmailTaken
		}
		return Account{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user created", slog.String("user_id", db.UUIDString(row.ID)), slog.String("email", email))
	return s.withRole(ctx, row)
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Account, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return Account{}, err
	}
	params := sqlc.UpdateUserParams{
		ID:        row.ID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Phone:     row.Phone,
		RoleID:    row.RoleID,
		BranchID:  row.BranchID,
		IsActive:  row.IsActive,
	}
	if input.FirstName != nil {
		if strings.TrimSpace(*input.FirstName) == "" {
			return Account{}, fmt.Errorf("%w: first name is required", ErrInvalidUser)
		}
		params.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		if strings.TrimSpace(*input.LastName) == "" {
			return Account{}, fmt.Errorf("%w: last name is required", ErrInvalidUser)
		}
		params.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		params.Phone = db.Text(*input.Phone)
	}
	if input.RoleID != nil {
		if params.RoleID, err = s.role(ctx, *input.RoleID); err != nil {
			return Account{}, err
		}
	}
	if input.BranchID != nil {
		if params.BranchID, err = db.OptionalUUID(*input.BranchID); err != nil {
			return Account{}, fmt.Errorf("%w: invalid branch id", ErrInvalidUser)
		}
	}
	if input.IsActive != nil {
		params.IsActive = *input.IsActive
	}
	if input.Password != nil && *input.Password != "" {
		if err := s.setPassword(ctx, row.ID, *input.Password); err != nil {
			return Account{}, err
		}
	}
	updated, err := s.store.UpdateUser(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrUserNotFound
		}
		return Account{}, fmt.Errorf("update user: %w", err)
	}
	return s.withRole(ctx, updated)
}

// UpdateProfile lets a user edit their own name and phone.
func (s *Service) UpdateProfile(ctx context.Context, id string, input ProfileInput) (Account, error) {
	return s.Update(ctx, id, UpdateInput{FirstName: input.FirstName, LastName: input.LastName, Phone: input.Phone})
}

func (s *Service) ChangePassword(ctx context.Context, id string, input ChangePasswordInput) error {
	row, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrInvalidPassword
	}
	return s.setPassword(ctx, row.ID, input.NewPassword)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return fmt.Errorf("%w: invalid user id", ErrInvalidUser)
	}
	n, err := s.store.DeleteUser(ctx, pgID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.store.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Role, 0, len(rows))
	for _, row := range rows {
		items = append(items, roleFromRow(row))
	}
	return items, nil
}

// RequireSuperAdmin returns ErrForbidden unless the active user holds the
// super_admin role.
func (s *Service) RequireSuperAdmin(ctx context.Context, userID string) error {
	account, err := s.Active(ctx, userID)
	if err != nil {
		return err
	}
	if account.Role != SuperAdminRole {
		return ErrForbidden
	}
	return nil
}

func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := s.store.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Permission, 0, len(rows))
	for _, row := range rows {
		items = append(items, permissionFromRow(row))
	}
	return items, nil
}

// RolesWithPermissions lists every role with the ids it grants.
func (s *Service) RolesWithPermissions(ctx context.Context) ([]RolePermissions, error) {
	roles, err := s.store.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	grants, err := s.store.ListRolePermissions(ctx)
	if err != nil {
		return nil, err
	}
	byRole := make(map[string][]string, len(roles))
	for _, g := range grants {
		roleID := db.UUIDString(g.RoleID)
		byRole[roleID] = append(byRole[roleID], db.UUIDString(g.PermissionID))
	}
	items := make([]RolePermissions, 0, len(roles))
	for _, r := range roles {
		id := db.UUIDString(r.ID)
		ids := byRole[id]
		if ids == nil {
			ids = []string{}
		}
		items = append(items, RolePermissions{
			ID:            id,
			Name:          r.Name,
			Description:   db.TextValue(r.Description),
			PermissionIDs: ids,
		})
	}
	return items, nil
}

// SetRolePermissions replaces the grants of roleID. The super_admin role is
// locked. Every id must name an existing permission.
func (s *Service) SetRolePermissions(ctx context.Context, roleID string, input SetPermissionsInput) (RolePermissions, error) {
	pgRoleID, err := db.ParseUUID(roleID)
	if err != nil {
		return RolePermissions{}, fmt.Errorf("%w: invalid role id", ErrInvalidUser)
	}
	role, err := s.store.GetRoleByID(ctx, pgRoleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RolePermissions{}, ErrRoleNotFound
		}
		return RolePermissions{}, err
	}
	if role.Name == SuperAdminRole {
		return RolePermissions{}, ErrRoleLocked
	}

	catalog, err := s.store.ListPermissions(ctx)
	if err != nil {
		return RolePermissions{}, err
	}
	known := make(map[string]struct{}, len(catalog))
	for _, p := range catalog {
		known[db.UUIDString(p.ID)] = struct{}{}
	}
	ids := make([]pgtype.UUID, 0, len(input.PermissionIDs))
	seen := make(map[string]struct{}, len(input.PermissionIDs))
	out := make([]string, 0, len(input.PermissionIDs))
	for _, raw := range input.PermissionIDs {
		id, err := db.ParseUUID(raw)
		if err != nil {
			return RolePermissions{}, fmt.Errorf("%w: %q", ErrInvalidPermission, raw)
		}
		canonical := db.UUIDString(id)
		if _, ok := known[canonical]; !ok {
			return RolePermissions{}, fmt.Errorf("%w: %s does not exist", ErrInvalidPermission, canonical)
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		ids = append(ids, id)
		out = append(out, canonical)
	}

	err = s.tx.WithTx(ctx, func(q PermissionTx) error {
		if err := q.DeleteRolePermissions(ctx, pgRoleID); err != nil {
			return fmt.Errorf("clear role permissions: %w", err)
		}
		for _, id := range ids {
			if err := q.AddRolePermission(ctx, sqlc.AddRolePermissionParams{RoleID: pgRoleID, PermissionID: id}); err != nil {
				return fmt.Errorf("grant permission: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return RolePermissions{}, err
	}
	s.logger.Info("role permissions replaced", slog.String("role", role.Name), slog.Int("permissions", len(out)))
	return RolePermissions{
		ID:            db.UUIDString(role.ID),
		Name:          role.Name,
		Description:   db.TextValue(role.Description),
		PermissionIDs: out,
	}, nil
}

// EnsureAdmin creates the configured super admin when no user exists yet.
func (s *Service) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	email := normalizeEmail(cfg.Email)
	password := strings.TrimSpace(cfg.Password)
	if email == "" || password == "" {
		return fmt.Errorf("admin email/password required in config.toml")
	}
	if password == "change-your-password-here" {
		s.logger.Warn("admin password uses default placeholder; please update config.toml")
	}
	role, err := s.store.GetRoleByName(ctx, SuperAdminRole)
	if err != nil {
		return fmt.Errorf("load %s role: %w", SuperAdminRole, err)
	}
	first, last := strings.TrimSpace(cfg.FirstName), strings.TrimSpace(cfg.LastName)
	if first == "" {
		first = "Super"
	}
	if last == "" {
		last = "Admin"
	}
	_, err = s.Create(ctx, CreateInput{
		Email:     email,
		Password:  password,
		FirstName: first,
		LastName:  last,
		RoleID:    db.UUIDString(role.ID),
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	s.logger.Info("Admin user created", slog.String("email", email))
	return nil
}

func (s *Service) load(ctx context.Context, id string) (sqlc.User, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return sqlc.User{}, fmt.Errorf("%w: invalid user id", ErrInvalidUser)
	}
	row, err := s.store.GetUserByID(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sqlc.User{}, ErrUserNotFound
		}
		return sqlc.User{}, err
	}
	return row, nil
}

func (s *Service) role(ctx context.Context, id string) (pgtype.UUID, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: invalid role id", ErrInvalidUser)
	}
	if _, err := s.store.GetRoleByID(ctx, pgID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgtype.UUID{}, ErrRoleNotFound
		}
		return pgtype.UUID{}, err
	}
	return pgID, nil
}

func (s *Service) withRole(ctx context.Context, row sqlc.User) (Account, error) {
	if !row.RoleID.Valid {
		return accountFromRow(row, ""), nil
	}
	role, err := s.store.GetRoleByID(ctx, row.RoleID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Account{}, err
	}
	return accountFromRow(row, role.Name), nil
}

func (s *Service) roleNames(ctx context.Context) (map[string]string, error) {
	roles, err := s.store.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(roles))
	for _, r := range roles {
		names[db.UUIDString(r.ID)] = r.Name
	}
	return names, nil
}

func (s *Service) setPassword(ctx context.Context, id pgtype.UUID, password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidUser, MinPasswordLength)
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.store.UpdateUserPassword(ctx, sqlc.UpdateUserPasswordParams{ID: id, PasswordHash: hash})
}

func (s *Service) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
