// Package accounts manages staff users, their roles and password login.
package accounts

import (
	"errors"
	"time"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactive           = errors.New("user is disabled")
	ErrInvalidPassword    = errors.New("current password mismatch")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidUser        = errors.New("invalid user")
	ErrInvalidPermission  = errors.New("invalid permission")
	ErrRoleLocked         = errors.New("super_admin permissions cannot be changed")
	ErrForbidden          = errors.New("super_admin role required")
)

// MinPasswordLength applies to created and changed passwords.
const MinPasswordLength = 6

// SuperAdminRole is assigned to the bootstrap account.
const SuperAdminRole = "super_admin"

// Account is a user without its password hash.
type Account struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Phone       string     `json:"phone,omitempty"`
	RoleID      string     `json:"roleId"`
	Role        string     `json:"role,omitempty"`
	BranchID    string     `json:"branchId,omitempty"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLogin,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
}

// RolePermissions is a role with the ids of the permissions it grants.
type RolePermissions struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	PermissionIDs []string `json:"permissionIds"`
}

type SetPermissionsInput struct {
	PermissionIDs []string `json:"permissionIds"`
}

type CreateInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone"`
	RoleID    string `json:"roleId" validate:"required"`
	BranchID  string `json:"branchId"`
	IsActive  *bool  `json:"isActive"`
}

// UpdateInput changes only the fields that are set. A non-empty Password
// resets the user's password.
type UpdateInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	RoleID    *string `json:"roleId"`
	BranchID  *string `json:"branchId"`
	IsActive  *bool   `json:"isActive"`
	Password  *string `json:"password"`
}

type ProfileInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// Session is the login response.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        Account   `json:"user"`
	// Permissions are the names granted to the user's role.
	Permissions []string `json:"permissions"`
}

func accountFromRow(row sqlc.User, role string) Account {
	return Account{
		ID:          db.UUIDString(row.ID),
		Email:       row.Email,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		Phone:       db.TextValue(row.Phone),
		RoleID:      db.UUIDString(row.RoleID),
		Role:        role,
		BranchID:    db.UUIDString(row.BranchID),
		IsActive:    row.IsActive,
		LastLoginAt: db.TimePtrFromPg(row.LastLoginAt),
		CreatedAt:   db.TimeFromPg(row.CreatedAt),
		UpdatedAt:   db.TimeFromPg(row.UpdatedAt),
	}
}

func permissionFromRow(row sqlc.Permission) Permission {
	return Permission{
		ID:          db.UUIDString(row.ID),
		Name:        row.Name,
		Resource:    row.Resource,
		Action:      row.Action,
		Description: db.TextValue(row.Description),
	}
}

func roleFromRow(row sqlc.Role) Role {
	return Role{ID: db.UUIDString(row.ID), Name: row.Name, Description: db.TextValue(row.Description)}
}
