package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleNormalUser          Role = "normal_user"
	RoleCompanyUser         Role = "company_user"
	RoleCompanyCollaborator Role = "company_collaborator"
	RoleAdmin               Role = "admin"
)

// ValidRole reports whether name is one of the known roles.
func ValidRole(name string) bool {
	switch Role(name) {
	case RoleNormalUser, RoleCompanyUser, RoleCompanyCollaborator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	Password    string    `db:"password" json:"-"`
	Name        string    `db:"name" json:"name"`
	Image       string    `db:"image" json:"image"`
	Description string    `db:"description" json:"description"`
	Role        Role      `db:"role" json:"role"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// AuthUser is the authenticated identity placed on the request context by the
// auth middleware: the user plus the plan of their active subscription, or a
// nil plan when they have none.
type AuthUser struct {
	ID    uuid.UUID
	Email string
	Role  Role
	Plan  *Plan
}
