package domain

import "time"

// Role enumerates dashboard roles.
type Role string

const (
	RoleRecruiter   Role = "Reclutador_RH"
	RoleAreaManager Role = "Gerente_Area"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleRecruiter || r == RoleAreaManager
}

// User is an internal dashboard account.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName falls back to the e-mail when no name is set.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
