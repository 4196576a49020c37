package user

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleValidator Role = "validator"
	RoleAdmin     Role = "admin"
)

type AuthProvider string

const (
	ProviderPassword  AuthProvider = "password"
	ProviderMicrosoft AuthProvider = "microsoft"
)

// User is the shared identity model consumed by the workflow core, the
// resolver and the policy gate.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	AuthProvider AuthProvider
	ManagerID    *int64
	TOTPSecret   string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsValidator() bool {
	return u.Role == RoleValidator
}

// CanApprove reports whether the user's role qualifies for the resolver's
// administrative fallback set.
func (u *User) CanApprove() bool {
	return u.Role == RoleValidator || u.Role == RoleAdmin
}

func (u *User) RequiresSecondFactor() bool {
	return u.AuthProvider == ProviderPassword
}
