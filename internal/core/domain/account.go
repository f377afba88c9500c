package domain

import "time"

// Role is the authorization tier of an account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// Account models an authenticated actor in the system.
//
// CreatedBy and Manager form the manager/user hierarchy: a manager
// administers any user whose Manager or CreatedBy points at them.
// Accounts are never destroyed; deactivation clears IsActive so historical
// references still resolve.
type Account struct {
	ID           string     `json:"id" bson:"_id"`
	Name         string     `json:"name" bson:"name"`
	Email        string     `json:"email" bson:"email"`
	PasswordHash string     `json:"-" bson:"password_hash"`
	Role         Role       `json:"role" bson:"role"`
	CreatedBy    string     `json:"created_by,omitempty" bson:"created_by,omitempty"`
	Manager      string     `json:"manager,omitempty" bson:"manager,omitempty"`
	IsActive     bool       `json:"is_active" bson:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
}

// ManagedBy reports whether managerID sits directly above this account in
// the hierarchy.
func (a *Account) ManagedBy(managerID string) bool {
	if managerID == "" {
		return false
	}
	return a.Manager == managerID || a.CreatedBy == managerID
}
