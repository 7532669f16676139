package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin  = "admin"
	RoleScoped = "scoped"
)

// User representa un usuario del sistema. Un usuario scoped solo ve su rubro (CategoryID).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string  // admin, scoped
	CategoryID   *string // obligatorio para scoped
	Status       string  // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Scope resuelve el alcance del usuario. Los admin no tienen restricción.
func (u *User) Scope() UserScope {
	if u.Role == RoleAdmin {
		return UserScope{}
	}
	return UserScope{CategoryID: u.CategoryID}
}

// UserScope alcance por rubro resuelto una vez por request. CategoryID nil = sin restricción.
type UserScope struct {
	CategoryID *string
}

// Unrestricted indica que el alcance no filtra.
func (s UserScope) Unrestricted() bool { return s.CategoryID == nil }

// Allows indica si un registro con el rubro dado es visible para el alcance.
func (s UserScope) Allows(categoryID *string) bool {
	if s.CategoryID == nil {
		return true
	}
	return categoryID != nil && *categoryID == *s.CategoryID
}

// Actor usuario que origina una mutación; nil para procesos sin usuario (importación, CLI).
type Actor struct {
	UserID string
}

// ActorID devuelve el id del actor o nil.
func ActorID(a *Actor) *string {
	if a == nil || a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}
