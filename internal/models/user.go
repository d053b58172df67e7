package models

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// from the identity provider's JWT
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	LastSignInAt time.Time `json:"last_sign_in_at"`
	Role         UserRole  `json:"role"`
}

// Capabilities is resolved once per request and consumed by handlers instead
// of re-checking emails or claims at every call site.
type Capabilities struct {
	UserID       string   `json:"user_id"`
	Email        string   `json:"email"`
	Role         UserRole `json:"role"`
	Plan         Plan     `json:"plan"`
	AttemptsLeft int      `json:"attempts_left"`
}

func (c Capabilities) IsAdmin() bool { return c.Role == RoleAdmin }

func (c Capabilities) CanStartInterview() bool {
	return c.AttemptsLeft == UnlimitedAttempts || c.AttemptsLeft > 0
}
