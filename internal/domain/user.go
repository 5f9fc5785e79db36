package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
	RoleAgent UserRole = "agent"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Cognome      string    `json:"cognome,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Company      string    `json:"company,omitempty"`
	PartitaIva   string    `json:"partita_iva,omitempty"`
	Role         UserRole  `json:"role"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateUserData is the input for registering a user
type CreateUserData struct {
	Email    string
	Password string
	Name     string
	Cognome  string
	Phone    string
	Company  string
	Role     UserRole
}

// UserUpdate carries the mutable profile fields. Nil means unchanged.
type UserUpdate struct {
	Name       *string
	Cognome    *string
	Phone      *string
	Company    *string
	PartitaIva *string
	Avatar     *string
}
