package auth

import "rentfunnel/internal/domain"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=50"`
	Cognome  string `json:"cognome" validate:"max=50"`
	Phone    string `json:"phone" validate:"max=20"`
	Company  string `json:"company" validate:"max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest fields left nil are unchanged. Email and role
// cannot be changed here.
type UpdateProfileRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=50"`
	Cognome    *string `json:"cognome" validate:"omitempty,max=50"`
	Phone      *string `json:"phone" validate:"omitempty,max=20"`
	Company    *string `json:"company" validate:"omitempty,max=100"`
	PartitaIva *string `json:"partita_iva" validate:"omitempty,len=11,numeric"`
}

func (r *UpdateProfileRequest) update() domain.UserUpdate {
	return domain.UserUpdate{
		Name:       r.Name,
		Cognome:    r.Cognome,
		Phone:      r.Phone,
		Company:    r.Company,
		PartitaIva: r.PartitaIva,
	}
}

// Session is the result of register and login
type Session struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"`
}
