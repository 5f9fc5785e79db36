package lead

import "rentfunnel/internal/domain"

// CreateLeadRequest is the contact form payload
type CreateLeadRequest struct {
	Nome              string  `json:"nome"`
	Cognome           string  `json:"cognome"`
	Email             string  `json:"email"`
	Telefono          string  `json:"telefono"`
	Azienda           string  `json:"azienda"`
	PartitaIva        string  `json:"partita_iva"`
	Messaggio         string  `json:"messaggio"`
	PrivacyAccepted   bool    `json:"privacy_accepted"`
	MarketingAccepted *bool   `json:"marketing_accepted"`
	VehicleID         *string `json:"vehicle_id"`
	QuoteID           *string `json:"quote_id"`
	FunnelStep        string  `json:"funnel_step"`
	// IdempotencyKey is used when the Idempotency-Key header is absent
	IdempotencyKey string `json:"idempotency_key"`
}

func (r *CreateLeadRequest) form() Form {
	return Form{
		Nome:              r.Nome,
		Cognome:           r.Cognome,
		Email:             r.Email,
		Telefono:          r.Telefono,
		Azienda:           r.Azienda,
		PartitaIva:        r.PartitaIva,
		Messaggio:         r.Messaggio,
		PrivacyAccepted:   r.PrivacyAccepted,
		MarketingAccepted: r.MarketingAccepted != nil && *r.MarketingAccepted,
	}
}

// QuickLeadRequest is the callback request payload
type QuickLeadRequest struct {
	Nome            string  `json:"nome"`
	Telefono        string  `json:"telefono"`
	PrivacyAccepted bool    `json:"privacy_accepted"`
	VehicleID       *string `json:"vehicle_id"`
	QuoteID         *string `json:"quote_id"`
	FunnelStep      string  `json:"funnel_step"`
	IdempotencyKey  string  `json:"idempotency_key"`
}

// CreateLeadResponse is the submission outcome
type CreateLeadResponse struct {
	Lead      *domain.Lead `json:"lead"`
	Duplicate bool         `json:"duplicate"`
}

type LeadListResponse struct {
	Leads []domain.Lead `json:"leads"`
	Total int           `json:"total"`
}
