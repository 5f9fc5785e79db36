package lead

import (
	"rentfunnel/internal/domain"
	"rentfunnel/internal/domain/attribution"
)

// Form is the contact form as submitted
type Form struct {
	Nome              string
	Cognome           string
	Email             string
	Telefono          string
	Azienda           string
	PartitaIva        string
	Messaggio         string
	PrivacyAccepted   bool
	MarketingAccepted bool
}

// QuickForm is the name + phone callback request
type QuickForm struct {
	Nome            string
	Telefono        string
	PrivacyAccepted bool
}

// Context is where in the funnel the form was sent from
type Context struct {
	FunnelStep domain.FunnelStep
	VehicleID  *string
	QuoteID    *string
	UserID     *string
}

// step prefers the stage sent with the form, then the visitor's current
// stage, then contact_form
func (c Context) step(snap *attribution.Snapshot) domain.FunnelStep {
	if c.FunnelStep.IsValid() {
		return c.FunnelStep
	}
	if snap != nil && snap.CurrentStep.IsValid() {
		return snap.CurrentStep
	}
	return domain.StepContactForm
}

// Result reports what CreateLead did. Duplicate is set when the
// idempotency key had already been used and Lead is the original record.
type Result struct {
	Lead      *domain.Lead
	Duplicate bool
}
