package domain

import "time"

// LeadStatus is the CRM pipeline position of a lead
type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadWon       LeadStatus = "won"
	LeadLost      LeadStatus = "lost"
)

// AllLeadStatuses in pipeline order
var AllLeadStatuses = []LeadStatus{LeadNew, LeadContacted, LeadQualified, LeadWon, LeadLost}

// IsValid reports whether s is a known pipeline status
func (s LeadStatus) IsValid() bool {
	for _, v := range AllLeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Lead is a sales-pipeline record created from a contact form
type Lead struct {
	ID             string `json:"id"`
	IdempotencyKey string `json:"idempotency_key"`

	// Contact
	Nome       string `json:"nome"`
	Cognome    string `json:"cognome"`
	Email      string `json:"email"`
	Telefono   string `json:"telefono"`
	Azienda    string `json:"azienda,omitempty"`
	PartitaIva string `json:"partita_iva,omitempty"`
	Messaggio  string `json:"messaggio,omitempty"`

	// Consent
	PrivacyAccepted   bool `json:"privacy_accepted"`
	MarketingAccepted bool `json:"marketing_accepted"`

	// Funnel context
	UserID     *string    `json:"user_id"`
	VehicleID  *string    `json:"vehicle_id"`
	QuoteID    *string    `json:"quote_id"`
	FunnelStep FunnelStep `json:"funnel_step"`

	// Attribution snapshot
	Source      Source  `json:"source"`
	UTMSource   *string `json:"utm_source"`
	UTMMedium   *string `json:"utm_medium"`
	UTMCampaign *string `json:"utm_campaign"`
	UTMContent  *string `json:"utm_content"`

	// CRM pipeline
	Status     LeadStatus `json:"status"`
	Notes      string     `json:"notes,omitempty"`
	AssignedTo string     `json:"assigned_to,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`
}

// IsNew returns true if lead is new
func (l *Lead) IsNew() bool {
	return l.Status == LeadNew
}

// IsConverted returns true if lead was won at some point
func (l *Lead) IsConverted() bool {
	return l.ConvertedAt != nil
}

// ApplyStatus moves the lead to status. Entering won stamps ConvertedAt;
// leaving won keeps it. Empty notes keep the existing notes.
func (l *Lead) ApplyStatus(status LeadStatus, notes string, now time.Time) {
	l.Status = status
	if notes != "" {
		l.Notes = notes
	}
	if status == LeadWon {
		t := now
		l.ConvertedAt = &t
	}
	l.UpdatedAt = now
}

// LeadFilters narrows the admin lead list
type LeadFilters struct {
	Status   []LeadStatus
	Source   []Source
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
}
