package domain

import "time"

// QuoteStatus tracks what happened to a quote after it was issued
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRejected QuoteStatus = "rejected"
	QuoteExpired  QuoteStatus = "expired"
)

// QuoteVehicle is the vehicle snapshot taken when the quote was priced
type QuoteVehicle struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Marca    string `json:"marca"`
	Modello  string `json:"modello"`
	Versione string `json:"versione"`
	Immagine string `json:"immagine"`
}

// QuoteParams are the contract parameters of a rental configuration
type QuoteParams struct {
	Durata        int  `json:"durata"`
	Anticipo      int  `json:"anticipo"`
	KmAnno        int  `json:"km_anno"`
	Manutenzione  bool `json:"manutenzione"`
	Assicurazione bool `json:"assicurazione"`
}

// QuotePricing is the price breakdown, in whole currency units
type QuotePricing struct {
	CanoneBase     int64 `json:"canone_base"`
	ServiziExtra   int64 `json:"servizi_extra"`
	ScontoAnticipo int64 `json:"sconto_anticipo"`
	Subtotale      int64 `json:"subtotale"`
	Iva            int64 `json:"iva"`
	Totale         int64 `json:"totale"`
	TotalePeriodo  int64 `json:"totale_periodo"`
}

// Quote is an immutable priced configuration. Only Status and UserID may
// change after creation.
type Quote struct {
	ID         string       `json:"id"`
	UserID     *string      `json:"user_id"`
	VehicleID  string       `json:"vehicle_id"`
	Vehicle    QuoteVehicle `json:"vehicle"`
	Params     QuoteParams  `json:"params"`
	Servizi    []string     `json:"servizi"`
	Pricing    QuotePricing `json:"pricing"`
	Status     QuoteStatus  `json:"status"`
	ValidUntil time.Time    `json:"valid_until"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// IsExpired reports whether the validity window has passed at t
func (q *Quote) IsExpired(t time.Time) bool {
	return t.After(q.ValidUntil)
}

// QuoteUpdate carries the fields a quote may change. Nil means unchanged.
type QuoteUpdate struct {
	Status *QuoteStatus
	UserID *string
}
