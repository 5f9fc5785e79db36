package pricing

import "rentfunnel/internal/domain"

// CalculateRequest is a configurator submission
type CalculateRequest struct {
	VehicleID     string   `json:"vehicle_id" validate:"required"`
	Durata        int      `json:"durata" validate:"required,gt=0"`
	Anticipo      int      `json:"anticipo" validate:"min=0,max=100"`
	KmAnno        int      `json:"km_anno" validate:"min=0"`
	Manutenzione  bool     `json:"manutenzione"`
	Assicurazione bool     `json:"assicurazione"`
	Servizi       []string `json:"servizi"`
}

func (r *CalculateRequest) toInput(userID *string) Input {
	return Input{
		VehicleID: r.VehicleID,
		Params: domain.QuoteParams{
			Durata:        r.Durata,
			Anticipo:      r.Anticipo,
			KmAnno:        r.KmAnno,
			Manutenzione:  r.Manutenzione,
			Assicurazione: r.Assicurazione,
		},
		Servizi: r.Servizi,
		UserID:  userID,
	}
}

type UpdateStatusRequest struct {
	Status domain.QuoteStatus `json:"status" validate:"required,oneof=draft sent accepted rejected expired"`
}

// OptionsResponse lists what the configurator can offer
type OptionsResponse struct {
	Durations []int     `json:"durations"`
	Services  []Service `json:"services"`
}

type QuoteListResponse struct {
	Quotes []domain.Quote `json:"quotes"`
	Total  int            `json:"total"`
}

// ConfiguratorRequest is a partial configurator update; absent fields are kept
type ConfiguratorRequest struct {
	Step          *int     `json:"step" validate:"omitempty,min=1,max=4"`
	VehicleID     *string  `json:"vehicle_id"`
	Durata        *int     `json:"durata" validate:"omitempty,gt=0"`
	Anticipo      *int     `json:"anticipo" validate:"omitempty,min=0,max=100"`
	KmAnno        *int     `json:"km_anno" validate:"omitempty,gt=0"`
	Manutenzione  *bool    `json:"manutenzione"`
	Assicurazione *bool    `json:"assicurazione"`
	Servizi       []string `json:"servizi"`
	QuoteID       *string  `json:"quote_id"`
	EntrySource   *string  `json:"entry_source"`
	EntryCampaign *string  `json:"entry_campaign"`
}

func (r *ConfiguratorRequest) update() ConfiguratorUpdate {
	return ConfiguratorUpdate{
		Step:          r.Step,
		VehicleID:     r.VehicleID,
		Durata:        r.Durata,
		Anticipo:      r.Anticipo,
		KmAnno:        r.KmAnno,
		Manutenzione:  r.Manutenzione,
		Assicurazione: r.Assicurazione,
		Servizi:       r.Servizi,
		QuoteID:       r.QuoteID,
		EntrySource:   r.EntrySource,
		EntryCampaign: r.EntryCampaign,
	}
}
