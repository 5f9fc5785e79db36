package admin

import "rentfunnel/internal/domain"

// VehicleSummary is the catalog excerpt shown next to a lead
type VehicleSummary struct {
	ID       string   `json:"id"`
	Slug     string   `json:"slug"`
	Marca    string   `json:"marca"`
	Modello  string   `json:"modello"`
	Versione string   `json:"versione"`
	Immagini []string `json:"immagini"`
}

func summarize(v *domain.Vehicle) *VehicleSummary {
	return &VehicleSummary{
		ID:       v.ID,
		Slug:     v.Slug,
		Marca:    v.Marca,
		Modello:  v.Modello,
		Versione: v.Versione,
		Immagini: v.Immagini,
	}
}

// LeadWithDetails is a lead enriched with its vehicle
type LeadWithDetails struct {
	domain.Lead
	Vehicle *VehicleSummary `json:"vehicle,omitempty"`
}

type LeadStats struct {
	Total     int                       `json:"total"`
	Today     int                       `json:"today"`
	ThisWeek  int                       `json:"this_week"`
	ThisMonth int                       `json:"this_month"`
	ByStatus  map[domain.LeadStatus]int `json:"by_status"`
	BySource  map[domain.Source]int     `json:"by_source"`
}

// QuoteStats counts leads that came with a quote. AvgValue is the mean
// monthly total of those quotes still present in storage.
type QuoteStats struct {
	Total    int   `json:"total"`
	Today    int   `json:"today"`
	ThisWeek int   `json:"this_week"`
	AvgValue int64 `json:"avg_value"`
}

type ConversionStats struct {
	// LeadToQuote is the percentage of leads carrying a quote
	LeadToQuote int `json:"lead_to_quote"`
	// LeadToWon is the percentage of leads currently won
	LeadToWon int `json:"lead_to_won"`
}

type VehicleStat struct {
	VehicleID   string `json:"vehicle_id"`
	VehicleName string `json:"vehicle_name"`
	Count       int    `json:"count"`
}

type DashboardStats struct {
	Leads         LeadStats       `json:"leads"`
	Quotes        QuoteStats      `json:"quotes"`
	Conversions   ConversionStats `json:"conversions"`
	MostRequested []VehicleStat   `json:"most_requested"`
}

type DailyStat struct {
	Date   string `json:"date"`
	Leads  int    `json:"leads"`
	Quotes int    `json:"quotes"`
}

type SourceStat struct {
	Source         domain.Source `json:"source"`
	Leads          int           `json:"leads"`
	Conversions    int           `json:"conversions"`
	ConversionRate int           `json:"conversion_rate"`
}

// FunnelStat counts leads by the funnel step they were submitted from
type FunnelStat struct {
	Step  domain.FunnelStep `json:"step"`
	Count int               `json:"count"`
}

// CanoneStat buckets quoted leads by monthly total
type CanoneStat struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type Analytics struct {
	DailyLeads  []DailyStat  `json:"daily_leads"`
	SourceStats []SourceStat `json:"source_stats"`
	FunnelStats []FunnelStat `json:"funnel_stats"`
	CanoneStats []CanoneStat `json:"canone_stats"`
}
