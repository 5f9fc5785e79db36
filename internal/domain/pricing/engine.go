// Package pricing computes long-term rental quotes and serves the quote API.
package pricing

import (
	"github.com/shopspring/decimal"

	"rentfunnel/internal/domain"
)

// Service is an add-on offered by the configurator
type Service struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
}

const (
	ServiceManutenzione  = "manutenzione"
	ServiceAssicurazione = "assicurazione"
)

var catalogue = []Service{
	{ID: "gps", Label: "GPS e Telemetria", Price: 15, Description: "Localizzazione e monitoraggio veicolo"},
	{ID: "sostituzione", Label: "Veicolo Sostitutivo", Price: 25, Description: "Auto sostitutiva in caso di guasto"},
	{ID: "consegna", Label: "Consegna a Domicilio", Price: 30, Description: "Consegna del veicolo dove preferisci"},
	{ID: "ritiro", Label: "Ritiro a Scadenza", Price: 30, Description: "Ritiro del veicolo a fine contratto"},
	{ID: ServiceManutenzione, Label: "Manutenzione Full", Price: 20, Description: "Manutenzione ordinaria e straordinaria"},
	{ID: ServiceAssicurazione, Label: "Assicurazione RCA", Price: 35, Description: "Copertura assicurativa completa"},
}

var (
	durationMultipliers = map[int]decimal.Decimal{
		12: decimal.NewFromInt(1),
		24: decimal.RequireFromString("0.95"),
		36: decimal.RequireFromString("0.90"),
		48: decimal.RequireFromString("0.85"),
	}
	mileageMultipliers = map[int]decimal.Decimal{
		10000: decimal.NewFromInt(1),
		15000: decimal.RequireFromString("1.10"),
		20000: decimal.RequireFromString("1.20"),
		30000: decimal.RequireFromString("1.35"),
	}

	// each percent of down payment takes 0.2% off the gross fee
	downPaymentRate = decimal.RequireFromString("0.002")
	vatRate         = decimal.RequireFromString("0.22")
	one             = decimal.NewFromInt(1)
)

// Durations lists the priced contract lengths in months
var Durations = []int{12, 24, 36, 48}

// Services returns the add-ons selectable in the configurator. The two
// services driven by the contract flags are not listed.
func Services() []Service {
	out := make([]Service, 0, len(catalogue))
	for _, s := range catalogue {
		if s.ID == ServiceManutenzione || s.ID == ServiceAssicurazione {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ServicePrice returns the monthly price of a service id, 0 when unknown
func ServicePrice(id string) int64 {
	for _, s := range catalogue {
		if s.ID == id {
			return s.Price
		}
	}
	return 0
}

// DurationMultiplier returns the factor for a contract length, 1 when unknown
func DurationMultiplier(months int) decimal.Decimal {
	if m, ok := durationMultipliers[months]; ok {
		return m
	}
	return one
}

// MileageMultiplier returns the factor for an annual mileage, 1 when unknown
func MileageMultiplier(km int) decimal.Decimal {
	if m, ok := mileageMultipliers[km]; ok {
		return m
	}
	return one
}

// Calculate prices a configuration. It is pure: the same inputs always
// give the same breakdown. Amounts are rounded half away from zero to
// whole units at the discount, net and VAT steps.
func Calculate(baseRate int64, params domain.QuoteParams, services []string) domain.QuotePricing {
	adjusted := decimal.NewFromInt(baseRate).
		Mul(DurationMultiplier(params.Durata)).
		Mul(MileageMultiplier(params.KmAnno))

	var included int64
	if params.Manutenzione {
		included += ServicePrice(ServiceManutenzione)
	}
	if params.Assicurazione {
		included += ServicePrice(ServiceAssicurazione)
	}

	var extra int64
	for _, id := range services {
		// already paid through the contract flag
		if (id == ServiceManutenzione && params.Manutenzione) || (id == ServiceAssicurazione && params.Assicurazione) {
			continue
		}
		extra += ServicePrice(id)
	}
	extras := included + extra

	gross := adjusted.Add(decimal.NewFromInt(extras))

	discount := decimal.Zero
	if params.Anticipo > 0 {
		discount = gross.Mul(decimal.NewFromInt(int64(params.Anticipo))).Mul(downPaymentRate).Round(0)
	}
	net := gross.Sub(discount).Round(0)
	vat := net.Mul(vatRate).Round(0)
	monthly := net.Add(vat)

	return domain.QuotePricing{
		CanoneBase:     adjusted.Round(0).IntPart(),
		ServiziExtra:   extras,
		ScontoAnticipo: discount.IntPart(),
		Subtotale:      net.IntPart(),
		Iva:            vat.IntPart(),
		Totale:         monthly.IntPart(),
		TotalePeriodo:  monthly.Mul(decimal.NewFromInt(int64(params.Durata))).IntPart(),
	}
}
