package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/domain/attribution"
	"rentfunnel/internal/domain/lead"
	"rentfunnel/internal/domain/pricing"
	"rentfunnel/internal/repository"
	"rentfunnel/internal/storage"
)

var demoCount int

var demoNames = []struct{ nome, cognome, azienda string }{
	{"Marco", "Rossi", ""},
	{"Giulia", "Bianchi", "Bianchi Srl"},
	{"Luca", "Ferrari", ""},
	{"Sara", "Esposito", "Studio Esposito"},
	{"Andrea", "Romano", ""},
	{"Chiara", "Colombo", "Colombo Logistica"},
	{"Paolo", "Ricci", ""},
}

var demoVehicles = []string{
	"veh-fiat-500", "veh-vw-golf", "veh-jeep-compass", "veh-bmw-x1", "veh-toyota-yaris", "veh-fiat-ducato",
}

var demoSteps = []domain.FunnelStep{
	domain.StepContactForm, domain.StepQuoteGenerated, domain.StepVehicleDetail, domain.StepCheckout,
}

var demoStatuses = []domain.LeadStatus{
	domain.LeadNew, domain.LeadNew, domain.LeadContacted, domain.LeadQualified, domain.LeadWon, domain.LeadLost,
}

var demoCmd = &cobra.Command{
	Use:   "demo-leads",
	Short: "Create sample leads spread over the last 30 days",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if demoCount < 1 {
			return eris.New("demo-leads: --count must be positive")
		}

		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()

		p, err := repository.New(ctx, db)
		if err != nil {
			return eris.Wrap(err, "demo-leads")
		}

		now := time.Now()
		clock := now
		tick := func() time.Time { return clock }
		leads := lead.NewService(p.Leads(), nil, storage.DefaultRetryConfig()).WithClock(tick)
		quotes := pricing.NewQuoteService(p.Vehicles(), p.Quotes(), cfg.QuoteValidity).WithClock(tick)

		for i := 0; i < demoCount; i++ {
			clock = now.Add(-time.Duration(i*37%(30*24)) * time.Hour)
			person := demoNames[i%len(demoNames)]
			vehicleID := demoVehicles[i%len(demoVehicles)]
			src := domain.AllSources[i%len(domain.AllSources)]

			lc := lead.Context{FunnelStep: demoSteps[i%len(demoSteps)], VehicleID: &vehicleID}
			if i%3 != 2 {
				q, err := quotes.Save(ctx, pricing.Input{
					VehicleID: vehicleID,
					Params:    domain.QuoteParams{Durata: 36, Anticipo: (i % 4) * 10, KmAnno: 15000, Manutenzione: true, Assicurazione: i%2 == 0},
				})
				if err != nil {
					return eris.Wrapf(err, "demo-leads: quote %d", i)
				}
				lc.QuoteID = &q.ID
			}

			res, err := leads.CreateLead(ctx, lead.Form{
				Nome:            person.nome,
				Cognome:         person.cognome,
				Email:           fmt.Sprintf("demo%d@example.it", i),
				Telefono:        fmt.Sprintf("3331234%03d", i%1000),
				Azienda:         person.azienda,
				Messaggio:       "Richiesta generata dal seed demo",
				PrivacyAccepted: true,
			}, fmt.Sprintf("demo-%d", i), lc, &attribution.Snapshot{Source: src})
			if err != nil {
				return eris.Wrapf(err, "demo-leads: lead %d", i)
			}
			if status := demoStatuses[i%len(demoStatuses)]; status != domain.LeadNew && !res.Duplicate {
				if _, err := leads.UpdateStatus(ctx, res.Lead.ID, status, ""); err != nil {
					return eris.Wrapf(err, "demo-leads: status %d", i)
				}
			}
		}

		zap.L().Info("demo leads created", zap.Int("count", demoCount))
		return nil
	},
}

func init() {
	demoCmd.Flags().IntVar(&demoCount, "count", 40, "number of leads")
	rootCmd.AddCommand(demoCmd)
}
