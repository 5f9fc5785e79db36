package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/domain/lead"
	"rentfunnel/internal/storage"
	"rentfunnel/internal/storage/memory"
)

var (
	testZone = time.FixedZone("CET", 3600)
	testNow  = time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc      *Service
	provider *memory.Provider
	leads    *lead.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	clock := func() time.Time { return testNow }
	p := memory.New(memory.WithClock(clock))
	ls := lead.NewService(p.Leads(), nil, storage.RetryConfig{MaxAttempts: 1}).WithClock(clock)
	svc := NewService(ls, p.Vehicles(), p.Quotes(), testZone).WithClock(clock)
	return &fixture{svc: svc, provider: p, leads: ls}
}

func strPtr(s string) *string { return &s }

type leadOpt func(*domain.Lead)

func withVehicle(id string) leadOpt { return func(l *domain.Lead) { l.VehicleID = strPtr(id) } }
func withQuote(id string) leadOpt   { return func(l *domain.Lead) { l.QuoteID = strPtr(id) } }
func withStatus(s domain.LeadStatus) leadOpt {
	return func(l *domain.Lead) { l.Status = s }
}
func withSource(s domain.Source) leadOpt { return func(l *domain.Lead) { l.Source = s } }
func withStep(s domain.FunnelStep) leadOpt {
	return func(l *domain.Lead) { l.FunnelStep = s }
}

func (f *fixture) addLead(t *testing.T, id string, created time.Time, opts ...leadOpt) domain.Lead {
	t.Helper()
	l := &domain.Lead{
		ID:              id,
		IdempotencyKey:  "key-" + id,
		Nome:            "Mario",
		Cognome:         "Rossi",
		Email:           id + "@example.it",
		Telefono:        "+393331234567",
		PrivacyAccepted: true,
		FunnelStep:      domain.StepContactForm,
		Source:          domain.SourceDirect,
		Status:          domain.LeadNew,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(l)
	}
	stored, err := f.provider.Leads().Create(context.Background(), l)
	require.NoError(t, err)
	return *stored
}

func (f *fixture) addQuote(t *testing.T, id string, monthly int64) {
	t.Helper()
	_, err := f.provider.Quotes().Create(context.Background(), &domain.Quote{
		ID:        id,
		VehicleID: "veh-vw-golf",
		Pricing:   domain.QuotePricing{Totale: monthly},
		Status:    domain.QuoteDraft,
		CreatedAt: testNow,
	})
	require.NoError(t, err)
}

func TestService_ListLeads_Filters(t *testing.T) {
	f := setup(t)
	f.addLead(t, "l1", testNow.Add(-72*time.Hour), withStatus(domain.LeadWon), withSource(domain.SourceGoogleAds))
	f.addLead(t, "l2", testNow.Add(-2*time.Hour), withVehicle("veh-vw-golf"))
	f.addLead(t, "l3", testNow.Add(-time.Hour), withSource(domain.SourceInstagramAds))

	tests := []struct {
		name    string
		filters domain.LeadFilters
		want    []string
	}{
		{"no filters newest first", domain.LeadFilters{}, []string{"l3", "l2", "l1"}},
		{"status", domain.LeadFilters{Status: []domain.LeadStatus{domain.LeadWon}}, []string{"l1"}},
		{"source", domain.LeadFilters{Source: []domain.Source{domain.SourceInstagramAds, domain.SourceGoogleAds}}, []string{"l3", "l1"}},
		{"search email case-insensitive", domain.LeadFilters{Search: "L2@EXAMPLE"}, []string{"l2"}},
		{"search no match", domain.LeadFilters{Search: "zzz"}, []string{}},
		{"date from", domain.LeadFilters{DateFrom: timePtr(testNow.Add(-3 * time.Hour))}, []string{"l3", "l2"}},
		{"date to", domain.LeadFilters{DateTo: timePtr(testNow.Add(-90 * time.Minute))}, []string{"l2", "l1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.ListLeads(context.Background(), tt.filters)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, l := range got {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestService_ListLeads_EnrichesVehicle(t *testing.T) {
	f := setup(t)
	f.addLead(t, "l1", testNow, withVehicle("veh-vw-golf"))
	f.addLead(t, "l2", testNow, withVehicle("veh-gone"))

	got, err := f.svc.ListLeads(context.Background(), domain.LeadFilters{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := map[string]LeadWithDetails{got[0].ID: got[0], got[1].ID: got[1]}
	require.NotNil(t, byID["l1"].Vehicle)
	assert.Equal(t, "Volkswagen", byID["l1"].Vehicle.Marca)
	assert.Equal(t, "Golf", byID["l1"].Vehicle.Modello)
	assert.Nil(t, byID["l2"].Vehicle)
}

func TestService_GetLead(t *testing.T) {
	f := setup(t)
	f.addLead(t, "l1", testNow, withVehicle("veh-vw-golf"))

	l, err := f.svc.GetLead(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, "veh-vw-golf", l.Vehicle.ID)

	_, err = f.svc.GetLead(context.Background(), "missing")
	assert.True(t, storage.IsNotFound(err))
}

func TestService_UpdateStatus(t *testing.T) {
	f := setup(t)
	f.addLead(t, "l1", testNow)

	l, err := f.svc.UpdateStatus(context.Background(), "admin-1", "l1", domain.LeadWon, "signed")
	require.NoError(t, err)
	assert.Equal(t, domain.LeadWon, l.Status)
	assert.Equal(t, "signed", l.Notes)
	require.NotNil(t, l.ConvertedAt)

	_, err = f.svc.UpdateStatus(context.Background(), "admin-1", "missing", domain.LeadLost, "")
	assert.True(t, storage.IsNotFound(err))
}

func TestService_Dashboard(t *testing.T) {
	f := setup(t)
	f.addQuote(t, "q1", 429)
	f.addQuote(t, "q2", 412)

	// 23:30 UTC on the 14th is already the 15th in CET
	f.addLead(t, "today-cet", time.Date(2025, 4, 14, 23, 30, 0, 0, time.UTC),
		withQuote("q1"), withVehicle("veh-vw-golf"), withSource(domain.SourceInstagramAds))
	f.addLead(t, "today", testNow.Add(-time.Hour),
		withQuote("q2"), withVehicle("veh-vw-golf"), withStatus(domain.LeadWon))
	f.addLead(t, "week", testNow.Add(-5*24*time.Hour),
		withQuote("q-deleted"), withVehicle("veh-fiat-500"))
	f.addLead(t, "month", testNow.Add(-10*24*time.Hour), withVehicle("veh-unknown"))
	f.addLead(t, "old", time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC), withStatus(domain.LeadLost))

	stats, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Leads.Total)
	assert.Equal(t, 2, stats.Leads.Today)
	assert.Equal(t, 3, stats.Leads.ThisWeek)
	assert.Equal(t, 4, stats.Leads.ThisMonth)

	assert.Len(t, stats.Leads.ByStatus, len(domain.AllLeadStatuses))
	assert.Equal(t, 3, stats.Leads.ByStatus[domain.LeadNew])
	assert.Equal(t, 1, stats.Leads.ByStatus[domain.LeadWon])
	assert.Equal(t, 0, stats.Leads.ByStatus[domain.LeadContacted])
	assert.Len(t, stats.Leads.BySource, len(domain.AllSources))
	assert.Equal(t, 1, stats.Leads.BySource[domain.SourceInstagramAds])
	assert.Equal(t, 4, stats.Leads.BySource[domain.SourceDirect])

	assert.Equal(t, 3, stats.Quotes.Total)
	assert.Equal(t, 2, stats.Quotes.Today)
	assert.Equal(t, 3, stats.Quotes.ThisWeek)
	// q-deleted is skipped: (429 + 412) / 2 rounded
	assert.Equal(t, int64(421), stats.Quotes.AvgValue)

	assert.Equal(t, 60, stats.Conversions.LeadToQuote)
	assert.Equal(t, 20, stats.Conversions.LeadToWon)

	require.Len(t, stats.MostRequested, 3)
	assert.Equal(t, VehicleStat{VehicleID: "veh-vw-golf", VehicleName: "Volkswagen Golf", Count: 2}, stats.MostRequested[0])
	assert.Equal(t, "veh-fiat-500", stats.MostRequested[1].VehicleID)
	assert.Equal(t, "Unknown", stats.MostRequested[2].VehicleName)
}

func TestService_Dashboard_Empty(t *testing.T) {
	f := setup(t)

	stats, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Leads.Total)
	assert.Zero(t, stats.Conversions.LeadToQuote)
	assert.Empty(t, stats.MostRequested)
}

func TestService_Dashboard_TopFiveOnly(t *testing.T) {
	f := setup(t)
	vehicles := []string{"veh-fiat-500", "veh-vw-golf", "veh-jeep-compass", "veh-tesla-model3", "veh-bmw-x1", "veh-audi-a4"}
	for i, v := range vehicles {
		for n := 0; n <= i; n++ {
			f.addLead(t, v+"-"+string(rune('a'+n)), testNow, withVehicle(v))
		}
	}

	stats, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, stats.MostRequested, 5)
	assert.Equal(t, "veh-audi-a4", stats.MostRequested[0].VehicleID)
	assert.Equal(t, 6, stats.MostRequested[0].Count)
	assert.Equal(t, "veh-vw-golf", stats.MostRequested[4].VehicleID)
}

func TestService_Analytics(t *testing.T) {
	f := setup(t)
	f.addQuote(t, "q1", 429)
	f.addQuote(t, "q2", 199)

	f.addLead(t, "a", testNow, withQuote("q1"), withSource(domain.SourceGoogleAds),
		withStatus(domain.LeadWon), withStep(domain.StepQuoteGenerated))
	f.addLead(t, "b", testNow.Add(-time.Hour), withSource(domain.SourceGoogleAds))
	f.addLead(t, "c", testNow.Add(-24*time.Hour), withQuote("q2"), withSource(domain.SourceGoogleAds),
		withStep(domain.StepWhatsAppClick))
	f.addLead(t, "d", testNow.Add(-40*24*time.Hour), withSource(domain.SourceReferral), withStatus(domain.LeadWon))

	data, err := f.svc.Analytics(context.Background())
	require.NoError(t, err)

	require.Len(t, data.DailyLeads, 30)
	first, last := data.DailyLeads[0], data.DailyLeads[29]
	assert.Equal(t, "2025-03-17", first.Date)
	assert.Equal(t, "2025-04-15", last.Date)
	assert.Equal(t, DailyStat{Date: "2025-04-15", Leads: 2, Quotes: 1}, last)
	assert.Equal(t, DailyStat{Date: "2025-04-14", Leads: 1, Quotes: 1}, data.DailyLeads[28])

	total := 0
	for _, d := range data.DailyLeads {
		total += d.Leads
	}
	assert.Equal(t, 3, total, "lead older than 30 days is outside the series")

	assert.Equal(t, []SourceStat{
		{Source: domain.SourceGoogleAds, Leads: 3, Conversions: 1, ConversionRate: 33},
		{Source: domain.SourceReferral, Leads: 1, Conversions: 1, ConversionRate: 100},
	}, data.SourceStats)

	assert.Equal(t, []FunnelStat{
		{Step: domain.StepQuoteGenerated, Count: 1},
		{Step: domain.StepContactForm, Count: 2},
		{Step: domain.StepWhatsAppClick, Count: 1},
	}, data.FunnelStats)

	require.Len(t, data.CanoneStats, 6)
	assert.Equal(t, CanoneStat{Range: "0-200", Count: 1}, data.CanoneStats[0])
	assert.Equal(t, CanoneStat{Range: "400-500", Count: 1}, data.CanoneStats[3])
	assert.Equal(t, 0, data.CanoneStats[5].Count)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, percent(0, 0))
	assert.Equal(t, 33, percent(1, 3))
	assert.Equal(t, 67, percent(2, 3))
	assert.Equal(t, 50, percent(1, 2))
	assert.Equal(t, 100, percent(4, 4))
}
