package admin

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/domain/attribution"
	"rentfunnel/internal/storage"
)

const (
	topVehiclesLimit = 5
	analyticsDays    = 30
	quoteLookups     = 8
)

type Service struct {
	leads    LeadPipeline
	vehicles VehicleReader
	quotes   QuoteReader
	tz       *time.Location
	now      func() time.Time
}

// NewService creates the back office service. Calendar buckets (today,
// this month, daily series, CSV dates) are computed in tz.
func NewService(leads LeadPipeline, vehicles VehicleReader, quotes QuoteReader, tz *time.Location) *Service {
	if tz == nil {
		tz = time.UTC
	}
	return &Service{
		leads:    leads,
		vehicles: vehicles,
		quotes:   quotes,
		tz:       tz,
		now:      time.Now,
	}
}

// WithClock replaces the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Location is the timezone used for calendar buckets
func (s *Service) Location() *time.Location {
	return s.tz
}

// snapshot loads leads and the catalog concurrently
func (s *Service) snapshot(ctx context.Context) ([]domain.Lead, map[string]*domain.Vehicle, error) {
	var (
		leads    []domain.Lead
		vehicles []domain.Vehicle
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = s.leads.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		vehicles, err = s.vehicles.GetAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	byID := make(map[string]*domain.Vehicle, len(vehicles))
	for i := range vehicles {
		byID[vehicles[i].ID] = &vehicles[i]
	}
	return leads, byID, nil
}

// ListLeads returns the filtered leads, newest first, with vehicle details
func (s *Service) ListLeads(ctx context.Context, f domain.LeadFilters) ([]LeadWithDetails, error) {
	leads, vehicles, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]LeadWithDetails, 0, len(leads))
	for _, l := range leads {
		if !matches(l, f) {
			continue
		}
		out = append(out, enrich(l, vehicles))
	}
	return out, nil
}

func (s *Service) GetLead(ctx context.Context, id string) (*LeadWithDetails, error) {
	leads, vehicles, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range leads {
		if l.ID == id {
			out := enrich(l, vehicles)
			return &out, nil
		}
	}
	return nil, storage.NotFound("lead", id)
}

// UpdateStatus moves a lead along the pipeline on behalf of adminID
func (s *Service) UpdateStatus(ctx context.Context, adminID, id string, status domain.LeadStatus, notes string) (*domain.Lead, error) {
	l, err := s.leads.UpdateStatus(ctx, id, status, notes)
	if err != nil {
		return nil, err
	}
	zap.L().Info("admin updated lead",
		zap.String("admin_id", adminID),
		zap.String("lead_id", id),
		zap.String("status", string(status)),
	)
	return l, nil
}

func enrich(l domain.Lead, vehicles map[string]*domain.Vehicle) LeadWithDetails {
	out := LeadWithDetails{Lead: l}
	if l.VehicleID != nil {
		if v, ok := vehicles[*l.VehicleID]; ok {
			out.Vehicle = summarize(v)
		}
	}
	return out
}

func matches(l domain.Lead, f domain.LeadFilters) bool {
	if len(f.Status) > 0 && !containsStatus(f.Status, l.Status) {
		return false
	}
	if len(f.Source) > 0 && !containsSource(f.Source, l.Source) {
		return false
	}
	if f.DateFrom != nil && l.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && l.CreatedAt.After(*f.DateTo) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(l.Nome), q) ||
			strings.Contains(strings.ToLower(l.Cognome), q) ||
			strings.Contains(strings.ToLower(l.Email), q) ||
			strings.Contains(strings.ToLower(l.Azienda), q)
	}
	return true
}

func containsStatus(list []domain.LeadStatus, s domain.LeadStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsSource(list []domain.Source, s domain.Source) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Dashboard aggregates the lead pipeline
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	leads, vehicles, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.tz)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	stats := &DashboardStats{
		Leads: LeadStats{
			Total:    len(leads),
			ByStatus: make(map[domain.LeadStatus]int, len(domain.AllLeadStatuses)),
			BySource: make(map[domain.Source]int, len(domain.AllSources)),
		},
	}
	for _, st := range domain.AllLeadStatuses {
		stats.Leads.ByStatus[st] = 0
	}
	for _, src := range domain.AllSources {
		stats.Leads.BySource[src] = 0
	}

	requested := make(map[string]int)
	var quoteIDs []string
	won := 0
	for _, l := range leads {
		created := l.CreatedAt.In(s.tz)
		today := sameDay(created, now)
		thisWeek := !created.Before(weekAgo)

		if today {
			stats.Leads.Today++
		}
		if thisWeek {
			stats.Leads.ThisWeek++
		}
		if created.Year() == now.Year() && created.Month() == now.Month() {
			stats.Leads.ThisMonth++
		}
		stats.Leads.ByStatus[l.Status]++
		stats.Leads.BySource[l.Source]++
		if l.Status == domain.LeadWon {
			won++
		}

		if l.QuoteID != nil {
			stats.Quotes.Total++
			if today {
				stats.Quotes.Today++
			}
			if thisWeek {
				stats.Quotes.ThisWeek++
			}
			quoteIDs = append(quoteIDs, *l.QuoteID)
		}
		if l.VehicleID != nil {
			requested[*l.VehicleID]++
		}
	}

	stats.Conversions.LeadToQuote = percent(stats.Quotes.Total, len(leads))
	stats.Conversions.LeadToWon = percent(won, len(leads))
	stats.MostRequested = topVehicles(requested, vehicles, topVehiclesLimit)

	avg, err := s.averageQuote(ctx, quoteIDs)
	if err != nil {
		return nil, err
	}
	stats.Quotes.AvgValue = avg
	return stats, nil
}

// averageQuote is the mean monthly total of the quotes still in storage
func (s *Service) averageQuote(ctx context.Context, ids []string) (int64, error) {
	if s.quotes == nil || len(ids) == 0 {
		return 0, nil
	}

	var (
		mu    sync.Mutex
		sum   int64
		count int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(quoteLookups)
	for _, id := range ids {
		g.Go(func() error {
			q, err := s.quotes.GetByID(gctx, id)
			if storage.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			sum += q.Pricing.Totale
			count++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	return (sum + count/2) / count, nil
}

func topVehicles(counts map[string]int, vehicles map[string]*domain.Vehicle, limit int) []VehicleStat {
	out := make([]VehicleStat, 0, len(counts))
	for id, n := range counts {
		name := "Unknown"
		if v, ok := vehicles[id]; ok {
			name = v.DisplayName()
		}
		out = append(out, VehicleStat{VehicleID: id, VehicleName: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].VehicleID < out[j].VehicleID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Analytics builds the daily series for the last 30 days and per-source,
// per-step and per-canone breakdowns
func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.tz)
	daily := make([]DailyStat, analyticsDays)
	index := make(map[string]int, analyticsDays)
	for i := 0; i < analyticsDays; i++ {
		day := now.AddDate(0, 0, i-(analyticsDays-1)).Format(time.DateOnly)
		daily[i] = DailyStat{Date: day}
		index[day] = i
	}

	bySource := make(map[domain.Source]*SourceStat)
	byStep := make(map[domain.FunnelStep]int)
	byCanone := make(map[string]int)
	for _, l := range leads {
		if i, ok := index[l.CreatedAt.In(s.tz).Format(time.DateOnly)]; ok {
			daily[i].Leads++
			if l.QuoteID != nil {
				daily[i].Quotes++
			}
		}

		st, ok := bySource[l.Source]
		if !ok {
			st = &SourceStat{Source: l.Source}
			bySource[l.Source] = st
		}
		st.Leads++
		if l.Status == domain.LeadWon {
			st.Conversions++
		}
		byStep[l.FunnelStep]++
	}

	if err := s.bucketQuotes(ctx, leads, byCanone); err != nil {
		return nil, err
	}

	out := &Analytics{DailyLeads: daily}
	for _, src := range domain.AllSources {
		if st, ok := bySource[src]; ok {
			st.ConversionRate = percent(st.Conversions, st.Leads)
			out.SourceStats = append(out.SourceStats, *st)
		}
	}
	steps := append(append([]domain.FunnelStep{}, domain.FunnelOrder...), domain.StepCheckoutFail, domain.StepWhatsAppClick)
	for _, step := range steps {
		if n := byStep[step]; n > 0 {
			out.FunnelStats = append(out.FunnelStats, FunnelStat{Step: step, Count: n})
		}
	}
	for _, r := range attribution.CanoneRanges {
		out.CanoneStats = append(out.CanoneStats, CanoneStat{Range: r, Count: byCanone[r]})
	}
	return out, nil
}

func (s *Service) bucketQuotes(ctx context.Context, leads []domain.Lead, buckets map[string]int) error {
	if s.quotes == nil {
		return nil
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(quoteLookups)
	for _, l := range leads {
		if l.QuoteID == nil {
			continue
		}
		id := *l.QuoteID
		g.Go(func() error {
			q, err := s.quotes.GetByID(gctx, id)
			if storage.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			buckets[attribution.CanoneRange(q.Pricing.Totale)]++
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// percent rounds part/total*100 half up
func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return (part*200 + total) / (total * 2)
}
