package pricing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/session"
	"rentfunnel/internal/storage"
)

// ConfiguratorVersion is the blob version of ConfiguratorState. Bump it when
// the layout changes; older blobs are then discarded on read.
const ConfiguratorVersion = 1

const (
	StepParams = iota + 1
	StepServices
	StepSummary
	StepQuote
)

const defaultKm = 15000

// ConfiguratorState is what a visitor has picked so far
type ConfiguratorState struct {
	Step          int                `json:"step"`
	VehicleID     string             `json:"vehicle_id,omitempty"`
	VehicleSlug   string             `json:"vehicle_slug,omitempty"`
	Params        domain.QuoteParams `json:"params"`
	Servizi       []string           `json:"servizi"`
	QuoteID       string             `json:"quote_id,omitempty"`
	EntrySource   string             `json:"entry_source,omitempty"`
	EntryCampaign string             `json:"entry_campaign,omitempty"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// DefaultConfiguratorState is the state of a visitor who has not started
func DefaultConfiguratorState() ConfiguratorState {
	return ConfiguratorState{
		Step: StepParams,
		Params: domain.QuoteParams{
			Durata:        36,
			Anticipo:      0,
			KmAnno:        defaultKm,
			Manutenzione:  true,
			Assicurazione: true,
		},
		Servizi: []string{},
	}
}

// ConfiguratorUpdate is a partial change. Nil fields are left alone.
type ConfiguratorUpdate struct {
	Step          *int
	VehicleID     *string
	Durata        *int
	Anticipo      *int
	KmAnno        *int
	Manutenzione  *bool
	Assicurazione *bool
	Servizi       []string
	QuoteID       *string
	EntrySource   *string
	EntryCampaign *string
}

func (u ConfiguratorUpdate) touchesPricing() bool {
	return u.VehicleID != nil || u.Durata != nil || u.Anticipo != nil || u.KmAnno != nil ||
		u.Manutenzione != nil || u.Assicurazione != nil || u.Servizi != nil
}

// ConfiguratorService keeps configurator progress in the visitor session
type ConfiguratorService struct {
	store    session.Store
	vehicles storage.VehicleStore
	locks    *session.KeyedMutex
	now      func() time.Time
}

func NewConfiguratorService(store session.Store, vehicles storage.VehicleStore) *ConfiguratorService {
	return &ConfiguratorService{
		store:    store,
		vehicles: vehicles,
		locks:    session.NewKeyedMutex(),
		now:      time.Now,
	}
}

// WithClock replaces the time source
func (s *ConfiguratorService) WithClock(now func() time.Time) *ConfiguratorService {
	s.now = now
	return s
}

// Get returns the stored state or the default one
func (s *ConfiguratorService) Get(ctx context.Context, clientID string) (*ConfiguratorState, error) {
	if clientID == "" {
		return nil, ErrMissingClient
	}
	st, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Update applies u and persists the result. Any change that affects the
// price drops the quote the visitor had, unless u carries a new one.
func (s *ConfiguratorService) Update(ctx context.Context, clientID string, u ConfiguratorUpdate) (*ConfiguratorState, error) {
	if clientID == "" {
		return nil, ErrMissingClient
	}
	if u.Step != nil && (*u.Step < StepParams || *u.Step > StepQuote) {
		return nil, ErrInvalidConfigStep
	}
	if u.Durata != nil && *u.Durata <= 0 {
		return nil, ErrInvalidDuration
	}
	if u.Anticipo != nil && (*u.Anticipo < 0 || *u.Anticipo > 100) {
		return nil, ErrInvalidDownPayment
	}

	unlock := s.locks.Lock(clientID)
	defer unlock()

	st, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if u.touchesPricing() {
		st.QuoteID = ""
	}
	if u.Durata != nil {
		st.Params.Durata = *u.Durata
	}
	if u.Anticipo != nil {
		st.Params.Anticipo = *u.Anticipo
	}
	if u.KmAnno != nil {
		st.Params.KmAnno = *u.KmAnno
	}
	if u.Manutenzione != nil {
		st.Params.Manutenzione = *u.Manutenzione
	}
	if u.Assicurazione != nil {
		st.Params.Assicurazione = *u.Assicurazione
	}
	if u.Servizi != nil {
		st.Servizi = append([]string{}, u.Servizi...)
	}
	if u.VehicleID != nil {
		if err := s.selectVehicle(ctx, &st, *u.VehicleID); err != nil {
			return nil, err
		}
	}
	if u.Step != nil {
		st.Step = *u.Step
	}
	if u.QuoteID != nil {
		st.QuoteID = *u.QuoteID
	}
	if u.EntrySource != nil {
		st.EntrySource = *u.EntrySource
	}
	if u.EntryCampaign != nil {
		st.EntryCampaign = *u.EntryCampaign
	}
	st.UpdatedAt = s.now().UTC()

	if err := session.Save(ctx, s.store, session.ConfiguratorKey(clientID), ConfiguratorVersion, st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Clear forgets the configurator progress
func (s *ConfiguratorService) Clear(ctx context.Context, clientID string) error {
	if clientID == "" {
		return ErrMissingClient
	}
	unlock := s.locks.Lock(clientID)
	defer unlock()
	return s.store.Remove(ctx, session.ConfiguratorKey(clientID))
}

// selectVehicle sets the vehicle and snaps the mileage to one it offers.
// An empty id clears the selection.
func (s *ConfiguratorService) selectVehicle(ctx context.Context, st *ConfiguratorState, id string) error {
	if id == "" {
		st.VehicleID, st.VehicleSlug = "", ""
		return nil
	}
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	st.VehicleID, st.VehicleSlug = v.ID, v.Slug
	if !v.AllowsKm(st.Params.KmAnno) {
		km := defaultKm
		if len(v.KmAnno) > 0 {
			km = v.KmAnno[0]
		}
		zap.L().Debug("configurator mileage snapped to vehicle offer",
			zap.String("vehicle_id", v.ID),
			zap.Int("requested", st.Params.KmAnno),
			zap.Int("km_anno", km),
		)
		st.Params.KmAnno = km
	}
	return nil
}

func (s *ConfiguratorService) load(ctx context.Context, clientID string) (ConfiguratorState, error) {
	st, ok, err := session.Load[ConfiguratorState](ctx, s.store, session.ConfiguratorKey(clientID), ConfiguratorVersion)
	if err != nil {
		return ConfiguratorState{}, err
	}
	if !ok {
		return DefaultConfiguratorState(), nil
	}
	if st.Servizi == nil {
		st.Servizi = []string{}
	}
	return st, nil
}
