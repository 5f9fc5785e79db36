package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/storage"
)

// DefaultValidity is how long a quote stays valid
const DefaultValidity = 30 * 24 * time.Hour

// Input is a configuration to price
type Input struct {
	VehicleID string
	Params    domain.QuoteParams
	Servizi   []string
	UserID    *string
}

var quoteStatuses = []domain.QuoteStatus{
	domain.QuoteDraft, domain.QuoteSent, domain.QuoteAccepted, domain.QuoteRejected, domain.QuoteExpired,
}

func validStatus(s domain.QuoteStatus) bool {
	for _, v := range quoteStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// QuoteService builds and stores quotes
type QuoteService struct {
	vehicles storage.VehicleStore
	quotes   storage.QuoteStore
	validity time.Duration
	now      func() time.Time
}

func NewQuoteService(vehicles storage.VehicleStore, quotes storage.QuoteStore, validity time.Duration) *QuoteService {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &QuoteService{
		vehicles: vehicles,
		quotes:   quotes,
		validity: validity,
		now:      time.Now,
	}
}

// WithClock replaces the time source
func (s *QuoteService) WithClock(now func() time.Time) *QuoteService {
	s.now = now
	return s
}

// Validate checks the contract parameters
func Validate(p domain.QuoteParams) error {
	if p.Durata <= 0 {
		return ErrInvalidDuration
	}
	if p.Anticipo < 0 || p.Anticipo > 100 {
		return ErrInvalidDownPayment
	}
	return nil
}

// Calculate prices in against the current catalogue without storing it
func (s *QuoteService) Calculate(ctx context.Context, in Input) (*domain.Quote, error) {
	if err := Validate(in.Params); err != nil {
		return nil, err
	}

	vehicle, err := s.vehicles.GetByID(ctx, in.VehicleID)
	if err != nil {
		return nil, err
	}
	if !vehicle.AllowsKm(in.Params.KmAnno) {
		zap.L().Warn("quote mileage not offered for vehicle",
			zap.String("vehicle_id", vehicle.ID),
			zap.Int("km_anno", in.Params.KmAnno),
			zap.Ints("allowed", vehicle.KmAnno),
		)
	}

	servizi := append([]string{}, in.Servizi...)
	now := s.now()
	return &domain.Quote{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		VehicleID: vehicle.ID,
		Vehicle: domain.QuoteVehicle{
			ID:       vehicle.ID,
			Slug:     vehicle.Slug,
			Marca:    vehicle.Marca,
			Modello:  vehicle.Modello,
			Versione: vehicle.Versione,
			Immagine: vehicle.FirstImage(),
		},
		Params:     in.Params,
		Servizi:    servizi,
		Pricing:    Calculate(vehicle.CanoneBase, in.Params, servizi),
		Status:     domain.QuoteDraft,
		ValidUntil: now.Add(s.validity),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Save prices in and persists the result
func (s *QuoteService) Save(ctx context.Context, in Input) (*domain.Quote, error) {
	q, err := s.Calculate(ctx, in)
	if err != nil {
		return nil, err
	}
	saved, err := s.quotes.Create(ctx, q)
	if err != nil {
		return nil, err
	}
	zap.L().Info("quote saved",
		zap.String("quote_id", saved.ID),
		zap.String("vehicle_id", saved.VehicleID),
		zap.Int64("totale", saved.Pricing.Totale),
	)
	return s.present(saved), nil
}

// Get returns a stored quote. Open quotes past their validity are reported
// as expired.
func (s *QuoteService) Get(ctx context.Context, id string) (*domain.Quote, error) {
	q, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.present(q), nil
}

func (s *QuoteService) ListMine(ctx context.Context, userID string) ([]domain.Quote, error) {
	list, err := s.quotes.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = *s.present(&list[i])
	}
	return list, nil
}

// UpdateStatus changes the status of a quote owned by userID
func (s *QuoteService) UpdateStatus(ctx context.Context, id, userID string, status domain.QuoteStatus) (*domain.Quote, error) {
	if !validStatus(status) {
		return nil, ErrInvalidStatus
	}
	if _, err := s.owned(ctx, id, userID); err != nil {
		return nil, err
	}
	q, err := s.quotes.Update(ctx, id, domain.QuoteUpdate{Status: &status})
	if err != nil {
		return nil, err
	}
	return s.present(q), nil
}

// Claim assigns an anonymous quote to userID
func (s *QuoteService) Claim(ctx context.Context, id, userID string) (*domain.Quote, error) {
	q, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.UserID != nil {
		if *q.UserID == userID {
			return s.present(q), nil
		}
		return nil, ErrAlreadyClaimed
	}
	q, err = s.quotes.Update(ctx, id, domain.QuoteUpdate{UserID: &userID})
	if err != nil {
		return nil, err
	}
	return s.present(q), nil
}

func (s *QuoteService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	return s.quotes.Delete(ctx, id)
}

func (s *QuoteService) owned(ctx context.Context, id, userID string) (*domain.Quote, error) {
	q, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.UserID == nil || *q.UserID != userID {
		return nil, ErrQuoteNotOwned
	}
	return q, nil
}

func (s *QuoteService) present(q *domain.Quote) *domain.Quote {
	if (q.Status == domain.QuoteDraft || q.Status == domain.QuoteSent) && q.IsExpired(s.now()) {
		q.Status = domain.QuoteExpired
	}
	return q
}
