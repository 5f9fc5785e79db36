package lead

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/domain/attribution"
	"rentfunnel/internal/storage"
)

// Notifier is told about pipeline changes, e.g. the admin live feed
type Notifier interface {
	LeadCreated(ctx context.Context, l *domain.Lead)
	LeadStatusChanged(ctx context.Context, l *domain.Lead, from domain.LeadStatus)
}

type nopNotifier struct{}

func (nopNotifier) LeadCreated(context.Context, *domain.Lead)                             {}
func (nopNotifier) LeadStatusChanged(context.Context, *domain.Lead, domain.LeadStatus) {}

// Service handles lead ingestion and the CRM pipeline
type Service struct {
	leads    storage.LeadStore
	notifier Notifier
	retry    storage.RetryConfig
	now      func() time.Time
}

// NewService creates lead service. A nil notifier disables notifications.
func NewService(leads storage.LeadStore, notifier Notifier, retry storage.RetryConfig) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Service{
		leads:    leads,
		notifier: notifier,
		retry:    retry,
		now:      time.Now,
	}
}

// WithClock replaces the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// NewIdempotencyKey returns a fresh client-side deduplication key
func NewIdempotencyKey() string {
	return "lead_" + uuid.NewString()
}

// CreateLead stores a contact form submission. A key that was already used
// returns the original lead untouched, before the form is even validated.
func (s *Service) CreateLead(ctx context.Context, form Form, key string, lc Context, snap *attribution.Snapshot) (*Result, error) {
	return s.ingest(ctx, key, func() (*domain.Lead, *FieldError) {
		f := normalizeForm(form)
		if err := validateForm(f); err != nil {
			return nil, err
		}
		l := s.newLead(lc, snap)
		l.Nome = f.Nome
		l.Cognome = f.Cognome
		l.Email = f.Email
		l.Telefono = f.Telefono
		l.Azienda = f.Azienda
		l.PartitaIva = f.PartitaIva
		l.Messaggio = f.Messaggio
		l.PrivacyAccepted = f.PrivacyAccepted
		l.MarketingAccepted = f.MarketingAccepted
		return l, nil
	})
}

// CreateQuickLead stores a name + phone callback request. The full name is
// split on the first space; email is left empty.
func (s *Service) CreateQuickLead(ctx context.Context, form QuickForm, key string, lc Context, snap *attribution.Snapshot) (*Result, error) {
	return s.ingest(ctx, key, func() (*domain.Lead, *FieldError) {
		nome, cognome := splitName(form.Nome)
		if err := validateName("nome", nome); err != nil {
			return nil, err
		}
		telefono := NormalizePhone(form.Telefono)
		if err := validatePhone(telefono); err != nil {
			return nil, err
		}
		if !form.PrivacyAccepted {
			return nil, fieldError("privacy_accepted", "privacy policy must be accepted")
		}
		l := s.newLead(lc, snap)
		l.Nome = nome
		l.Cognome = cognome
		l.Telefono = telefono
		l.PrivacyAccepted = true
		return l, nil
	})
}

func (s *Service) ingest(ctx context.Context, key string, build func() (*domain.Lead, *FieldError)) (*Result, error) {
	key = strings.TrimSpace(key)
	if key != "" {
		existing, err := s.leads.GetByIdempotencyKey(ctx, key)
		if err == nil {
			zap.L().Info("lead resubmitted", zap.String("lead_id", existing.ID), zap.String("idempotency_key", key))
			return &Result{Lead: existing, Duplicate: true}, nil
		}
		if !storage.IsNotFound(err) {
			return nil, err
		}
	} else {
		key = NewIdempotencyKey()
	}

	l, ferr := build()
	if ferr != nil {
		return nil, ferr
	}
	l.IdempotencyKey = key

	retry := s.retry
	retry.OnRetry = func(attempt int, err error) {
		zap.L().Warn("lead create retry",
			zap.Int("attempt", attempt),
			zap.String("idempotency_key", key),
			zap.Error(err),
		)
	}
	stored, err := storage.Retry(ctx, retry, func(ctx context.Context) (*domain.Lead, error) {
		return s.leads.Create(ctx, l)
	})
	if err != nil {
		return nil, err
	}

	// a concurrent submission with the same key won the insert
	if stored.ID != l.ID {
		return &Result{Lead: stored, Duplicate: true}, nil
	}

	zap.L().Info("lead created",
		zap.String("lead_id", stored.ID),
		zap.String("source", string(stored.Source)),
		zap.String("funnel_step", string(stored.FunnelStep)),
	)
	s.notifier.LeadCreated(ctx, stored)
	return &Result{Lead: stored}, nil
}

func (s *Service) newLead(lc Context, snap *attribution.Snapshot) *domain.Lead {
	now := s.now()
	l := &domain.Lead{
		ID:         uuid.NewString(),
		UserID:     lc.UserID,
		VehicleID:  lc.VehicleID,
		QuoteID:    lc.QuoteID,
		FunnelStep: lc.step(snap),
		Source:     domain.SourceDirect,
		Status:     domain.LeadNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if snap != nil {
		if snap.Source != "" {
			l.Source = snap.Source
		}
		l.UTMSource = snap.UTMSource
		l.UTMMedium = snap.UTMMedium
		l.UTMCampaign = snap.UTMCampaign
		l.UTMContent = snap.UTMContent
	}
	return l
}

// UpdateStatus moves a lead along the pipeline. Any transition is allowed.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, notes string) (*domain.Lead, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	before, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.leads.UpdateStatus(ctx, id, status, strings.TrimSpace(notes))
	if err != nil {
		return nil, err
	}

	zap.L().Info("lead status changed",
		zap.String("lead_id", id),
		zap.String("from", string(before.Status)),
		zap.String("to", string(updated.Status)),
	)
	s.notifier.LeadStatusChanged(ctx, updated, before.Status)
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	return s.leads.GetByID(ctx, id)
}

// List returns every lead, newest first
func (s *Service) List(ctx context.Context) ([]domain.Lead, error) {
	return s.leads.List(ctx)
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]domain.Lead, error) {
	return s.leads.ListByUser(ctx, userID)
}
