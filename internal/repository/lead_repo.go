package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/storage"
)

type LeadRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLeadRepository(db *gorm.DB, now func() time.Time) *LeadRepository {
	return &LeadRepository{db: db, now: now}
}

type leadModel struct {
	ID             string `gorm:"column:id;primaryKey;size:64"`
	IdempotencyKey string `gorm:"column:idempotency_key;size:128;uniqueIndex"`

	Nome       string  `gorm:"column:nome"`
	Cognome    string  `gorm:"column:cognome"`
	Email      string  `gorm:"column:email;index"`
	Telefono   string  `gorm:"column:telefono"`
	Azienda    *string `gorm:"column:azienda"`
	PartitaIva *string `gorm:"column:partita_iva"`
	Messaggio  *string `gorm:"column:messaggio;type:text"`

	PrivacyAccepted   bool `gorm:"column:privacy_accepted"`
	MarketingAccepted bool `gorm:"column:marketing_accepted"`

	UserID     *string `gorm:"column:user_id;size:64;index"`
	VehicleID  *string `gorm:"column:vehicle_id;size:64;index"`
	QuoteID    *string `gorm:"column:quote_id;size:64"`
	FunnelStep string  `gorm:"column:funnel_step;size:32"`

	Source      string  `gorm:"column:source;size:32;index"`
	UTMSource   *string `gorm:"column:utm_source"`
	UTMMedium   *string `gorm:"column:utm_medium"`
	UTMCampaign *string `gorm:"column:utm_campaign"`
	UTMContent  *string `gorm:"column:utm_content"`

	Status     string  `gorm:"column:status;size:16;index"`
	Notes      *string `gorm:"column:notes;type:text"`
	AssignedTo *string `gorm:"column:assigned_to"`

	CreatedAt   time.Time  `gorm:"column:created_at;index"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	ConvertedAt *time.Time `gorm:"column:converted_at"`
}

func (leadModel) TableName() string { return "leads" }

func toLeadModel(l *domain.Lead) leadModel {
	return leadModel{
		ID:                l.ID,
		IdempotencyKey:    l.IdempotencyKey,
		Nome:              l.Nome,
		Cognome:           l.Cognome,
		Email:             l.Email,
		Telefono:          l.Telefono,
		Azienda:           nullable(l.Azienda),
		PartitaIva:        nullable(l.PartitaIva),
		Messaggio:         nullable(l.Messaggio),
		PrivacyAccepted:   l.PrivacyAccepted,
		MarketingAccepted: l.MarketingAccepted,
		UserID:            l.UserID,
		VehicleID:         l.VehicleID,
		QuoteID:           l.QuoteID,
		FunnelStep:        string(l.FunnelStep),
		Source:            string(l.Source),
		UTMSource:         l.UTMSource,
		UTMMedium:         l.UTMMedium,
		UTMCampaign:       l.UTMCampaign,
		UTMContent:        l.UTMContent,
		Status:            string(l.Status),
		Notes:             nullable(l.Notes),
		AssignedTo:        nullable(l.AssignedTo),
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
		ConvertedAt:       l.ConvertedAt,
	}
}

func toDomainLead(m leadModel) domain.Lead {
	return domain.Lead{
		ID:                m.ID,
		IdempotencyKey:    m.IdempotencyKey,
		Nome:              m.Nome,
		Cognome:           m.Cognome,
		Email:             m.Email,
		Telefono:          m.Telefono,
		Azienda:           deref(m.Azienda),
		PartitaIva:        deref(m.PartitaIva),
		Messaggio:         deref(m.Messaggio),
		PrivacyAccepted:   m.PrivacyAccepted,
		MarketingAccepted: m.MarketingAccepted,
		UserID:            m.UserID,
		VehicleID:         m.VehicleID,
		QuoteID:           m.QuoteID,
		FunnelStep:        domain.FunnelStep(m.FunnelStep),
		Source:            domain.ParseSource(m.Source),
		UTMSource:         m.UTMSource,
		UTMMedium:         m.UTMMedium,
		UTMCampaign:       m.UTMCampaign,
		UTMContent:        m.UTMContent,
		Status:            domain.LeadStatus(m.Status),
		Notes:             deref(m.Notes),
		AssignedTo:        deref(m.AssignedTo),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		ConvertedAt:       m.ConvertedAt,
	}
}

func toDomainLeads(models []leadModel) []domain.Lead {
	out := make([]domain.Lead, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainLead(m))
	}
	return out
}

// Create inserts l guarded by the unique index on idempotency_key. A
// conflicting insert is not an error: the stored lead is returned.
func (r *LeadRepository) Create(ctx context.Context, l *domain.Lead) (*domain.Lead, error) {
	if l.IdempotencyKey == "" {
		return nil, storage.Validation("idempotency key is required", "idempotency_key")
	}

	m := toLeadModel(l)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "idempotency_key"}}, DoNothing: true}).
		Create(&m)
	if res.Error != nil {
		err := storage.Normalize(res.Error)
		if !storage.IsCode(err, storage.CodeAlreadyExists) {
			return nil, err
		}
	} else if res.RowsAffected == 1 {
		out := toDomainLead(m)
		return &out, nil
	}

	existing, err := r.GetByIdempotencyKey(ctx, l.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("lead insert resolved to existing record",
		zap.String("idempotency_key", l.IdempotencyKey),
		zap.String("lead_id", existing.ID),
	)
	return existing, nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	var m leadModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFoundAs(err, "lead", id)
	}
	l := toDomainLead(m)
	return &l, nil
}

func (r *LeadRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Lead, error) {
	var m leadModel
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&m).Error; err != nil {
		return nil, notFoundAs(err, "lead", key)
	}
	l := toDomainLead(m)
	return &l, nil
}

func (r *LeadRepository) ListByUser(ctx context.Context, userID string) ([]domain.Lead, error) {
	var models []leadModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, storage.Normalize(err)
	}
	return toDomainLeads(models), nil
}

func (r *LeadRepository) List(ctx context.Context) ([]domain.Lead, error) {
	var models []leadModel
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&models).Error; err != nil {
		return nil, storage.Normalize(err)
	}
	return toDomainLeads(models), nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, notes string) (*domain.Lead, error) {
	var out domain.Lead
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m leadModel
		if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
			return err
		}
		l := toDomainLead(m)
		l.ApplyStatus(status, notes, r.now())

		err := tx.Model(&leadModel{}).Where("id = ?", id).Updates(map[string]any{
			"status":       string(l.Status),
			"notes":        nullable(l.Notes),
			"converted_at": l.ConvertedAt,
			"updated_at":   l.UpdatedAt,
		}).Error
		if err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, notFoundAs(err, "lead", id)
	}
	return &out, nil
}
