package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/storage"
)

type QuoteRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewQuoteRepository(db *gorm.DB, now func() time.Time) *QuoteRepository {
	return &QuoteRepository{db: db, now: now}
}

type quoteModel struct {
	ID         string              `gorm:"column:id;primaryKey;size:64"`
	UserID     *string             `gorm:"column:user_id;size:64;index"`
	VehicleID  string              `gorm:"column:vehicle_id;size:64;index"`
	Vehicle    domain.QuoteVehicle `gorm:"column:vehicle;serializer:json"`
	Params     domain.QuoteParams  `gorm:"column:params;serializer:json"`
	Servizi    []string            `gorm:"column:servizi;serializer:json"`
	Pricing    domain.QuotePricing `gorm:"embedded;embeddedPrefix:pricing_"`
	Status     string              `gorm:"column:status;size:16"`
	ValidUntil time.Time           `gorm:"column:valid_until"`
	CreatedAt  time.Time           `gorm:"column:created_at;index"`
	UpdatedAt  time.Time           `gorm:"column:updated_at"`
}

func (quoteModel) TableName() string { return "quotes" }

func toQuoteModel(q *domain.Quote) quoteModel {
	return quoteModel{
		ID:         q.ID,
		UserID:     q.UserID,
		VehicleID:  q.VehicleID,
		Vehicle:    q.Vehicle,
		Params:     q.Params,
		Servizi:    q.Servizi,
		Pricing:    q.Pricing,
		Status:     string(q.Status),
		ValidUntil: q.ValidUntil,
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}

func toDomainQuote(m quoteModel) domain.Quote {
	servizi := m.Servizi
	if servizi == nil {
		servizi = []string{}
	}
	return domain.Quote{
		ID:         m.ID,
		UserID:     m.UserID,
		VehicleID:  m.VehicleID,
		Vehicle:    m.Vehicle,
		Params:     m.Params,
		Servizi:    servizi,
		Pricing:    m.Pricing,
		Status:     domain.QuoteStatus(m.Status),
		ValidUntil: m.ValidUntil,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func (r *QuoteRepository) Create(ctx context.Context, q *domain.Quote) (*domain.Quote, error) {
	m := toQuoteModel(q)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		err = storage.Normalize(err)
		if storage.IsCode(err, storage.CodeAlreadyExists) {
			return nil, storage.AlreadyExists("quote", m.ID)
		}
		return nil, err
	}
	out := toDomainQuote(m)
	return &out, nil
}

func (r *QuoteRepository) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	var m quoteModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFoundAs(err, "quote", id)
	}
	q := toDomainQuote(m)
	return &q, nil
}

func (r *QuoteRepository) ListByUser(ctx context.Context, userID string) ([]domain.Quote, error) {
	var models []quoteModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, storage.Normalize(err)
	}
	out := make([]domain.Quote, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainQuote(m))
	}
	return out, nil
}

// Update writes status and owner only. Pricing columns are never touched.
func (r *QuoteRepository) Update(ctx context.Context, id string, upd domain.QuoteUpdate) (*domain.Quote, error) {
	updates := map[string]any{"updated_at": r.now()}
	if upd.Status != nil {
		updates["status"] = string(*upd.Status)
	}
	if upd.UserID != nil {
		updates["user_id"] = *upd.UserID
	}

	res := r.db.WithContext(ctx).Model(&quoteModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, storage.Normalize(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, storage.NotFound("quote", id)
	}
	return r.GetByID(ctx, id)
}

func (r *QuoteRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&quoteModel{})
	if res.Error != nil {
		return storage.Normalize(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.NotFound("quote", id)
	}
	return nil
}
