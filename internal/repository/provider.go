// Package repository is the SQL storage backend built on gorm. It runs on
// sqlite for single-node deployments and on postgres for remote databases.
package repository

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rentfunnel/internal/storage"
	"rentfunnel/internal/storage/seed"
)

type Provider struct {
	db  *gorm.DB
	now func() time.Time

	vehicles  *VehicleRepository
	users     *UserRepository
	favorites *FavoriteRepository
	quotes    *QuoteRepository
	leads     *LeadRepository
}

type Option func(*Provider)

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// New migrates the schema, seeds the catalogue when empty and returns the
// provider. db must already be connected.
func New(ctx context.Context, db *gorm.DB, opts ...Option) (*Provider, error) {
	p := &Provider{db: db, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	p.vehicles = NewVehicleRepository(db)
	p.users = NewUserRepository(db, p.now)
	p.favorites = NewFavoriteRepository(db, p.now)
	p.quotes = NewQuoteRepository(db, p.now)
	p.leads = NewLeadRepository(db, p.now)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := p.seedVehicles(ctx, false); err != nil {
		return nil, err
	}
	return p, nil
}

// Migrate creates or updates every table of the backend
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&vehicleModel{},
		&userModel{},
		&favoriteModel{},
		&quoteModel{},
		&leadModel{},
		&sessionModel{},
	)
	return eris.Wrap(err, "repository: migrate")
}

// seedVehicles loads the embedded catalogue. Without replace it is a no-op
// on a non-empty table.
func (p *Provider) seedVehicles(ctx context.Context, replace bool) error {
	db := p.db.WithContext(ctx)
	if !replace {
		var count int64
		if err := db.Model(&vehicleModel{}).Count(&count).Error; err != nil {
			return eris.Wrap(err, "repository: count vehicles")
		}
		if count > 0 {
			return nil
		}
	}

	vehicles, err := seed.Vehicles()
	if err != nil {
		return err
	}
	models := make([]vehicleModel, 0, len(vehicles))
	for i := range vehicles {
		models = append(models, toVehicleModel(&vehicles[i], i))
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if replace {
			if err := tx.Where("1 = 1").Delete(&vehicleModel{}).Error; err != nil {
				return err
			}
		}
		return tx.CreateInBatches(models, 50).Error
	})
	if err != nil {
		return eris.Wrap(err, "repository: seed vehicles")
	}
	zap.L().Info("vehicle catalogue seeded", zap.Int("count", len(models)))
	return nil
}

func (p *Provider) Name() string {
	return "sql:" + p.db.Dialector.Name()
}

func (p *Provider) Ready(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return storage.Normalize(err)
	}
	return storage.Normalize(sqlDB.PingContext(ctx))
}

func (p *Provider) Clear(ctx context.Context) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&leadModel{}, &quoteModel{}, &favoriteModel{}, &userModel{}, &sessionModel{}} {
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storage.Normalize(err)
	}
	return storage.Normalize(p.seedVehicles(ctx, true))
}

// ReseedVehicles replaces the catalogue with the embedded one
func (p *Provider) ReseedVehicles(ctx context.Context) error {
	return storage.Normalize(p.seedVehicles(ctx, true))
}

// DB exposes the connection for tools such as cmd/seed
func (p *Provider) DB() *gorm.DB { return p.db }

func (p *Provider) Vehicles() storage.VehicleStore   { return p.vehicles }
func (p *Provider) Users() storage.UserStore         { return p.users }
func (p *Provider) Favorites() storage.FavoriteStore { return p.favorites }
func (p *Provider) Quotes() storage.QuoteStore       { return p.quotes }
func (p *Provider) Leads() storage.LeadStore         { return p.leads }

var _ storage.Provider = (*Provider)(nil)
