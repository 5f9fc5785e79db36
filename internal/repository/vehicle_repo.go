package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/storage"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

type vehicleModel struct {
	ID             string        `gorm:"column:id;primaryKey;size:64"`
	Position       int           `gorm:"column:position;index"`
	Slug           string        `gorm:"column:slug;uniqueIndex;size:128"`
	Marca          string        `gorm:"column:marca;index"`
	Modello        string        `gorm:"column:modello"`
	Versione       string        `gorm:"column:versione"`
	Categoria      string        `gorm:"column:categoria;index"`
	Fuel           string        `gorm:"column:fuel"`
	Immagini       []string      `gorm:"column:immagini;serializer:json"`
	CanoneBase     int64         `gorm:"column:canone_base"`
	AnticipoMinimo int           `gorm:"column:anticipo_minimo"`
	AnticipoZero   bool          `gorm:"column:anticipo_zero"`
	KmAnno         []int         `gorm:"column:km_anno;serializer:json"`
	Potenza        int           `gorm:"column:potenza"`
	Cilindrata     int           `gorm:"column:cilindrata"`
	Cambio         string        `gorm:"column:cambio"`
	Posti          int           `gorm:"column:posti"`
	Porte          int           `gorm:"column:porte"`
	Bagagliaio     int           `gorm:"column:bagagliaio"`
	EmissioniCO2   int           `gorm:"column:emissioni_co2"`
	ConsumoMedio   float64       `gorm:"column:consumo_medio"`
	Disponibile    bool          `gorm:"column:disponibile"`
	InEvidenza     bool          `gorm:"column:in_evidenza"`
	Descrizione    string        `gorm:"column:descrizione;type:text"`
	Tags           []string      `gorm:"column:tags;serializer:json"`
	Promo          *domain.Promo `gorm:"column:promo;serializer:json"`
}

func (vehicleModel) TableName() string { return "vehicles" }

func toVehicleModel(v *domain.Vehicle, position int) vehicleModel {
	return vehicleModel{
		ID:             v.ID,
		Position:       position,
		Slug:           v.Slug,
		Marca:          v.Marca,
		Modello:        v.Modello,
		Versione:       v.Versione,
		Categoria:      string(v.Categoria),
		Fuel:           string(v.Fuel),
		Immagini:       v.Immagini,
		CanoneBase:     v.CanoneBase,
		AnticipoMinimo: v.AnticipoMinimo,
		AnticipoZero:   v.AnticipoZero,
		KmAnno:         v.KmAnno,
		Potenza:        v.Potenza,
		Cilindrata:     v.Cilindrata,
		Cambio:         v.Cambio,
		Posti:          v.Posti,
		Porte:          v.Porte,
		Bagagliaio:     v.Bagagliaio,
		EmissioniCO2:   v.EmissioniCO2,
		ConsumoMedio:   v.ConsumoMedio,
		Disponibile:    v.Disponibile,
		InEvidenza:     v.InEvidenza,
		Descrizione:    v.Descrizione,
		Tags:           v.Tags,
		Promo:          v.Promo,
	}
}

func toDomainVehicle(m vehicleModel) domain.Vehicle {
	return domain.Vehicle{
		ID:             m.ID,
		Slug:           m.Slug,
		Marca:          m.Marca,
		Modello:        m.Modello,
		Versione:       m.Versione,
		Categoria:      domain.VehicleCategory(m.Categoria),
		Fuel:           domain.FuelType(m.Fuel),
		Immagini:       m.Immagini,
		CanoneBase:     m.CanoneBase,
		AnticipoMinimo: m.AnticipoMinimo,
		AnticipoZero:   m.AnticipoZero,
		KmAnno:         m.KmAnno,
		Potenza:        m.Potenza,
		Cilindrata:     m.Cilindrata,
		Cambio:         m.Cambio,
		Posti:          m.Posti,
		Porte:          m.Porte,
		Bagagliaio:     m.Bagagliaio,
		EmissioniCO2:   m.EmissioniCO2,
		ConsumoMedio:   m.ConsumoMedio,
		Disponibile:    m.Disponibile,
		InEvidenza:     m.InEvidenza,
		Descrizione:    m.Descrizione,
		Tags:           m.Tags,
		Promo:          m.Promo,
	}
}

func toDomainVehicles(models []vehicleModel) []domain.Vehicle {
	out := make([]domain.Vehicle, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainVehicle(m))
	}
	return out
}

func (r *VehicleRepository) GetAll(ctx context.Context) ([]domain.Vehicle, error) {
	var models []vehicleModel
	if err := r.db.WithContext(ctx).Order("position").Find(&models).Error; err != nil {
		return nil, storage.Normalize(err)
	}
	return toDomainVehicles(models), nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	return r.first(ctx, "vehicle", id, "id = ?", id)
}

func (r *VehicleRepository) GetBySlug(ctx context.Context, slug string) (*domain.Vehicle, error) {
	return r.first(ctx, "vehicle", slug, "slug = ?", slug)
}

func (r *VehicleRepository) first(ctx context.Context, resource, ident string, query string, args ...any) (*domain.Vehicle, error) {
	var m vehicleModel
	err := r.db.WithContext(ctx).Where(query, args...).First(&m).Error
	if err != nil {
		if storage.IsNotFound(storage.Normalize(err)) {
			return nil, storage.NotFound(resource, ident)
		}
		return nil, storage.Normalize(err)
	}
	v := toDomainVehicle(m)
	return &v, nil
}

func (r *VehicleRepository) GetFeatured(ctx context.Context, limit int) ([]domain.Vehicle, error) {
	if limit <= 0 {
		limit = storage.DefaultFeaturedLimit
	}
	var models []vehicleModel
	err := r.db.WithContext(ctx).
		Where("in_evidenza = ? AND disponibile = ?", true, true).
		Order("position").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, storage.Normalize(err)
	}
	return toDomainVehicles(models), nil
}

func (r *VehicleRepository) Search(ctx context.Context, params domain.VehicleSearchParams) (*domain.VehicleSearchResult, error) {
	params.Normalize()
	base := func() *gorm.DB {
		return applyVehicleFilters(r.db.WithContext(ctx).Model(&vehicleModel{}), params.Filters)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, storage.Normalize(err)
	}

	var models []vehicleModel
	err := base().
		Order(vehicleOrder(params.Sort)).
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&models).Error
	if err != nil {
		return nil, storage.Normalize(err)
	}

	return &domain.VehicleSearchResult{
		Vehicles:   toDomainVehicles(models),
		Total:      int(total),
		Page:       params.Page,
		TotalPages: storage.TotalPages(int(total), params.Limit),
	}, nil
}

func applyVehicleFilters(q *gorm.DB, f domain.VehicleFilters) *gorm.DB {
	if len(f.Marca) > 0 {
		lowered := make([]string, len(f.Marca))
		for i, m := range f.Marca {
			lowered[i] = strings.ToLower(m)
		}
		q = q.Where("LOWER(marca) IN ?", lowered)
	}
	if len(f.Categoria) > 0 {
		cats := make([]string, len(f.Categoria))
		for i, c := range f.Categoria {
			cats[i] = string(c)
		}
		q = q.Where("categoria IN ?", cats)
	}
	if len(f.Fuel) > 0 {
		fuels := make([]string, len(f.Fuel))
		for i, fu := range f.Fuel {
			fuels[i] = string(fu)
		}
		q = q.Where("fuel IN ?", fuels)
	}
	if f.AnticipoZero != nil {
		q = q.Where("anticipo_zero = ?", *f.AnticipoZero)
	}
	if f.CanoneMin != nil {
		q = q.Where("canone_base >= ?", *f.CanoneMin)
	}
	if f.CanoneMax != nil {
		q = q.Where("canone_base <= ?", *f.CanoneMax)
	}
	if f.Disponibile != nil {
		q = q.Where("disponibile = ?", *f.Disponibile)
	}
	if f.InEvidenza != nil {
		q = q.Where("in_evidenza = ?", *f.InEvidenza)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		q = q.Where("LOWER(marca || ' ' || modello || ' ' || versione) LIKE ?", "%"+s+"%")
	}
	return q
}

func vehicleOrder(by domain.VehicleSort) string {
	switch by {
	case domain.SortCanoneAsc:
		return "canone_base ASC, position"
	case domain.SortCanoneDesc:
		return "canone_base DESC, position"
	case domain.SortMarcaAsc:
		return "LOWER(marca) ASC, position"
	case domain.SortPotenzaDesc:
		return "potenza DESC, position"
	default:
		return "position"
	}
}

func (r *VehicleRepository) Brands(ctx context.Context) ([]string, error) {
	var brands []string
	err := r.db.WithContext(ctx).
		Model(&vehicleModel{}).
		Distinct("marca").
		Order("marca").
		Pluck("marca", &brands).Error
	if err != nil {
		return nil, storage.Normalize(err)
	}
	return brands, nil
}

func (r *VehicleRepository) Categories(ctx context.Context) ([]domain.VehicleCategory, error) {
	var cats []string
	err := r.db.WithContext(ctx).
		Model(&vehicleModel{}).
		Select("categoria").
		Group("categoria").
		Order("MIN(position)").
		Pluck("categoria", &cats).Error
	if err != nil {
		return nil, storage.Normalize(err)
	}
	out := make([]domain.VehicleCategory, len(cats))
	for i, c := range cats {
		out[i] = domain.VehicleCategory(c)
	}
	return out, nil
}
