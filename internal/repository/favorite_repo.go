package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/storage"
)

type FavoriteRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewFavoriteRepository(db *gorm.DB, now func() time.Time) *FavoriteRepository {
	return &FavoriteRepository{db: db, now: now}
}

type favoriteModel struct {
	ID        string    `gorm:"column:id;primaryKey;size:64"`
	UserID    string    `gorm:"column:user_id;size:64;uniqueIndex:idx_favorites_user_vehicle"`
	VehicleID string    `gorm:"column:vehicle_id;size:64;uniqueIndex:idx_favorites_user_vehicle"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (favoriteModel) TableName() string { return "favorites" }

func toDomainFavorite(m favoriteModel) domain.Favorite {
	return domain.Favorite{ID: m.ID, UserID: m.UserID, VehicleID: m.VehicleID, CreatedAt: m.CreatedAt}
}

// Add inserts the pair, or returns the existing row when it is already saved.
func (r *FavoriteRepository) Add(ctx context.Context, userID, vehicleID string) (*domain.Favorite, error) {
	m := favoriteModel{
		ID:        uuid.NewString(),
		UserID:    userID,
		VehicleID: vehicleID,
		CreatedAt: r.now(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "vehicle_id"}}, DoNothing: true}).
		Create(&m).Error
	if err != nil {
		return nil, storage.Normalize(err)
	}

	var stored favoriteModel
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND vehicle_id = ?", userID, vehicleID).
		First(&stored).Error
	if err != nil {
		return nil, storage.Normalize(err)
	}
	f := toDomainFavorite(stored)
	return &f, nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, vehicleID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND vehicle_id = ?", userID, vehicleID).
		Delete(&favoriteModel{})
	if result.Error != nil {
		return storage.Normalize(result.Error)
	}
	if result.RowsAffected == 0 {
		return storage.NotFound("favorite", vehicleID)
	}
	return nil
}

// ListByUser returns the user's favorites, newest first
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	var models []favoriteModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, storage.Normalize(err)
	}
	out := make([]domain.Favorite, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainFavorite(m))
	}
	return out, nil
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID, vehicleID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&favoriteModel{}).
		Where("user_id = ? AND vehicle_id = ?", userID, vehicleID).
		Count(&count).Error
	if err != nil {
		return false, storage.Normalize(err)
	}
	return count > 0, nil
}

func (r *FavoriteRepository) Count(ctx context.Context, userID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&favoriteModel{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, storage.Normalize(err)
	}
	return int(count), nil
}
