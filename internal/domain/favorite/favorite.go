package favorite

import (
	"context"
	"time"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/storage"
)

// FavoriteWithVehicle is a saved vehicle with its catalog entry. Vehicle is
// nil when the entry left the catalog.
type FavoriteWithVehicle struct {
	ID        string          `json:"id"`
	VehicleID string          `json:"vehicle_id"`
	Vehicle   *domain.Vehicle `json:"vehicle"`
	CreatedAt time.Time       `json:"created_at"`
}

type Service struct {
	favorites storage.FavoriteStore
	vehicles  storage.VehicleStore
}

func NewService(favorites storage.FavoriteStore, vehicles storage.VehicleStore) *Service {
	return &Service{favorites: favorites, vehicles: vehicles}
}

// Add saves a vehicle. Saving it twice returns the first favorite.
func (s *Service) Add(ctx context.Context, userID, vehicleID string) (*domain.Favorite, error) {
	if _, err := s.vehicles.GetByID(ctx, vehicleID); err != nil {
		return nil, err
	}
	return s.favorites.Add(ctx, userID, vehicleID)
}

func (s *Service) Remove(ctx context.Context, userID, vehicleID string) error {
	return s.favorites.Remove(ctx, userID, vehicleID)
}

func (s *Service) List(ctx context.Context, userID string) ([]FavoriteWithVehicle, error) {
	favs, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]FavoriteWithVehicle, 0, len(favs))
	for _, f := range favs {
		item := FavoriteWithVehicle{ID: f.ID, VehicleID: f.VehicleID, CreatedAt: f.CreatedAt}
		v, err := s.vehicles.GetByID(ctx, f.VehicleID)
		switch {
		case err == nil:
			item.Vehicle = v
		case !storage.IsNotFound(err):
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Service) Exists(ctx context.Context, userID, vehicleID string) (bool, error) {
	return s.favorites.Exists(ctx, userID, vehicleID)
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.favorites.Count(ctx, userID)
}
