package domain

import (
	"time"
)

// Favorite links a user with a saved vehicle.
// (UserID, VehicleID) is unique.
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	VehicleID string    `json:"vehicle_id"`
	CreatedAt time.Time `json:"created_at"`
}
