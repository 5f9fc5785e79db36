// Package seed ships the vehicle catalogue loaded into every storage backend.
package seed

import (
	_ "embed"
	"encoding/json"

	"github.com/rotisserie/eris"

	"rentfunnel/internal/domain"
)

//go:embed vehicles.json
var vehiclesJSON []byte

// Vehicles decodes the embedded catalogue. Each call returns a fresh copy.
func Vehicles() ([]domain.Vehicle, error) {
	var vehicles []domain.Vehicle
	if err := json.Unmarshal(vehiclesJSON, &vehicles); err != nil {
		return nil, eris.Wrap(err, "seed: decode vehicles")
	}
	return vehicles, nil
}

// MustVehicles is Vehicles for callers that cannot run without a catalogue
func MustVehicles() []domain.Vehicle {
	v, err := Vehicles()
	if err != nil {
		panic(err)
	}
	return v
}
