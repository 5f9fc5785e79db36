package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rentfunnel/internal/domain"
)

func catalogFixture() []domain.Vehicle {
	return []domain.Vehicle{
		{ID: "a", Marca: "Fiat", Modello: "500", Categoria: domain.CategoryCity, Fuel: domain.FuelIbrido, CanoneBase: 199, AnticipoZero: true, Disponibile: true, Potenza: 70},
		{ID: "b", Marca: "BMW", Modello: "X1", Categoria: domain.CategorySUV, Fuel: domain.FuelDiesel, CanoneBase: 489, Disponibile: true, Potenza: 150},
		{ID: "c", Marca: "Audi", Modello: "A4", Categoria: domain.CategoryBerlina, Fuel: domain.FuelDiesel, CanoneBase: 529, Disponibile: false, Potenza: 163},
	}
}

func TestMatchVehicle_Filters(t *testing.T) {
	yes := true
	max := int64(500)
	vehicles := catalogFixture()

	match := func(f domain.VehicleFilters) []string {
		var ids []string
		for _, v := range vehicles {
			if MatchVehicle(&v, f) {
				ids = append(ids, v.ID)
			}
		}
		return ids
	}

	assert.Equal(t, []string{"a", "b", "c"}, match(domain.VehicleFilters{}))
	assert.Equal(t, []string{"b"}, match(domain.VehicleFilters{Marca: []string{"bmw"}}))
	assert.Equal(t, []string{"b", "c"}, match(domain.VehicleFilters{Fuel: []domain.FuelType{domain.FuelDiesel}}))
	assert.Equal(t, []string{"a"}, match(domain.VehicleFilters{AnticipoZero: &yes}))
	assert.Equal(t, []string{"a", "b"}, match(domain.VehicleFilters{CanoneMax: &max}))
	assert.Equal(t, []string{"a", "b"}, match(domain.VehicleFilters{Disponibile: &yes}))
	assert.Equal(t, []string{"c"}, match(domain.VehicleFilters{Search: "audi a4"}))
}

func TestSortAndPaginate(t *testing.T) {
	vehicles := catalogFixture()
	SortVehicles(vehicles, domain.SortCanoneDesc)
	assert.Equal(t, "c", vehicles[0].ID)

	SortVehicles(vehicles, domain.SortMarcaAsc)
	assert.Equal(t, []string{"c", "b", "a"}, []string{vehicles[0].ID, vehicles[1].ID, vehicles[2].ID})

	page := Paginate(vehicles, 2, 2)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Vehicles, 1)

	empty := Paginate(vehicles, 5, 2)
	assert.Empty(t, empty.Vehicles)
}
